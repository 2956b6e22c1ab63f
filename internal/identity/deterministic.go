package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const documentNamespace = "go-courses:document:"

// UUID derives a deterministic UUID from key using go-hashid, falling back
// to a SHA1 name-based UUID if hashing fails. The key is hashed verbatim.
func UUID(key string) uuid.UUID {
	if strings.TrimSpace(key) == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(false))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid
}

// DocumentUUID identifies a document, and the course parsed from it, by its
// source path. Categories and ids may repeat across documents; paths do not.
func DocumentUUID(path string) uuid.UUID {
	if strings.TrimSpace(path) == "" {
		return uuid.Nil
	}
	return UUID(documentNamespace + path)
}
