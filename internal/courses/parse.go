package courses

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

const (
	// Extension is the file suffix stripped from course filenames.
	Extension = ".md"

	compactLayout = "20060102150405"
	isoLayout     = "2006-01-02T15:04:05Z"
)

// ParseDocument turns a single document into a Course. The UUID field is
// left empty; the indexer assigns it.
func ParseDocument(doc interfaces.Document) (interfaces.Course, error) {
	category, filename, err := splitIdentifier(doc.Path)
	if err != nil {
		return interfaces.Course{}, err
	}

	// Titles may contain dots, so only the first two tokens are structural.
	tokens := strings.Split(strings.TrimSuffix(filename, Extension), ".")
	if len(tokens) < 2 {
		return interfaces.Course{}, fmt.Errorf("%w: %q", ErrFilenameMalformed, filename)
	}

	id := tokens[0]
	if !isDigits(id) {
		return interfaces.Course{}, fmt.Errorf("%w: %q", ErrIDNotNumeric, id)
	}

	datetime, err := ExpandDatetime(tokens[1])
	if err != nil {
		return interfaces.Course{}, err
	}

	return interfaces.Course{
		ID:       id,
		Datetime: datetime,
		Title:    strings.Join(tokens[2:], "."),
		Category: category,
		Content:  doc.Content,
		Path:     doc.Path,
	}, nil
}

// ExpandDatetime converts a compact YYYYMMDDhhmmss token into
// YYYY-MM-DDThh:mm:ssZ. Tokens that are not 14 digits or do not name a real
// calendar instant are rejected.
func ExpandDatetime(compact string) (string, error) {
	if len(compact) != len(compactLayout) || !isDigits(compact) {
		return "", fmt.Errorf("%w: %q", ErrDatetimeMalformed, compact)
	}
	ts, err := time.Parse(compactLayout, compact)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrDatetimeMalformed, compact)
	}
	return ts.Format(isoLayout), nil
}

func splitIdentifier(path string) (category, filename string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrIdentifierMalformed, path)
	}
	category = segments[len(segments)-2]
	filename = segments[len(segments)-1]
	if category == "" || filename == "" {
		return "", "", fmt.Errorf("%w: %q", ErrIdentifierMalformed, path)
	}
	return category, filename, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// compareIDs orders two digit-only ids by numeric value without overflow.
func compareIDs(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
