package documents

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

// ErrDocumentNotFound indicates that no document is stored under a path.
var ErrDocumentNotFound = errors.New("documents: document not found")

// ErrDocumentPathRequired rejects documents without a storage path.
var ErrDocumentPathRequired = errors.New("documents: document path is required")

// Repository stores course documents and notifies subscribers of changes.
// Every Repository is also an interfaces.DocumentSource.
type Repository interface {
	interfaces.DocumentSource
	Get(ctx context.Context, path string) (interfaces.Document, error)
	List(ctx context.Context) ([]interfaces.Document, error)
	Upsert(ctx context.Context, doc interfaces.Document) (interfaces.Document, error)
	Delete(ctx context.Context, path string) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates document change events.
type ChangeType string

const (
	// ChangeCreated indicates a document was stored for the first time.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates the content of an existing document changed.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates a document was removed.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports a document mutation to subscribers.
type ChangeEvent struct {
	Type     ChangeType
	Document interfaces.Document
}

func newChangeEvent(changeType ChangeType, doc interfaces.Document) ChangeEvent {
	return ChangeEvent{Type: changeType, Document: doc}
}

func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrDocumentPathRequired
	}
	return path, nil
}
