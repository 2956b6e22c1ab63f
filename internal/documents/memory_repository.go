package documents

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-courses/pkg/interfaces"
)

// MemoryRepository keeps documents in process memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	docs        map[string]interfaces.Document
	broadcaster *changeBroadcaster
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns a repository seeded with docs. Seeding does
// not emit change events.
func NewMemoryRepository(docs ...interfaces.Document) *MemoryRepository {
	repo := &MemoryRepository{
		docs:        make(map[string]interfaces.Document, len(docs)),
		broadcaster: newChangeBroadcaster(),
	}
	for _, doc := range docs {
		if path, err := normalizePath(doc.Path); err == nil {
			doc.Path = path
			repo.docs[path] = doc
		}
	}
	return repo
}

// Get returns the document stored under path.
func (r *MemoryRepository) Get(_ context.Context, path string) (interfaces.Document, error) {
	path, err := normalizePath(path)
	if err != nil {
		return interfaces.Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[path]
	if !ok {
		return interfaces.Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// List returns every document sorted by path.
func (r *MemoryRepository) List(ctx context.Context) ([]interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]interfaces.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ListDocuments satisfies interfaces.DocumentSource.
func (r *MemoryRepository) ListDocuments(ctx context.Context) ([]interfaces.Document, error) {
	return r.List(ctx)
}

// Upsert stores doc and emits created or updated. Storing identical
// content is a no-op.
func (r *MemoryRepository) Upsert(_ context.Context, doc interfaces.Document) (interfaces.Document, error) {
	path, err := normalizePath(doc.Path)
	if err != nil {
		return interfaces.Document{}, err
	}
	doc.Path = path

	r.mu.Lock()
	previous, existed := r.docs[path]
	r.docs[path] = doc
	r.mu.Unlock()

	if existed && previous == doc {
		return doc, nil
	}
	changeType := ChangeUpdated
	if !existed {
		changeType = ChangeCreated
	}
	r.broadcaster.Broadcast(newChangeEvent(changeType, doc))
	return doc, nil
}

// Delete removes the document stored under path.
func (r *MemoryRepository) Delete(_ context.Context, path string) error {
	path, err := normalizePath(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	doc, ok := r.docs[path]
	if !ok {
		r.mu.Unlock()
		return ErrDocumentNotFound
	}
	delete(r.docs, path)
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, doc))
	return nil
}

// Subscribe delivers change events until ctx is cancelled.
func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
