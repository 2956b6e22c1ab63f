package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-courses/internal/identity"
	"github.com/goliatone/go-courses/internal/logging"
	"github.com/goliatone/go-courses/pkg/interfaces"
)

var errNoDatabase = errors.New("documents: bun repository requires a database")

const documentCacheNamespace = "course_document"

// NewBunDB wraps sqlDB with the Bun dialect matching driver ("sqlite",
// "sqlite3" or "postgres").
func NewBunDB(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	if sqlDB == nil {
		return nil, errNoDatabase
	}
	var dialect schema.Dialect
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		dialect = sqlitedialect.New()
	case "postgres", "postgresql", "pg":
		dialect = pgdialect.New()
	default:
		return nil, fmt.Errorf("documents: unsupported storage driver %q", driver)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

// newDocumentRepository creates the go-repository-bun repository for stored
// documents, identified by path.
func newDocumentRepository(db *bun.DB) repository.Repository[*documentModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*documentModel]{
		NewRecord:          func() *documentModel { return &documentModel{} },
		GetID:              func(doc *documentModel) uuid.UUID { return doc.ID },
		SetID:              func(doc *documentModel, id uuid.UUID) { doc.ID = id },
		GetIdentifier:      func() string { return "path" },
		GetIdentifierValue: func(doc *documentModel) string { return doc.Path },
	})
}

// BunRepository persists documents in the course_documents table. Single
// document reads go through the optional cache; listing and write-path
// lookups read the table directly so rebuilds see committed rows.
type BunRepository struct {
	db           *bun.DB
	base         repository.Repository[*documentModel]
	repo         repository.Repository[*documentModel]
	cacheService cache.CacheService
	cachePrefix  string
	broadcaster  *changeBroadcaster
	logger       interfaces.Logger
	clock        func() time.Time
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository constructs a Bun-backed repository without caching.
func NewBunRepository(db *bun.DB, logger interfaces.Logger) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil, logger)
}

// NewBunRepositoryWithCache constructs a Bun-backed repository whose Get
// results are cached when both cacheService and serializer are provided.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, logger interfaces.Logger) *BunRepository {
	if logger == nil {
		logger = logging.NoOp()
	}
	r := &BunRepository{
		db:          db,
		broadcaster: newChangeBroadcaster(),
		logger:      logger,
		clock:       time.Now,
	}
	if db == nil {
		return r
	}
	r.base = newDocumentRepository(db)
	r.repo = r.base
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(r.base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = documentCacheNamespace + cache.KeySeparator
	}
	return r
}

// EnsureSchema creates the documents table when missing.
func (r *BunRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errNoDatabase
	}
	if _, err := r.db.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("documents: create table: %w", err)
	}
	return nil
}

// Get returns the document stored under path.
func (r *BunRepository) Get(ctx context.Context, path string) (interfaces.Document, error) {
	if r.repo == nil {
		return interfaces.Document{}, errNoDatabase
	}
	path, err := normalizePath(path)
	if err != nil {
		return interfaces.Document{}, err
	}
	record, err := r.repo.GetByIdentifier(ctx, path)
	if err != nil {
		return interfaces.Document{}, mapRepositoryError(err, path)
	}
	return record.toDocument(), nil
}

// List returns every stored document sorted by path.
func (r *BunRepository) List(ctx context.Context) ([]interfaces.Document, error) {
	if r.base == nil {
		return nil, errNoDatabase
	}
	records, _, err := r.base.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.path ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("documents: list: %w", err)
	}
	out := make([]interfaces.Document, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDocument())
	}
	return out, nil
}

// ListDocuments satisfies interfaces.DocumentSource.
func (r *BunRepository) ListDocuments(ctx context.Context) ([]interfaces.Document, error) {
	docs, err := r.List(ctx)
	if err != nil {
		r.logger.Error("courses.repository.list.failed", "error", err)
		return nil, err
	}
	r.logger.Debug("courses.repository.list.completed", "documents", len(docs))
	return docs, nil
}

// Upsert inserts or updates doc and emits the matching change event.
func (r *BunRepository) Upsert(ctx context.Context, doc interfaces.Document) (interfaces.Document, error) {
	if r.base == nil {
		return interfaces.Document{}, errNoDatabase
	}
	path, err := normalizePath(doc.Path)
	if err != nil {
		return interfaces.Document{}, err
	}
	doc.Path = path

	existing, err := r.base.GetByIdentifier(ctx, path)
	err = mapRepositoryError(err, path)
	created := errors.Is(err, ErrDocumentNotFound)
	if err != nil && !created {
		return interfaces.Document{}, err
	}
	if !created && existing.Content == doc.Content {
		return doc, nil
	}

	record := &documentModel{Path: path, Content: doc.Content, UpdatedAt: r.clock().UTC()}
	if created {
		record.ID = identity.DocumentUUID(path)
		_, err = r.base.Create(ctx, record)
	} else {
		record.ID = existing.ID
		_, err = r.base.Update(ctx, record,
			repository.UpdateByID(record.ID.String()),
			repository.UpdateColumns("content", "updated_at"),
		)
	}
	if err != nil {
		return interfaces.Document{}, fmt.Errorf("documents: upsert %s: %w", path, err)
	}
	r.invalidate(ctx)

	changeType := ChangeUpdated
	if created {
		changeType = ChangeCreated
	}
	logging.WithCourseContext(r.logger, path, "", "").Debug("courses.repository.upserted", "change", string(changeType))
	r.broadcaster.Broadcast(newChangeEvent(changeType, doc))
	return doc, nil
}

// Delete removes the document stored under path.
func (r *BunRepository) Delete(ctx context.Context, path string) error {
	if r.base == nil {
		return errNoDatabase
	}
	path, err := normalizePath(path)
	if err != nil {
		return err
	}
	record, err := r.base.GetByIdentifier(ctx, path)
	if err != nil {
		return mapRepositoryError(err, path)
	}
	if err := r.base.Delete(ctx, &documentModel{ID: record.ID}); err != nil {
		return fmt.Errorf("documents: delete %s: %w", path, err)
	}
	r.invalidate(ctx)
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, record.toDocument()))
	return nil
}

// Subscribe delivers change events until ctx is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

// InvalidateCache drops cached document reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository) invalidate(ctx context.Context) {
	if err := r.InvalidateCache(ctx); err != nil {
		r.logger.Warn("courses.repository.cache.invalidate_failed", "error", err)
	}
}

func mapRepositoryError(err error, path string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return ErrDocumentNotFound
	}
	return fmt.Errorf("documents: get %s: %w", path, err)
}

type documentModel struct {
	bun.BaseModel `bun:"table:course_documents,alias:cd"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Path      string    `bun:"path,notnull,unique"`
	Content   string    `bun:"content,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m *documentModel) toDocument() interfaces.Document {
	if m == nil {
		return interfaces.Document{}
	}
	return interfaces.Document{Path: m.Path, Content: m.Content}
}
