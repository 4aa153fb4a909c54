package ports

import (
	"banco/internal/types"
	"context"
)

// Store persists one kind of record. The file backend and every database backend implement it;
// the active one is chosen once at startup.
// Ids are assigned by Insert, are monotonic and are never reused, not even after DeleteAll.
type Store[T types.Record[T]] interface {
	// Insert assigns a new id and persists the record.
	// MUST return types.ErrDuplicate if another record already uses the same RecordKey.
	Insert(ctx context.Context, rec T) (T, error)

	// List returns every record ordered by id.
	List(ctx context.Context) ([]T, error)

	// ListPage returns the 1-based page of size records ordered by id. A page past the end is empty.
	ListPage(ctx context.Context, page, size int) ([]T, error)

	Count(ctx context.Context) (int, error)

	// GetByID and GetByKey MUST return types.ErrNotFound for missing records.
	GetByID(ctx context.Context, id int64) (T, error)
	GetByKey(ctx context.Context, key string) (T, error)

	// Update replaces the record with the same id. A changed RecordKey MUST stay unique.
	Update(ctx context.Context, rec T) error

	DeleteByID(ctx context.Context, id int64) error

	DeleteAll(ctx context.Context) error
}
