package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

const defaultMaxRetries = 3

// versionedRepo carries the by-id read and the guarded write of one
// row_version table. Concrete repositories embed it so GetByID and
// UpdateWithRetry are promoted onto them.
type versionedRepo[T Versioned] struct {
	db         DB
	kind       string
	selectByID string
	scan       func(row pgx.Row) (T, error)
	update     UpdateIfVersionFunc[T]
}

func newVersionedRepo[T Versioned](
	db DB,
	kind string,
	selectByID string,
	scan func(pgx.Row) (T, error),
	update UpdateIfVersionFunc[T],
) *versionedRepo[T] {
	return &versionedRepo[T]{db: db, kind: kind, selectByID: selectByID, scan: scan, update: update}
}

// GetByID returns nil, nil when no row matches.
func (b *versionedRepo[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	return b.scan(b.db.QueryRow(ctx, b.selectByID, id))
}

func (b *versionedRepo[T]) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	return WithRetry(ctx, defaultMaxRetries, b.kind, id, b.GetByID, b.update, mutate)
}
