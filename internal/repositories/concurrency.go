package repositories

import (
	"context"
	"fmt"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// Versioned is satisfied by pointers to the lockable models. comparable lets
// WithRetry detect the nil "not found" result.
type Versioned interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

type UpdateIfVersionFunc[T Versioned] func(ctx context.Context, entity T, expectedVersion int64) (pgconn.CommandTag, error)

type GetByIDFunc[T Versioned] func(ctx context.Context, id uuid.UUID) (T, error)

/*
WithRetry loads the row, applies mutate and writes it back only if the
row_version is still the one that was read. A lost race re-reads and tries
again, up to maxRetries times.

  - a missing row yields pgx.ErrNoRows
  - an error from mutate aborts without writing and is returned as is
  - running out of attempts yields utils.ErrRowVersionConflict
*/
func WithRetry[T Versioned](
	ctx context.Context,
	maxRetries int,
	kind string,
	id uuid.UUID,
	getByID GetByIDFunc[T],
	updateIfVersion UpdateIfVersionFunc[T],
	mutate func(T) error,
) error {
	var zero T
	for attempt := 1; attempt <= maxRetries; attempt++ {
		current, err := getByID(ctx, id)
		if err != nil {
			return err
		}
		if current == zero {
			return pgx.ErrNoRows
		}

		readVersion := current.GetRowVersion()
		if err := mutate(current); err != nil {
			return err
		}

		tag, err := updateIfVersion(ctx, current, readVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			current.SetRowVersion(readVersion + 1)
			return nil
		}
		utils.Logger.Debugf("%s %s changed underneath us (attempt %d/%d)", kind, id, attempt, maxRetries)
	}
	return fmt.Errorf("%w: gave up updating %s %s after %d attempts", utils.ErrRowVersionConflict, kind, id, maxRetries)
}
