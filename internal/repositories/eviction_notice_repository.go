package repositories

import (
	"context"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type EvictionNoticeRepository interface {
	Create(ctx context.Context, n *models.EvictionNotice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvictionNotice, error)
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.EvictionNotice, error)

	// ListOverdue returns open notices (served or cure_period) whose deadline
	// is strictly before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.EvictionNotice, error)

	UpdateIfVersion(ctx context.Context, n *models.EvictionNotice, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.EvictionNotice) error) error
}

type evictionNoticeRepo struct {
	*versionedRepo[*models.EvictionNotice]
	db DB
}

func NewEvictionNoticeRepository(db DB) EvictionNoticeRepository {
	r := &evictionNoticeRepo{db: db}
	r.versionedRepo = newVersionedRepo(db, "eviction notice", baseSelectEvictionNotice()+" WHERE id=$1", scanEvictionNotice, r.UpdateIfVersion)
	return r
}

func (r *evictionNoticeRepo) Create(ctx context.Context, n *models.EvictionNotice) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO eviction_notices (
			id, lease_id, notice_type, status, serve_date, deadline_date,
			amount_owed_cents, reason, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW(), NOW(), 1)
	`,
		n.ID, n.LeaseID, n.NoticeType, n.Status, n.ServeDate, n.DeadlineDate,
		n.AmountOwedCents, n.Reason,
	)
	return err
}

func (r *evictionNoticeRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.EvictionNotice, error) {
	return r.list(ctx, baseSelectEvictionNotice()+" WHERE lease_id=$1 ORDER BY serve_date DESC, created_at DESC", leaseID)
}

func (r *evictionNoticeRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.EvictionNotice, error) {
	return r.list(ctx, baseSelectEvictionNotice()+`
		WHERE status IN ('served','cure_period') AND deadline_date < $1
		ORDER BY deadline_date`, asOf)
}

func (r *evictionNoticeRepo) list(ctx context.Context, q string, args ...any) ([]*models.EvictionNotice, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EvictionNotice
	for rows.Next() {
		n, err := scanEvictionNotice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *evictionNoticeRepo) UpdateIfVersion(ctx context.Context, n *models.EvictionNotice, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE eviction_notices SET
			status=$1, amount_owed_cents=$2, reason=$3,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$4 AND row_version=$5
	`, n.Status, n.AmountOwedCents, n.Reason, n.ID, expected)
}

func baseSelectEvictionNotice() string {
	return `
		SELECT id, lease_id, notice_type, status, serve_date, deadline_date,
			amount_owed_cents, reason, created_at, updated_at, row_version
		FROM eviction_notices`
}

func scanEvictionNotice(row pgx.Row) (*models.EvictionNotice, error) {
	var n models.EvictionNotice
	err := row.Scan(
		&n.ID, &n.LeaseID, &n.NoticeType, &n.Status, &n.ServeDate, &n.DeadlineDate,
		&n.AmountOwedCents, &n.Reason, &n.CreatedAt, &n.UpdatedAt, &n.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
