package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type LeaseRepository interface {
	Create(ctx context.Context, l *models.Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	GetActiveByUnitID(ctx context.Context, unitID uuid.UUID) (*models.Lease, error)
	ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Lease, error)
	UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Lease) error) error
}

type leaseRepo struct {
	*versionedRepo[*models.Lease]
	db DB
}

func NewLeaseRepository(db DB) LeaseRepository {
	r := &leaseRepo{db: db}
	r.versionedRepo = newVersionedRepo(db, "lease", baseSelectLease()+" WHERE id=$1", scanLease, r.UpdateIfVersion)
	return r
}

func (r *leaseRepo) Create(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO leases (
			id, tenant_id, unit_id, start_date, end_date, rent_amount_cents, status,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW(), NOW(), 1)
	`, l.ID, l.TenantID, l.UnitID, l.StartDate, l.EndDate, l.RentAmountCents, l.Status)
	return err
}

func (r *leaseRepo) GetActiveByUnitID(ctx context.Context, unitID uuid.UUID) (*models.Lease, error) {
	row := r.db.QueryRow(ctx, baseSelectLease()+" WHERE unit_id=$1 AND status='ACTIVE' LIMIT 1", unitID)
	return scanLease(row)
}

func (r *leaseRepo) ListByUnitID(ctx context.Context, unitID uuid.UUID) ([]*models.Lease, error) {
	rows, err := r.db.Query(ctx, baseSelectLease()+" WHERE unit_id=$1 ORDER BY start_date DESC", unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *leaseRepo) UpdateIfVersion(ctx context.Context, l *models.Lease, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE leases SET
			end_date=$1, rent_amount_cents=$2, status=$3,
			termination_reason=$4, terminated_at=$5,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$6 AND row_version=$7
	`, l.EndDate, l.RentAmountCents, l.Status, l.TerminationReason, l.TerminatedAt, l.ID, expected)
}

func baseSelectLease() string {
	return `
		SELECT id, tenant_id, unit_id, start_date, end_date, rent_amount_cents, status,
			termination_reason, terminated_at, created_at, updated_at, row_version
		FROM leases`
}

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(
		&l.ID, &l.TenantID, &l.UnitID, &l.StartDate, &l.EndDate, &l.RentAmountCents, &l.Status,
		&l.TerminationReason, &l.TerminatedAt, &l.CreatedAt, &l.UpdatedAt, &l.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
