package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// TenantDepartureRepository is insert-only; departures are never updated.
type TenantDepartureRepository interface {
	Create(ctx context.Context, d *models.TenantDeparture) error
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.TenantDeparture, error)
}

type tenantDepartureRepo struct {
	db DB
}

func NewTenantDepartureRepository(db DB) TenantDepartureRepository {
	return &tenantDepartureRepo{db: db}
}

func (r *tenantDepartureRepo) Create(ctx context.Context, d *models.TenantDeparture) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tenant_departures (
			id, lease_id, departure_type, departure_date, eviction_notice_id, notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6, NOW())
	`, d.ID, d.LeaseID, d.DepartureType, d.DepartureDate, d.EvictionNoticeID, d.Notes)
	return err
}

func (r *tenantDepartureRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.TenantDeparture, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, lease_id, departure_type, departure_date, eviction_notice_id, notes, created_at
		FROM tenant_departures
		WHERE lease_id=$1
		ORDER BY departure_date DESC, created_at DESC
	`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TenantDeparture
	for rows.Next() {
		d, err := scanTenantDeparture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanTenantDeparture(row pgx.Row) (*models.TenantDeparture, error) {
	var d models.TenantDeparture
	if err := row.Scan(
		&d.ID, &d.LeaseID, &d.DepartureType, &d.DepartureDate,
		&d.EvictionNoticeID, &d.Notes, &d.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
