package repositories

import (
	"context"
	"encoding/json"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
)

type TenantHistoryRepository interface {
	Create(ctx context.Context, h *models.TenantHistory) error
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantHistory, error)
}

type tenantHistoryRepo struct {
	db DB
}

func NewTenantHistoryRepository(db DB) TenantHistoryRepository {
	return &tenantHistoryRepo{db: db}
}

func (r *tenantHistoryRepo) Create(ctx context.Context, h *models.TenantHistory) error {
	var summary []byte
	if h.Summary != nil {
		summary = *h.Summary
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO tenant_history (
			id, tenant_id, lease_id, unit_id, landlord_id, departure_id,
			deposit_disposition_id, departure_type, move_in_date, move_out_date,
			outcome, summary, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW())
	`,
		h.ID, h.TenantID, h.LeaseID, h.UnitID, h.LandlordID, h.DepartureID,
		h.DepositDispositionID, h.DepartureType, h.MoveInDate, h.MoveOutDate,
		h.Outcome, summary,
	)
	return err
}

func (r *tenantHistoryRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, lease_id, unit_id, landlord_id, departure_id,
			deposit_disposition_id, departure_type, move_in_date, move_out_date,
			outcome, summary, created_at
		FROM tenant_history
		WHERE tenant_id=$1
		ORDER BY move_out_date DESC
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TenantHistory
	for rows.Next() {
		var (
			h       models.TenantHistory
			summary []byte
		)
		if err := rows.Scan(
			&h.ID, &h.TenantID, &h.LeaseID, &h.UnitID, &h.LandlordID, &h.DepartureID,
			&h.DepositDispositionID, &h.DepartureType, &h.MoveInDate, &h.MoveOutDate,
			&h.Outcome, &summary, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		if summary != nil {
			raw := json.RawMessage(summary)
			h.Summary = &raw
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}
