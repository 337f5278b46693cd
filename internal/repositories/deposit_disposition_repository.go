package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type DepositDispositionRepository interface {
	// CreateWithDeductions inserts the disposition and all of its deduction
	// items in a single transaction.
	CreateWithDeductions(ctx context.Context, d *models.DepositDisposition) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.DepositDisposition, error)
	ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.DepositDisposition, error)
	UpdateIfVersion(ctx context.Context, d *models.DepositDisposition, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.DepositDisposition) error) error
}

type depositDispositionRepo struct {
	*versionedRepo[*models.DepositDisposition]
	db DB
}

func NewDepositDispositionRepository(db DB) DepositDispositionRepository {
	r := &depositDispositionRepo{db: db}
	r.versionedRepo = newVersionedRepo(db, "deposit disposition", baseSelectDisposition()+" WHERE id=$1", scanDisposition, r.UpdateIfVersion)
	return r
}

func (r *depositDispositionRepo) CreateWithDeductions(ctx context.Context, d *models.DepositDisposition) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO deposit_dispositions (
			id, lease_id, tenant_id, landlord_id,
			original_amount_cents, total_deductions_cents, refund_amount_cents,
			refund_method, refund_status, refund_destination, refund_reference,
			notes, processed_at, created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW(), 1)
	`,
		d.ID, d.LeaseID, d.TenantID, d.LandlordID,
		d.OriginalAmountCents, d.TotalDeductionsCents, d.RefundAmountCents,
		d.RefundMethod, d.RefundStatus, d.RefundDestination, d.RefundReference,
		d.Notes, d.ProcessedAt,
	)
	if err != nil {
		return err
	}

	for i := range d.Deductions {
		item := &d.Deductions[i]
		item.DispositionID = d.ID
		evidence := item.EvidenceURLs
		if evidence == nil {
			evidence = []string{}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO deposit_deduction_items (
				id, disposition_id, category, amount_cents, description, evidence_urls, created_at
			) VALUES ($1,$2,$3,$4,$5,$6, NOW())
		`, item.ID, item.DispositionID, item.Category, item.AmountCents, item.Description, evidence)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *depositDispositionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DepositDisposition, error) {
	d, err := r.versionedRepo.GetByID(ctx, id)
	if err != nil || d == nil {
		return d, err
	}
	if d.Deductions, err = r.listDeductions(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *depositDispositionRepo) ListByLeaseID(ctx context.Context, leaseID uuid.UUID) ([]*models.DepositDisposition, error) {
	rows, err := r.db.Query(ctx, baseSelectDisposition()+" WHERE lease_id=$1 ORDER BY created_at DESC", leaseID)
	if err != nil {
		return nil, err
	}

	var out []*models.DepositDisposition
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Deductions are fetched after the outer cursor is released so the same
	// connection can serve the follow-up queries.
	for _, d := range out {
		if d.Deductions, err = r.listDeductions(ctx, d.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *depositDispositionRepo) UpdateIfVersion(ctx context.Context, d *models.DepositDisposition, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE deposit_dispositions SET
			refund_status=$1, refund_reference=$2, processed_at=$3, notes=$4,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$5 AND row_version=$6
	`, d.RefundStatus, d.RefundReference, d.ProcessedAt, d.Notes, d.ID, expected)
}

func (r *depositDispositionRepo) listDeductions(ctx context.Context, dispositionID uuid.UUID) ([]models.DepositDeductionItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, disposition_id, category, amount_cents, description, evidence_urls, created_at
		FROM deposit_deduction_items
		WHERE disposition_id=$1
		ORDER BY created_at, id
	`, dispositionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DepositDeductionItem{}
	for rows.Next() {
		var it models.DepositDeductionItem
		if err := rows.Scan(
			&it.ID, &it.DispositionID, &it.Category, &it.AmountCents,
			&it.Description, &it.EvidenceURLs, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func baseSelectDisposition() string {
	return `
		SELECT id, lease_id, tenant_id, landlord_id,
			original_amount_cents, total_deductions_cents, refund_amount_cents,
			refund_method, refund_status, refund_destination, refund_reference,
			notes, processed_at, created_at, updated_at, row_version
		FROM deposit_dispositions`
}

func scanDisposition(row pgx.Row) (*models.DepositDisposition, error) {
	var d models.DepositDisposition
	err := row.Scan(
		&d.ID, &d.LeaseID, &d.TenantID, &d.LandlordID,
		&d.OriginalAmountCents, &d.TotalDeductionsCents, &d.RefundAmountCents,
		&d.RefundMethod, &d.RefundStatus, &d.RefundDestination, &d.RefundReference,
		&d.Notes, &d.ProcessedAt, &d.CreatedAt, &d.UpdatedAt, &d.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
