package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type TurnoverChecklistRepository interface {
	Create(ctx context.Context, c *models.UnitTurnoverChecklist) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UnitTurnoverChecklist, error)
	GetByLeaseID(ctx context.Context, leaseID uuid.UUID) (*models.UnitTurnoverChecklist, error)
	GetLatestByUnitID(ctx context.Context, unitID uuid.UUID) (*models.UnitTurnoverChecklist, error)
	UpdateIfVersion(ctx context.Context, c *models.UnitTurnoverChecklist, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.UnitTurnoverChecklist) error) error
}

type turnoverChecklistRepo struct {
	*versionedRepo[*models.UnitTurnoverChecklist]
	db DB
}

func NewTurnoverChecklistRepository(db DB) TurnoverChecklistRepository {
	r := &turnoverChecklistRepo{db: db}
	r.versionedRepo = newVersionedRepo(db, "turnover checklist", baseSelectChecklist()+" WHERE id=$1", scanChecklist, r.UpdateIfVersion)
	return r
}

func (r *turnoverChecklistRepo) Create(ctx context.Context, c *models.UnitTurnoverChecklist) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO unit_turnover_checklists (
			id, unit_id, lease_id, deposit_processed, keys_collected, unit_inspected,
			cleaning_completed, repairs_completed, completed_at,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, NOW(), NOW(), 1)
	`,
		c.ID, c.UnitID, c.LeaseID, c.DepositProcessed, c.KeysCollected, c.UnitInspected,
		c.CleaningCompleted, c.RepairsCompleted, c.CompletedAt,
	)
	return err
}

func (r *turnoverChecklistRepo) GetByLeaseID(ctx context.Context, leaseID uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	row := r.db.QueryRow(ctx, baseSelectChecklist()+" WHERE lease_id=$1 ORDER BY created_at DESC LIMIT 1", leaseID)
	return scanChecklist(row)
}

func (r *turnoverChecklistRepo) GetLatestByUnitID(ctx context.Context, unitID uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	row := r.db.QueryRow(ctx, baseSelectChecklist()+" WHERE unit_id=$1 ORDER BY created_at DESC LIMIT 1", unitID)
	return scanChecklist(row)
}

func (r *turnoverChecklistRepo) UpdateIfVersion(ctx context.Context, c *models.UnitTurnoverChecklist, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE unit_turnover_checklists SET
			deposit_processed=$1, keys_collected=$2, unit_inspected=$3,
			cleaning_completed=$4, repairs_completed=$5, completed_at=$6,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$7 AND row_version=$8
	`,
		c.DepositProcessed, c.KeysCollected, c.UnitInspected,
		c.CleaningCompleted, c.RepairsCompleted, c.CompletedAt,
		c.ID, expected,
	)
}

func baseSelectChecklist() string {
	return `
		SELECT id, unit_id, lease_id, deposit_processed, keys_collected, unit_inspected,
			cleaning_completed, repairs_completed, completed_at,
			created_at, updated_at, row_version
		FROM unit_turnover_checklists`
}

func scanChecklist(row pgx.Row) (*models.UnitTurnoverChecklist, error) {
	var c models.UnitTurnoverChecklist
	err := row.Scan(
		&c.ID, &c.UnitID, &c.LeaseID, &c.DepositProcessed, &c.KeysCollected, &c.UnitInspected,
		&c.CleaningCompleted, &c.RepairsCompleted, &c.CompletedAt,
		&c.CreatedAt, &c.UpdatedAt, &c.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
