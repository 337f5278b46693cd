package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type TenantRepository interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type tenantRepo struct {
	db DB
}

func NewTenantRepository(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, t *models.Tenant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tenants (id, first_name, last_name, email, phone_number, created_at)
		VALUES ($1,$2,$3,$4,$5, NOW())
	`, t.ID, t.FirstName, t.LastName, t.Email, t.PhoneNumber)
	return err
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone_number, created_at
		FROM tenants WHERE id=$1
	`, id)

	var t models.Tenant
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &t.PhoneNumber, &t.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
