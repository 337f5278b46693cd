package repositories

import (
	"context"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (id, manager_id, property_name, address, created_at)
        VALUES ($1,$2,$3,$4, NOW())
    `, p.ID, p.ManagerID, p.PropertyName, p.Address)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, manager_id, property_name, address, created_at
        FROM properties
        WHERE id=$1
    `, id)

	var p models.Property
	err := row.Scan(&p.ID, &p.ManagerID, &p.PropertyName, &p.Address, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
