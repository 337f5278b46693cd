package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

// runDetached executes fn in the background with its own timeout. Failures
// are logged only.
func runDetached(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.SideEffectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			utils.Logger.WithError(err).Warnf("%s failed", name)
		}
	}()
}

// notFoundIfNoRows converts the sentinel WithRetry returns for a missing row.
func notFoundIfNoRows(err error, what string, id uuid.UUID) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", utils.ErrNotFound, what, id)
	}
	return err
}

// leaseScope is a lease plus the unit/property chain that ties it to a landlord.
type leaseScope struct {
	Lease      *models.Lease
	Unit       *models.Unit
	Property   *models.Property
	LandlordID uuid.UUID
}

type leaseScopeLoader struct {
	leases repositories.LeaseRepository
	units  repositories.UnitRepository
	props  repositories.PropertyRepository
}

func (l leaseScopeLoader) load(ctx context.Context, leaseID uuid.UUID) (*leaseScope, error) {
	lease, err := l.leases.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("%w: lease %s", utils.ErrNotFound, leaseID)
	}
	unit, err := l.units.GetByID(ctx, lease.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: unit for lease %s", utils.ErrNotFound, leaseID)
	}
	prop, err := l.props.GetByID(ctx, unit.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil || prop.ManagerID == nil {
		return nil, fmt.Errorf("%w: landlord for lease %s", utils.ErrNotFound, leaseID)
	}
	return &leaseScope{Lease: lease, Unit: unit, Property: prop, LandlordID: *prop.ManagerID}, nil
}
