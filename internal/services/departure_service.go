package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

type RecordDepartureInput struct {
	LeaseID          uuid.UUID
	DepartureType    models.DepartureType
	DepartureDate    time.Time
	Notes            *string
	EvictionNoticeID *uuid.UUID
}

type DepartureService struct {
	departures repositories.TenantDepartureRepository
	leases     repositories.LeaseRepository
	notices    repositories.EvictionNoticeRepository
	now        func() time.Time
}

func NewDepartureService(
	departures repositories.TenantDepartureRepository,
	leases repositories.LeaseRepository,
	notices repositories.EvictionNoticeRepository,
) *DepartureService {
	return &DepartureService{departures: departures, leases: leases, notices: notices, now: time.Now}
}

// RecordDeparture writes one immutable departure row. A linked eviction
// notice must belong to the same lease; its status is not checked.
func (s *DepartureService) RecordDeparture(ctx context.Context, in RecordDepartureInput) (*models.TenantDeparture, error) {
	if !in.DepartureType.IsValid() {
		return nil, fmt.Errorf("%w: unknown departure type %q", utils.ErrValidation, in.DepartureType)
	}
	if in.DepartureDate.IsZero() {
		return nil, fmt.Errorf("%w: departure date is required", utils.ErrValidation)
	}

	lease, err := s.leases.GetByID(ctx, in.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("%w: lease %s", utils.ErrNotFound, in.LeaseID)
	}

	if in.EvictionNoticeID != nil {
		n, err := s.notices.GetByID(ctx, *in.EvictionNoticeID)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, fmt.Errorf("%w: eviction notice %s", utils.ErrNotFound, *in.EvictionNoticeID)
		}
		if n.LeaseID != lease.ID {
			return nil, fmt.Errorf("%w: eviction notice %s belongs to another lease", utils.ErrValidation, n.ID)
		}
	}

	d := &models.TenantDeparture{
		ID:               uuid.New(),
		LeaseID:          lease.ID,
		DepartureType:    in.DepartureType,
		DepartureDate:    utils.DateOnly(in.DepartureDate),
		EvictionNoticeID: in.EvictionNoticeID,
		Notes:            in.Notes,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.departures.Create(ctx, d); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record departure for lease %s", lease.ID)
		return nil, err
	}
	return d, nil
}

func (s *DepartureService) ListDeparturesForLease(ctx context.Context, leaseID uuid.UUID) ([]*models.TenantDeparture, error) {
	list, err := s.departures.ListByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.TenantDeparture{}
	}
	return list, nil
}
