package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

type LeaseService struct {
	leases repositories.LeaseRepository
	units  repositories.UnitRepository
	now    func() time.Time
}

func NewLeaseService(leases repositories.LeaseRepository, units repositories.UnitRepository) *LeaseService {
	return &LeaseService{leases: leases, units: units, now: time.Now}
}

func (s *LeaseService) GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	l, err := s.leases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("%w: lease %s", utils.ErrNotFound, id)
	}
	return l, nil
}

// ApproveLease activates a pending lease. A unit may have only one ACTIVE
// lease at a time.
func (s *LeaseService) ApproveLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	l, err := s.GetLease(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status != models.LeaseStatusPending {
		return nil, fmt.Errorf("%w: lease is %s", utils.ErrInvalidStatusTransition, l.Status)
	}
	active, err := s.leases.GetActiveByUnitID(ctx, l.UnitID)
	if err != nil {
		return nil, err
	}
	if active != nil && active.ID != l.ID {
		return nil, fmt.Errorf("%w: unit %s already has lease %s", utils.ErrActiveLeaseExists, l.UnitID, active.ID)
	}

	err = s.leases.UpdateWithRetry(ctx, id, func(cur *models.Lease) error {
		if cur.Status != models.LeaseStatusPending {
			return fmt.Errorf("%w: lease is %s", utils.ErrInvalidStatusTransition, cur.Status)
		}
		cur.Status = models.LeaseStatusActive
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "lease", id)
	}

	if err := s.units.UpdateWithRetry(ctx, l.UnitID, func(u *models.Unit) error {
		u.IsAvailable = false
		return nil
	}); err != nil {
		utils.Logger.WithError(err).Warnf("Lease %s approved but unit %s availability not cleared", id, l.UnitID)
	}
	return s.GetLease(ctx, id)
}

// TerminateLease ends a pending or active lease with a reason. Terminating an
// already terminated lease is an invalid transition.
func (s *LeaseService) TerminateLease(ctx context.Context, id uuid.UUID, reason string) (*models.Lease, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: termination reason is required", utils.ErrValidation)
	}
	err := s.leases.UpdateWithRetry(ctx, id, func(l *models.Lease) error {
		if l.Status == models.LeaseStatusTerminated {
			return fmt.Errorf("%w: lease already terminated", utils.ErrInvalidStatusTransition)
		}
		at := s.now().UTC()
		l.Status = models.LeaseStatusTerminated
		l.TerminationReason = &reason
		l.TerminatedAt = &at
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "lease", id)
	}
	utils.Logger.Infof("Lease %s terminated: %s", id, reason)
	return s.GetLease(ctx, id)
}
