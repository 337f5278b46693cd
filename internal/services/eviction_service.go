package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/integrations"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

type CreateNoticeInput struct {
	LeaseID         uuid.UUID
	NoticeType      models.NoticeType
	ServeDate       time.Time
	AmountOwedCents *int64
	Reason          string
}

type EvictionService struct {
	notices repositories.EvictionNoticeRepository
	leases  repositories.LeaseRepository
	tenants repositories.TenantRepository
	sms     integrations.SMSSender
	events  integrations.Publisher
	now     func() time.Time
}

func NewEvictionService(
	notices repositories.EvictionNoticeRepository,
	leases repositories.LeaseRepository,
	tenants repositories.TenantRepository,
	sms integrations.SMSSender,
	events integrations.Publisher,
) *EvictionService {
	if sms == nil {
		sms = integrations.NoopSMSSender{}
	}
	if events == nil {
		events = integrations.EventProducerFallback{}
	}
	return &EvictionService{
		notices: notices,
		leases:  leases,
		tenants: tenants,
		sms:     sms,
		events:  events,
		now:     time.Now,
	}
}

func (s *EvictionService) CreateNotice(ctx context.Context, in CreateNoticeInput) (*models.EvictionNotice, error) {
	if in.ServeDate.IsZero() {
		return nil, fmt.Errorf("%w: serve date is required", utils.ErrValidation)
	}
	deadline, err := models.CalculateDeadlineDate(in.ServeDate, in.NoticeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	if in.AmountOwedCents != nil && *in.AmountOwedCents < 0 {
		return nil, fmt.Errorf("%w: amount owed must not be negative", utils.ErrValidation)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", utils.ErrValidation)
	}

	lease, err := s.leases.GetByID(ctx, in.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("%w: lease %s", utils.ErrNotFound, in.LeaseID)
	}
	if lease.Status != models.LeaseStatusActive {
		return nil, fmt.Errorf("%w: lease %s is %s", utils.ErrLeaseNotActive, lease.ID, lease.Status)
	}

	now := s.now().UTC()
	n := &models.EvictionNotice{
		ID:              uuid.New(),
		LeaseID:         lease.ID,
		NoticeType:      in.NoticeType,
		Status:          models.EvictionStatusServed,
		ServeDate:       utils.DateOnly(in.ServeDate),
		DeadlineDate:    deadline,
		AmountOwedCents: in.AmountOwedCents,
		Reason:          reason,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	n.SetRowVersion(1)

	if err := s.notices.Create(ctx, n); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to create eviction notice for lease %s", lease.ID)
		return nil, err
	}
	utils.Logger.Infof("Eviction notice %s (%s) served on lease %s, deadline %s",
		n.ID, n.NoticeType, n.LeaseID, n.DeadlineDate.Format("2006-01-02"))

	s.notifyTenant(lease.TenantID, n)
	s.publish(constants.RoutingKeyNoticeServed, n)
	return n, nil
}

func (s *EvictionService) GetNotice(ctx context.Context, id uuid.UUID) (*models.EvictionNotice, error) {
	n, err := s.notices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: eviction notice %s", utils.ErrNotFound, id)
	}
	return n, nil
}

func (s *EvictionService) ListNoticesForLease(ctx context.Context, leaseID uuid.UUID) ([]*models.EvictionNotice, error) {
	list, err := s.notices.ListByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.EvictionNotice{}
	}
	return list, nil
}

// UpdateNoticeStatus moves a notice along the transition table. Disallowed
// moves are rejected before anything is written.
func (s *EvictionService) UpdateNoticeStatus(ctx context.Context, id uuid.UUID, next models.EvictionStatus) (*models.EvictionNotice, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown eviction status %q", utils.ErrValidation, next)
	}
	var from models.EvictionStatus
	err := s.notices.UpdateWithRetry(ctx, id, func(n *models.EvictionNotice) error {
		if !models.IsValidStatusTransition(n.Status, next) {
			return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidStatusTransition, n.Status, next)
		}
		from = n.Status
		n.Status = next
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "eviction notice", id)
	}

	n, err := s.GetNotice(ctx, id)
	if err != nil {
		return nil, err
	}
	utils.Logger.Infof("Eviction notice %s moved %s -> %s", id, from, next)
	s.publish(constants.RoutingKeyNoticeStatusChanged, map[string]any{
		"notice_id": id,
		"lease_id":  n.LeaseID,
		"from":      from,
		"to":        next,
	})
	return n, nil
}

// ExpireOverdueNotices moves every open notice whose deadline is before the
// calendar day of now to expired. It returns how many notices were expired;
// per-notice failures are collected and do not stop the sweep.
func (s *EvictionService) ExpireOverdueNotices(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.notices.ListOverdue(ctx, utils.DateOnly(now))
	if err != nil {
		return 0, err
	}

	var (
		expired int
		errs    []error
	)
	for _, n := range overdue {
		changed := false
		err := s.notices.UpdateWithRetry(ctx, n.ID, func(cur *models.EvictionNotice) error {
			// Another writer may have cured or expired it since the listing.
			if !cur.Status.CanTransitionTo(models.EvictionStatusExpired) {
				return errSkipUpdate
			}
			cur.Status = models.EvictionStatusExpired
			changed = true
			return nil
		})
		if errors.Is(err, errSkipUpdate) {
			continue
		}
		if err != nil {
			utils.Logger.WithError(err).Errorf("Failed to expire eviction notice %s", n.ID)
			errs = append(errs, fmt.Errorf("notice %s: %w", n.ID, err))
			continue
		}
		if changed {
			expired++
			s.publish(constants.RoutingKeyNoticeStatusChanged, map[string]any{
				"notice_id": n.ID,
				"lease_id":  n.LeaseID,
				"from":      n.Status,
				"to":        models.EvictionStatusExpired,
			})
		}
	}
	if expired > 0 {
		utils.Logger.Infof("Expired %d overdue eviction notice(s)", expired)
	}
	return expired, errors.Join(errs...)
}

var errSkipUpdate = errors.New("skip update")

func (s *EvictionService) notifyTenant(tenantID uuid.UUID, n *models.EvictionNotice) {
	runDetached("eviction notice sms", func(ctx context.Context) error {
		tenant, err := s.tenants.GetByID(ctx, tenantID)
		if err != nil {
			return err
		}
		if tenant == nil || utils.Val(tenant.PhoneNumber) == "" {
			return nil
		}
		body := fmt.Sprintf(
			"A %s notice was served on %s regarding your lease. Deadline: %s. Reason: %s",
			n.NoticeType, n.ServeDate.Format("Jan 2, 2006"), n.DeadlineDate.Format("Jan 2, 2006"), n.Reason,
		)
		return s.sms.SendSMS(ctx, *tenant.PhoneNumber, body)
	})
}

func (s *EvictionService) publish(routingKey string, body any) {
	runDetached("publish "+routingKey, func(ctx context.Context) error {
		return s.events.Publish(ctx, constants.TenancyEventsExchange, routingKey, body)
	})
}
