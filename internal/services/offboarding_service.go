package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/integrations"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

const (
	StepTerminateLease    = "terminate_lease"
	StepRecordDeparture   = "record_departure"
	StepDepositDisposal   = "deposit_disposition"
	StepTurnoverChecklist = "turnover_checklist"
	StepUnitAvailability  = "unit_availability"
	StepTenantHistory     = "tenant_history"
)

type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

type OffboardingStep struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// OffboardingDeposit carries the disposition to create during offboarding.
type OffboardingDeposit struct {
	OriginalAmountCents int64
	Deductions          []DeductionInput
	RefundMethod        models.RefundMethod
	RefundDestination   *string
	Notes               *string
}

type OffboardingRequest struct {
	LeaseID            uuid.UUID
	DepartureType      models.DepartureType
	DepartureDate      time.Time
	Notes              *string
	EvictionNoticeID   *uuid.UUID
	Deposit            *OffboardingDeposit
	MarkUnitAvailable  bool
	ForceUnitAvailable bool
}

// OffboardingResult reports every step. Steps already committed are never
// undone when a later one fails.
type OffboardingResult struct {
	Outcome              string            `json:"outcome"`
	Success              bool              `json:"success"`
	LeaseTerminated      bool              `json:"lease_terminated"`
	DepartureRecorded    bool              `json:"departure_recorded"`
	DepositDispositionID *uuid.UUID        `json:"deposit_disposition_id,omitempty"`
	TenantHistoryID      *uuid.UUID        `json:"tenant_history_id,omitempty"`
	TurnoverChecklistID  *uuid.UUID        `json:"turnover_checklist_id,omitempty"`
	Steps                []OffboardingStep `json:"steps"`
	Errors               []string          `json:"errors"`
}

func (r *OffboardingResult) succeed(name, detail string) {
	r.Steps = append(r.Steps, OffboardingStep{Name: name, Status: StepSucceeded, Detail: detail})
}

func (r *OffboardingResult) skip(name, detail string) {
	r.Steps = append(r.Steps, OffboardingStep{Name: name, Status: StepSkipped, Detail: detail})
}

func (r *OffboardingResult) fail(name string, err error) {
	r.Steps = append(r.Steps, OffboardingStep{Name: name, Status: StepFailed, Error: err.Error()})
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", name, err))
}

// finalize derives Outcome: SUCCESS with no failures, FAILED when nothing
// succeeded, PARTIAL otherwise.
func (r *OffboardingResult) finalize() {
	var ok, failed int
	for _, st := range r.Steps {
		switch st.Status {
		case StepSucceeded:
			ok++
		case StepFailed:
			failed++
		}
	}
	r.Success = failed == 0
	switch {
	case failed == 0:
		r.Outcome = constants.OffboardingOutcomeSuccess
	case ok == 0:
		r.Outcome = constants.OffboardingOutcomeFailed
	default:
		r.Outcome = constants.OffboardingOutcomePartial
	}
}

type OffboardingService struct {
	leases     *LeaseService
	departures *DepartureService
	deposits   *DepositService
	turnover   *TurnoverService
	history    repositories.TenantHistoryRepository
	scope      leaseScopeLoader
	events     integrations.Publisher
	now        func() time.Time
}

func NewOffboardingService(
	leases *LeaseService,
	departures *DepartureService,
	deposits *DepositService,
	turnover *TurnoverService,
	history repositories.TenantHistoryRepository,
	leaseRepo repositories.LeaseRepository,
	unitRepo repositories.UnitRepository,
	propRepo repositories.PropertyRepository,
	events integrations.Publisher,
) *OffboardingService {
	if events == nil {
		events = integrations.EventProducerFallback{}
	}
	return &OffboardingService{
		leases:     leases,
		departures: departures,
		deposits:   deposits,
		turnover:   turnover,
		history:    history,
		scope:      leaseScopeLoader{leases: leaseRepo, units: unitRepo, props: propRepo},
		events:     events,
		now:        time.Now,
	}
}

// ExecuteOffboarding runs the offboarding steps in order, each committed on
// its own. A failing step is recorded and the rest still run.
func (s *OffboardingService) ExecuteOffboarding(ctx context.Context, req OffboardingRequest) (*OffboardingResult, error) {
	if !req.DepartureType.IsValid() {
		return nil, fmt.Errorf("%w: unknown departure type %q", utils.ErrValidation, req.DepartureType)
	}
	if req.DepartureDate.IsZero() {
		return nil, fmt.Errorf("%w: departure date is required", utils.ErrValidation)
	}
	lease, err := s.leases.GetLease(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	res := &OffboardingResult{Steps: []OffboardingStep{}, Errors: []string{}}
	log := utils.Logger.WithField("lease_id", lease.ID)

	// 1. lease
	if lease.Status == models.LeaseStatusTerminated {
		res.LeaseTerminated = true
		res.skip(StepTerminateLease, "lease already terminated")
	} else if _, err := s.leases.TerminateLease(ctx, lease.ID, terminationReason(req.DepartureType)); err != nil {
		log.WithError(err).Error("Offboarding: lease termination failed")
		res.fail(StepTerminateLease, err)
	} else {
		res.LeaseTerminated = true
		res.succeed(StepTerminateLease, "")
	}

	// 2. departure
	departure, err := s.departures.RecordDeparture(ctx, RecordDepartureInput{
		LeaseID:          lease.ID,
		DepartureType:    req.DepartureType,
		DepartureDate:    req.DepartureDate,
		Notes:            req.Notes,
		EvictionNoticeID: req.EvictionNoticeID,
	})
	if err != nil {
		log.WithError(err).Error("Offboarding: departure not recorded")
		res.fail(StepRecordDeparture, err)
	} else {
		res.DepartureRecorded = true
		res.succeed(StepRecordDeparture, departure.ID.String())
	}

	// 3. deposit
	var disposition *models.DepositDisposition
	if req.Deposit == nil {
		res.skip(StepDepositDisposal, "no deposit handling requested")
	} else {
		disposition, err = s.deposits.CreateDisposition(ctx, CreateDispositionInput{
			LeaseID:             lease.ID,
			OriginalAmountCents: req.Deposit.OriginalAmountCents,
			Deductions:          req.Deposit.Deductions,
			RefundMethod:        req.Deposit.RefundMethod,
			RefundDestination:   req.Deposit.RefundDestination,
			Notes:               req.Deposit.Notes,
		})
		if err != nil {
			log.WithError(err).Error("Offboarding: deposit disposition failed")
			res.fail(StepDepositDisposal, err)
		} else {
			res.DepositDispositionID = &disposition.ID
			res.succeed(StepDepositDisposal, disposition.ID.String())
		}
	}

	// 4. turnover
	checklist, err := s.turnover.EnsureChecklist(ctx, lease.UnitID, lease.ID, disposition != nil)
	if err != nil {
		log.WithError(err).Error("Offboarding: turnover checklist failed")
		res.fail(StepTurnoverChecklist, err)
	} else {
		res.TurnoverChecklistID = &checklist.ID
		res.succeed(StepTurnoverChecklist, checklist.ID.String())
	}
	if !req.MarkUnitAvailable {
		res.skip(StepUnitAvailability, "not requested")
	} else if _, err := s.turnover.MarkUnitAvailable(ctx, lease.UnitID, req.ForceUnitAvailable); err != nil {
		log.WithError(err).Warn("Offboarding: unit not marked available")
		res.fail(StepUnitAvailability, err)
	} else {
		res.succeed(StepUnitAvailability, "")
	}

	// 5. history
	if h, err := s.appendHistory(ctx, lease, req, departure, disposition, res); err != nil {
		log.WithError(err).Error("Offboarding: tenant history not written")
		res.fail(StepTenantHistory, err)
	} else {
		res.TenantHistoryID = &h.ID
		res.succeed(StepTenantHistory, h.ID.String())
	}

	res.finalize()
	log.WithField("outcome", res.Outcome).Infof("Offboarding finished with %d error(s)", len(res.Errors))

	runDetached("publish "+constants.RoutingKeyOffboardingCompleted, func(ctx context.Context) error {
		return s.events.Publish(ctx, constants.TenancyEventsExchange, constants.RoutingKeyOffboardingCompleted, map[string]any{
			"lease_id": lease.ID,
			"result":   res,
		})
	})
	return res, nil
}

func (s *OffboardingService) appendHistory(
	ctx context.Context,
	lease *models.Lease,
	req OffboardingRequest,
	departure *models.TenantDeparture,
	disposition *models.DepositDisposition,
	res *OffboardingResult,
) (*models.TenantHistory, error) {
	// The outcome recorded is the one known before this step runs.
	snapshot := *res
	snapshot.Steps = append([]OffboardingStep(nil), res.Steps...)
	snapshot.finalize()

	summary, err := json.Marshal(map[string]any{
		"steps":  snapshot.Steps,
		"errors": snapshot.Errors,
	})
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(summary)

	h := &models.TenantHistory{
		ID:            uuid.New(),
		TenantID:      lease.TenantID,
		LeaseID:       lease.ID,
		UnitID:        lease.UnitID,
		DepartureType: req.DepartureType,
		MoveInDate:    lease.StartDate,
		MoveOutDate:   utils.DateOnly(req.DepartureDate),
		Outcome:       snapshot.Outcome,
		Summary:       &raw,
		CreatedAt:     s.now().UTC(),
	}
	if sc, err := s.scope.load(ctx, lease.ID); err == nil {
		h.LandlordID = &sc.LandlordID
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}
	if departure != nil {
		h.DepartureID = &departure.ID
	}
	if disposition != nil {
		h.DepositDispositionID = &disposition.ID
	}

	if err := s.history.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func terminationReason(t models.DepartureType) string {
	switch t {
	case models.DepartureTypeEviction:
		return "Tenant evicted"
	case models.DepartureTypeVoluntary:
		return "Tenant moved out voluntarily"
	case models.DepartureTypeLeaseEnd:
		return "Lease term ended"
	case models.DepartureTypeMutualAgreement:
		return "Terminated by mutual agreement"
	default:
		return "Tenant departed"
	}
}

func (s *OffboardingService) ListTenantHistory(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantHistory, error) {
	list, err := s.history.ListByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.TenantHistory{}
	}
	return list, nil
}
