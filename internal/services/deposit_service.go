package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/integrations"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type DeductionInput struct {
	Category     models.DeductionCategory
	AmountCents  int64
	Description  string
	EvidenceURLs []string
}

type CreateDispositionInput struct {
	LeaseID             uuid.UUID
	OriginalAmountCents int64
	Deductions          []DeductionInput
	RefundMethod        models.RefundMethod
	RefundDestination   *string
	Notes               *string
}

// RefundBreakdown is the result of offsetting a deposit against an
// outstanding balance.
type RefundBreakdown struct {
	AvailableCents        int64 `json:"available_cents"`
	AppliedToBalanceCents int64 `json:"applied_to_balance_cents"`
	RefundAmountCents     int64 `json:"refund_amount_cents"`
}

type DepositService struct {
	dispositions repositories.DepositDispositionRepository
	tenants      repositories.TenantRepository
	scope        leaseScopeLoader
	storage      integrations.ObjectStorage
	payments     integrations.RefundTransferer
	email        integrations.EmailSender
	events       integrations.Publisher
	now          func() time.Time
}

// NewDepositService wires the disposition engine. Nil collaborators fall back
// to their no-op implementations.
func NewDepositService(
	dispositions repositories.DepositDispositionRepository,
	leases repositories.LeaseRepository,
	units repositories.UnitRepository,
	props repositories.PropertyRepository,
	tenants repositories.TenantRepository,
	storage integrations.ObjectStorage,
	payments integrations.RefundTransferer,
	email integrations.EmailSender,
	events integrations.Publisher,
) *DepositService {
	if storage == nil {
		storage = integrations.NoopStorage{}
	}
	if payments == nil {
		payments = integrations.NoopTransferer{}
	}
	if email == nil {
		email = integrations.NoopEmailSender{}
	}
	if events == nil {
		events = integrations.EventProducerFallback{}
	}
	return &DepositService{
		dispositions: dispositions,
		tenants:      tenants,
		scope:        leaseScopeLoader{leases: leases, units: units, props: props},
		storage:      storage,
		payments:     payments,
		email:        email,
		events:       events,
		now:          time.Now,
	}
}

// CalculateRefundAfterBalance offsets what is left of a deposit against an
// outstanding balance. Pure; amounts are cents. Deductions above the deposit
// leave nothing available, so the refund never goes negative.
func CalculateRefundAfterBalance(originalDeposit, deductions, outstandingBalance int64, applyToBalance bool) RefundBreakdown {
	available := max(originalDeposit-deductions, 0)
	var applied int64
	if applyToBalance && outstandingBalance > 0 {
		applied = min(available, outstandingBalance)
	}
	return RefundBreakdown{
		AvailableCents:        available,
		AppliedToBalanceCents: applied,
		RefundAmountCents:     available - applied,
	}
}

func (s *DepositService) CreateDisposition(ctx context.Context, in CreateDispositionInput) (*models.DepositDisposition, error) {
	if in.OriginalAmountCents < 0 {
		return nil, fmt.Errorf("%w: original amount must not be negative", utils.ErrValidation)
	}
	if !in.RefundMethod.IsValid() {
		return nil, fmt.Errorf("%w: unknown refund method %q", utils.ErrValidation, in.RefundMethod)
	}

	var total int64
	items := make([]models.DepositDeductionItem, 0, len(in.Deductions))
	for i, d := range in.Deductions {
		if !d.Category.IsValid() {
			return nil, fmt.Errorf("%w: deduction %d: unknown category %q", utils.ErrValidation, i, d.Category)
		}
		if d.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: deduction %d: amount must be positive", utils.ErrValidation, i)
		}
		desc := strings.TrimSpace(d.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: deduction %d: description is required", utils.ErrValidation, i)
		}
		evidence := d.EvidenceURLs
		if evidence == nil {
			evidence = []string{}
		}
		if d.AmountCents > in.OriginalAmountCents-total {
			return nil, fmt.Errorf("%w: deduction %d pushes total past deposit %d", utils.ErrExceedsDeposit, i, in.OriginalAmountCents)
		}
		total += d.AmountCents
		items = append(items, models.DepositDeductionItem{
			ID:           uuid.New(),
			Category:     d.Category,
			AmountCents:  d.AmountCents,
			Description:  desc,
			EvidenceURLs: evidence,
		})
	}

	sc, err := s.scope.load(ctx, in.LeaseID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := &models.DepositDisposition{
		ID:                   uuid.New(),
		LeaseID:              sc.Lease.ID,
		TenantID:             sc.Lease.TenantID,
		LandlordID:           sc.LandlordID,
		OriginalAmountCents:  in.OriginalAmountCents,
		TotalDeductionsCents: total,
		RefundAmountCents:    in.OriginalAmountCents - total,
		RefundMethod:         in.RefundMethod,
		RefundStatus:         models.RefundStatusPending,
		RefundDestination:    in.RefundDestination,
		Notes:                in.Notes,
		Deductions:           items,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for i := range d.Deductions {
		d.Deductions[i].DispositionID = d.ID
		d.Deductions[i].CreatedAt = now
	}
	d.SetRowVersion(1)

	if err := s.dispositions.CreateWithDeductions(ctx, d); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to create deposit disposition for lease %s", in.LeaseID)
		return nil, err
	}

	utils.Logger.WithFields(logrus.Fields{
		"disposition_id": d.ID,
		"lease_id":       d.LeaseID,
		"refund_cents":   d.RefundAmountCents,
	}).Info("Deposit disposition created")

	s.sendDispositionSummary(d)
	s.publish(constants.RoutingKeyDispositionCreated, d)
	return d, nil
}

// UploadEvidence stores a deduction evidence file and returns its URL.
func (s *DepositService) UploadEvidence(ctx context.Context, data []byte, fileName, mimeType string) (*integrations.StoredObject, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", utils.ErrValidation)
	}
	if len(data) > constants.MaxEvidenceUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", utils.ErrValidation, constants.MaxEvidenceUploadBytes)
	}
	obj, err := s.storage.Upload(ctx, data, fileName, integrations.ResourceKindForMime(mimeType))
	if err != nil {
		utils.Logger.WithError(err).Warnf("Evidence upload failed for %q", fileName)
		return nil, fmt.Errorf("%w: %v", utils.ErrUpload, err)
	}
	return obj, nil
}

func (s *DepositService) GetDispositionByID(ctx context.Context, id uuid.UUID) (*models.DepositDisposition, error) {
	d, err := s.dispositions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("%w: disposition %s", utils.ErrNotFound, id)
	}
	return d, nil
}

// GetDispositionsForLease returns the lease's dispositions, newest first.
func (s *DepositService) GetDispositionsForLease(ctx context.Context, leaseID uuid.UUID) ([]*models.DepositDisposition, error) {
	list, err := s.dispositions.ListByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.DepositDisposition{}
	}
	return list, nil
}

// UpdateRefundStatus advances the refund one way through
// pending → processing → completed. processedAt is only stamped on entry
// into completed and defaults to now.
func (s *DepositService) UpdateRefundStatus(
	ctx context.Context,
	id uuid.UUID,
	status models.RefundStatus,
	processedAt *time.Time,
) (*models.DepositDisposition, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown refund status %q", utils.ErrValidation, status)
	}
	err := s.dispositions.UpdateWithRetry(ctx, id, func(d *models.DepositDisposition) error {
		return s.advanceRefund(d, status, processedAt, "")
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "disposition", id)
	}
	return s.GetDispositionByID(ctx, id)
}

// ProcessRefund settles the refund. A zero refund completes immediately.
// Otherwise the disposition moves to processing, the payment collaborator is
// asked to transfer the money when a destination is on file, and the
// disposition completes. A failed transfer leaves it in processing.
func (s *DepositService) ProcessRefund(ctx context.Context, id uuid.UUID) (*models.DepositDisposition, error) {
	d, err := s.GetDispositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.RefundStatus == models.RefundStatusCompleted {
		return nil, fmt.Errorf("%w: refund already completed", utils.ErrInvalidRefundTransition)
	}

	if d.RefundAmountCents <= 0 {
		return s.UpdateRefundStatus(ctx, id, models.RefundStatusCompleted, nil)
	}

	if d.RefundStatus == models.RefundStatusPending {
		if d, err = s.UpdateRefundStatus(ctx, id, models.RefundStatusProcessing, nil); err != nil {
			return nil, err
		}
	}

	var reference string
	if dest := utils.Val(d.RefundDestination); dest != "" && d.RefundMethod.MovesFunds() {
		reference, err = s.payments.Transfer(ctx, d.RefundAmountCents, dest, fmt.Sprintf("%s-deposit-refund", d.ID))
		if err != nil {
			utils.Logger.WithError(err).Errorf("Refund transfer failed for disposition %s", d.ID)
			return nil, fmt.Errorf("%w: refund transfer: %v", utils.ErrExternalServiceFailure, err)
		}
	}

	err = s.dispositions.UpdateWithRetry(ctx, id, func(cur *models.DepositDisposition) error {
		return s.advanceRefund(cur, models.RefundStatusCompleted, nil, reference)
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "disposition", id)
	}

	out, err := s.GetDispositionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(constants.RoutingKeyRefundCompleted, out)
	return out, nil
}

func (s *DepositService) advanceRefund(d *models.DepositDisposition, next models.RefundStatus, processedAt *time.Time, reference string) error {
	if !d.RefundStatus.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidRefundTransition, d.RefundStatus, next)
	}
	d.RefundStatus = next
	if next == models.RefundStatusCompleted {
		at := s.now().UTC()
		if processedAt != nil {
			at = processedAt.UTC()
		}
		d.ProcessedAt = &at
	}
	if reference != "" {
		d.RefundReference = &reference
	}
	return nil
}

func (s *DepositService) sendDispositionSummary(d *models.DepositDisposition) {
	runDetached("deposit summary email", func(ctx context.Context) error {
		tenant, err := s.tenants.GetByID(ctx, d.TenantID)
		if err != nil {
			return err
		}
		if tenant == nil || tenant.Email == "" {
			utils.Logger.Warnf("No tenant email for disposition %s, skipping summary", d.ID)
			return nil
		}
		plain, html := dispositionSummaryBodies(tenant, d)
		return s.email.SendEmail(ctx, integrations.EmailMessage{
			ToName:    tenant.FullName(),
			ToEmail:   tenant.Email,
			Subject:   "Your security deposit disposition",
			PlainText: plain,
			HTML:      html,
		})
	})
}

func (s *DepositService) publish(routingKey string, body any) {
	runDetached("publish "+routingKey, func(ctx context.Context) error {
		return s.events.Publish(ctx, constants.TenancyEventsExchange, routingKey, body)
	})
}

func dispositionSummaryBodies(t *models.Tenant, d *models.DepositDisposition) (string, string) {
	var plain, rows strings.Builder
	fmt.Fprintf(&plain, "Hello %s,\n\nYour security deposit of $%.2f has been reviewed.\n\n", t.FirstName, utils.CentsToDollars(d.OriginalAmountCents))
	for _, it := range d.Deductions {
		fmt.Fprintf(&plain, "- %s: $%.2f (%s)\n", it.Category, utils.CentsToDollars(it.AmountCents), it.Description)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>$%.2f</td></tr>", it.Category, it.Description, utils.CentsToDollars(it.AmountCents))
	}
	fmt.Fprintf(&plain, "\nTotal deductions: $%.2f\nRefund: $%.2f via %s\n",
		utils.CentsToDollars(d.TotalDeductionsCents), utils.CentsToDollars(d.RefundAmountCents), d.RefundMethod)

	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your security deposit of <strong>$%.2f</strong> has been reviewed.</p>
<table>%s</table>
<p>Total deductions: $%.2f<br>Refund: <strong>$%.2f</strong> via %s</p>`,
		t.FirstName, utils.CentsToDollars(d.OriginalAmountCents), rows.String(),
		utils.CentsToDollars(d.TotalDeductionsCents), utils.CentsToDollars(d.RefundAmountCents), d.RefundMethod)
	return plain.String(), html
}
