package dtos

import (
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/google/uuid"
)

type DeductionRequest struct {
	Category     models.DeductionCategory `json:"category" validate:"required,oneof=damages unpaid_rent cleaning repairs other"`
	AmountCents  int64                    `json:"amount_cents" validate:"gt=0"`
	Description  string                   `json:"description" validate:"required"`
	EvidenceURLs []string                 `json:"evidence_urls,omitempty" validate:"omitempty,dive,url"`
}

// CreateDispositionRequest is the body of POST .../deposit-dispositions and
// the optional deposit block of an offboarding request.
type CreateDispositionRequest struct {
	OriginalAmountCents int64               `json:"original_amount_cents" validate:"gte=0"`
	Deductions          []DeductionRequest  `json:"deductions" validate:"omitempty,dive"`
	RefundMethod        models.RefundMethod `json:"refund_method" validate:"required,oneof=check bank_transfer stripe cash applied_to_balance"`
	RefundDestination   *string             `json:"refund_destination,omitempty" validate:"omitempty,min=1"`
	Notes               *string             `json:"notes,omitempty"`
}

func deductionInputs(in []DeductionRequest) []services.DeductionInput {
	out := make([]services.DeductionInput, 0, len(in))
	for _, d := range in {
		out = append(out, services.DeductionInput{
			Category:     d.Category,
			AmountCents:  d.AmountCents,
			Description:  d.Description,
			EvidenceURLs: d.EvidenceURLs,
		})
	}
	return out
}

func (r CreateDispositionRequest) ToInput(leaseID uuid.UUID) services.CreateDispositionInput {
	return services.CreateDispositionInput{
		LeaseID:             leaseID,
		OriginalAmountCents: r.OriginalAmountCents,
		Deductions:          deductionInputs(r.Deductions),
		RefundMethod:        r.RefundMethod,
		RefundDestination:   r.RefundDestination,
		Notes:               r.Notes,
	}
}

func (r CreateDispositionRequest) ToOffboardingDeposit() *services.OffboardingDeposit {
	return &services.OffboardingDeposit{
		OriginalAmountCents: r.OriginalAmountCents,
		Deductions:          deductionInputs(r.Deductions),
		RefundMethod:        r.RefundMethod,
		RefundDestination:   r.RefundDestination,
		Notes:               r.Notes,
	}
}

type UpdateRefundStatusRequest struct {
	RefundStatus models.RefundStatus `json:"refund_status" validate:"required,oneof=pending processing completed"`
	ProcessedAt  *time.Time          `json:"processed_at,omitempty"`
}

type RefundPreviewRequest struct {
	OriginalAmountCents     int64 `json:"original_amount_cents" validate:"gte=0"`
	TotalDeductionsCents    int64 `json:"total_deductions_cents" validate:"gte=0"`
	OutstandingBalanceCents int64 `json:"outstanding_balance_cents" validate:"gte=0"`
	ApplyToBalance          bool  `json:"apply_to_balance"`
}

type EvidenceUploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type DispositionListResponse struct {
	Dispositions []*models.DepositDisposition `json:"dispositions"`
}
