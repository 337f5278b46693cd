package models

import (
	"time"

	"github.com/google/uuid"
)

type DeductionCategory string

const (
	DeductionCategoryDamages    DeductionCategory = "damages"
	DeductionCategoryUnpaidRent DeductionCategory = "unpaid_rent"
	DeductionCategoryCleaning   DeductionCategory = "cleaning"
	DeductionCategoryRepairs    DeductionCategory = "repairs"
	DeductionCategoryOther      DeductionCategory = "other"
)

func (c DeductionCategory) IsValid() bool {
	switch c {
	case DeductionCategoryDamages, DeductionCategoryUnpaidRent, DeductionCategoryCleaning,
		DeductionCategoryRepairs, DeductionCategoryOther:
		return true
	}
	return false
}

type RefundMethod string

const (
	RefundMethodCheck            RefundMethod = "check"
	RefundMethodBankTransfer     RefundMethod = "bank_transfer"
	RefundMethodStripe           RefundMethod = "stripe"
	RefundMethodCash             RefundMethod = "cash"
	RefundMethodAppliedToBalance RefundMethod = "applied_to_balance"
)

// MovesFunds reports whether the method pays out through the payment processor.
func (m RefundMethod) MovesFunds() bool {
	return m == RefundMethodStripe || m == RefundMethodBankTransfer
}

func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodCheck, RefundMethodBankTransfer, RefundMethodStripe, RefundMethodCash, RefundMethodAppliedToBalance:
		return true
	}
	return false
}

type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusCompleted  RefundStatus = "completed"
)

func (s RefundStatus) rank() int {
	switch s {
	case RefundStatusPending:
		return 0
	case RefundStatusProcessing:
		return 1
	case RefundStatusCompleted:
		return 2
	default:
		return -1
	}
}

func (s RefundStatus) IsValid() bool {
	return s.rank() >= 0
}

// CanAdvanceTo enforces the one-way pending → processing → completed
// progression. Skipping processing is allowed, moving backwards or staying put is not.
func (s RefundStatus) CanAdvanceTo(next RefundStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return next.rank() > s.rank()
}

type DepositDeductionItem struct {
	ID            uuid.UUID         `json:"id"`
	DispositionID uuid.UUID         `json:"disposition_id"`
	Category      DeductionCategory `json:"category"`
	AmountCents   int64             `json:"amount_cents"`
	Description   string            `json:"description"`
	EvidenceURLs  []string          `json:"evidence_urls"`
	CreatedAt     time.Time         `json:"created_at"`
}

type DepositDisposition struct {
	Versioned
	ID                   uuid.UUID              `json:"id"`
	LeaseID              uuid.UUID              `json:"lease_id"`
	TenantID             uuid.UUID              `json:"tenant_id"`
	LandlordID           uuid.UUID              `json:"landlord_id"`
	OriginalAmountCents  int64                  `json:"original_amount_cents"`
	TotalDeductionsCents int64                  `json:"total_deductions_cents"`
	RefundAmountCents    int64                  `json:"refund_amount_cents"`
	RefundMethod         RefundMethod           `json:"refund_method"`
	RefundStatus         RefundStatus           `json:"refund_status"`
	RefundDestination    *string                `json:"refund_destination,omitempty"`
	RefundReference      *string                `json:"refund_reference,omitempty"`
	Notes                *string                `json:"notes,omitempty"`
	ProcessedAt          *time.Time             `json:"processed_at,omitempty"`
	Deductions           []DepositDeductionItem `json:"deductions"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}
