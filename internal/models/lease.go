package models

import (
	"time"

	"github.com/google/uuid"
)

type LeaseStatusType string

const (
	LeaseStatusPending    LeaseStatusType = "PENDING"
	LeaseStatusActive     LeaseStatusType = "ACTIVE"
	LeaseStatusTerminated LeaseStatusType = "TERMINATED"
)

type Lease struct {
	Versioned
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	UnitID            uuid.UUID       `json:"unit_id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	RentAmountCents   int64           `json:"rent_amount_cents"`
	Status            LeaseStatusType `json:"status"`
	TerminationReason *string         `json:"termination_reason,omitempty"`
	TerminatedAt      *time.Time      `json:"terminated_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
