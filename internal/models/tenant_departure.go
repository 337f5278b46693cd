package models

import (
	"time"

	"github.com/google/uuid"
)

type DepartureType string

const (
	DepartureTypeEviction        DepartureType = "eviction"
	DepartureTypeVoluntary       DepartureType = "voluntary"
	DepartureTypeLeaseEnd        DepartureType = "lease_end"
	DepartureTypeMutualAgreement DepartureType = "mutual_agreement"
)

func (t DepartureType) IsValid() bool {
	switch t {
	case DepartureTypeEviction, DepartureTypeVoluntary, DepartureTypeLeaseEnd, DepartureTypeMutualAgreement:
		return true
	}
	return false
}

// TenantDeparture is an audit record; rows are never updated.
type TenantDeparture struct {
	ID               uuid.UUID     `json:"id"`
	LeaseID          uuid.UUID     `json:"lease_id"`
	DepartureType    DepartureType `json:"departure_type"`
	DepartureDate    time.Time     `json:"departure_date"`
	EvictionNoticeID *uuid.UUID    `json:"eviction_notice_id,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}
