package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TenantHistory is append-only; it summarises one finished tenancy.
type TenantHistory struct {
	ID                   uuid.UUID        `json:"id"`
	TenantID             uuid.UUID        `json:"tenant_id"`
	LeaseID              uuid.UUID        `json:"lease_id"`
	UnitID               uuid.UUID        `json:"unit_id"`
	LandlordID           *uuid.UUID       `json:"landlord_id,omitempty"`
	DepartureID          *uuid.UUID       `json:"departure_id,omitempty"`
	DepositDispositionID *uuid.UUID       `json:"deposit_disposition_id,omitempty"`
	DepartureType        DepartureType    `json:"departure_type"`
	MoveInDate           time.Time        `json:"move_in_date"`
	MoveOutDate          time.Time        `json:"move_out_date"`
	Outcome              string           `json:"outcome"`
	Summary              *json.RawMessage `json:"summary,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
}
