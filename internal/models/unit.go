package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit represents a rentable space on a property.
type Unit struct {
	Versioned
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property_id"`
	UnitNumber  string    `json:"unit_number"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
