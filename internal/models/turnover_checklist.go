package models

import (
	"time"

	"github.com/google/uuid"
)

// UnitTurnoverChecklist gates re-listing a vacated unit.
type UnitTurnoverChecklist struct {
	Versioned
	ID                uuid.UUID  `json:"id"`
	UnitID            uuid.UUID  `json:"unit_id"`
	LeaseID           uuid.UUID  `json:"lease_id"`
	DepositProcessed  bool       `json:"deposit_processed"`
	KeysCollected     bool       `json:"keys_collected"`
	UnitInspected     bool       `json:"unit_inspected"`
	CleaningCompleted bool       `json:"cleaning_completed"`
	RepairsCompleted  bool       `json:"repairs_completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (c *UnitTurnoverChecklist) IsComplete() bool {
	return c.DepositProcessed &&
		c.KeysCollected &&
		c.UnitInspected &&
		c.CleaningCompleted &&
		c.RepairsCompleted
}

// MissingItems lists the flags still false, in checklist order.
func (c *UnitTurnoverChecklist) MissingItems() []string {
	var out []string
	if !c.DepositProcessed {
		out = append(out, "deposit_processed")
	}
	if !c.KeysCollected {
		out = append(out, "keys_collected")
	}
	if !c.UnitInspected {
		out = append(out, "unit_inspected")
	}
	if !c.CleaningCompleted {
		out = append(out, "cleaning_completed")
	}
	if !c.RepairsCompleted {
		out = append(out, "repairs_completed")
	}
	return out
}
