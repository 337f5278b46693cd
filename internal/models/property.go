package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is the root of the ownership chain; ManagerID is the landlord.
type Property struct {
	ID           uuid.UUID  `json:"id"`
	ManagerID    *uuid.UUID `json:"manager_id,omitempty"`
	PropertyName string     `json:"property_name"`
	Address      string     `json:"address"`
	CreatedAt    time.Time  `json:"created_at"`
}
