package dtos

import (
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/google/uuid"
)

type RecordDepartureRequest struct {
	DepartureType    models.DepartureType `json:"departure_type" validate:"required,oneof=eviction voluntary lease_end mutual_agreement"`
	DepartureDate    time.Time            `json:"departure_date" validate:"required"`
	Notes            *string              `json:"notes,omitempty"`
	EvictionNoticeID *uuid.UUID           `json:"eviction_notice_id,omitempty"`
}

type DepartureListResponse struct {
	Departures []*models.TenantDeparture `json:"departures"`
}
