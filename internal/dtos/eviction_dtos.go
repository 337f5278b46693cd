package dtos

import (
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type CreateNoticeRequest struct {
	NoticeType      models.NoticeType `json:"notice_type" validate:"required,oneof=3-day 7-day 30-day"`
	ServeDate       time.Time         `json:"serve_date" validate:"required"`
	AmountOwedCents *int64            `json:"amount_owed_cents,omitempty" validate:"omitempty,gte=0"`
	Reason          string            `json:"reason" validate:"required"`
}

type UpdateNoticeStatusRequest struct {
	Status models.EvictionStatus `json:"status" validate:"required,oneof=served cure_period cured expired filed_with_court completed"`
}

// NoticeResponse flags deadlines that land on a day courts are closed. The
// deadline itself is never moved.
type NoticeResponse struct {
	*models.EvictionNotice
	DeadlineCourtClosed    bool `json:"deadline_court_closed"`
	DeadlineFederalHoliday bool `json:"deadline_federal_holiday"`
}

func NewNoticeResponse(n *models.EvictionNotice) NoticeResponse {
	return NoticeResponse{
		EvictionNotice:         n,
		DeadlineCourtClosed:    utils.IsCourtClosed(n.DeadlineDate),
		DeadlineFederalHoliday: utils.IsUSFedHoliday(n.DeadlineDate),
	}
}

type NoticeListResponse struct {
	Notices []NoticeResponse `json:"notices"`
}

func NewNoticeListResponse(notices []*models.EvictionNotice) NoticeListResponse {
	out := make([]NoticeResponse, 0, len(notices))
	for _, n := range notices {
		out = append(out, NewNoticeResponse(n))
	}
	return NoticeListResponse{Notices: out}
}

type ExpireNoticesResponse struct {
	Expired int `json:"expired"`
}
