package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NoticeType string

const (
	NoticeType3Day  NoticeType = "3-day"
	NoticeType7Day  NoticeType = "7-day"
	NoticeType30Day NoticeType = "30-day"
)

// Days returns the statutory length of the notice in calendar days.
func (t NoticeType) Days() (int, bool) {
	switch t {
	case NoticeType3Day:
		return 3, true
	case NoticeType7Day:
		return 7, true
	case NoticeType30Day:
		return 30, true
	default:
		return 0, false
	}
}

func (t NoticeType) IsValid() bool {
	_, ok := t.Days()
	return ok
}

type EvictionStatus string

const (
	EvictionStatusServed         EvictionStatus = "served"
	EvictionStatusCurePeriod     EvictionStatus = "cure_period"
	EvictionStatusCured          EvictionStatus = "cured"
	EvictionStatusExpired        EvictionStatus = "expired"
	EvictionStatusFiledWithCourt EvictionStatus = "filed_with_court"
	EvictionStatusCompleted      EvictionStatus = "completed"
)

func (s EvictionStatus) IsValid() bool {
	switch s {
	case EvictionStatusServed, EvictionStatusCurePeriod, EvictionStatusCured,
		EvictionStatusExpired, EvictionStatusFiledWithCourt, EvictionStatusCompleted:
		return true
	}
	return false
}

// NextStatuses is the adjacency list for s. Terminal and unknown states have
// no successors.
func (s EvictionStatus) NextStatuses() []EvictionStatus {
	switch s {
	case EvictionStatusServed:
		return []EvictionStatus{EvictionStatusCurePeriod, EvictionStatusCured, EvictionStatusExpired}
	case EvictionStatusCurePeriod:
		return []EvictionStatus{EvictionStatusCured, EvictionStatusExpired}
	case EvictionStatusExpired:
		return []EvictionStatus{EvictionStatusFiledWithCourt}
	case EvictionStatusFiledWithCourt:
		return []EvictionStatus{EvictionStatusCompleted}
	case EvictionStatusCured, EvictionStatusCompleted:
		return nil
	default:
		return nil
	}
}

func (s EvictionStatus) IsTerminal() bool {
	return s.IsValid() && len(s.NextStatuses()) == 0
}

func (s EvictionStatus) CanTransitionTo(next EvictionStatus) bool {
	for _, n := range s.NextStatuses() {
		if n == next {
			return true
		}
	}
	return false
}

// IsValidStatusTransition is a pure lookup in the transition table.
func IsValidStatusTransition(current, next EvictionStatus) bool {
	return current.CanTransitionTo(next)
}

// CalculateDeadlineDate adds the notice length in calendar days to the serve
// date. The result is a UTC date with no time component.
func CalculateDeadlineDate(serveDate time.Time, noticeType NoticeType) (time.Time, error) {
	days, ok := noticeType.Days()
	if !ok {
		return time.Time{}, fmt.Errorf("unknown notice type %q", noticeType)
	}
	y, m, d := serveDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days), nil
}

type EvictionNotice struct {
	Versioned
	ID              uuid.UUID      `json:"id"`
	LeaseID         uuid.UUID      `json:"lease_id"`
	NoticeType      NoticeType     `json:"notice_type"`
	Status          EvictionStatus `json:"status"`
	ServeDate       time.Time      `json:"serve_date"`
	DeadlineDate    time.Time      `json:"deadline_date"`
	AmountOwedCents *int64         `json:"amount_owed_cents,omitempty"`
	Reason          string         `json:"reason"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
