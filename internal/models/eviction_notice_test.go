package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEvictionStatuses = []EvictionStatus{
	EvictionStatusServed,
	EvictionStatusCurePeriod,
	EvictionStatusCured,
	EvictionStatusExpired,
	EvictionStatusFiledWithCourt,
	EvictionStatusCompleted,
}

func TestIsValidStatusTransition_Table(t *testing.T) {
	allowed := map[EvictionStatus][]EvictionStatus{
		EvictionStatusServed:         {EvictionStatusCurePeriod, EvictionStatusCured, EvictionStatusExpired},
		EvictionStatusCurePeriod:     {EvictionStatusCured, EvictionStatusExpired},
		EvictionStatusExpired:        {EvictionStatusFiledWithCourt},
		EvictionStatusFiledWithCourt: {EvictionStatusCompleted},
	}

	for _, from := range allEvictionStatuses {
		for _, to := range allEvictionStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equalf(t, want, IsValidStatusTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsValidStatusTransition_Examples(t *testing.T) {
	assert.True(t, IsValidStatusTransition(EvictionStatusServed, EvictionStatusCurePeriod))
	assert.False(t, IsValidStatusTransition(EvictionStatusCompleted, EvictionStatusServed))
	assert.False(t, IsValidStatusTransition(EvictionStatus("bogus"), EvictionStatusServed))
}

func TestEvictionStatus_Terminal(t *testing.T) {
	assert.True(t, EvictionStatusCured.IsTerminal())
	assert.True(t, EvictionStatusCompleted.IsTerminal())
	assert.False(t, EvictionStatusServed.IsTerminal())
	assert.False(t, EvictionStatus("bogus").IsTerminal())
}

func TestCalculateDeadlineDate(t *testing.T) {
	serve := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := CalculateDeadlineDate(serve, NoticeType7Day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), got)

	got, err = CalculateDeadlineDate(serve, NoticeType3Day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), got)

	got, err = CalculateDeadlineDate(serve, NoticeType30Day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), got)
}

func TestCalculateDeadlineDate_DropsTimeOfDayAndCrossesMonths(t *testing.T) {
	serve := time.Date(2024, 2, 27, 17, 45, 0, 0, time.UTC)
	got, err := CalculateDeadlineDate(serve, NoticeType3Day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestCalculateDeadlineDate_UnknownType(t *testing.T) {
	_, err := CalculateDeadlineDate(time.Now(), NoticeType("14-day"))
	require.Error(t, err)
}
