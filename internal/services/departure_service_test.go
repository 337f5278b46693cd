package services

import (
	"context"
	"testing"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDeparture(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	d, err := h.departures.RecordDeparture(ctx, RecordDepartureInput{
		LeaseID:       h.lease.ID,
		DepartureType: models.DepartureTypeVoluntary,
		DepartureDate: time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC),
		Notes:         utils.Ptr("Keys left with super"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), d.DepartureDate)

	list, err := h.departures.ListDeparturesForLease(ctx, h.lease.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)
}

func TestRecordDeparture_EvictionNoticeMustBelongToLease(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	n, err := h.evictions.CreateNotice(ctx, noticeInput(h.lease.ID, models.NoticeType3Day, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// status is deliberately not checked: a served notice is accepted
	d, err := h.departures.RecordDeparture(ctx, RecordDepartureInput{
		LeaseID:          h.lease.ID,
		DepartureType:    models.DepartureTypeEviction,
		DepartureDate:    fixedNow,
		EvictionNoticeID: &n.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, n.ID, *d.EvictionNoticeID)

	other := models.Lease{ID: uuid.New(), TenantID: h.tenant.ID, UnitID: h.unit.ID, Status: models.LeaseStatusTerminated}
	h.store.leases[other.ID] = other
	_, err = h.departures.RecordDeparture(ctx, RecordDepartureInput{
		LeaseID:          other.ID,
		DepartureType:    models.DepartureTypeEviction,
		DepartureDate:    fixedNow,
		EvictionNoticeID: &n.ID,
	})
	require.ErrorIs(t, err, utils.ErrValidation)

	_, err = h.departures.RecordDeparture(ctx, RecordDepartureInput{
		LeaseID:          h.lease.ID,
		DepartureType:    models.DepartureTypeEviction,
		DepartureDate:    fixedNow,
		EvictionNoticeID: utils.Ptr(uuid.New()),
	})
	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestRecordDeparture_Validation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.departures.RecordDeparture(ctx, RecordDepartureInput{LeaseID: h.lease.ID, DepartureType: "abandoned", DepartureDate: fixedNow})
	require.ErrorIs(t, err, utils.ErrValidation)

	_, err = h.departures.RecordDeparture(ctx, RecordDepartureInput{LeaseID: h.lease.ID, DepartureType: models.DepartureTypeLeaseEnd})
	require.ErrorIs(t, err, utils.ErrValidation)

	_, err = h.departures.RecordDeparture(ctx, RecordDepartureInput{LeaseID: uuid.New(), DepartureType: models.DepartureTypeLeaseEnd, DepartureDate: fixedNow})
	require.ErrorIs(t, err, utils.ErrNotFound)

	assert.Empty(t, h.store.departures)
}
