package services

import (
	"context"
	"testing"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	owner := h.landlord.String()
	stranger := uuid.NewString()

	assert.NoError(t, h.access.AuthorizeLease(ctx, h.lease.ID, owner, constants.RoleLandlord))
	assert.ErrorIs(t, h.access.AuthorizeLease(ctx, h.lease.ID, stranger, constants.RoleLandlord), utils.ErrForbidden)
	assert.ErrorIs(t, h.access.AuthorizeLease(ctx, h.lease.ID, "not-a-uuid", constants.RoleLandlord), utils.ErrForbidden)
	assert.NoError(t, h.access.AuthorizeLease(ctx, h.lease.ID, stranger, constants.RoleAdmin))
	assert.ErrorIs(t, h.access.AuthorizeLease(ctx, uuid.New(), owner, constants.RoleLandlord), utils.ErrNotFound)

	assert.NoError(t, h.access.AuthorizeUnit(ctx, h.unit.ID, owner, constants.RoleLandlord))
	assert.ErrorIs(t, h.access.AuthorizeUnit(ctx, h.unit.ID, stranger, constants.RoleLandlord), utils.ErrForbidden)

	d, err := h.deposits.CreateDisposition(ctx, validDispositionInput(h.lease.ID))
	require.NoError(t, err)
	assert.NoError(t, h.access.AuthorizeDisposition(ctx, d.ID, owner, constants.RoleLandlord))
	assert.ErrorIs(t, h.access.AuthorizeDisposition(ctx, d.ID, stranger, constants.RoleLandlord), utils.ErrForbidden)
	assert.ErrorIs(t, h.access.AuthorizeDisposition(ctx, uuid.New(), owner, constants.RoleLandlord), utils.ErrNotFound)

	n, err := h.evictions.CreateNotice(ctx, noticeInput(h.lease.ID, models.NoticeType3Day, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.NoError(t, h.access.AuthorizeNotice(ctx, n.ID, owner, constants.RoleLandlord))
	assert.ErrorIs(t, h.access.AuthorizeNotice(ctx, n.ID, stranger, constants.RoleLandlord), utils.ErrForbidden)

	c, err := h.turnover.EnsureChecklist(ctx, h.unit.ID, h.lease.ID, false)
	require.NoError(t, err)
	assert.NoError(t, h.access.AuthorizeChecklist(ctx, c.ID, owner, constants.RoleLandlord))
	assert.ErrorIs(t, h.access.AuthorizeChecklist(ctx, c.ID, stranger, constants.RoleLandlord), utils.ErrForbidden)
}
