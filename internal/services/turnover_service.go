package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/models"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/repositories"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
	"github.com/google/uuid"
)

// ChecklistPatch holds the flags to change; nil fields are left alone.
type ChecklistPatch struct {
	DepositProcessed  *bool
	KeysCollected     *bool
	UnitInspected     *bool
	CleaningCompleted *bool
	RepairsCompleted  *bool
}

type TurnoverService struct {
	checklists repositories.TurnoverChecklistRepository
	units      repositories.UnitRepository

	// requireComplete gates non-forced availability on a complete checklist.
	requireComplete func() bool
	now             func() time.Time
}

func NewTurnoverService(
	checklists repositories.TurnoverChecklistRepository,
	units repositories.UnitRepository,
	requireComplete func() bool,
) *TurnoverService {
	if requireComplete == nil {
		requireComplete = func() bool { return true }
	}
	return &TurnoverService{
		checklists:      checklists,
		units:           units,
		requireComplete: requireComplete,
		now:             time.Now,
	}
}

// EnsureChecklist returns the lease's checklist, creating it if needed.
// depositProcessed only ever sets the flag, it never clears it.
func (s *TurnoverService) EnsureChecklist(ctx context.Context, unitID, leaseID uuid.UUID, depositProcessed bool) (*models.UnitTurnoverChecklist, error) {
	existing, err := s.checklists.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !depositProcessed || existing.DepositProcessed {
			return existing, nil
		}
		return s.UpdateChecklist(ctx, existing.ID, ChecklistPatch{DepositProcessed: utils.Ptr(true)})
	}

	now := s.now().UTC()
	c := &models.UnitTurnoverChecklist{
		ID:               uuid.New(),
		UnitID:           unitID,
		LeaseID:          leaseID,
		DepositProcessed: depositProcessed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	c.SetRowVersion(1)
	if err := s.checklists.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetChecklist returns the most recent checklist for a unit.
func (s *TurnoverService) GetChecklist(ctx context.Context, unitID uuid.UUID) (*models.UnitTurnoverChecklist, error) {
	c, err := s.checklists.GetLatestByUnitID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: turnover checklist for unit %s", utils.ErrNotFound, unitID)
	}
	return c, nil
}

func (s *TurnoverService) UpdateChecklist(ctx context.Context, id uuid.UUID, patch ChecklistPatch) (*models.UnitTurnoverChecklist, error) {
	var out *models.UnitTurnoverChecklist
	err := s.checklists.UpdateWithRetry(ctx, id, func(c *models.UnitTurnoverChecklist) error {
		applyPatch(c, patch)
		switch {
		case c.IsComplete() && c.CompletedAt == nil:
			at := s.now().UTC()
			c.CompletedAt = &at
		case !c.IsComplete():
			c.CompletedAt = nil
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "turnover checklist", id)
	}
	return out, nil
}

// MarkUnitAvailable re-lists a unit. Unless forced, the unit's latest
// checklist must be complete.
func (s *TurnoverService) MarkUnitAvailable(ctx context.Context, unitID uuid.UUID, force bool) (*models.Unit, error) {
	if !force && s.requireComplete() {
		c, err := s.checklists.GetLatestByUnitID(ctx, unitID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: no checklist for unit %s", utils.ErrChecklistIncomplete, unitID)
		}
		if !c.IsComplete() {
			return nil, fmt.Errorf("%w: missing %s", utils.ErrChecklistIncomplete, strings.Join(c.MissingItems(), ", "))
		}
	}

	var out *models.Unit
	err := s.units.UpdateWithRetry(ctx, unitID, func(u *models.Unit) error {
		u.IsAvailable = true
		out = u
		return nil
	})
	if err != nil {
		return nil, notFoundIfNoRows(err, "unit", unitID)
	}
	if force {
		utils.Logger.Warnf("Unit %s forced available without checklist gate", unitID)
	}
	return out, nil
}

func applyPatch(c *models.UnitTurnoverChecklist, p ChecklistPatch) {
	if p.DepositProcessed != nil {
		c.DepositProcessed = *p.DepositProcessed
	}
	if p.KeysCollected != nil {
		c.KeysCollected = *p.KeysCollected
	}
	if p.UnitInspected != nil {
		c.UnitInspected = *p.UnitInspected
	}
	if p.CleaningCompleted != nil {
		c.CleaningCompleted = *p.CleaningCompleted
	}
	if p.RepairsCompleted != nil {
		c.RepairsCompleted = *p.RepairsCompleted
	}
}
