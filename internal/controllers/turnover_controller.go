package controllers

import (
	"net/http"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type TurnoverController struct {
	turnover *services.TurnoverService
	access   *services.AccessService
}

func NewTurnoverController(ts *services.TurnoverService, as *services.AccessService) *TurnoverController {
	return &TurnoverController{turnover: ts, access: as}
}

// GET /api/v1/tenancy/units/{unitId}/turnover-checklist
func (c *TurnoverController) GetChecklistHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	unitID, ok := pathUUID(w, r, "unitId")
	if !ok {
		return
	}
	if err := c.access.AuthorizeUnit(ctx, unitID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize unit")
		return
	}

	cl, err := c.turnover.GetChecklist(ctx, unitID)
	if err != nil {
		respondServiceError(w, err, "Could not load turnover checklist")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cl)
}

// PATCH /api/v1/tenancy/turnover-checklists/{checklistId}
func (c *TurnoverController) UpdateChecklistHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "checklistId")
	if !ok {
		return
	}
	var req dtos.UpdateChecklistRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeChecklist(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize checklist")
		return
	}

	cl, err := c.turnover.UpdateChecklist(ctx, id, services.ChecklistPatch{
		DepositProcessed:  req.DepositProcessed,
		KeysCollected:     req.KeysCollected,
		UnitInspected:     req.UnitInspected,
		CleaningCompleted: req.CleaningCompleted,
		RepairsCompleted:  req.RepairsCompleted,
	})
	if err != nil {
		respondServiceError(w, err, "Could not update turnover checklist")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cl)
}

// POST /api/v1/tenancy/units/{unitId}/availability
func (c *TurnoverController) MarkUnitAvailableHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	unitID, ok := pathUUID(w, r, "unitId")
	if !ok {
		return
	}
	var req dtos.UnitAvailabilityRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if req.Force && who.Role != constants.RoleAdmin {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Only admins may force unit availability", nil, nil)
		return
	}
	if err := c.access.AuthorizeUnit(ctx, unitID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize unit")
		return
	}

	unit, err := c.turnover.MarkUnitAvailable(ctx, unitID, req.Force)
	if err != nil {
		respondServiceError(w, err, "Could not mark unit available")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, unit)
}
