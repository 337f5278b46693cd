package controllers

import (
	"net/http"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type OffboardingController struct {
	offboarding *services.OffboardingService
	access      *services.AccessService
}

func NewOffboardingController(obs *services.OffboardingService, as *services.AccessService) *OffboardingController {
	return &OffboardingController{offboarding: obs, access: as}
}

// POST /api/v1/tenancy/leases/{leaseId}/offboarding
//
// Responds 200 for SUCCESS and 207 when some steps failed; the body always
// carries the per-step result.
func (c *OffboardingController) ExecuteOffboardingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	var req dtos.OffboardingRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if req.ForceUnitAvailable && who.Role != constants.RoleAdmin {
		utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Only admins may force unit availability", nil, nil)
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	in := services.OffboardingRequest{
		LeaseID:            leaseID,
		DepartureType:      req.DepartureType,
		DepartureDate:      req.DepartureDate,
		Notes:              req.Notes,
		EvictionNoticeID:   req.EvictionNoticeID,
		MarkUnitAvailable:  req.MarkUnitAvailable,
		ForceUnitAvailable: req.ForceUnitAvailable,
	}
	if req.Deposit != nil {
		in.Deposit = req.Deposit.ToOffboardingDeposit()
	}

	res, err := c.offboarding.ExecuteOffboarding(ctx, in)
	if err != nil {
		respondServiceError(w, err, "Could not offboard tenant")
		return
	}

	status := http.StatusOK
	if !res.Success {
		status = http.StatusMultiStatus
	}
	utils.RespondWithJSON(w, status, res)
}

// GET /api/v1/tenancy/tenants/{tenantId}/history (admin)
func (c *OffboardingController) TenantHistoryHandler(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantId")
	if !ok {
		return
	}
	list, err := c.offboarding.ListTenantHistory(r.Context(), tenantID)
	if err != nil {
		respondServiceError(w, err, "Could not load tenant history")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.TenantHistoryResponse{History: list})
}
