package controllers

import (
	"net/http"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type LeaseController struct {
	leases *services.LeaseService
	access *services.AccessService
}

func NewLeaseController(ls *services.LeaseService, as *services.AccessService) *LeaseController {
	return &LeaseController{leases: ls, access: as}
}

// POST /api/v1/tenancy/leases/{leaseId}/approve (admin)
func (c *LeaseController) ApproveLeaseHandler(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	lease, err := c.leases.ApproveLease(r.Context(), leaseID)
	if err != nil {
		respondServiceError(w, err, "Could not approve lease")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, lease)
}

// POST /api/v1/tenancy/leases/{leaseId}/terminate
func (c *LeaseController) TerminateLeaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	var req dtos.TerminateLeaseRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	lease, err := c.leases.TerminateLease(ctx, leaseID, req.Reason)
	if err != nil {
		respondServiceError(w, err, "Could not terminate lease")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, lease)
}
