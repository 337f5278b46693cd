package controllers

import (
	"net/http"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type DepartureController struct {
	departures *services.DepartureService
	access     *services.AccessService
}

func NewDepartureController(ds *services.DepartureService, as *services.AccessService) *DepartureController {
	return &DepartureController{departures: ds, access: as}
}

// POST /api/v1/tenancy/leases/{leaseId}/departures
func (c *DepartureController) RecordDepartureHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	var req dtos.RecordDepartureRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	d, err := c.departures.RecordDeparture(ctx, services.RecordDepartureInput{
		LeaseID:          leaseID,
		DepartureType:    req.DepartureType,
		DepartureDate:    req.DepartureDate,
		Notes:            req.Notes,
		EvictionNoticeID: req.EvictionNoticeID,
	})
	if err != nil {
		respondServiceError(w, err, "Could not record departure")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, d)
}

// GET /api/v1/tenancy/leases/{leaseId}/departures
func (c *DepartureController) ListDeparturesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	list, err := c.departures.ListDeparturesForLease(ctx, leaseID)
	if err != nil {
		respondServiceError(w, err, "Could not list departures")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.DepartureListResponse{Departures: list})
}
