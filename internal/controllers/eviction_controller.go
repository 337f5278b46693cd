package controllers

import (
	"net/http"
	"time"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type EvictionController struct {
	evictions *services.EvictionService
	access    *services.AccessService
}

func NewEvictionController(es *services.EvictionService, as *services.AccessService) *EvictionController {
	return &EvictionController{evictions: es, access: as}
}

// POST /api/v1/tenancy/leases/{leaseId}/eviction-notices
func (c *EvictionController) CreateNoticeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	var req dtos.CreateNoticeRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	n, err := c.evictions.CreateNotice(ctx, services.CreateNoticeInput{
		LeaseID:         leaseID,
		NoticeType:      req.NoticeType,
		ServeDate:       req.ServeDate,
		AmountOwedCents: req.AmountOwedCents,
		Reason:          req.Reason,
	})
	if err != nil {
		respondServiceError(w, err, "Could not create eviction notice")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewNoticeResponse(n))
}

// GET /api/v1/tenancy/leases/{leaseId}/eviction-notices
func (c *EvictionController) ListNoticesHandler(w http.ResponseWriter, r *http.Request) {
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

	list, err := c.evictions.ListNoticesForLease(ctx, leaseID)
	if err != nil {
		respondServiceError(w, err, "Could not list eviction notices")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewNoticeListResponse(list))
}

// GET /api/v1/tenancy/eviction-notices/{noticeId}
func (c *EvictionController) GetNoticeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "noticeId")
	if !ok {
		return
	}
	if err := c.access.AuthorizeNotice(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize notice")
		return
	}

	n, err := c.evictions.GetNotice(ctx, id)
	if err != nil {
		respondServiceError(w, err, "Could not load eviction notice")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewNoticeResponse(n))
}

// PATCH /api/v1/tenancy/eviction-notices/{noticeId}/status
func (c *EvictionController) UpdateNoticeStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "noticeId")
	if !ok {
		return
	}
	var req dtos.UpdateNoticeStatusRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeNotice(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize notice")
		return
	}

	n, err := c.evictions.UpdateNoticeStatus(ctx, id, req.Status)
	if err != nil {
		respondServiceError(w, err, "Could not update eviction notice")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewNoticeResponse(n))
}

// POST /api/v1/tenancy/eviction-notices/expire (admin)
func (c *EvictionController) ExpireNoticesHandler(w http.ResponseWriter, r *http.Request) {
	expired, err := c.evictions.ExpireOverdueNotices(r.Context(), time.Now())
	if err != nil {
		utils.Logger.WithError(err).Warnf("expire sweep finished with errors after %d notices", expired)
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ExpireNoticesResponse{Expired: expired})
}
