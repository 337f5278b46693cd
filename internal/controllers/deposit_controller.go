package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/coffeevibes888/rentflowhq-sub016/internal/constants"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/dtos"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/services"
	"github.com/coffeevibes888/rentflowhq-sub016/internal/utils"
)

type DepositController struct {
	deposits *services.DepositService
	access   *services.AccessService
}

func NewDepositController(ds *services.DepositService, as *services.AccessService) *DepositController {
	return &DepositController{deposits: ds, access: as}
}

// POST /api/v1/tenancy/leases/{leaseId}/deposit-dispositions
func (c *DepositController) CreateDispositionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	leaseID, ok := pathUUID(w, r, "leaseId")
	if !ok {
		return
	}
	var req dtos.CreateDispositionRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeLease(ctx, leaseID, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize lease")
		return
	}

	d, err := c.deposits.CreateDisposition(ctx, req.ToInput(leaseID))
	if err != nil {
		respondServiceError(w, err, "Could not create deposit disposition")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, d)
}

// GET /api/v1/tenancy/leases/{leaseId}/deposit-dispositions
func (c *DepositController) ListDispositionsHandler(w http.ResponseWriter, r *http.Request) {
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

	list, err := c.deposits.GetDispositionsForLease(ctx, leaseID)
	if err != nil {
		respondServiceError(w, err, "Could not list deposit dispositions")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.DispositionListResponse{Dispositions: list})
}

// GET /api/v1/tenancy/deposit-dispositions/{dispositionId}
func (c *DepositController) GetDispositionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "dispositionId")
	if !ok {
		return
	}
	if err := c.access.AuthorizeDisposition(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize disposition")
		return
	}

	d, err := c.deposits.GetDispositionByID(ctx, id)
	if err != nil {
		respondServiceError(w, err, "Could not load deposit disposition")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, d)
}

// PATCH /api/v1/tenancy/deposit-dispositions/{dispositionId}/refund-status
func (c *DepositController) UpdateRefundStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "dispositionId")
	if !ok {
		return
	}
	var req dtos.UpdateRefundStatusRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if err := c.access.AuthorizeDisposition(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize disposition")
		return
	}

	d, err := c.deposits.UpdateRefundStatus(ctx, id, req.RefundStatus, req.ProcessedAt)
	if err != nil {
		respondServiceError(w, err, "Could not update refund status")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, d)
}

// POST /api/v1/tenancy/deposit-dispositions/{dispositionId}/process-refund
func (c *DepositController) ProcessRefundHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, ok := callerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "dispositionId")
	if !ok {
		return
	}
	if err := c.access.AuthorizeDisposition(ctx, id, who.UserID, who.Role); err != nil {
		respondServiceError(w, err, "Could not authorize disposition")
		return
	}

	d, err := c.deposits.ProcessRefund(ctx, id)
	if err != nil {
		respondServiceError(w, err, "Could not process refund")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, d)
}

// POST /api/v1/tenancy/deposit-evidence (multipart, field "file")
func (c *DepositController) UploadEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := callerFromRequest(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxEvidenceUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.RespondErrorWithCode(w, http.StatusRequestEntityTooLarge, utils.ErrCodeInvalidPayload, "File too large", nil, err)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Missing file field", nil, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxEvidenceUploadBytes+1))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Could not read file", nil, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	obj, err := c.deposits.UploadEvidence(ctx, data, header.Filename, mimeType)
	if err != nil {
		respondServiceError(w, err, "Could not upload evidence")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.EvidenceUploadResponse{URL: obj.URL, PublicID: obj.PublicID})
}

// POST /api/v1/tenancy/deposit-refund-preview
func (c *DepositController) RefundPreviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := callerFromRequest(w, r); !ok {
		return
	}
	var req dtos.RefundPreviewRequest
	if !decodeAndValidate(ctx, w, r, &req) {
		return
	}
	if req.TotalDeductionsCents > req.OriginalAmountCents {
		respondServiceError(w, utils.ErrExceedsDeposit, "Deductions exceed the original deposit")
		return
	}

	out := services.CalculateRefundAfterBalance(
		req.OriginalAmountCents,
		req.TotalDeductionsCents,
		req.OutstandingBalanceCents,
		req.ApplyToBalance,
	)
	utils.RespondWithJSON(w, http.StatusOK, out)
}
