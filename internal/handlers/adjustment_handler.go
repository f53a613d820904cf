package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/dto"
	"github.com/limistah/bank-reconciliation/internal/usecases"
)

type AdjustmentHandler struct {
	adjustmentUseCase usecases.AdjustmentUseCase
}

func NewAdjustmentHandler(adjustmentUseCase usecases.AdjustmentUseCase) *AdjustmentHandler {
	return &AdjustmentHandler{
		adjustmentUseCase: adjustmentUseCase,
	}
}

// PreviewAdjustments godoc
//
//	@Summary		Preview bank adjustments
//	@Description	Classifies pending movements (commissions, interest, bank notes) and proposes balanced entries. Nothing is written.
//	@Tags			adjustments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.AdjustmentPreviewRequest	true	"Bank account and optional period"
//	@Success		200		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Router			/adjustments/preview [post]
func (h *AdjustmentHandler) PreviewAdjustments(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}

	var req dto.AdjustmentPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	period, err := dateRange(req.From, req.To)
	if err != nil {
		respondBadRequest(c, "Invalid period", err)
		return
	}

	preview, err := h.adjustmentUseCase.Preview(actor, req.BankAccountID, period)
	if err != nil {
		respondError(c, "Failed to preview adjustments", err)
		return
	}
	respondOK(c, http.StatusOK, "Adjustments proposed", preview)
}

// ApplyAdjustments godoc
//
//	@Summary		Book bank adjustments
//	@Description	Each movement is booked on its own; the response lists the outcome per movement
//	@Tags			adjustments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.ApplyAdjustmentsRequest	true	"Bank movements"
//	@Success		200		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		403		{object}	dto.ErrorResponse
//	@Router			/adjustments/apply [post]
func (h *AdjustmentHandler) ApplyAdjustments(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}

	var req dto.ApplyAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	result, err := h.adjustmentUseCase.Apply(actor, req.BankMovementIDs, req.Notes)
	if err != nil {
		respondError(c, "Failed to apply adjustments", err)
		return
	}

	message := "Adjustments applied"
	if result.Failed > 0 {
		message = "Some adjustments could not be applied"
	}
	respondOK(c, http.StatusOK, message, result)
}

// GetAccountingConfig godoc
//
//	@Summary	Get the adjustment accounts of a bank account
//	@Tags		adjustments
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Bank account ID"
//	@Success	200	{object}	dto.APIResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/bank-accounts/{id}/accounting-config [get]
func (h *AdjustmentHandler) GetAccountingConfig(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid bank account ID", err)
		return
	}

	cfg, err := h.adjustmentUseCase.GetAccountingConfig(actor, id)
	if err != nil {
		respondError(c, "Accounting configuration not found", err)
		return
	}
	respondOK(c, http.StatusOK, "Accounting configuration retrieved successfully", cfg)
}

// SaveAccountingConfig godoc
//
//	@Summary	Set the adjustment accounts of a bank account
//	@Tags		adjustments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int							true	"Bank account ID"
//	@Param		request	body		dto.AccountingConfigRequest	true	"Account mapping"
//	@Success	200		{object}	dto.APIResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Router		/bank-accounts/{id}/accounting-config [put]
func (h *AdjustmentHandler) SaveAccountingConfig(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid bank account ID", err)
		return
	}

	var req dto.AccountingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	cfg, err := h.adjustmentUseCase.SaveAccountingConfig(actor, req.ToModel(id))
	if err != nil {
		respondError(c, "Failed to save accounting configuration", err)
		return
	}
	respondOK(c, http.StatusOK, "Accounting configuration saved successfully", cfg)
}
