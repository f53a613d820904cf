package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/dto"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/usecases"
)

type ReconciliationHandler struct {
	matchingUseCase usecases.MatchingUseCase
}

func NewReconciliationHandler(matchingUseCase usecases.MatchingUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{
		matchingUseCase: matchingUseCase,
	}
}

// AutoMatch godoc
//
//	@Summary		Run automatic matching
//	@Description	Reconciles exact and high-confidence pairs of a bank account and returns suggestions for the rest
//	@Tags			reconciliations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.AutoMatchRequest	true	"Bank account and optional period"
//	@Success		200		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Router			/reconciliations/auto-match [post]
func (h *ReconciliationHandler) AutoMatch(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}

	var req dto.AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	period, err := dateRange(req.From, req.To)
	if err != nil {
		respondBadRequest(c, "Invalid period", err)
		return
	}

	result, err := h.matchingUseCase.AutoMatch(actor, req.BankAccountID, period)
	if err != nil {
		respondError(c, "Automatic matching failed", err)
		return
	}
	respondOK(c, http.StatusOK, "Automatic matching completed", result)
}

// SuggestMatches godoc
//
//	@Summary	Suggest ledger movements for a bank movement
//	@Tags		reconciliations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int	true	"Bank movement ID"
//	@Param		limit	query		int	false	"Maximum suggestions"
//	@Success	200		{object}	dto.APIResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Failure	409		{object}	dto.ErrorResponse	"Movement already reconciled"
//	@Router		/bank-movements/{id}/suggestions [get]
func (h *ReconciliationHandler) SuggestMatches(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid bank movement ID", err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	suggestions, err := h.matchingUseCase.SuggestMatches(actor, id, limit)
	if err != nil {
		respondError(c, "Failed to suggest matches", err)
		return
	}
	respondOK(c, http.StatusOK, "Suggestions retrieved successfully", suggestions)
}

// ManualMatch godoc
//
//	@Summary	Reconcile a bank movement by hand
//	@Tags		reconciliations
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		dto.ManualMatchRequest	true	"Bank movement and ledger movements"
//	@Success	201		{object}	dto.APIResponse
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Failure	409		{object}	dto.ErrorResponse	"Already reconciled"
//	@Router		/reconciliations [post]
func (h *ReconciliationHandler) ManualMatch(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}

	var req dto.ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	rec, err := h.matchingUseCase.ApplyManualMatch(actor, req.BankMovementID, req.LedgerMovementIDs, req.Notes)
	if err != nil {
		respondError(c, "Failed to reconcile", err)
		return
	}
	respondOK(c, http.StatusCreated, "Reconciliation created successfully", rec)
}

// ReverseReconciliation godoc
//
//	@Summary		Reverse a reconciliation
//	@Description	Puts the bank and ledger movements back in the pending pool. Adjustments cannot be reversed.
//	@Tags			reconciliations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int									true	"Reconciliation ID"
//	@Param			request	body		dto.ReverseReconciliationRequest	true	"Reason"
//	@Success		200		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse	"Already reversed or not reversible"
//	@Router			/reconciliations/{id}/reverse [post]
func (h *ReconciliationHandler) ReverseReconciliation(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid reconciliation ID", err)
		return
	}

	var req dto.ReverseReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	rec, err := h.matchingUseCase.ReverseReconciliation(actor, id, req.Reason)
	if err != nil {
		respondError(c, "Failed to reverse reconciliation", err)
		return
	}
	respondOK(c, http.StatusOK, "Reconciliation reversed successfully", rec)
}

// GetReconciliation godoc
//
//	@Summary	Get reconciliation
//	@Tags		reconciliations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Reconciliation ID"
//	@Success	200	{object}	dto.APIResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/reconciliations/{id} [get]
func (h *ReconciliationHandler) GetReconciliation(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid reconciliation ID", err)
		return
	}

	rec, err := h.matchingUseCase.GetReconciliation(actor, id)
	if err != nil {
		respondError(c, "Reconciliation not found", err)
		return
	}
	respondOK(c, http.StatusOK, "Reconciliation retrieved successfully", rec)
}

// ListReconciliations godoc
//
//	@Summary	List reconciliations
//	@Tags		reconciliations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		bank_account_id	query		int		false	"Bank account ID"
//	@Param		status			query		string	false	"ACTIVE or REVERSED"
//	@Param		page			query		int		false	"Page number"
//	@Param		page_size		query		int		false	"Page size"
//	@Success	200				{object}	dto.APIResponse{data=dto.ListResponse}
//	@Router		/reconciliations [get]
func (h *ReconciliationHandler) ListReconciliations(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	bankAccountID, err := queryID(c, "bank_account_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	status := models.ReconciliationStatus(c.Query("status"))
	switch status {
	case "", models.ReconciliationStatusActive, models.ReconciliationStatusReversed:
	default:
		respondBadRequest(c, "Invalid status", errInvalidStatus(string(status)))
		return
	}
	page, pageSize := pageParams(c)

	recs, err := h.matchingUseCase.ListReconciliations(actor, bankAccountID, status, page, pageSize)
	if err != nil {
		respondError(c, "Failed to list reconciliations", err)
		return
	}
	respondOK(c, http.StatusOK, "Reconciliations retrieved successfully", listResponse(recs, len(recs), page, pageSize))
}

// Summary godoc
//
//	@Summary	Reconciliation progress of a bank account
//	@Tags		reconciliations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Bank account ID"
//	@Success	200	{object}	dto.APIResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/bank-accounts/{id}/summary [get]
func (h *ReconciliationHandler) Summary(c *gin.Context) {
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

	summary, err := h.matchingUseCase.Summary(actor, id)
	if err != nil {
		respondError(c, "Failed to build summary", err)
		return
	}
	respondOK(c, http.StatusOK, "Summary retrieved successfully", summary)
}
