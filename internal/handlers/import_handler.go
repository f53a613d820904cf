package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/dto"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/usecases"
)

type ImportHandler struct {
	importUseCase  usecases.ImportUseCase
	maxUploadBytes int64
}

func NewImportHandler(importUseCase usecases.ImportUseCase, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importUseCase:  importUseCase,
		maxUploadBytes: maxUploadBytes,
	}
}

// ValidateStatement godoc
//
//	@Summary		Validate a statement file
//	@Description	Checks every row against the configuration without storing anything
//	@Tags			imports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			configuration_id	formData	int		true	"Configuration ID"
//	@Param			file				formData	file	true	"Statement file"
//	@Success		200					{object}	dto.APIResponse
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Router			/imports/validate [post]
func (h *ImportHandler) ValidateStatement(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	configurationID, err := formID(c, "configuration_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	fileName, data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondBadRequest(c, "Invalid upload", err)
		return
	}

	result, err := h.importUseCase.ValidateFile(actor, configurationID, fileName, data)
	if err != nil {
		respondError(c, "Failed to validate statement", err)
		return
	}
	respondOK(c, http.StatusOK, "Statement validated", result)
}

// ImportStatement godoc
//
//	@Summary		Import a statement file
//	@Description	Stores the valid rows as PENDING bank movements and reports row errors and duplicates
//	@Tags			imports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			bank_account_id		formData	int		true	"Bank account ID"
//	@Param			configuration_id	formData	int		true	"Configuration ID"
//	@Param			skip_duplicates		formData	bool	false	"Drop rows flagged as duplicates"
//	@Param			file				formData	file	true	"Statement file"
//	@Success		201					{object}	dto.APIResponse
//	@Failure		400					{object}	dto.ErrorResponse
//	@Failure		403					{object}	dto.ErrorResponse
//	@Failure		404					{object}	dto.ErrorResponse
//	@Router			/imports [post]
func (h *ImportHandler) ImportStatement(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	bankAccountID, err := formID(c, "bank_account_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	configurationID, err := formID(c, "configuration_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	fileName, data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondBadRequest(c, "Invalid upload", err)
		return
	}
	skip, _ := strconv.ParseBool(c.PostForm("skip_duplicates"))

	result, err := h.importUseCase.Import(actor, usecases.ImportRequest{
		BankAccountID:   bankAccountID,
		ConfigurationID: configurationID,
		FileName:        fileName,
		Data:            data,
		SkipDuplicates:  skip,
	})
	if err != nil {
		respondError(c, "Failed to import statement", err)
		return
	}

	c.JSON(http.StatusCreated, dto.APIResponse{
		Success: true,
		Message: "Statement imported",
		Data: gin.H{
			"session":    dto.ToImportSessionResponse(result.Session),
			"duplicates": result.Duplicates,
		},
	})
}

// GetSession godoc
//
//	@Summary	Get import session
//	@Tags		imports
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Session ID"
//	@Success	200	{object}	dto.APIResponse{data=dto.ImportSessionResponse}
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/imports/{id} [get]
func (h *ImportHandler) GetSession(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid session ID", err)
		return
	}

	session, err := h.importUseCase.GetSession(actor, id)
	if err != nil {
		respondError(c, "Import session not found", err)
		return
	}
	respondOK(c, http.StatusOK, "Import session retrieved successfully", dto.ToImportSessionResponse(session))
}

// ListSessions godoc
//
//	@Summary	List import sessions
//	@Tags		imports
//	@Produce	json
//	@Security	BearerAuth
//	@Param		bank_account_id	query		int	false	"Bank account ID"
//	@Param		page			query		int	false	"Page number"
//	@Param		page_size		query		int	false	"Page size"
//	@Success	200				{object}	dto.APIResponse{data=dto.ListResponse}
//	@Router		/imports [get]
func (h *ImportHandler) ListSessions(c *gin.Context) {
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
	page, pageSize := pageParams(c)

	sessions, err := h.importUseCase.ListSessions(actor, bankAccountID, page, pageSize)
	if err != nil {
		respondError(c, "Failed to list import sessions", err)
		return
	}
	items := make([]dto.ImportSessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, dto.ToImportSessionResponse(&sessions[i]))
	}
	respondOK(c, http.StatusOK, "Import sessions retrieved successfully", listResponse(items, len(items), page, pageSize))
}

// ListMovements godoc
//
//	@Summary	List bank movements
//	@Tags		movements
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		int		true	"Bank account ID"
//	@Param		status		query		string	false	"PENDING, MATCHED or ADJUSTED"
//	@Param		page		query		int		false	"Page number"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	dto.APIResponse{data=dto.ListResponse}
//	@Router		/bank-accounts/{id}/movements [get]
func (h *ImportHandler) ListMovements(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	bankAccountID, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid bank account ID", err)
		return
	}
	status := models.BankMovementStatus(c.Query("status"))
	switch status {
	case "", models.BankMovementStatusPending, models.BankMovementStatusMatched, models.BankMovementStatusAdjusted:
	default:
		respondBadRequest(c, "Invalid status", errInvalidStatus(string(status)))
		return
	}
	page, pageSize := pageParams(c)

	movements, err := h.importUseCase.ListMovements(actor, bankAccountID, status, page, pageSize)
	if err != nil {
		respondError(c, "Failed to list bank movements", err)
		return
	}
	respondOK(c, http.StatusOK, "Bank movements retrieved successfully", listResponse(movements, len(movements), page, pageSize))
}
