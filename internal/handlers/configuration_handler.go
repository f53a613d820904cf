package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/dto"
	"github.com/limistah/bank-reconciliation/internal/usecases"
)

type ConfigurationHandler struct {
	configurationUseCase usecases.ConfigurationUseCase
	maxUploadBytes       int64
}

func NewConfigurationHandler(configurationUseCase usecases.ConfigurationUseCase, maxUploadBytes int64) *ConfigurationHandler {
	return &ConfigurationHandler{
		configurationUseCase: configurationUseCase,
		maxUploadBytes:       maxUploadBytes,
	}
}

// CreateConfiguration godoc
//
//	@Summary		Create import configuration
//	@Description	Describe how a bank's statement files are laid out
//	@Tags			configurations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.ConfigurationRequest	true	"Configuration"
//	@Success		201		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		403		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse	"Duplicate name"
//	@Router			/configurations [post]
func (h *ConfigurationHandler) CreateConfiguration(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}

	var req dto.ConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	cfg, err := h.configurationUseCase.Create(actor, req.ToModel())
	if err != nil {
		respondError(c, "Failed to create configuration", err)
		return
	}
	respondOK(c, http.StatusCreated, "Configuration created successfully", cfg)
}

// UpdateConfiguration godoc
//
//	@Summary		Update import configuration
//	@Description	Replace a configuration; send the version you read to detect concurrent edits
//	@Tags			configurations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int							true	"Configuration ID"
//	@Param			request	body		dto.ConfigurationRequest	true	"Configuration"
//	@Success		200		{object}	dto.APIResponse
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse	"Stale version or duplicate name"
//	@Router			/configurations/{id} [put]
func (h *ConfigurationHandler) UpdateConfiguration(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid configuration ID", err)
		return
	}

	var req dto.ConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}

	cfg, err := h.configurationUseCase.Update(actor, id, req.ToModel())
	if err != nil {
		respondError(c, "Failed to update configuration", err)
		return
	}
	respondOK(c, http.StatusOK, "Configuration updated successfully", cfg)
}

// DuplicateConfiguration godoc
//
//	@Summary		Duplicate import configuration
//	@Tags			configurations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int									true	"Configuration ID"
//	@Param			request	body		dto.DuplicateConfigurationRequest	false	"New name"
//	@Success		201		{object}	dto.APIResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Router			/configurations/{id}/duplicate [post]
func (h *ConfigurationHandler) DuplicateConfiguration(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid configuration ID", err)
		return
	}

	var req dto.DuplicateConfigurationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request data", err)
			return
		}
	}

	cfg, err := h.configurationUseCase.Duplicate(actor, id, req.Name)
	if err != nil {
		respondError(c, "Failed to duplicate configuration", err)
		return
	}
	respondOK(c, http.StatusCreated, "Configuration duplicated successfully", cfg)
}

// DeleteConfiguration godoc
//
//	@Summary		Delete import configuration
//	@Description	Refused while an import using the configuration is in progress
//	@Tags			configurations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Configuration ID"
//	@Success		200	{object}	dto.APIResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		409	{object}	dto.ErrorResponse	"Configuration in use"
//	@Router			/configurations/{id} [delete]
func (h *ConfigurationHandler) DeleteConfiguration(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid configuration ID", err)
		return
	}

	if err := h.configurationUseCase.Delete(actor, id); err != nil {
		respondError(c, "Failed to delete configuration", err)
		return
	}
	respondOK(c, http.StatusOK, "Configuration deleted successfully", nil)
}

// GetConfiguration godoc
//
//	@Summary	Get import configuration
//	@Tags		configurations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Configuration ID"
//	@Success	200	{object}	dto.APIResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Router		/configurations/{id} [get]
func (h *ConfigurationHandler) GetConfiguration(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid configuration ID", err)
		return
	}

	cfg, err := h.configurationUseCase.Get(actor, id)
	if err != nil {
		respondError(c, "Configuration not found", err)
		return
	}
	respondOK(c, http.StatusOK, "Configuration retrieved successfully", cfg)
}

// ListConfigurations godoc
//
//	@Summary	List import configurations
//	@Tags		configurations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		active	query		bool	false	"Only active configurations"
//	@Success	200		{object}	dto.APIResponse
//	@Router		/configurations [get]
func (h *ConfigurationHandler) ListConfigurations(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	configs, err := h.configurationUseCase.List(actor, activeOnly)
	if err != nil {
		respondError(c, "Failed to list configurations", err)
		return
	}
	respondOK(c, http.StatusOK, "Configurations retrieved successfully", configs)
}

// ValidateSample godoc
//
//	@Summary		Test a configuration against a sample file
//	@Description	Parses the file without storing anything and reports every row problem
//	@Tags			configurations
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		int		true	"Configuration ID"
//	@Param			file		formData	file	true	"Sample statement"
//	@Param			max_rows	formData	int		false	"Rows to check"
//	@Success		200			{object}	dto.APIResponse
//	@Failure		400			{object}	dto.ErrorResponse
//	@Router			/configurations/{id}/validate [post]
func (h *ConfigurationHandler) ValidateSample(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondBadRequest(c, "Invalid configuration ID", err)
		return
	}
	fileName, data, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondBadRequest(c, "Invalid upload", err)
		return
	}
	maxRows, _ := strconv.Atoi(c.PostForm("max_rows"))

	result, err := h.configurationUseCase.ValidateSample(actor, id, fileName, data, maxRows)
	if err != nil {
		respondError(c, "Failed to validate sample", err)
		return
	}
	respondOK(c, http.StatusOK, "Sample validated", result)
}
