package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/usecases"
)

type AuditHandler struct {
	auditService usecases.AuditService
}

func NewAuditHandler(auditService usecases.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListAudit godoc
//
//	@Summary	List audit records
//	@Tags		audit
//	@Produce	json
//	@Security	BearerAuth
//	@Param		operation			query		string	false	"Operation, e.g. RECONCILIATION_REVERSED"
//	@Param		entity_type			query		string	false	"Entity type"
//	@Param		entity_id			query		int		false	"Entity ID"
//	@Param		reconciliation_id	query		int		false	"Reconciliation ID"
//	@Param		page				query		int		false	"Page number"
//	@Param		page_size			query		int		false	"Page size"
//	@Success	200					{object}	dto.APIResponse{data=dto.ListResponse}
//	@Router		/audit [get]
func (h *AuditHandler) ListAudit(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		respondError(c, "User not authenticated", err)
		return
	}
	entityID, err := queryID(c, "entity_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	reconciliationID, err := queryID(c, "reconciliation_id")
	if err != nil {
		respondBadRequest(c, "Invalid request data", err)
		return
	}
	page, pageSize := pageParams(c)

	records, err := h.auditService.List(actor, repositories.AuditFilter{
		Operation:        c.Query("operation"),
		EntityType:       c.Query("entity_type"),
		EntityID:         entityID,
		ReconciliationID: reconciliationID,
	}, page, pageSize)
	if err != nil {
		respondError(c, "Failed to list audit records", err)
		return
	}
	respondOK(c, http.StatusOK, "Audit records retrieved successfully", listResponse(records, len(records), page, pageSize))
}
