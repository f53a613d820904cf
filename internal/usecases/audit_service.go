package usecases

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/utils"
)

// AuditEntry describes one state change to record
type AuditEntry struct {
	Actor            *auth.Actor
	Operation        string
	EntityType       string
	EntityID         uint
	ReconciliationID *uint
	Before           interface{}
	After            interface{}
	Detail           string
}

// AuditService writes the append-only audit trail
type AuditService interface {
	// Record stores entry. Failures are logged and never returned: the audited
	// operation has already committed.
	Record(entry AuditEntry)
	List(actor *auth.Actor, filter repositories.AuditFilter, page, pageSize int) ([]models.ReconciliationAudit, error)
}

type auditService struct {
	repo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(entry AuditEntry) {
	record := &models.ReconciliationAudit{
		EventID:          uuid.NewString(),
		Operation:        entry.Operation,
		EntityType:       entry.EntityType,
		EntityID:         entry.EntityID,
		ReconciliationID: entry.ReconciliationID,
		Before:           snapshot(entry.Before),
		After:            snapshot(entry.After),
		Detail:           entry.Detail,
	}
	if entry.Actor != nil {
		record.TenantID = entry.Actor.TenantID
		record.Actor = entry.Actor.Name()
	}

	if err := s.repo.Create(record); err != nil {
		log.Printf("[audit] failed to record %s on %s %d: %v", entry.Operation, entry.EntityType, entry.EntityID, err)
	}
}

func (s *auditService) List(actor *auth.Actor, filter repositories.AuditFilter, page, pageSize int) ([]models.ReconciliationAudit, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	filter.TenantID = actor.TenantID
	filter.Offset, filter.Limit = utils.Paginate(page, pageSize)
	return s.repo.List(filter)
}

func snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[audit] failed to serialize snapshot: %v", err)
		return ""
	}
	return string(b)
}

// tenantOf returns the tenant an actor operates on
func tenantOf(actor *auth.Actor) uint {
	if actor == nil {
		return 0
	}
	return actor.TenantID
}
