package repositories

import (
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(record *models.ReconciliationAudit) error {
	return r.db.Create(record).Error
}

func (r *auditRepository) List(filter AuditFilter) ([]models.ReconciliationAudit, error) {
	var records []models.ReconciliationAudit
	query := r.db.Where("tenant_id = ?", filter.TenantID)
	if filter.Operation != "" {
		query = query.Where("operation = ?", filter.Operation)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ReconciliationID != 0 {
		query = query.Where("reconciliation_id = ?", filter.ReconciliationID)
	}
	err := page(query.Order("id"), filter.Offset, filter.Limit).Find(&records).Error
	return records, err
}
