package models

import "time"

// Audited operations
const (
	AuditConfigurationCreated    = "CONFIGURATION_CREATED"
	AuditConfigurationUpdated    = "CONFIGURATION_UPDATED"
	AuditConfigurationDuplicated = "CONFIGURATION_DUPLICATED"
	AuditConfigurationDeleted    = "CONFIGURATION_DELETED"
	AuditStatementImported       = "STATEMENT_IMPORTED"
	AuditStatementImportFailed   = "STATEMENT_IMPORT_FAILED"
	AuditAutoMatchApplied        = "AUTO_MATCH_APPLIED"
	AuditManualMatchApplied      = "MANUAL_MATCH_APPLIED"
	AuditReconciliationReversed  = "RECONCILIATION_REVERSED"
	AuditAdjustmentApplied       = "ADJUSTMENT_APPLIED"
	AuditAccountingConfigSaved   = "ACCOUNTING_CONFIG_SAVED"
)

// ReconciliationAudit is an append-only record of a state change
type ReconciliationAudit struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	CreatedAt        time.Time `json:"created_at"`
	EventID          string    `json:"event_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	TenantID         uint      `json:"tenant_id" gorm:"not null;index"`
	Operation        string    `json:"operation" gorm:"type:varchar(64);not null;index"`
	Actor            string    `json:"actor" gorm:"type:varchar(255);not null"`
	EntityType       string    `json:"entity_type" gorm:"type:varchar(64)"`
	EntityID         uint      `json:"entity_id"`
	ReconciliationID *uint     `json:"reconciliation_id,omitempty" gorm:"index"`
	Before           string    `json:"before,omitempty" gorm:"type:text"`
	After            string    `json:"after,omitempty" gorm:"type:text"`
	Detail           string    `json:"detail,omitempty" gorm:"type:text"`
}

// TableName overrides the table name used by ReconciliationAudit
func (ReconciliationAudit) TableName() string {
	return "reconciliation_audits"
}
