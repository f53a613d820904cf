package models

import (
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
)

// ImportSessionStatus represents the lifecycle of a file import
type ImportSessionStatus string

const (
	ImportSessionStatusProcessing ImportSessionStatus = "PROCESSING"
	ImportSessionStatusCompleted  ImportSessionStatus = "COMPLETED"
	ImportSessionStatusFailed     ImportSessionStatus = "FAILED"
	// ImportSessionStatusPending is only found on rows written by older releases
	ImportSessionStatusPending ImportSessionStatus = "PENDING"
)

// ImportSession is one attempt to import one statement file
type ImportSession struct {
	ID              uint                   `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	TenantID        uint                   `json:"tenant_id" gorm:"not null;index"`
	BankAccountID   uint                   `json:"bank_account_id" gorm:"not null;index"`
	ConfigurationID uint                   `json:"configuration_id" gorm:"not null;index"`
	FileName        string                 `json:"file_name" gorm:"type:varchar(255);not null"`
	FileHash        string                 `json:"file_hash" gorm:"type:varchar(64);not null;index"`
	TotalRows       int                    `json:"total_rows" gorm:"not null;default:0"`
	ParsedRows      int                    `json:"parsed_rows" gorm:"not null;default:0"`
	StoredRows      int                    `json:"stored_rows" gorm:"not null;default:0"`
	DuplicateRows   int                    `json:"duplicate_rows" gorm:"not null;default:0"`
	Status          ImportSessionStatus    `json:"status" gorm:"type:varchar(16);not null;default:'PROCESSING';index"`
	Errors          []apperrors.FieldError `json:"errors" gorm:"type:text;serializer:json"`
	Warnings        []string               `json:"warnings" gorm:"type:text;serializer:json"`
	FailureReason   string                 `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedBy       string                 `json:"created_by" gorm:"type:varchar(255)"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`

	Configuration ImportConfiguration `json:"-" gorm:"foreignKey:ConfigurationID"`
}

// TableName overrides the table name used by ImportSession
func (ImportSession) TableName() string {
	return "import_sessions"
}

// IsFinal reports whether the session can no longer change
func (s *ImportSession) IsFinal() bool {
	return s.Status == ImportSessionStatusCompleted || s.Status == ImportSessionStatusFailed
}
