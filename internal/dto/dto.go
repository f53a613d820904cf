package dto

import (
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format accepted in query strings and bodies
const DateLayout = "2006-01-02"

// ConfigurationRequest represents an import configuration create or update request
type ConfigurationRequest struct {
	Name         string         `json:"name" binding:"required" example:"Banco Ejemplo CSV"`
	BankName     string         `json:"bank_name" binding:"required" example:"Banco Ejemplo"`
	FileFormat   string         `json:"file_format" binding:"required" example:"DELIMITED"`
	Delimiter    string         `json:"delimiter" example:","`
	DateFormat   string         `json:"date_format" binding:"required" example:"%d/%m/%Y"`
	HeaderRows   int            `json:"header_rows" example:"1"`
	FieldMapping map[string]int `json:"field_mapping" binding:"required"`
	IsActive     *bool          `json:"is_active,omitempty" example:"true"`
	Version      uint           `json:"version,omitempty" example:"3"`
} //@name ConfigurationRequest

// ToModel converts the request into an ImportConfiguration
func (r ConfigurationRequest) ToModel() *models.ImportConfiguration {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &models.ImportConfiguration{
		Name:         r.Name,
		BankName:     r.BankName,
		FileFormat:   models.FileFormat(r.FileFormat),
		Delimiter:    r.Delimiter,
		DateFormat:   r.DateFormat,
		HeaderRows:   r.HeaderRows,
		FieldMapping: r.FieldMapping,
		IsActive:     active,
		Version:      r.Version,
	}
}

// DuplicateConfigurationRequest represents a configuration copy request
type DuplicateConfigurationRequest struct {
	Name string `json:"name" example:"Banco Ejemplo CSV (2024)"`
} //@name DuplicateConfigurationRequest

// AutoMatchRequest represents an automatic matching run over an optional period
type AutoMatchRequest struct {
	BankAccountID uint   `json:"bank_account_id" binding:"required" example:"1"`
	From          string `json:"from,omitempty" example:"2024-03-01"`
	To            string `json:"to,omitempty" example:"2024-03-31"`
} //@name AutoMatchRequest

// ManualMatchRequest links one bank movement to one or more ledger movements
type ManualMatchRequest struct {
	BankMovementID    uint   `json:"bank_movement_id" binding:"required" example:"10"`
	LedgerMovementIDs []uint `json:"ledger_movement_ids" binding:"required,min=1"`
	Notes             string `json:"notes" example:"split payment"`
} //@name ManualMatchRequest

// ReverseReconciliationRequest represents a reversal request
type ReverseReconciliationRequest struct {
	Reason string `json:"reason" binding:"required" example:"matched to the wrong invoice"`
} //@name ReverseReconciliationRequest

// AdjustmentPreviewRequest represents an adjustment preview over an optional period
type AdjustmentPreviewRequest struct {
	BankAccountID uint   `json:"bank_account_id" binding:"required" example:"1"`
	From          string `json:"from,omitempty" example:"2024-03-01"`
	To            string `json:"to,omitempty" example:"2024-03-31"`
} //@name AdjustmentPreviewRequest

// ApplyAdjustmentsRequest books the adjustments of the given bank movements
type ApplyAdjustmentsRequest struct {
	BankMovementIDs []uint `json:"bank_movement_ids" binding:"required,min=1"`
	Notes           string `json:"notes" example:"month-end close"`
} //@name ApplyAdjustmentsRequest

// AccountingConfigRequest maps adjustment categories to chart accounts
type AccountingConfigRequest struct {
	CommissionAccountID  *uint            `json:"commission_account_id,omitempty" example:"12"`
	InterestAccountID    *uint            `json:"interest_account_id,omitempty" example:"14"`
	BankChargesAccountID *uint            `json:"bank_charges_account_id,omitempty" example:"13"`
	AdjustmentAccountID  *uint            `json:"adjustment_account_id,omitempty" example:"15"`
	DefaultCostCenter    string           `json:"default_cost_center,omitempty" example:"ADM"`
	MaterialityThreshold *decimal.Decimal `json:"materiality_threshold,omitempty" swaggertype:"string" example:"1000.00"`
} //@name AccountingConfigRequest

// ToModel converts the request into an AccountingConfig for a bank account
func (r AccountingConfigRequest) ToModel(bankAccountID uint) *models.AccountingConfig {
	return &models.AccountingConfig{
		BankAccountID:        bankAccountID,
		CommissionAccountID:  r.CommissionAccountID,
		InterestAccountID:    r.InterestAccountID,
		BankChargesAccountID: r.BankChargesAccountID,
		AdjustmentAccountID:  r.AdjustmentAccountID,
		DefaultCostCenter:    r.DefaultCostCenter,
		MaterialityThreshold: r.MaterialityThreshold,
	}
}

// ImportSessionResponse represents an import session
type ImportSessionResponse struct {
	ID              uint                   `json:"id" example:"1"`
	CreatedAt       time.Time              `json:"created_at" example:"2024-03-31T10:00:00Z"`
	BankAccountID   uint                   `json:"bank_account_id" example:"1"`
	ConfigurationID uint                   `json:"configuration_id" example:"2"`
	FileName        string                 `json:"file_name" example:"extracto-marzo.csv"`
	FileHash        string                 `json:"file_hash" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	Status          string                 `json:"status" example:"COMPLETED"`
	TotalRows       int                    `json:"total_rows" example:"120"`
	ParsedRows      int                    `json:"parsed_rows" example:"118"`
	StoredRows      int                    `json:"stored_rows" example:"118"`
	DuplicateRows   int                    `json:"duplicate_rows" example:"0"`
	Errors          []apperrors.FieldError `json:"errors,omitempty"`
	Warnings        []string               `json:"warnings,omitempty"`
	FailureReason   string                 `json:"failure_reason,omitempty"`
	CreatedBy       string                 `json:"created_by" example:"conciliador@example.com"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
} //@name ImportSessionResponse

// PaginationMeta represents pagination metadata
type PaginationMeta struct {
	Page     int `json:"page" example:"1"`
	PageSize int `json:"page_size" example:"50"`
	Count    int `json:"count" example:"50"`
} //@name PaginationMeta

// ListResponse is a page of results
type ListResponse struct {
	Items      interface{}    `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
} //@name ListResponse

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Operation successful"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty" example:""`
} //@name APIResponse

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool                   `json:"success" example:"false"`
	Message string                 `json:"message" example:"Operation failed"`
	Error   string                 `json:"error" example:"Validation error"`
	Code    string                 `json:"code,omitempty" example:"ALREADY_RECONCILED"`
	Details []apperrors.FieldError `json:"details,omitempty"`
} //@name ErrorResponse

// ToImportSessionResponse converts a session model to its response
func ToImportSessionResponse(s *models.ImportSession) ImportSessionResponse {
	return ImportSessionResponse{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		BankAccountID:   s.BankAccountID,
		ConfigurationID: s.ConfigurationID,
		FileName:        s.FileName,
		FileHash:        s.FileHash,
		Status:          string(s.Status),
		TotalRows:       s.TotalRows,
		ParsedRows:      s.ParsedRows,
		StoredRows:      s.StoredRows,
		DuplicateRows:   s.DuplicateRows,
		Errors:          s.Errors,
		Warnings:        s.Warnings,
		FailureReason:   s.FailureReason,
		CreatedBy:       s.CreatedBy,
		CompletedAt:     s.CompletedAt,
	}
}

// ParseDate parses an optional calendar day; an empty string gives the zero time
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}
