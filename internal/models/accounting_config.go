package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingConfig maps adjustment categories of a bank account to chart accounts
type AccountingConfig struct {
	ID                   uint      `json:"id" gorm:"primarykey"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	TenantID             uint      `json:"tenant_id" gorm:"not null;index"`
	BankAccountID        uint      `json:"bank_account_id" gorm:"not null;uniqueIndex"`
	CommissionAccountID  *uint     `json:"commission_account_id,omitempty"`
	InterestAccountID    *uint     `json:"interest_account_id,omitempty"`
	BankChargesAccountID *uint     `json:"bank_charges_account_id,omitempty"`
	AdjustmentAccountID  *uint     `json:"adjustment_account_id,omitempty"`
	DefaultCostCenter    string    `json:"default_cost_center,omitempty" gorm:"type:varchar(64)" validate:"max=64"`
	// MaterialityThreshold overrides the default approval threshold, in currency units like Amount
	MaterialityThreshold *decimal.Decimal `json:"materiality_threshold,omitempty" gorm:"type:decimal(15,2)"`
}

// TableName overrides the table name used by AccountingConfig
func (AccountingConfig) TableName() string {
	return "accounting_configs"
}
