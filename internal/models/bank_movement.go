package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankMovementStatus is the reconciliation state of a bank movement
type BankMovementStatus string

const (
	BankMovementStatusPending  BankMovementStatus = "PENDING"
	BankMovementStatusMatched  BankMovementStatus = "MATCHED"
	BankMovementStatusAdjusted BankMovementStatus = "ADJUSTED"
)

// BankMovement is one transaction line parsed from an imported statement
type BankMovement struct {
	ID              uint               `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	TenantID        uint               `json:"tenant_id" gorm:"not null;index"`
	BankAccountID   uint               `json:"bank_account_id" gorm:"not null;index:idx_bank_movements_account_date"`
	ImportSessionID uint               `json:"import_session_id" gorm:"not null;index"`
	TransactionDate time.Time          `json:"transaction_date" gorm:"not null;index:idx_bank_movements_account_date"`
	ValueDate       time.Time          `json:"value_date" gorm:"not null"`
	Amount          decimal.Decimal    `json:"amount" gorm:"type:decimal(15,2);not null"`
	Description     string             `json:"description" gorm:"type:text;not null"`
	Reference       string             `json:"reference,omitempty" gorm:"type:varchar(255)"`
	TransactionType string             `json:"transaction_type,omitempty" gorm:"type:varchar(64)"`
	Balance         *decimal.Decimal   `json:"balance,omitempty" gorm:"type:decimal(15,2)"`
	SourceRow       int                `json:"source_row"`
	Status          BankMovementStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`
	Version         uint               `json:"version" gorm:"not null;default:0"`
}

// TableName overrides the table name used by BankMovement
func (BankMovement) TableName() string {
	return "bank_movements"
}

// IsPending checks if the movement still awaits reconciliation
func (m BankMovement) IsPending() bool {
	return m.Status == BankMovementStatusPending
}

// IsDebit reports whether money left the account
func (m BankMovement) IsDebit() bool {
	return m.Amount.IsNegative()
}
