package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount is a tenant's bank account whose statements get reconciled
type BankAccount struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	TenantID        uint           `json:"tenant_id" gorm:"not null;index"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	Number          string         `json:"number" gorm:"type:varchar(64);not null"`
	BankName        string         `json:"bank_name" gorm:"type:varchar(255)"`
	Currency        string         `json:"currency" gorm:"type:varchar(3);not null;default:'USD'"`
	LedgerAccountID uint           `json:"ledger_account_id" gorm:"not null;index"` // chart account mirroring this bank account

	LedgerAccount ChartAccount `json:"ledger_account,omitempty" gorm:"foreignKey:LedgerAccountID"`
}

// TableName overrides the table name used by BankAccount
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// ChartAccount is an entry of the tenant's chart of accounts
type ChartAccount struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	TenantID  uint      `json:"tenant_id" gorm:"not null;index"`
	Code      string    `json:"code" gorm:"type:varchar(32);not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Nature    string    `json:"nature" gorm:"type:varchar(16)"` // ASSET, LIABILITY, INCOME, EXPENSE...
}

// TableName overrides the table name used by ChartAccount
func (ChartAccount) TableName() string {
	return "chart_accounts"
}

// Label renders the account as "code - name"
func (a *ChartAccount) Label() string {
	if a == nil || a.ID == 0 {
		return ""
	}
	return a.Code + " - " + a.Name
}
