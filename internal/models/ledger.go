package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerReconciliationStatus is the reconciliation flag kept on ledger lines
type LedgerReconciliationStatus string

const (
	LedgerUnreconciled LedgerReconciliationStatus = "UNRECONCILED"
	LedgerReconciled   LedgerReconciliationStatus = "RECONCILED"
)

// Ledger document types
const (
	LedgerDocumentTypeJournal    = "JOURNAL"
	LedgerDocumentTypeAdjustment = "BANK_ADJUSTMENT"
)

// LedgerDocument is a journal document header in the accounting ledger
type LedgerDocument struct {
	ID          uint             `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time        `json:"created_at"`
	TenantID    uint             `json:"tenant_id" gorm:"not null;index"`
	Number      string           `json:"number" gorm:"type:varchar(32);index"`
	Type        string           `json:"type" gorm:"type:varchar(32);not null"`
	Date        time.Time        `json:"date" gorm:"not null;index"`
	Description string           `json:"description" gorm:"type:text"`
	Reference   string           `json:"reference" gorm:"type:varchar(255)"`
	CreatedBy   string           `json:"created_by" gorm:"type:varchar(255)"`
	Movements   []LedgerMovement `json:"movements,omitempty" gorm:"foreignKey:DocumentID"`
}

// TableName overrides the table name used by LedgerDocument
func (LedgerDocument) TableName() string {
	return "ledger_documents"
}

// IsBalanced checks that total debits equal total credits
func (d *LedgerDocument) IsBalanced() bool {
	total := decimal.Zero
	for _, m := range d.Movements {
		total = total.Add(m.Debit).Sub(m.Credit)
	}
	return total.IsZero()
}

// LedgerMovement is one debit/credit line of the accounting journal
type LedgerMovement struct {
	ID                   uint                       `json:"id" gorm:"primarykey"`
	CreatedAt            time.Time                  `json:"created_at"`
	UpdatedAt            time.Time                  `json:"updated_at"`
	TenantID             uint                       `json:"tenant_id" gorm:"not null;index"`
	DocumentID           uint                       `json:"document_id" gorm:"not null;index"`
	AccountID            uint                       `json:"account_id" gorm:"not null;index:idx_ledger_movements_account_date"`
	Date                 time.Time                  `json:"date" gorm:"not null;index:idx_ledger_movements_account_date"`
	Concept              string                     `json:"concept" gorm:"type:text"`
	Debit                decimal.Decimal            `json:"debit" gorm:"type:decimal(15,2);not null;default:0"`
	Credit               decimal.Decimal            `json:"credit" gorm:"type:decimal(15,2);not null;default:0"`
	CostCenter           string                     `json:"cost_center,omitempty" gorm:"type:varchar(64)"`
	ReconciliationStatus LedgerReconciliationStatus `json:"reconciliation_status" gorm:"type:varchar(16);not null;default:'UNRECONCILED';index"`

	Document *LedgerDocument `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

// TableName overrides the table name used by LedgerMovement
func (LedgerMovement) TableName() string {
	return "ledger_movements"
}

// SignedAmount returns debit minus credit, the effect on an asset account
func (m LedgerMovement) SignedAmount() decimal.Decimal {
	return m.Debit.Sub(m.Credit)
}

// IsReconciled checks the reconciliation flag
func (m LedgerMovement) IsReconciled() bool {
	return m.ReconciliationStatus == LedgerReconciled
}
