package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationType tells how a reconciliation was produced
type ReconciliationType string

const (
	ReconciliationTypeAuto       ReconciliationType = "AUTO"
	ReconciliationTypeManual     ReconciliationType = "MANUAL"
	ReconciliationTypeAdjustment ReconciliationType = "ADJUSTMENT"
)

// ReconciliationStatus represents the status of a reconciliation
type ReconciliationStatus string

const (
	ReconciliationStatusActive   ReconciliationStatus = "ACTIVE"
	ReconciliationStatusReversed ReconciliationStatus = "REVERSED"
)

// Reconciliation links one bank movement to one or more ledger movements
type Reconciliation struct {
	ID             uint                 `json:"id" gorm:"primarykey"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	TenantID       uint                 `json:"tenant_id" gorm:"not null;index"`
	BankAccountID  uint                 `json:"bank_account_id" gorm:"not null;index"`
	BankMovementID uint                 `json:"bank_movement_id" gorm:"not null;index"`
	Type           ReconciliationType   `json:"type" gorm:"type:varchar(16);not null"`
	Confidence     float64              `json:"confidence" gorm:"not null;default:0"`
	Criteria       []string             `json:"criteria" gorm:"type:text;serializer:json"`
	Notes          string               `json:"notes" gorm:"type:text"`
	Status         ReconciliationStatus `json:"status" gorm:"type:varchar(16);not null;default:'ACTIVE';index"`
	CreatedBy      string               `json:"created_by" gorm:"type:varchar(255)"`
	ReversedAt     *time.Time           `json:"reversed_at,omitempty"`
	ReversedBy     string               `json:"reversed_by,omitempty" gorm:"type:varchar(255)"`
	ReversalReason string               `json:"reversal_reason,omitempty" gorm:"type:text"`

	// Relationships
	BankMovement BankMovement         `json:"bank_movement,omitempty" gorm:"foreignKey:BankMovementID"`
	Lines        []ReconciliationLine `json:"lines,omitempty" gorm:"foreignKey:ReconciliationID"`
}

// TableName overrides the table name used by Reconciliation
func (Reconciliation) TableName() string {
	return "reconciliations"
}

// IsActive checks if the reconciliation currently holds its movements
func (r *Reconciliation) IsActive() bool {
	return r.Status == ReconciliationStatusActive
}

// LedgerMovementIDs lists the linked ledger movements
func (r *Reconciliation) LedgerMovementIDs() []uint {
	ids := make([]uint, 0, len(r.Lines))
	for _, l := range r.Lines {
		ids = append(ids, l.LedgerMovementID)
	}
	return ids
}

// ReconciliationLine is the join row between a reconciliation and a ledger movement
type ReconciliationLine struct {
	ID               uint            `json:"id" gorm:"primarykey"`
	CreatedAt        time.Time       `json:"created_at"`
	ReconciliationID uint            `json:"reconciliation_id" gorm:"not null;index"`
	LedgerMovementID uint            `json:"ledger_movement_id" gorm:"not null;index"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`

	LedgerMovement *LedgerMovement `json:"ledger_movement,omitempty" gorm:"foreignKey:LedgerMovementID"`
}

// TableName overrides the table name used by ReconciliationLine
func (ReconciliationLine) TableName() string {
	return "reconciliation_lines"
}
