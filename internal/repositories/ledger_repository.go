package repositories

import (
	"fmt"
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// CreateDocument stores a balanced document with its lines and assigns its number
func (r *ledgerRepository) CreateDocument(doc *models.LedgerDocument) error {
	if len(doc.Movements) == 0 {
		return apperrors.NewValidationError("ledger document has no lines")
	}
	if !doc.IsBalanced() {
		return apperrors.NewValidationError("ledger document is not balanced")
	}
	for i := range doc.Movements {
		doc.Movements[i].TenantID = doc.TenantID
		if doc.Movements[i].Date.IsZero() {
			doc.Movements[i].Date = doc.Date
		}
		if doc.Movements[i].ReconciliationStatus == "" {
			doc.Movements[i].ReconciliationStatus = models.LedgerUnreconciled
		}
	}

	if err := r.db.Create(doc).Error; err != nil {
		return err
	}

	doc.Number = documentNumber(doc.Type, doc.ID)
	return r.db.Model(&models.LedgerDocument{}).
		Where("id = ?", doc.ID).
		Update("number", doc.Number).Error
}

func documentNumber(docType string, id uint) string {
	prefix := "DOC"
	if docType == models.LedgerDocumentTypeAdjustment {
		prefix = "ADJ"
	}
	return fmt.Sprintf("%s-%06d", prefix, id)
}

func (r *ledgerRepository) GetMovements(tenantID uint, ids []uint) ([]models.LedgerMovement, error) {
	var movements []models.LedgerMovement
	if len(ids) == 0 {
		return movements, nil
	}
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Order("id").Find(&movements).Error
	return movements, err
}

func (r *ledgerRepository) ListUnreconciled(tenantID, accountID uint, from, to *time.Time) ([]models.LedgerMovement, error) {
	var movements []models.LedgerMovement
	query := r.db.Where("tenant_id = ? AND account_id = ? AND reconciliation_status = ?",
		tenantID, accountID, models.LedgerUnreconciled)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	err := query.Order("date, id").Find(&movements).Error
	return movements, err
}

// SetReconciliationStatus flips the flag on every listed movement or on none
func (r *ledgerRepository) SetReconciliationStatus(tenantID uint, ids []uint, from, to models.LedgerReconciliationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	result := r.db.Model(&models.LedgerMovement{}).
		Where("tenant_id = ? AND id IN ? AND reconciliation_status = ?", tenantID, ids, from).
		Update("reconciliation_status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		if from == models.LedgerUnreconciled {
			return apperrors.NewConflict(apperrors.ConflictAlreadyReconciled,
				"one or more ledger movements are already reconciled")
		}
		return apperrors.NewConflict(apperrors.ConflictConcurrentUpdate,
			"one or more ledger movements changed concurrently")
	}
	return nil
}
