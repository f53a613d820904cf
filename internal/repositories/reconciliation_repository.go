package repositories

import (
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a new reconciliation repository
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) Create(rec *models.Reconciliation) error {
	return r.db.Omit("BankMovement").Create(rec).Error
}

func (r *reconciliationRepository) GetByID(tenantID, id uint) (*models.Reconciliation, error) {
	var rec models.Reconciliation
	err := r.db.Preload("BankMovement").
		Preload("Lines").
		Preload("Lines.LedgerMovement").
		Where("tenant_id = ?", tenantID).
		First(&rec, id).Error
	if err != nil {
		return nil, notFound(err, "reconciliation", id)
	}
	return &rec, nil
}

func (r *reconciliationRepository) List(filter ReconciliationFilter) ([]models.Reconciliation, error) {
	var recs []models.Reconciliation
	query := r.db.Preload("Lines").Where("tenant_id = ?", filter.TenantID)
	if filter.BankAccountID != 0 {
		query = query.Where("bank_account_id = ?", filter.BankAccountID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := page(query.Order("created_at DESC, id DESC"), filter.Offset, filter.Limit).Find(&recs).Error
	return recs, err
}

func (r *reconciliationRepository) HasActiveForBankMovement(bankMovementID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Reconciliation{}).
		Where("bank_movement_id = ? AND status = ?", bankMovementID, models.ReconciliationStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *reconciliationRepository) HasActiveForLedgerMovements(ledgerMovementIDs []uint) (bool, error) {
	if len(ledgerMovementIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.ReconciliationLine{}).
		Joins("JOIN reconciliations ON reconciliations.id = reconciliation_lines.reconciliation_id").
		Where("reconciliation_lines.ledger_movement_id IN ? AND reconciliations.status = ?",
			ledgerMovementIDs, models.ReconciliationStatusActive).
		Count(&count).Error
	return count > 0, err
}

// MarkReversed flips an ACTIVE reconciliation to REVERSED
func (r *reconciliationRepository) MarkReversed(tenantID, id uint, by, reason string, at time.Time) error {
	result := r.db.Model(&models.Reconciliation{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, models.ReconciliationStatusActive).
		Updates(map[string]interface{}{
			"status":          models.ReconciliationStatusReversed,
			"reversed_at":     at,
			"reversed_by":     by,
			"reversal_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflict(apperrors.ConflictAlreadyReversed, "reconciliation %d is already reversed", id)
	}
	return nil
}
