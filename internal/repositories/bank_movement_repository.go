package repositories

import (
	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

const movementBatchSize = 500

type bankMovementRepository struct {
	db *gorm.DB
}

// NewBankMovementRepository creates a new bank movement repository
func NewBankMovementRepository(db *gorm.DB) BankMovementRepository {
	return &bankMovementRepository{db: db}
}

func (r *bankMovementRepository) CreateBatch(movements []models.BankMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.CreateInBatches(movements, movementBatchSize).Error
}

func (r *bankMovementRepository) GetByID(tenantID, id uint) (*models.BankMovement, error) {
	var movement models.BankMovement
	if err := r.db.Where("tenant_id = ?", tenantID).First(&movement, id).Error; err != nil {
		return nil, notFound(err, "bank movement", id)
	}
	return &movement, nil
}

func (r *bankMovementRepository) GetByIDs(tenantID uint, ids []uint) ([]models.BankMovement, error) {
	var movements []models.BankMovement
	if len(ids) == 0 {
		return movements, nil
	}
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Order("id").Find(&movements).Error
	return movements, err
}

func (r *bankMovementRepository) List(filter MovementFilter) ([]models.BankMovement, error) {
	var movements []models.BankMovement
	query := r.db.Where("tenant_id = ?", filter.TenantID)
	if filter.BankAccountID != 0 {
		query = query.Where("bank_account_id = ?", filter.BankAccountID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date <= ?", *filter.To)
	}
	err := page(query.Order("transaction_date, id"), filter.Offset, filter.Limit).Find(&movements).Error
	return movements, err
}

// TransitionStatus moves a movement from one status to another. The update is
// conditional on the current status so two callers cannot both win.
func (r *bankMovementRepository) TransitionStatus(tenantID, id uint, from, to models.BankMovementStatus) error {
	result := r.db.Model(&models.BankMovement{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if from == models.BankMovementStatusPending {
			return apperrors.NewConflict(apperrors.ConflictAlreadyReconciled,
				"bank movement %d is not pending", id)
		}
		return apperrors.NewConflict(apperrors.ConflictConcurrentUpdate,
			"bank movement %d is no longer %s", id, from)
	}
	return nil
}

func (r *bankMovementRepository) CountByStatus(tenantID, bankAccountID uint) (map[models.BankMovementStatus]int64, error) {
	var rows []struct {
		Status models.BankMovementStatus
		Total  int64
	}
	err := r.db.Model(&models.BankMovement{}).
		Select("status, COUNT(*) AS total").
		Where("tenant_id = ? AND bank_account_id = ?", tenantID, bankAccountID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[models.BankMovementStatus]int64{
		models.BankMovementStatusPending:  0,
		models.BankMovementStatusMatched:  0,
		models.BankMovementStatusAdjusted: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
