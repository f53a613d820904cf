package repositories

import (
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type accountingConfigRepository struct {
	db *gorm.DB
}

// NewAccountingConfigRepository creates a new accounting configuration repository
func NewAccountingConfigRepository(db *gorm.DB) AccountingConfigRepository {
	return &accountingConfigRepository{db: db}
}

func (r *accountingConfigRepository) GetByBankAccount(tenantID, bankAccountID uint) (*models.AccountingConfig, error) {
	var cfg models.AccountingConfig
	err := r.db.Where("tenant_id = ? AND bank_account_id = ?", tenantID, bankAccountID).First(&cfg).Error
	if err != nil {
		return nil, notFound(err, "accounting configuration for bank account", bankAccountID)
	}
	return &cfg, nil
}

func (r *accountingConfigRepository) Save(cfg *models.AccountingConfig) error {
	return r.db.Save(cfg).Error
}
