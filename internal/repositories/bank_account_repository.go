package repositories

import (
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type bankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository creates a new bank account repository
func NewBankAccountRepository(db *gorm.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) Create(account *models.BankAccount) error {
	return r.db.Omit("LedgerAccount").Create(account).Error
}

func (r *bankAccountRepository) GetByID(tenantID, id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := r.db.Preload("LedgerAccount").
		Where("tenant_id = ?", tenantID).
		First(&account, id).Error
	if err != nil {
		return nil, notFound(err, "bank account", id)
	}
	return &account, nil
}

func (r *bankAccountRepository) List(tenantID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	err := r.db.Where("tenant_id = ?", tenantID).Order("name").Find(&accounts).Error
	return accounts, err
}

type chartAccountRepository struct {
	db *gorm.DB
}

// NewChartAccountRepository creates a new chart of accounts repository
func NewChartAccountRepository(db *gorm.DB) ChartAccountRepository {
	return &chartAccountRepository{db: db}
}

func (r *chartAccountRepository) Create(account *models.ChartAccount) error {
	return r.db.Create(account).Error
}

func (r *chartAccountRepository) GetByID(tenantID, id uint) (*models.ChartAccount, error) {
	var account models.ChartAccount
	if err := r.db.Where("tenant_id = ?", tenantID).First(&account, id).Error; err != nil {
		return nil, notFound(err, "chart account", id)
	}
	return &account, nil
}

func (r *chartAccountRepository) GetByIDs(tenantID uint, ids []uint) (map[uint]models.ChartAccount, error) {
	out := make(map[uint]models.ChartAccount, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var accounts []models.ChartAccount
	if err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&accounts).Error; err != nil {
		return nil, err
	}
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}
