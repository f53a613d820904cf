package repositories

import (
	"errors"

	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type importSessionRepository struct {
	db *gorm.DB
}

// NewImportSessionRepository creates a new import session repository
func NewImportSessionRepository(db *gorm.DB) ImportSessionRepository {
	return &importSessionRepository{db: db}
}

func (r *importSessionRepository) Create(session *models.ImportSession) error {
	return r.db.Omit("Configuration").Create(session).Error
}

func (r *importSessionRepository) GetByID(tenantID, id uint) (*models.ImportSession, error) {
	var session models.ImportSession
	if err := r.db.Where("tenant_id = ?", tenantID).First(&session, id).Error; err != nil {
		return nil, notFound(err, "import session", id)
	}
	return &session, nil
}

func (r *importSessionRepository) Update(session *models.ImportSession) error {
	return r.db.Omit("Configuration").Save(session).Error
}

func (r *importSessionRepository) List(tenantID, bankAccountID uint, offset, limit int) ([]models.ImportSession, error) {
	var sessions []models.ImportSession
	query := r.db.Where("tenant_id = ?", tenantID)
	if bankAccountID != 0 {
		query = query.Where("bank_account_id = ?", bankAccountID)
	}
	err := page(query.Order("created_at DESC, id DESC"), offset, limit).Find(&sessions).Error
	return sessions, err
}

// FindCompletedByHash returns the most recent completed session that imported
// the same file content into the account, or nil when there is none.
func (r *importSessionRepository) FindCompletedByHash(tenantID, bankAccountID uint, hash string, excludeID uint) (*models.ImportSession, error) {
	var session models.ImportSession
	err := r.db.Where("tenant_id = ? AND bank_account_id = ? AND file_hash = ? AND status = ? AND id <> ?",
		tenantID, bankAccountID, hash, models.ImportSessionStatusCompleted, excludeID).
		Order("id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CountInProgressByConfiguration counts sessions still running with the
// configuration, including PENDING rows left by older releases.
func (r *importSessionRepository) CountInProgressByConfiguration(tenantID, configurationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ImportSession{}).
		Where("tenant_id = ? AND configuration_id = ? AND status IN ?", tenantID, configurationID,
			[]models.ImportSessionStatus{models.ImportSessionStatusProcessing, models.ImportSessionStatusPending}).
		Count(&count).Error
	return count, err
}
