package repositories

import (
	"encoding/json"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

type importConfigurationRepository struct {
	db *gorm.DB
}

// NewImportConfigurationRepository creates a new import configuration repository
func NewImportConfigurationRepository(db *gorm.DB) ImportConfigurationRepository {
	return &importConfigurationRepository{db: db}
}

func (r *importConfigurationRepository) Create(cfg *models.ImportConfiguration) error {
	return r.db.Create(cfg).Error
}

func (r *importConfigurationRepository) GetByID(tenantID, id uint) (*models.ImportConfiguration, error) {
	var cfg models.ImportConfiguration
	if err := r.db.Where("tenant_id = ?", tenantID).First(&cfg, id).Error; err != nil {
		return nil, notFound(err, "import configuration", id)
	}
	return &cfg, nil
}

func (r *importConfigurationRepository) List(tenantID uint, activeOnly bool) ([]models.ImportConfiguration, error) {
	var configs []models.ImportConfiguration
	query := r.db.Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name").Find(&configs).Error
	return configs, err
}

// Update saves cfg only if nobody changed it since it was read
func (r *importConfigurationRepository) Update(cfg *models.ImportConfiguration) error {
	// Optimistic locking: update only if version matches
	result := r.db.Model(&models.ImportConfiguration{}).
		Where("id = ? AND tenant_id = ? AND version = ?", cfg.ID, cfg.TenantID, cfg.Version).
		Updates(map[string]interface{}{
			"name":          cfg.Name,
			"bank_name":     cfg.BankName,
			"file_format":   cfg.FileFormat,
			"delimiter":     cfg.Delimiter,
			"date_format":   cfg.DateFormat,
			"header_rows":   cfg.HeaderRows,
			"field_mapping": gorm.Expr("?", mappingJSON(cfg.FieldMapping)),
			"is_active":     cfg.IsActive,
			"version":       cfg.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflict(apperrors.ConflictConcurrentUpdate,
			"import configuration %d was modified concurrently", cfg.ID)
	}
	cfg.Version++
	return nil
}

func (r *importConfigurationRepository) Delete(tenantID, id uint) error {
	result := r.db.Where("tenant_id = ?", tenantID).Delete(&models.ImportConfiguration{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "import configuration", id)
	}
	return nil
}

func (r *importConfigurationRepository) NameTaken(tenantID uint, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ImportConfiguration{}).
		Where("tenant_id = ? AND name = ? AND id <> ?", tenantID, name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// mappingJSON encodes the field mapping the way the json serializer stores it
func mappingJSON(mapping map[string]int) string {
	b, err := json.Marshal(mapping)
	if err != nil {
		return "{}"
	}
	return string(b)
}
