package usecases

import (
	"fmt"
	"strings"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/statement"
	"github.com/limistah/bank-reconciliation/internal/utils"
)

type configurationUseCase struct {
	repos *repositories.Repositories
	audit AuditService
	opts  Options
}

// NewConfigurationUseCase creates a new configuration use case
func NewConfigurationUseCase(repos *repositories.Repositories, audit AuditService, opts Options) ConfigurationUseCase {
	return &configurationUseCase{repos: repos, audit: audit, opts: opts}
}

// ValidateStructure reports every problem of cfg as a field error
func (uc *configurationUseCase) ValidateStructure(cfg *models.ImportConfiguration) []apperrors.FieldError {
	problems := utils.FieldErrors(cfg)
	reported := make(map[string]bool, len(problems))
	for _, p := range problems {
		reported[p.Field] = true
	}
	for _, p := range statement.CheckSchema(statement.SchemaFromConfiguration(cfg)) {
		if p.Field != "" && reported[p.Field] {
			continue
		}
		problems = append(problems, p)
	}
	return problems
}

func (uc *configurationUseCase) check(cfg *models.ImportConfiguration) error {
	if problems := uc.ValidateStructure(cfg); len(problems) > 0 {
		return apperrors.NewValidationError("invalid import configuration", problems...)
	}
	return nil
}

func normalizeConfiguration(cfg *models.ImportConfiguration) {
	cfg.Name = utils.SanitizeString(cfg.Name)
	cfg.BankName = utils.SanitizeString(cfg.BankName)
	cfg.DateFormat = strings.TrimSpace(cfg.DateFormat)
	cfg.FileFormat = models.FileFormat(strings.ToUpper(strings.TrimSpace(string(cfg.FileFormat))))
	if cfg.FileFormat == models.FileFormatDelimited && cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}
}

func (uc *configurationUseCase) Create(actor *auth.Actor, cfg *models.ImportConfiguration) (*models.ImportConfiguration, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeConfigurationsWrite); err != nil {
		return nil, err
	}

	cfg.ID = 0
	cfg.TenantID = actor.TenantID
	cfg.Version = 0
	cfg.IsActive = true
	normalizeConfiguration(cfg)
	if err := uc.check(cfg); err != nil {
		return nil, err
	}

	taken, err := uc.repos.ImportConfiguration.NameTaken(cfg.TenantID, cfg.Name, 0)
	if err != nil {
		return nil, apperrors.Persistence("check configuration name", err)
	}
	if taken {
		return nil, apperrors.NewConflict(apperrors.ConflictDuplicate, "a configuration named %q already exists", cfg.Name)
	}

	if err := uc.repos.ImportConfiguration.Create(cfg); err != nil {
		return nil, apperrors.Persistence("create import configuration", err)
	}

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditConfigurationCreated,
		EntityType: "import_configuration",
		EntityID:   cfg.ID,
		After:      cfg,
	})
	return cfg, nil
}

func (uc *configurationUseCase) Update(actor *auth.Actor, id uint, cfg *models.ImportConfiguration) (*models.ImportConfiguration, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeConfigurationsWrite); err != nil {
		return nil, err
	}

	existing, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	before := *existing

	if cfg.Version != 0 && cfg.Version != existing.Version {
		return nil, apperrors.NewConflict(apperrors.ConflictConcurrentUpdate,
			"import configuration %d has version %d, not %d", id, existing.Version, cfg.Version)
	}

	updated := existing.Clone()
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Version = existing.Version
	updated.Name = cfg.Name
	updated.BankName = cfg.BankName
	updated.FileFormat = cfg.FileFormat
	updated.Delimiter = cfg.Delimiter
	updated.DateFormat = cfg.DateFormat
	updated.HeaderRows = cfg.HeaderRows
	updated.FieldMapping = cfg.FieldMapping
	updated.IsActive = cfg.IsActive
	normalizeConfiguration(updated)
	if err := uc.check(updated); err != nil {
		return nil, err
	}

	taken, err := uc.repos.ImportConfiguration.NameTaken(actor.TenantID, updated.Name, id)
	if err != nil {
		return nil, apperrors.Persistence("check configuration name", err)
	}
	if taken {
		return nil, apperrors.NewConflict(apperrors.ConflictDuplicate, "a configuration named %q already exists", updated.Name)
	}

	if err := uc.repos.ImportConfiguration.Update(updated); err != nil {
		return nil, apperrors.Persistence("update import configuration", err)
	}

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditConfigurationUpdated,
		EntityType: "import_configuration",
		EntityID:   id,
		Before:     before,
		After:      updated,
	})
	return uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
}

func (uc *configurationUseCase) Duplicate(actor *auth.Actor, id uint, name string) (*models.ImportConfiguration, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeConfigurationsWrite); err != nil {
		return nil, err
	}

	source, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	copied := source.Clone()
	copied.Name = utils.SanitizeString(name)
	if copied.Name == "" {
		copied.Name = source.Name + " (copy)"
	}

	taken, err := uc.repos.ImportConfiguration.NameTaken(actor.TenantID, copied.Name, 0)
	if err != nil {
		return nil, apperrors.Persistence("check configuration name", err)
	}
	if taken {
		return nil, apperrors.NewConflict(apperrors.ConflictDuplicate, "a configuration named %q already exists", copied.Name)
	}

	if err := uc.repos.ImportConfiguration.Create(copied); err != nil {
		return nil, apperrors.Persistence("duplicate import configuration", err)
	}

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditConfigurationDuplicated,
		EntityType: "import_configuration",
		EntityID:   copied.ID,
		After:      copied,
		Detail:     fmt.Sprintf("duplicated from configuration %d", source.ID),
	})
	return copied, nil
}

func (uc *configurationUseCase) Delete(actor *auth.Actor, id uint) error {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeConfigurationsWrite); err != nil {
		return err
	}

	existing, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
	if err != nil {
		return err
	}

	inProgress, err := uc.repos.ImportSession.CountInProgressByConfiguration(actor.TenantID, id)
	if err != nil {
		return apperrors.Persistence("count import sessions", err)
	}
	if inProgress > 0 {
		return apperrors.NewConflict(apperrors.ConflictConfigurationInUse,
			"configuration %d is used by %d import(s) in progress", id, inProgress)
	}

	if err := uc.repos.ImportConfiguration.Delete(actor.TenantID, id); err != nil {
		return apperrors.Persistence("delete import configuration", err)
	}

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditConfigurationDeleted,
		EntityType: "import_configuration",
		EntityID:   id,
		Before:     existing,
	})
	return nil
}

func (uc *configurationUseCase) Get(actor *auth.Actor, id uint) (*models.ImportConfiguration, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	return uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
}

func (uc *configurationUseCase) List(actor *auth.Actor, activeOnly bool) ([]models.ImportConfiguration, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	return uc.repos.ImportConfiguration.List(actor.TenantID, activeOnly)
}

// ValidateSample checks the first maxRows data rows of a sample file against a stored configuration
func (uc *configurationUseCase) ValidateSample(actor *auth.Actor, id uint, fileName string, data []byte, maxRows int) (*statement.ValidationResult, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeConfigurationsWrite); err != nil {
		return nil, err
	}

	cfg, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = uc.opts.PreviewRows
	}

	return validateData(cfg, fileName, data, statement.Options{MaxRows: maxRows, SampleSize: uc.opts.SampleRows})
}

// validateData reads data with cfg's layout and validates its rows
func validateData(cfg *models.ImportConfiguration, fileName string, data []byte, opts statement.Options) (*statement.ValidationResult, error) {
	schema := statement.SchemaFromConfiguration(cfg)
	if problems := statement.CheckSchema(schema); len(problems) > 0 {
		return nil, apperrors.NewValidationError("invalid import configuration", problems...)
	}

	rows, err := statement.ReadRows(data, schema)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot read %s", fileName),
			apperrors.FieldError{Message: err.Error()})
	}

	result := statement.Validate(rows, schema, opts)
	return &result, nil
}
