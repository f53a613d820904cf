package usecases

import (
	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/statement"
)

// ConfigurationUseCase manages statement import configurations
type ConfigurationUseCase interface {
	Create(actor *auth.Actor, cfg *models.ImportConfiguration) (*models.ImportConfiguration, error)
	Update(actor *auth.Actor, id uint, cfg *models.ImportConfiguration) (*models.ImportConfiguration, error)
	Duplicate(actor *auth.Actor, id uint, name string) (*models.ImportConfiguration, error)
	Delete(actor *auth.Actor, id uint) error
	Get(actor *auth.Actor, id uint) (*models.ImportConfiguration, error)
	List(actor *auth.Actor, activeOnly bool) ([]models.ImportConfiguration, error)
	ValidateStructure(cfg *models.ImportConfiguration) []apperrors.FieldError
	ValidateSample(actor *auth.Actor, id uint, fileName string, data []byte, maxRows int) (*statement.ValidationResult, error)
}

// ImportUseCase turns statement files into bank movements
type ImportUseCase interface {
	ValidateFile(actor *auth.Actor, configurationID uint, fileName string, data []byte) (*statement.ValidationResult, error)
	Import(actor *auth.Actor, req ImportRequest) (*ImportResult, error)
	DetectDuplicates(actor *auth.Actor, bankAccountID uint, candidates []statement.Candidate) (*DuplicateReport, error)
	GetSession(actor *auth.Actor, id uint) (*models.ImportSession, error)
	ListSessions(actor *auth.Actor, bankAccountID uint, page, pageSize int) ([]models.ImportSession, error)
	ListMovements(actor *auth.Actor, bankAccountID uint, status models.BankMovementStatus, page, pageSize int) ([]models.BankMovement, error)
}

// MatchingUseCase reconciles bank movements against the ledger
type MatchingUseCase interface {
	AutoMatch(actor *auth.Actor, bankAccountID uint, period *DateRange) (*AutoMatchResult, error)
	SuggestMatches(actor *auth.Actor, bankMovementID uint, limit int) ([]Suggestion, error)
	ApplyManualMatch(actor *auth.Actor, bankMovementID uint, ledgerMovementIDs []uint, notes string) (*models.Reconciliation, error)
	ReverseReconciliation(actor *auth.Actor, id uint, reason string) (*models.Reconciliation, error)
	GetReconciliation(actor *auth.Actor, id uint) (*models.Reconciliation, error)
	ListReconciliations(actor *auth.Actor, bankAccountID uint, status models.ReconciliationStatus, page, pageSize int) ([]models.Reconciliation, error)
	Summary(actor *auth.Actor, bankAccountID uint) (*ReconciliationSummary, error)
}

// AdjustmentUseCase proposes and books ledger entries for bank-only movements
type AdjustmentUseCase interface {
	Preview(actor *auth.Actor, bankAccountID uint, period *DateRange) (*AdjustmentPreview, error)
	Apply(actor *auth.Actor, bankMovementIDs []uint, notes string) (*AdjustmentResult, error)
	GetAccountingConfig(actor *auth.Actor, bankAccountID uint) (*models.AccountingConfig, error)
	SaveAccountingConfig(actor *auth.Actor, cfg *models.AccountingConfig) (*models.AccountingConfig, error)
}

// UseCases holds all use case interfaces
type UseCases struct {
	Configuration ConfigurationUseCase
	Import        ImportUseCase
	Matching      MatchingUseCase
	Adjustment    AdjustmentUseCase
	Audit         AuditService
}

// NewUseCases creates a new instance of all use cases
func NewUseCases(repos *repositories.Repositories, opts Options) *UseCases {
	audit := NewAuditService(repos.Audit)

	return &UseCases{
		Configuration: NewConfigurationUseCase(repos, audit, opts),
		Import:        NewImportUseCase(repos, audit, opts),
		Matching:      NewMatchingUseCase(repos, audit, opts),
		Adjustment:    NewAdjustmentUseCase(repos, audit, opts),
		Audit:         audit,
	}
}
