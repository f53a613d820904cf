package repositories

import (
	"time"

	"github.com/limistah/bank-reconciliation/internal/models"
	"gorm.io/gorm"
)

// BankAccountRepository defines the interface for bank account lookups
type BankAccountRepository interface {
	Create(account *models.BankAccount) error
	GetByID(tenantID, id uint) (*models.BankAccount, error)
	List(tenantID uint) ([]models.BankAccount, error)
}

// ChartAccountRepository gives read access to the chart of accounts
type ChartAccountRepository interface {
	Create(account *models.ChartAccount) error
	GetByID(tenantID, id uint) (*models.ChartAccount, error)
	GetByIDs(tenantID uint, ids []uint) (map[uint]models.ChartAccount, error)
}

// ImportConfigurationRepository defines the interface for statement layout operations
type ImportConfigurationRepository interface {
	Create(cfg *models.ImportConfiguration) error
	GetByID(tenantID, id uint) (*models.ImportConfiguration, error)
	List(tenantID uint, activeOnly bool) ([]models.ImportConfiguration, error)
	Update(cfg *models.ImportConfiguration) error
	Delete(tenantID, id uint) error
	NameTaken(tenantID uint, name string, excludeID uint) (bool, error)
}

// ImportSessionRepository defines the interface for import session operations
type ImportSessionRepository interface {
	Create(session *models.ImportSession) error
	GetByID(tenantID, id uint) (*models.ImportSession, error)
	Update(session *models.ImportSession) error
	List(tenantID, bankAccountID uint, offset, limit int) ([]models.ImportSession, error)
	FindCompletedByHash(tenantID, bankAccountID uint, hash string, excludeID uint) (*models.ImportSession, error)
	CountInProgressByConfiguration(tenantID, configurationID uint) (int64, error)
}

// MovementFilter narrows bank movement queries. Zero values mean "any".
type MovementFilter struct {
	TenantID      uint
	BankAccountID uint
	Status        models.BankMovementStatus
	From          *time.Time
	To            *time.Time
	Offset        int
	Limit         int
}

// BankMovementRepository defines the interface for bank movement operations
type BankMovementRepository interface {
	CreateBatch(movements []models.BankMovement) error
	GetByID(tenantID, id uint) (*models.BankMovement, error)
	GetByIDs(tenantID uint, ids []uint) ([]models.BankMovement, error)
	List(filter MovementFilter) ([]models.BankMovement, error)
	TransitionStatus(tenantID, id uint, from, to models.BankMovementStatus) error
	CountByStatus(tenantID, bankAccountID uint) (map[models.BankMovementStatus]int64, error)
}

// LedgerRepository is the accounting ledger seen by the reconciliation engine
type LedgerRepository interface {
	CreateDocument(doc *models.LedgerDocument) error
	GetMovements(tenantID uint, ids []uint) ([]models.LedgerMovement, error)
	ListUnreconciled(tenantID, accountID uint, from, to *time.Time) ([]models.LedgerMovement, error)
	SetReconciliationStatus(tenantID uint, ids []uint, from, to models.LedgerReconciliationStatus) error
}

// ReconciliationFilter narrows reconciliation queries
type ReconciliationFilter struct {
	TenantID      uint
	BankAccountID uint
	Status        models.ReconciliationStatus
	Offset        int
	Limit         int
}

// ReconciliationRepository defines the interface for reconciliation operations
type ReconciliationRepository interface {
	Create(rec *models.Reconciliation) error
	GetByID(tenantID, id uint) (*models.Reconciliation, error)
	List(filter ReconciliationFilter) ([]models.Reconciliation, error)
	HasActiveForBankMovement(bankMovementID uint) (bool, error)
	HasActiveForLedgerMovements(ledgerMovementIDs []uint) (bool, error)
	MarkReversed(tenantID, id uint, by, reason string, at time.Time) error
}

// AccountingConfigRepository defines the interface for adjustment account mappings
type AccountingConfigRepository interface {
	GetByBankAccount(tenantID, bankAccountID uint) (*models.AccountingConfig, error)
	Save(cfg *models.AccountingConfig) error
}

// AuditFilter narrows audit queries
type AuditFilter struct {
	TenantID         uint
	Operation        string
	EntityType       string
	EntityID         uint
	ReconciliationID uint
	Offset           int
	Limit            int
}

// AuditRepository is append-only: records are never updated or deleted
type AuditRepository interface {
	Create(record *models.ReconciliationAudit) error
	List(filter AuditFilter) ([]models.ReconciliationAudit, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	BankAccount         BankAccountRepository
	ChartAccount        ChartAccountRepository
	ImportConfiguration ImportConfigurationRepository
	ImportSession       ImportSessionRepository
	BankMovement        BankMovementRepository
	Ledger              LedgerRepository
	Reconciliation      ReconciliationRepository
	AccountingConfig    AccountingConfigRepository
	Audit               AuditRepository
	DB                  *gorm.DB
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		BankAccount:         NewBankAccountRepository(db),
		ChartAccount:        NewChartAccountRepository(db),
		ImportConfiguration: NewImportConfigurationRepository(db),
		ImportSession:       NewImportSessionRepository(db),
		BankMovement:        NewBankMovementRepository(db),
		Ledger:              NewLedgerRepository(db),
		Reconciliation:      NewReconciliationRepository(db),
		AccountingConfig:    NewAccountingConfigRepository(db),
		Audit:               NewAuditRepository(db),
		DB:                  db,
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (r *Repositories) Transaction(fn func(tx *Repositories) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
