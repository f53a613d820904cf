package usecases

import (
	"testing"
	"time"

	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/config"
	"github.com/limistah/bank-reconciliation/internal/database"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/shopspring/decimal"
)

const testTenant = uint(1)

// testEnvironment is an in-memory database seeded with one bank account and its chart accounts
type testEnvironment struct {
	repos       *repositories.Repositories
	useCases    *UseCases
	actor       *auth.Actor
	bankAccount *models.BankAccount
	accounts    map[string]*models.ChartAccount
}

func allScopes() []string {
	scopes := make([]string, 0, len(auth.AllScopes))
	for _, s := range auth.AllScopes {
		scopes = append(scopes, string(s))
	}
	return scopes
}

// Helper function to set up test environment backed by sqlite
func setupTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	db, err := database.InitWithConfig(&config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		App:      config.AppConfig{Environment: "test"},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repos := repositories.NewRepositories(db)
	env := &testEnvironment{
		repos:    repos,
		useCases: NewUseCases(repos, DefaultOptions()),
		actor: &auth.Actor{
			UserID:   7,
			Email:    "conciliador@example.com",
			TenantID: testTenant,
			Scopes:   allScopes(),
		},
		accounts: make(map[string]*models.ChartAccount),
	}

	for _, a := range []models.ChartAccount{
		{Code: "111005", Name: "Bank - checking", Nature: "ASSET"},
		{Code: "130505", Name: "Customers", Nature: "ASSET"},
		{Code: "530505", Name: "Bank commissions", Nature: "EXPENSE"},
		{Code: "421005", Name: "Interest income", Nature: "INCOME"},
		{Code: "530515", Name: "Bank charges", Nature: "EXPENSE"},
		{Code: "539595", Name: "Bank adjustments", Nature: "EXPENSE"},
	} {
		account := a
		account.TenantID = testTenant
		if err := repos.ChartAccount.Create(&account); err != nil {
			t.Fatalf("failed to seed chart account: %v", err)
		}
		env.accounts[account.Code] = &account
	}

	env.bankAccount = &models.BankAccount{
		TenantID:        testTenant,
		Name:            "Checking",
		Number:          "001-22334455",
		BankName:        "Banco Ejemplo",
		Currency:        "COP",
		LedgerAccountID: env.accounts["111005"].ID,
	}
	if err := repos.BankAccount.Create(env.bankAccount); err != nil {
		t.Fatalf("failed to seed bank account: %v", err)
	}

	return env
}

func (env *testEnvironment) actorWith(scopes ...auth.Scope) *auth.Actor {
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, string(s))
	}
	return &auth.Actor{UserID: 8, Email: "limited@example.com", TenantID: testTenant, Scopes: names}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func uintPtr(v uint) *uint { return &v }

// seedMovement stores a PENDING bank movement directly
func (env *testEnvironment) seedMovement(t *testing.T, on time.Time, amt, description string) models.BankMovement {
	t.Helper()
	m := models.BankMovement{
		TenantID:        testTenant,
		BankAccountID:   env.bankAccount.ID,
		TransactionDate: on,
		ValueDate:       on,
		Amount:          amount(amt),
		Description:     description,
		Status:          models.BankMovementStatusPending,
	}
	batch := []models.BankMovement{m}
	if err := env.repos.BankMovement.CreateBatch(batch); err != nil {
		t.Fatalf("failed to seed bank movement: %v", err)
	}
	return batch[0]
}

// seedLedger posts a journal document whose bank-side line has the given signed amount
func (env *testEnvironment) seedLedger(t *testing.T, on time.Time, amt, concept string) models.LedgerMovement {
	t.Helper()
	value := amount(amt)
	bankLine := models.LedgerMovement{AccountID: env.bankAccount.LedgerAccountID, Concept: concept}
	counter := models.LedgerMovement{AccountID: env.accounts["130505"].ID, Concept: concept}
	if value.IsNegative() {
		bankLine.Credit, counter.Debit = value.Abs(), value.Abs()
	} else {
		bankLine.Debit, counter.Credit = value, value
	}

	doc := &models.LedgerDocument{
		TenantID:    testTenant,
		Type:        models.LedgerDocumentTypeJournal,
		Date:        on,
		Description: concept,
		Movements:   []models.LedgerMovement{bankLine, counter},
	}
	if err := env.repos.Ledger.CreateDocument(doc); err != nil {
		t.Fatalf("failed to seed ledger document: %v", err)
	}
	return doc.Movements[0]
}

func (env *testEnvironment) movement(t *testing.T, id uint) *models.BankMovement {
	t.Helper()
	m, err := env.repos.BankMovement.GetByID(testTenant, id)
	if err != nil {
		t.Fatalf("failed to load bank movement %d: %v", id, err)
	}
	return m
}

func (env *testEnvironment) ledgerMovement(t *testing.T, id uint) models.LedgerMovement {
	t.Helper()
	ms, err := env.repos.Ledger.GetMovements(testTenant, []uint{id})
	if err != nil || len(ms) != 1 {
		t.Fatalf("failed to load ledger movement %d: %v", id, err)
	}
	return ms[0]
}

func (env *testEnvironment) auditCount(t *testing.T, operation string) int {
	t.Helper()
	records, err := env.repos.Audit.List(repositories.AuditFilter{TenantID: testTenant, Operation: operation})
	if err != nil {
		t.Fatalf("failed to list audit records: %v", err)
	}
	return len(records)
}

func testConfiguration(name string) *models.ImportConfiguration {
	return &models.ImportConfiguration{
		Name:       name,
		BankName:   "Banco Ejemplo",
		FileFormat: models.FileFormatDelimited,
		Delimiter:  ",",
		DateFormat: "%Y-%m-%d",
		HeaderRows: 1,
		FieldMapping: map[string]int{
			models.FieldDate:        0,
			models.FieldDescription: 1,
			models.FieldAmount:      2,
			models.FieldReference:   3,
		},
	}
}
