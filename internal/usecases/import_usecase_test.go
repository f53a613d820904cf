package usecases

import (
	"errors"
	"strings"
	"testing"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/statement"
	"gorm.io/gorm"
)

const marchStatement = "date,description,amount,reference\n" +
	"2024-03-01,Pago cliente ACME,1000.00,R1\n" +
	"2024-03-02,Transferencia proveedor,\"-2,500.00\",R2\n" +
	"2024-03-03,Cheque devuelto,12..5,R3\n" +
	"2024-03-04,COMISION MANEJO CUENTA,-5000,R4\n" +
	"2024-03-05,Intereses,35.10,R5\n"

func setupImport(t *testing.T) (*testEnvironment, *models.ImportConfiguration) {
	t.Helper()
	env := setupTestEnvironment(t)
	cfg, err := env.useCases.Configuration.Create(env.actor, testConfiguration("Banco Ejemplo CSV"))
	if err != nil {
		t.Fatalf("failed to create configuration: %v", err)
	}
	return env, cfg
}

func TestImportUseCase_PartialSuccess(t *testing.T) {
	env, cfg := setupImport(t)

	result, err := env.useCases.Import.Import(env.actor, ImportRequest{
		BankAccountID:   env.bankAccount.ID,
		ConfigurationID: cfg.ID,
		FileName:        "march.csv",
		Data:            []byte(marchStatement),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	session := result.Session
	if session.Status != models.ImportSessionStatusCompleted {
		t.Errorf("Expected COMPLETED session, got: %s", session.Status)
	}
	if session.TotalRows != 5 || session.ParsedRows != 4 || session.StoredRows != 4 {
		t.Errorf("Expected 5 seen, 4 parsed, 4 stored; got %d, %d, %d", session.TotalRows, session.ParsedRows, session.StoredRows)
	}
	if len(session.Errors) != 1 || session.Errors[0].Row != 3 {
		t.Errorf("Expected a single error on row 3, got: %v", session.Errors)
	}
	if session.FileHash != statement.ContentHash([]byte(marchStatement)) {
		t.Error("Expected the session to carry the content hash")
	}

	movements, err := env.useCases.Import.ListMovements(env.actor, env.bankAccount.ID, models.BankMovementStatusPending, 1, 50)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(movements) != 4 {
		t.Fatalf("Expected 4 pending movements, got: %d", len(movements))
	}
	if !movements[1].Amount.Equal(amount("-2500")) {
		t.Errorf("Expected -2500 on the second movement, got: %s", movements[1].Amount)
	}
	if !movements[0].ValueDate.Equal(movements[0].TransactionDate) {
		t.Error("Expected value date to default to the transaction date")
	}
	if movements[0].ImportSessionID != session.ID {
		t.Error("Expected movements to reference their session")
	}

	stored, err := env.useCases.Import.GetSession(env.actor, session.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(stored.Errors) != 1 {
		t.Errorf("Expected row errors to be persisted, got: %v", stored.Errors)
	}
	if env.auditCount(t, models.AuditStatementImported) != 1 {
		t.Error("Expected one import audit record")
	}
}

func TestImportUseCase_Duplicates(t *testing.T) {
	env, cfg := setupImport(t)
	request := ImportRequest{
		BankAccountID:   env.bankAccount.ID,
		ConfigurationID: cfg.ID,
		FileName:        "march.csv",
		Data:            []byte(marchStatement),
	}

	if _, err := env.useCases.Import.Import(env.actor, request); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	t.Run("should flag but store a re-imported file", func(t *testing.T) {
		result, err := env.useCases.Import.Import(env.actor, request)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Session.DuplicateRows != 4 {
			t.Errorf("Expected 4 duplicates, got: %d", result.Session.DuplicateRows)
		}
		if len(result.Duplicates.Existing) != 4 || result.Duplicates.TotalDuplicates != 4 {
			t.Errorf("Expected 4 matches against stored movements, got: %+v", result.Duplicates)
		}
		if result.Session.StoredRows != 4 {
			t.Errorf("Expected duplicates to be stored by default, got: %d", result.Session.StoredRows)
		}
		found := false
		for _, w := range result.Session.Warnings {
			if strings.Contains(w, "already imported") {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected a same-file warning, got: %v", result.Session.Warnings)
		}
	})

	t.Run("should skip duplicates on request", func(t *testing.T) {
		request.SkipDuplicates = true
		result, err := env.useCases.Import.Import(env.actor, request)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Session.StoredRows != 0 {
			t.Errorf("Expected nothing stored, got: %d", result.Session.StoredRows)
		}
		if result.Session.Status != models.ImportSessionStatusCompleted {
			t.Errorf("Expected COMPLETED session, got: %s", result.Session.Status)
		}
	})
}

func TestImportUseCase_DetectDuplicates(t *testing.T) {
	env := setupTestEnvironment(t)
	existing := env.seedMovement(t, date(2024, 3, 1), "-5000", "COMISION")

	candidates := []statement.Candidate{
		{Row: 1, TransactionDate: date(2024, 3, 1), Amount: amount("-5000.00"), Description: "Comisión"},
		{Row: 2, TransactionDate: date(2024, 3, 1), Amount: amount("-4999.99"), Description: "Comisión"},
		{Row: 3, TransactionDate: date(2024, 3, 2), Amount: amount("10"), Description: "Abono"},
		{Row: 4, TransactionDate: date(2024, 3, 2), Amount: amount("10.00"), Description: "ABONO"},
	}

	report, err := env.useCases.Import.DetectDuplicates(env.actor, env.bankAccount.ID, candidates)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(report.Existing) != 1 || report.Existing[0].Row != 1 || report.Existing[0].MovementID != existing.ID {
		t.Errorf("Expected row 1 to match movement %d, got: %+v", existing.ID, report.Existing)
	}
	if len(report.InBatch) != 1 || report.InBatch[0].Row != 4 || report.InBatch[0].FirstRow != 3 {
		t.Errorf("Expected row 4 to repeat row 3, got: %+v", report.InBatch)
	}
	if report.TotalDuplicates != 2 {
		t.Errorf("Expected 2 duplicates in total, got: %d", report.TotalDuplicates)
	}
}

func TestImportUseCase_Failures(t *testing.T) {
	env, cfg := setupImport(t)

	t.Run("should fail the session on an empty file", func(t *testing.T) {
		_, err := env.useCases.Import.Import(env.actor, ImportRequest{
			BankAccountID:   env.bankAccount.ID,
			ConfigurationID: cfg.ID,
			FileName:        "empty.csv",
		})
		if !apperrors.IsValidation(err) {
			t.Errorf("Expected validation error, got: %v", err)
		}

		sessions, err := env.useCases.Import.ListSessions(env.actor, env.bankAccount.ID, 1, 10)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(sessions) != 1 || sessions[0].Status != models.ImportSessionStatusFailed {
			t.Errorf("Expected one FAILED session, got: %+v", sessions)
		}
		if env.auditCount(t, models.AuditStatementImportFailed) != 1 {
			t.Error("Expected one failed import audit record")
		}
	})

	t.Run("should fail when no row parses", func(t *testing.T) {
		_, err := env.useCases.Import.Import(env.actor, ImportRequest{
			BankAccountID:   env.bankAccount.ID,
			ConfigurationID: cfg.ID,
			FileName:        "bad.csv",
			Data:            []byte("date,description,amount\nnot a date,X,1\n"),
		})
		var validation *apperrors.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
		if len(validation.Details) == 0 {
			t.Error("Expected row details")
		}
	})

	t.Run("should reject an unknown bank account", func(t *testing.T) {
		_, err := env.useCases.Import.Import(env.actor, ImportRequest{
			BankAccountID:   999,
			ConfigurationID: cfg.ID,
			Data:            []byte(marchStatement),
		})
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected not found, got: %v", err)
		}
	})

	t.Run("should not see another tenant's configuration", func(t *testing.T) {
		other := *env.actor
		other.TenantID = 2
		_, err := env.useCases.Import.ValidateFile(&other, cfg.ID, "march.csv", []byte(marchStatement))
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected not found, got: %v", err)
		}
	})
}

func TestImportUseCase_ValidateFile(t *testing.T) {
	env, cfg := setupImport(t)

	result, err := env.useCases.Import.ValidateFile(env.actor, cfg.ID, "march.csv", []byte(marchStatement))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Valid {
		t.Error("Expected the file to be invalid because of row 3")
	}
	if result.TotalRows != 5 || result.ValidRows != 4 {
		t.Errorf("Expected 5 rows and 4 valid, got %d and %d", result.TotalRows, result.ValidRows)
	}

	movements, err := env.useCases.Import.ListMovements(env.actor, env.bankAccount.ID, "", 1, 50)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("Expected validation to store nothing, got %d movements", len(movements))
	}
}

func TestImportUseCase_RowCapOnlyLimitsValidation(t *testing.T) {
	env, cfg := setupImport(t)
	opts := DefaultOptions()
	opts.MaxRows = 3
	importer := NewImportUseCase(env.repos, NewAuditService(env.repos.Audit), opts)

	t.Run("should import every row of a file above the cap", func(t *testing.T) {
		result, err := importer.Import(env.actor, ImportRequest{
			BankAccountID:   env.bankAccount.ID,
			ConfigurationID: cfg.ID,
			FileName:        "march.csv",
			Data:            []byte(marchStatement),
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Session.Status != models.ImportSessionStatusCompleted || result.Session.StoredRows != 4 {
			t.Errorf("Expected a COMPLETED session with 4 rows, got: %+v", result.Session)
		}
	})

	t.Run("should warn when validation is truncated", func(t *testing.T) {
		result, err := importer.ValidateFile(env.actor, cfg.ID, "march.csv", []byte(marchStatement))
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.TotalRows != 3 {
			t.Errorf("Expected 3 rows validated, got: %d", result.TotalRows)
		}
		found := false
		for _, w := range result.Warnings {
			if strings.Contains(w, "only the first 3") {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected a truncation warning, got: %v", result.Warnings)
		}
	})
}

func TestImportUseCase_StoreIsAllOrNothing(t *testing.T) {
	env, cfg := setupImport(t)

	// Completing the session is the last write of the unit of work
	err := env.repos.DB.Callback().Update().Before("gorm:update").Register("test:fail_session_completion", func(db *gorm.DB) {
		if session, ok := db.Statement.Dest.(*models.ImportSession); ok && session.Status == models.ImportSessionStatusCompleted {
			db.AddError(errors.New("connection reset"))
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	_, err = env.useCases.Import.Import(env.actor, ImportRequest{
		BankAccountID:   env.bankAccount.ID,
		ConfigurationID: cfg.ID,
		FileName:        "march.csv",
		Data:            []byte(marchStatement),
	})
	if err == nil {
		t.Fatal("Expected the import to fail")
	}

	movements, err := env.useCases.Import.ListMovements(env.actor, env.bankAccount.ID, "", 1, 50)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("Expected no movement to survive the rollback, got: %d", len(movements))
	}

	sessions, err := env.useCases.Import.ListSessions(env.actor, env.bankAccount.ID, 1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Status != models.ImportSessionStatusFailed || sessions[0].StoredRows != 0 {
		t.Errorf("Expected one FAILED session with nothing stored, got: %+v", sessions)
	}
}
