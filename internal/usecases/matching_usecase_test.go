package usecases

import (
	"errors"
	"testing"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"gorm.io/gorm"
)

func TestMatchingUseCase_AutoMatchExact(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 1), "1000.00", "Pago cliente")
	ledger := env.seedLedger(t, date(2024, 3, 1), "1000.00", "Factura 1")

	result, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.ExactMatches != 1 || len(result.Applied) != 1 {
		t.Fatalf("Expected one exact match, got: %+v", result)
	}

	applied := result.Applied[0]
	if applied.BankMovementID != bank.ID || applied.LedgerMovementID != ledger.ID {
		t.Errorf("Expected pair %d/%d, got: %+v", bank.ID, ledger.ID, applied)
	}

	rec, err := env.useCases.Matching.GetReconciliation(env.actor, applied.ReconciliationID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.Type != models.ReconciliationTypeAuto || rec.Confidence != 1.0 || !rec.IsActive() {
		t.Errorf("Expected active AUTO reconciliation with confidence 1, got: %+v", rec)
	}
	if len(rec.Lines) != 1 || !rec.Lines[0].Amount.Equal(amount("1000")) {
		t.Errorf("Expected one line of 1000, got: %+v", rec.Lines)
	}

	if env.movement(t, bank.ID).Status != models.BankMovementStatusMatched {
		t.Error("Expected bank movement to be MATCHED")
	}
	if !env.ledgerMovement(t, ledger.ID).IsReconciled() {
		t.Error("Expected ledger movement to be RECONCILED")
	}
	if env.auditCount(t, models.AuditAutoMatchApplied) != 1 {
		t.Error("Expected one auto-match audit record")
	}

	t.Run("should do nothing on a second run", func(t *testing.T) {
		again, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, nil)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if again.Processed != 0 || len(again.Applied) != 0 {
			t.Errorf("Expected nothing to process, got: %+v", again)
		}
	})
}

func TestMatchingUseCase_AutoMatchScoredAndSuggestions(t *testing.T) {
	env := setupTestEnvironment(t)
	scored := env.seedMovement(t, date(2024, 3, 5), "300.00", "Pago proveedor Lopez")
	env.seedLedger(t, date(2024, 3, 6), "300.00", "Pago proveedor Lopez")
	weak := env.seedMovement(t, date(2024, 3, 8), "75.00", "Retiro")
	env.seedLedger(t, date(2024, 3, 10), "75.00", "Caja menor")
	lonely := env.seedMovement(t, date(2024, 3, 20), "9.99", "Otro")

	result, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, &DateRange{From: date(2024, 3, 1), To: date(2024, 3, 31)})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.ScoredMatches != 1 || result.ExactMatches != 0 {
		t.Errorf("Expected one scored match, got: %+v", result)
	}
	if len(result.Applied) != 1 || result.Applied[0].BankMovementID != scored.ID {
		t.Errorf("Expected movement %d to be matched, got: %+v", scored.ID, result.Applied)
	}
	if len(result.Suggestions[weak.ID]) != 1 {
		t.Errorf("Expected one suggestion for movement %d, got: %+v", weak.ID, result.Suggestions)
	}
	if len(result.Unmatched) != 1 || result.Unmatched[0] != lonely.ID {
		t.Errorf("Expected movement %d unmatched, got: %v", lonely.ID, result.Unmatched)
	}
	if env.movement(t, weak.ID).Status != models.BankMovementStatusPending {
		t.Error("Expected suggested movement to stay PENDING")
	}
}

func TestMatchingUseCase_SuggestMatches(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 10), "500.00", "Pago factura 77")
	best := env.seedLedger(t, date(2024, 3, 10), "500.00", "Pago factura 77")
	env.seedLedger(t, date(2024, 3, 11), "500.00", "Pago factura 77")
	env.seedLedger(t, date(2024, 3, 12), "500.00", "Otro")
	env.seedLedger(t, date(2024, 3, 25), "500.00", "Fuera de ventana")

	suggestions, err := env.useCases.Matching.SuggestMatches(env.actor, bank.ID, 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("Expected 3 suggestions inside the date window, got: %d", len(suggestions))
	}
	if suggestions[0].LedgerID != best.ID || suggestions[0].LedgerMovement.ID != best.ID {
		t.Errorf("Expected ledger movement %d first, got: %+v", best.ID, suggestions[0])
	}
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].Score > suggestions[i-1].Score {
			t.Errorf("Expected suggestions sorted by score, got: %v then %v", suggestions[i-1].Score, suggestions[i].Score)
		}
	}

	limited, err := env.useCases.Matching.SuggestMatches(env.actor, bank.ID, 1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected the limit to apply, got: %d", len(limited))
	}
}

func TestMatchingUseCase_ManualMatchAndSingleActive(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 1), "1500.00", "Consignacion cliente")
	first := env.seedLedger(t, date(2024, 3, 1), "1000.00", "Factura 10")
	second := env.seedLedger(t, date(2024, 3, 2), "500.00", "Factura 11")
	other := env.seedMovement(t, date(2024, 3, 1), "1000.00", "Otra")

	rec, err := env.useCases.Matching.ApplyManualMatch(env.actor, bank.ID, []uint{first.ID, second.ID, first.ID}, "split payment")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.Type != models.ReconciliationTypeManual || rec.Confidence != 1.0 {
		t.Errorf("Expected MANUAL reconciliation with confidence 1, got: %+v", rec)
	}
	if len(rec.Lines) != 2 {
		t.Errorf("Expected two lines, got: %d", len(rec.Lines))
	}

	t.Run("should refuse a second reconciliation of the bank movement", func(t *testing.T) {
		third := env.seedLedger(t, date(2024, 3, 1), "1500.00", "Factura 12")
		_, err := env.useCases.Matching.ApplyManualMatch(env.actor, bank.ID, []uint{third.ID}, "")
		if !errors.Is(err, apperrors.ErrAlreadyReconciled) {
			t.Errorf("Expected already reconciled, got: %v", err)
		}
	})

	t.Run("should refuse a reconciled ledger movement", func(t *testing.T) {
		_, err := env.useCases.Matching.ApplyManualMatch(env.actor, other.ID, []uint{first.ID}, "")
		if !errors.Is(err, apperrors.ErrAlreadyReconciled) {
			t.Errorf("Expected already reconciled, got: %v", err)
		}
		if env.movement(t, other.ID).Status != models.BankMovementStatusPending {
			t.Error("Expected the other movement to stay PENDING")
		}
	})

	t.Run("should keep at most one active reconciliation per movement", func(t *testing.T) {
		active, err := env.repos.Reconciliation.List(repositories.ReconciliationFilter{
			TenantID: testTenant,
			Status:   models.ReconciliationStatusActive,
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		perBank := map[uint]int{}
		perLedger := map[uint]int{}
		for _, r := range active {
			perBank[r.BankMovementID]++
			for _, l := range r.Lines {
				perLedger[l.LedgerMovementID]++
			}
		}
		for id, n := range perBank {
			if n > 1 {
				t.Errorf("bank movement %d has %d active reconciliations", id, n)
			}
		}
		for id, n := range perLedger {
			if n > 1 {
				t.Errorf("ledger movement %d has %d active reconciliations", id, n)
			}
		}
	})

	t.Run("should reject unknown ledger movements", func(t *testing.T) {
		_, err := env.useCases.Matching.ApplyManualMatch(env.actor, other.ID, []uint{9999}, "")
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("Expected not found, got: %v", err)
		}
	})

	t.Run("should require the write scope", func(t *testing.T) {
		_, err := env.useCases.Matching.ApplyManualMatch(env.actorWith(auth.ScopeReconciliationsRead), other.ID, []uint{second.ID}, "")
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Errorf("Expected forbidden, got: %v", err)
		}
	})
}

func TestMatchingUseCase_ReversalRoundTrip(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 1), "1000.00", "Pago cliente")
	ledger := env.seedLedger(t, date(2024, 3, 1), "1000.00", "Factura 1")

	rec, err := env.useCases.Matching.ApplyManualMatch(env.actor, bank.ID, []uint{ledger.ID}, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	t.Run("should require a reason", func(t *testing.T) {
		_, err := env.useCases.Matching.ReverseReconciliation(env.actor, rec.ID, "  ")
		if !apperrors.IsValidation(err) {
			t.Errorf("Expected validation error, got: %v", err)
		}
	})

	reversed, err := env.useCases.Matching.ReverseReconciliation(env.actor, rec.ID, "wrong invoice")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if reversed.Status != models.ReconciliationStatusReversed || reversed.ReversalReason != "wrong invoice" || reversed.ReversedAt == nil {
		t.Errorf("Expected REVERSED with reason and time, got: %+v", reversed)
	}
	if env.movement(t, bank.ID).Status != models.BankMovementStatusPending {
		t.Error("Expected bank movement back to PENDING")
	}
	if env.ledgerMovement(t, ledger.ID).IsReconciled() {
		t.Error("Expected ledger movement back to UNRECONCILED")
	}
	if env.auditCount(t, models.AuditReconciliationReversed) != 1 {
		t.Error("Expected one reversal audit record")
	}

	t.Run("should refuse to reverse twice", func(t *testing.T) {
		_, err := env.useCases.Matching.ReverseReconciliation(env.actor, rec.ID, "again")
		if !errors.Is(err, apperrors.ErrAlreadyReversed) {
			t.Errorf("Expected already reversed, got: %v", err)
		}
	})

	t.Run("should allow the movements to be matched again", func(t *testing.T) {
		result, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, nil)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(result.Applied) != 1 {
			t.Errorf("Expected the pair to be matched again, got: %+v", result)
		}
	})
}

func TestMatchingUseCase_Summary(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 1), "1000.00", "Pago cliente")
	env.seedLedger(t, date(2024, 3, 1), "1000.00", "Factura 1")
	env.seedMovement(t, date(2024, 3, 2), "20.00", "Sin contrapartida")

	if _, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	summary, err := env.useCases.Matching.Summary(env.actor, env.bankAccount.ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Total != 2 || summary.Matched != 1 || summary.Pending != 1 || summary.Adjusted != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.ReconciledPercent != 50 {
		t.Errorf("Expected 50%% reconciled, got: %v", summary.ReconciledPercent)
	}
	if summary.ActiveReconciliations != 1 {
		t.Errorf("Expected one active reconciliation, got: %d", summary.ActiveReconciliations)
	}

	recs, err := env.useCases.Matching.ListReconciliations(env.actor, env.bankAccount.ID, models.ReconciliationStatusActive, 1, 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(recs) != 1 || recs[0].BankMovementID != bank.ID {
		t.Errorf("Expected the reconciliation of movement %d, got: %+v", bank.ID, recs)
	}
}

func TestMatchingUseCase_AutoMatchIsolatesPairs(t *testing.T) {
	env := setupTestEnvironment(t)
	good := env.seedMovement(t, date(2024, 3, 1), "1000.00", "Pago cliente")
	goodLedger := env.seedLedger(t, date(2024, 3, 1), "1000.00", "Factura 1")
	bad := env.seedMovement(t, date(2024, 3, 2), "2000.00", "Pago cliente")
	badLedger := env.seedLedger(t, date(2024, 3, 2), "2000.00", "Factura 2")

	err := env.repos.DB.Callback().Create().Before("gorm:create").Register("test:fail_reconciliation", func(db *gorm.DB) {
		if rec, ok := db.Statement.Dest.(*models.Reconciliation); ok && rec.BankMovementID == bad.ID {
			db.AddError(errors.New("deadlock detected"))
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	result, err := env.useCases.Matching.AutoMatch(env.actor, env.bankAccount.ID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.ExactMatches != 1 || len(result.Applied) != 1 || result.Applied[0].BankMovementID != good.ID {
		t.Errorf("Expected only movement %d to be applied, got: %+v", good.ID, result.Applied)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("Expected one failure, got: %+v", result.Failures)
	}
	failure := result.Failures[0]
	if failure.BankMovementID != bad.ID || failure.LedgerMovementID != badLedger.ID || failure.Error == "" {
		t.Errorf("Expected the failure of pair %d/%d, got: %+v", bad.ID, badLedger.ID, failure)
	}

	committed := env.ledgerMovement(t, goodLedger.ID)
	if env.movement(t, good.ID).Status != models.BankMovementStatusMatched || !committed.IsReconciled() {
		t.Error("Expected the committed pair to stay reconciled")
	}
	if env.movement(t, bad.ID).Status != models.BankMovementStatusPending {
		t.Error("Expected the failed bank movement to be rolled back to PENDING")
	}
	rolledBack := env.ledgerMovement(t, badLedger.ID)
	if rolledBack.IsReconciled() {
		t.Error("Expected the failed ledger movement to be rolled back")
	}
	if env.auditCount(t, models.AuditAutoMatchApplied) != 1 {
		t.Error("Expected only the committed pair to be audited")
	}
}

// unavailableAuditRepository rejects every write
type unavailableAuditRepository struct{}

func (unavailableAuditRepository) Create(*models.ReconciliationAudit) error {
	return errors.New("audit store unavailable")
}

func (unavailableAuditRepository) List(repositories.AuditFilter) ([]models.ReconciliationAudit, error) {
	return nil, nil
}

func TestMatchingUseCase_AuditFailureDoesNotFailOperation(t *testing.T) {
	env := setupTestEnvironment(t)
	bank := env.seedMovement(t, date(2024, 3, 1), "500.00", "Consignacion")
	ledger := env.seedLedger(t, date(2024, 3, 1), "500.00", "Recibo 10")

	matcher := NewMatchingUseCase(env.repos, NewAuditService(unavailableAuditRepository{}), DefaultOptions())

	rec, err := matcher.ApplyManualMatch(env.actor, bank.ID, []uint{ledger.ID}, "")
	if err != nil {
		t.Fatalf("Expected the match to succeed without audit, got: %v", err)
	}
	if env.movement(t, bank.ID).Status != models.BankMovementStatusMatched {
		t.Error("Expected the match to be committed")
	}

	reversed, err := matcher.ReverseReconciliation(env.actor, rec.ID, "wrong invoice")
	if err != nil {
		t.Fatalf("Expected the reversal to succeed without audit, got: %v", err)
	}
	if reversed.Status != models.ReconciliationStatusReversed {
		t.Errorf("Expected REVERSED, got: %s", reversed.Status)
	}
	if env.auditCount(t, models.AuditManualMatchApplied) != 0 {
		t.Error("Expected no audit record to be written")
	}
}
