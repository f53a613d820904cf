package usecases

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/matching"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/utils"
)

// CriterionManual is recorded on reconciliations chosen by a person
const CriterionManual = "manual"

// AppliedMatch is a pair reconciled by AutoMatch
type AppliedMatch struct {
	ReconciliationID uint    `json:"reconciliation_id"`
	BankMovementID   uint    `json:"bank_movement_id"`
	LedgerMovementID uint    `json:"ledger_movement_id"`
	Score            float64 `json:"score"`
	Exact            bool    `json:"exact"`
}

// PairFailure is a pair AutoMatch could not reconcile
type PairFailure struct {
	BankMovementID   uint   `json:"bank_movement_id"`
	LedgerMovementID uint   `json:"ledger_movement_id"`
	Error            string `json:"error"`
}

// AutoMatchResult summarizes an automatic matching run
type AutoMatchResult struct {
	BankAccountID   uint                          `json:"bank_account_id"`
	Processed       int                           `json:"processed"`
	ExactMatches    int                           `json:"exact_matches"`
	ScoredMatches   int                           `json:"scored_matches"`
	Applied         []AppliedMatch                `json:"applied"`
	Failures        []PairFailure                 `json:"failures"`
	Suggestions     map[uint][]matching.Candidate `json:"suggestions"`
	Unmatched       []uint                        `json:"unmatched"`
	LedgerAvailable int                           `json:"ledger_available"`
}

// Suggestion is a ranked ledger movement proposed for a bank movement
type Suggestion struct {
	matching.Candidate
	LedgerMovement models.LedgerMovement `json:"ledger_movement"`
}

// ReconciliationSummary counts the movements of a bank account per status
type ReconciliationSummary struct {
	BankAccountID         uint    `json:"bank_account_id"`
	Pending               int64   `json:"pending"`
	Matched               int64   `json:"matched"`
	Adjusted              int64   `json:"adjusted"`
	Total                 int64   `json:"total"`
	ReconciledPercent     float64 `json:"reconciled_percent"`
	ActiveReconciliations int     `json:"active_reconciliations"`
}

type matchingUseCase struct {
	repos  *repositories.Repositories
	audit  AuditService
	policy matching.Policy
}

// NewMatchingUseCase creates a new matching use case
func NewMatchingUseCase(repos *repositories.Repositories, audit AuditService, opts Options) MatchingUseCase {
	return &matchingUseCase{repos: repos, audit: audit, policy: opts.Policy}
}

func bankItem(m models.BankMovement) matching.BankItem {
	return matching.BankItem{ID: m.ID, Date: m.TransactionDate, Amount: m.Amount, Description: m.Description}
}

func ledgerItem(m models.LedgerMovement) matching.LedgerItem {
	return matching.LedgerItem{ID: m.ID, Date: m.Date, Amount: m.SignedAmount(), Concept: m.Concept}
}

// AutoMatch reconciles the PENDING movements of a bank account that match a
// ledger movement exactly or score above the auto-apply threshold. Every pair
// is committed on its own; a failing pair does not undo the others.
func (uc *matchingUseCase) AutoMatch(actor *auth.Actor, bankAccountID uint, period *DateRange) (*AutoMatchResult, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsWrite); err != nil {
		return nil, err
	}
	if err := uc.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching policy: %w", err)
	}

	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, bankAccountID)
	if err != nil {
		return nil, err
	}

	from, to := period.bounds(0)
	pending, err := uc.repos.BankMovement.List(repositories.MovementFilter{
		TenantID:      actor.TenantID,
		BankAccountID: account.ID,
		Status:        models.BankMovementStatusPending,
		From:          from,
		To:            to,
	})
	if err != nil {
		return nil, apperrors.Persistence("list pending bank movements", err)
	}

	ledgerFrom, ledgerTo := period.bounds(uc.policy.DateToleranceDays)
	ledger, err := uc.repos.Ledger.ListUnreconciled(actor.TenantID, account.LedgerAccountID, ledgerFrom, ledgerTo)
	if err != nil {
		return nil, apperrors.Persistence("list unreconciled ledger movements", err)
	}

	bankItems := make([]matching.BankItem, 0, len(pending))
	bankByID := make(map[uint]models.BankMovement, len(pending))
	for _, m := range pending {
		bankItems = append(bankItems, bankItem(m))
		bankByID[m.ID] = m
	}
	ledgerItems := make([]matching.LedgerItem, 0, len(ledger))
	ledgerByID := make(map[uint]models.LedgerMovement, len(ledger))
	for _, m := range ledger {
		ledgerItems = append(ledgerItems, ledgerItem(m))
		ledgerByID[m.ID] = m
	}

	plan := uc.policy.Plan(bankItems, ledgerItems)

	result := &AutoMatchResult{
		BankAccountID:   account.ID,
		Processed:       len(pending),
		LedgerAvailable: len(ledger),
		Applied:         []AppliedMatch{},
		Failures:        []PairFailure{},
		Suggestions:     plan.Suggestions,
		Unmatched:       plan.Unmatched,
	}

	for _, c := range plan.Apply() {
		kind := "scored"
		if c.Exact {
			kind = "exact"
		}
		rec, err := uc.reconcile(actor, bankByID[c.BankID], []models.LedgerMovement{ledgerByID[c.LedgerID]},
			models.ReconciliationTypeAuto, c.Score, c.Criteria, fmt.Sprintf("automatic %s match", kind))
		if err != nil {
			log.Printf("[matching] failed to reconcile bank movement %d with ledger movement %d: %v", c.BankID, c.LedgerID, err)
			result.Failures = append(result.Failures, PairFailure{
				BankMovementID:   c.BankID,
				LedgerMovementID: c.LedgerID,
				Error:            err.Error(),
			})
			continue
		}
		if c.Exact {
			result.ExactMatches++
		} else {
			result.ScoredMatches++
		}
		result.Applied = append(result.Applied, AppliedMatch{
			ReconciliationID: rec.ID,
			BankMovementID:   c.BankID,
			LedgerMovementID: c.LedgerID,
			Score:            c.Score,
			Exact:            c.Exact,
		})
		uc.audit.Record(AuditEntry{
			Actor:            actor,
			Operation:        models.AuditAutoMatchApplied,
			EntityType:       "bank_movement",
			EntityID:         c.BankID,
			ReconciliationID: &rec.ID,
			After:            rec,
			Detail:           fmt.Sprintf("score %.4f, criteria %s", c.Score, strings.Join(c.Criteria, ",")),
		})
	}

	log.Printf("[matching] account %d: %d pending, %d exact, %d scored, %d failed, %d with suggestions",
		account.ID, result.Processed, result.ExactMatches, result.ScoredMatches, len(result.Failures), len(result.Suggestions))
	return result, nil
}

// reconcile links a PENDING bank movement to unreconciled ledger movements in
// one unit of work. The state checks and the transitions share the transaction.
func (uc *matchingUseCase) reconcile(actor *auth.Actor, bank models.BankMovement, ledger []models.LedgerMovement,
	recType models.ReconciliationType, confidence float64, criteria []string, notes string) (*models.Reconciliation, error) {
	rec := &models.Reconciliation{
		TenantID:       actor.TenantID,
		BankAccountID:  bank.BankAccountID,
		BankMovementID: bank.ID,
		Type:           recType,
		Confidence:     confidence,
		Criteria:       criteria,
		Notes:          notes,
		Status:         models.ReconciliationStatusActive,
		CreatedBy:      actor.Name(),
	}
	ledgerIDs := make([]uint, 0, len(ledger))
	for _, l := range ledger {
		ledgerIDs = append(ledgerIDs, l.ID)
		rec.Lines = append(rec.Lines, models.ReconciliationLine{
			LedgerMovementID: l.ID,
			Amount:           l.SignedAmount(),
		})
	}

	err := uc.repos.Transaction(func(tx *repositories.Repositories) error {
		active, err := tx.Reconciliation.HasActiveForBankMovement(bank.ID)
		if err != nil {
			return err
		}
		if active {
			return apperrors.NewConflict(apperrors.ConflictAlreadyReconciled,
				"bank movement %d already has an active reconciliation", bank.ID)
		}
		active, err = tx.Reconciliation.HasActiveForLedgerMovements(ledgerIDs)
		if err != nil {
			return err
		}
		if active {
			return apperrors.NewConflict(apperrors.ConflictAlreadyReconciled,
				"a ledger movement already has an active reconciliation")
		}

		if err := tx.BankMovement.TransitionStatus(actor.TenantID, bank.ID,
			models.BankMovementStatusPending, models.BankMovementStatusMatched); err != nil {
			return err
		}
		if err := tx.Ledger.SetReconciliationStatus(actor.TenantID, ledgerIDs,
			models.LedgerUnreconciled, models.LedgerReconciled); err != nil {
			return err
		}
		return tx.Reconciliation.Create(rec)
	})
	if err != nil {
		return nil, apperrors.Persistence("reconcile bank movement", err)
	}
	return rec, nil
}

func (uc *matchingUseCase) SuggestMatches(actor *auth.Actor, bankMovementID uint, limit int) ([]Suggestion, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}

	bank, err := uc.repos.BankMovement.GetByID(actor.TenantID, bankMovementID)
	if err != nil {
		return nil, err
	}
	if !bank.IsPending() {
		return nil, apperrors.NewConflict(apperrors.ConflictAlreadyReconciled, "bank movement %d is %s", bank.ID, bank.Status)
	}
	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, bank.BankAccountID)
	if err != nil {
		return nil, err
	}

	window := &DateRange{From: bank.TransactionDate, To: bank.TransactionDate}
	from, to := window.bounds(uc.policy.DateToleranceDays)
	ledger, err := uc.repos.Ledger.ListUnreconciled(actor.TenantID, account.LedgerAccountID, from, to)
	if err != nil {
		return nil, apperrors.Persistence("list unreconciled ledger movements", err)
	}

	items := make([]matching.LedgerItem, 0, len(ledger))
	byID := make(map[uint]models.LedgerMovement, len(ledger))
	for _, l := range ledger {
		items = append(items, ledgerItem(l))
		byID[l.ID] = l
	}

	// Suggestions ignore the minimum score: the caller decides.
	policy := uc.policy
	policy.MinScore = 0
	ranked := policy.Rank(bankItem(*bank), items, limit)

	suggestions := make([]Suggestion, 0, len(ranked))
	for _, c := range ranked {
		suggestions = append(suggestions, Suggestion{Candidate: c, LedgerMovement: byID[c.LedgerID]})
	}
	return suggestions, nil
}

func (uc *matchingUseCase) ApplyManualMatch(actor *auth.Actor, bankMovementID uint, ledgerMovementIDs []uint, notes string) (*models.Reconciliation, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsWrite); err != nil {
		return nil, err
	}

	ids := uniqueIDs(ledgerMovementIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one ledger movement is required")
	}

	bank, err := uc.repos.BankMovement.GetByID(actor.TenantID, bankMovementID)
	if err != nil {
		return nil, err
	}
	if !bank.IsPending() {
		return nil, apperrors.NewConflict(apperrors.ConflictAlreadyReconciled, "bank movement %d is %s", bank.ID, bank.Status)
	}
	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, bank.BankAccountID)
	if err != nil {
		return nil, err
	}

	ledger, err := uc.repos.Ledger.GetMovements(actor.TenantID, ids)
	if err != nil {
		return nil, apperrors.Persistence("load ledger movements", err)
	}
	if len(ledger) != len(ids) {
		return nil, fmt.Errorf("ledger movements %v: %w", missingIDs(ids, ledger), apperrors.ErrNotFound)
	}
	for _, l := range ledger {
		if l.AccountID != account.LedgerAccountID {
			return nil, apperrors.NewValidationError(fmt.Sprintf(
				"ledger movement %d is not posted to the ledger account of bank account %d", l.ID, account.ID))
		}
		if l.IsReconciled() {
			return nil, apperrors.NewConflict(apperrors.ConflictAlreadyReconciled, "ledger movement %d is already reconciled", l.ID)
		}
	}

	rec, err := uc.reconcile(actor, *bank, ledger, models.ReconciliationTypeManual, 1.0,
		[]string{CriterionManual}, utils.SanitizeString(notes))
	if err != nil {
		return nil, err
	}

	uc.audit.Record(AuditEntry{
		Actor:            actor,
		Operation:        models.AuditManualMatchApplied,
		EntityType:       "bank_movement",
		EntityID:         bank.ID,
		ReconciliationID: &rec.ID,
		Before:           bank,
		After:            rec,
		Detail:           fmt.Sprintf("%d ledger movement(s)", len(ids)),
	})
	return uc.repos.Reconciliation.GetByID(actor.TenantID, rec.ID)
}

// ReverseReconciliation undoes an AUTO or MANUAL reconciliation and puts its
// movements back in the pending pool.
func (uc *matchingUseCase) ReverseReconciliation(actor *auth.Actor, id uint, reason string) (*models.Reconciliation, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsWrite); err != nil {
		return nil, err
	}

	reason = utils.SanitizeString(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("a reversal reason is required",
			apperrors.FieldError{Field: "reason", Message: "reason is required"})
	}

	rec, err := uc.repos.Reconciliation.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, apperrors.NewConflict(apperrors.ConflictAlreadyReversed, "reconciliation %d is already reversed", id)
	}
	if rec.Type == models.ReconciliationTypeAdjustment {
		return nil, apperrors.NewConflict(apperrors.ConflictNotReversible,
			"reconciliation %d booked an adjustment and cannot be reversed", id)
	}
	before := *rec

	err = uc.repos.Transaction(func(tx *repositories.Repositories) error {
		if err := tx.Reconciliation.MarkReversed(actor.TenantID, rec.ID, actor.Name(), reason, time.Now()); err != nil {
			return err
		}
		if err := tx.BankMovement.TransitionStatus(actor.TenantID, rec.BankMovementID,
			models.BankMovementStatusMatched, models.BankMovementStatusPending); err != nil {
			return err
		}
		return tx.Ledger.SetReconciliationStatus(actor.TenantID, rec.LedgerMovementIDs(),
			models.LedgerReconciled, models.LedgerUnreconciled)
	})
	if err != nil {
		return nil, apperrors.Persistence("reverse reconciliation", err)
	}

	reversed, err := uc.repos.Reconciliation.GetByID(actor.TenantID, id)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(AuditEntry{
		Actor:            actor,
		Operation:        models.AuditReconciliationReversed,
		EntityType:       "reconciliation",
		EntityID:         id,
		ReconciliationID: &reversed.ID,
		Before:           before,
		After:            reversed,
		Detail:           reason,
	})
	return reversed, nil
}

func (uc *matchingUseCase) GetReconciliation(actor *auth.Actor, id uint) (*models.Reconciliation, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	return uc.repos.Reconciliation.GetByID(actor.TenantID, id)
}

func (uc *matchingUseCase) ListReconciliations(actor *auth.Actor, bankAccountID uint, status models.ReconciliationStatus, page, pageSize int) ([]models.Reconciliation, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	offset, limit := utils.Paginate(page, pageSize)
	return uc.repos.Reconciliation.List(repositories.ReconciliationFilter{
		TenantID:      actor.TenantID,
		BankAccountID: bankAccountID,
		Status:        status,
		Offset:        offset,
		Limit:         limit,
	})
}

func (uc *matchingUseCase) Summary(actor *auth.Actor, bankAccountID uint) (*ReconciliationSummary, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	if _, err := uc.repos.BankAccount.GetByID(actor.TenantID, bankAccountID); err != nil {
		return nil, err
	}

	counts, err := uc.repos.BankMovement.CountByStatus(actor.TenantID, bankAccountID)
	if err != nil {
		return nil, apperrors.Persistence("count bank movements", err)
	}
	active, err := uc.repos.Reconciliation.List(repositories.ReconciliationFilter{
		TenantID:      actor.TenantID,
		BankAccountID: bankAccountID,
		Status:        models.ReconciliationStatusActive,
	})
	if err != nil {
		return nil, apperrors.Persistence("list reconciliations", err)
	}

	summary := &ReconciliationSummary{
		BankAccountID:         bankAccountID,
		Pending:               counts[models.BankMovementStatusPending],
		Matched:               counts[models.BankMovementStatusMatched],
		Adjusted:              counts[models.BankMovementStatusAdjusted],
		ActiveReconciliations: len(active),
	}
	summary.Total = summary.Pending + summary.Matched + summary.Adjusted
	if summary.Total > 0 {
		summary.ReconciledPercent = float64(summary.Matched+summary.Adjusted) * 100 / float64(summary.Total)
	}
	return summary, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(want []uint, found []models.LedgerMovement) []uint {
	have := make(map[uint]bool, len(found))
	for _, m := range found {
		have[m.ID] = true
	}
	var missing []uint
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
