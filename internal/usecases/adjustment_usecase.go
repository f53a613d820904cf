package usecases

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/limistah/bank-reconciliation/internal/adjustments"
	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/utils"
	"github.com/shopspring/decimal"
)

// AdjustmentPreview lists the adjustments proposed for a bank account
type AdjustmentPreview struct {
	BankAccountID        uint                   `json:"bank_account_id"`
	ConfigurationMissing bool                   `json:"configuration_missing"`
	MaterialityThreshold decimal.Decimal        `json:"materiality_threshold"`
	Proposals            []adjustments.Proposal `json:"proposals"`
	Total                decimal.Decimal        `json:"total"`
}

// AdjustmentItemResult is the outcome for one bank movement of an Apply call
type AdjustmentItemResult struct {
	BankMovementID   uint                 `json:"bank_movement_id"`
	Success          bool                 `json:"success"`
	Category         adjustments.Category `json:"category,omitempty"`
	DocumentID       uint                 `json:"document_id,omitempty"`
	DocumentNumber   string               `json:"document_number,omitempty"`
	ReconciliationID uint                 `json:"reconciliation_id,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// AdjustmentResult aggregates an Apply call
type AdjustmentResult struct {
	Applied int                    `json:"applied"`
	Failed  int                    `json:"failed"`
	Items   []AdjustmentItemResult `json:"items"`
}

type adjustmentUseCase struct {
	repos     *repositories.Repositories
	audit     AuditService
	threshold decimal.Decimal
}

// NewAdjustmentUseCase creates a new adjustment use case
func NewAdjustmentUseCase(repos *repositories.Repositories, audit AuditService, opts Options) AdjustmentUseCase {
	threshold := opts.MaterialityThreshold
	if threshold.IsZero() {
		threshold = adjustments.DefaultMaterialityThreshold
	}
	return &adjustmentUseCase{repos: repos, audit: audit, threshold: threshold}
}

// mappingFor loads the adjustment accounts of a bank account. A nil mapping
// means the account has no accounting configuration yet.
func (uc *adjustmentUseCase) mappingFor(tenantID uint, account *models.BankAccount) (*adjustments.Mapping, decimal.Decimal, error) {
	cfg, err := uc.repos.AccountingConfig.GetByBankAccount(tenantID, account.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, uc.threshold, nil
	}
	if err != nil {
		return nil, uc.threshold, apperrors.Persistence("load accounting configuration", err)
	}

	threshold := uc.threshold
	if cfg.MaterialityThreshold != nil {
		threshold = *cfg.MaterialityThreshold
	}
	return &adjustments.Mapping{
		BankLedgerAccountID: account.LedgerAccountID,
		Commission:          cfg.CommissionAccountID,
		Interest:            cfg.InterestAccountID,
		BankCharges:         cfg.BankChargesAccountID,
		Adjustment:          cfg.AdjustmentAccountID,
		CostCenter:          cfg.DefaultCostCenter,
	}, threshold, nil
}

func movementForProposal(m models.BankMovement) adjustments.Movement {
	return adjustments.Movement{ID: m.ID, Date: m.TransactionDate, Amount: m.Amount, Description: m.Description}
}

// Preview proposes an adjustment for every classified PENDING movement. It writes nothing.
func (uc *adjustmentUseCase) Preview(actor *auth.Actor, bankAccountID uint, period *DateRange) (*AdjustmentPreview, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}

	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, bankAccountID)
	if err != nil {
		return nil, err
	}
	mapping, threshold, err := uc.mappingFor(actor.TenantID, account)
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

	preview := &AdjustmentPreview{
		BankAccountID:        account.ID,
		ConfigurationMissing: mapping == nil,
		MaterialityThreshold: threshold,
		Proposals:            []adjustments.Proposal{},
		Total:                decimal.Zero,
	}
	for _, m := range pending {
		proposal, ok := adjustments.Propose(movementForProposal(m), mapping, threshold)
		if !ok {
			continue
		}
		preview.Proposals = append(preview.Proposals, proposal)
		preview.Total = preview.Total.Add(m.Amount)
	}

	if err := uc.labelAccounts(actor.TenantID, preview.Proposals); err != nil {
		return nil, err
	}
	return preview, nil
}

// labelAccounts fills in the code and name of every proposed account
func (uc *adjustmentUseCase) labelAccounts(tenantID uint, proposals []adjustments.Proposal) error {
	var ids []uint
	for _, p := range proposals {
		for _, e := range p.Entries {
			ids = append(ids, e.AccountID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	accounts, err := uc.repos.ChartAccount.GetByIDs(tenantID, uniqueIDs(ids))
	if err != nil {
		return apperrors.Persistence("load chart accounts", err)
	}
	for i := range proposals {
		for j := range proposals[i].Entries {
			if a, ok := accounts[proposals[i].Entries[j].AccountID]; ok {
				proposals[i].Entries[j].AccountCode = a.Code
				proposals[i].Entries[j].AccountName = a.Name
			}
		}
	}
	return nil
}

// Apply books the adjustment of each bank movement. Each movement is its own
// unit of work; one failure does not stop the rest.
func (uc *adjustmentUseCase) Apply(actor *auth.Actor, bankMovementIDs []uint, notes string) (*AdjustmentResult, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeAdjustmentsWrite); err != nil {
		return nil, err
	}

	ids := uniqueIDs(bankMovementIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one bank movement is required")
	}

	result := &AdjustmentResult{Items: make([]AdjustmentItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := uc.applyOne(actor, id, utils.SanitizeString(notes))
		if err != nil {
			log.Printf("[adjustments] bank movement %d: %v", id, err)
			item.Success = false
			item.Error = err.Error()
			result.Failed++
		} else {
			result.Applied++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (uc *adjustmentUseCase) applyOne(actor *auth.Actor, bankMovementID uint, notes string) (AdjustmentItemResult, error) {
	item := AdjustmentItemResult{BankMovementID: bankMovementID}

	movement, err := uc.repos.BankMovement.GetByID(actor.TenantID, bankMovementID)
	if err != nil {
		return item, err
	}
	if !movement.IsPending() {
		return item, apperrors.NewConflict(apperrors.ConflictAlreadyReconciled, "bank movement %d is %s", movement.ID, movement.Status)
	}
	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, movement.BankAccountID)
	if err != nil {
		return item, err
	}
	mapping, threshold, err := uc.mappingFor(actor.TenantID, account)
	if err != nil {
		return item, err
	}
	if mapping == nil {
		return item, fmt.Errorf("bank account %d: %w", account.ID, apperrors.ErrConfigurationMissing)
	}

	proposal, ok := adjustments.Propose(movementForProposal(*movement), mapping, threshold)
	if !ok {
		return item, apperrors.NewValidationError(fmt.Sprintf("bank movement %d does not look like a bank adjustment", movement.ID))
	}
	item.Category = proposal.Category
	if !proposal.Applicable() {
		details := make([]apperrors.FieldError, 0, len(proposal.Problems))
		for _, p := range proposal.Problems {
			details = append(details, apperrors.FieldError{Message: p})
		}
		return item, apperrors.NewValidationError("adjustment cannot be booked", details...)
	}
	if proposal.RequiresApproval && !actor.Has(auth.ScopeAdjustmentsApprove) {
		return item, fmt.Errorf("%w: amount %s exceeds the materiality threshold %s and needs %s",
			apperrors.ErrForbidden, utils.FormatAmount(movement.Amount), utils.FormatAmount(threshold), auth.ScopeAdjustmentsApprove)
	}

	doc := &models.LedgerDocument{
		TenantID:    actor.TenantID,
		Type:        models.LedgerDocumentTypeAdjustment,
		Date:        movement.TransactionDate,
		Description: fmt.Sprintf("Bank adjustment (%s): %s", proposal.Category, movement.Description),
		Reference:   movement.Reference,
		CreatedBy:   actor.Name(),
	}
	bankLine := -1
	for i, e := range proposal.Entries {
		status := models.LedgerUnreconciled
		if e.BankSide {
			status = models.LedgerReconciled
			bankLine = i
		}
		doc.Movements = append(doc.Movements, models.LedgerMovement{
			AccountID:            e.AccountID,
			Date:                 movement.TransactionDate,
			Concept:              e.Concept,
			Debit:                e.Debit,
			Credit:               e.Credit,
			CostCenter:           e.CostCenter,
			ReconciliationStatus: status,
		})
	}

	if notes == "" {
		notes = fmt.Sprintf("%s adjustment", proposal.Category)
	}
	rec := &models.Reconciliation{
		TenantID:       actor.TenantID,
		BankAccountID:  account.ID,
		BankMovementID: movement.ID,
		Type:           models.ReconciliationTypeAdjustment,
		Confidence:     1.0,
		Criteria:       []string{"category:" + string(proposal.Category)},
		Notes:          notes,
		Status:         models.ReconciliationStatusActive,
		CreatedBy:      actor.Name(),
	}

	err = uc.repos.Transaction(func(tx *repositories.Repositories) error {
		if err := tx.BankMovement.TransitionStatus(actor.TenantID, movement.ID,
			models.BankMovementStatusPending, models.BankMovementStatusAdjusted); err != nil {
			return err
		}
		if err := tx.Ledger.CreateDocument(doc); err != nil {
			return fmt.Errorf("failed to create ledger document: %w", err)
		}
		bank := doc.Movements[bankLine]
		rec.Lines = []models.ReconciliationLine{{
			LedgerMovementID: bank.ID,
			Amount:           bank.SignedAmount(),
		}}
		return tx.Reconciliation.Create(rec)
	})
	if err != nil {
		return item, apperrors.Persistence("apply adjustment", err)
	}

	item.Success = true
	item.DocumentID = doc.ID
	item.DocumentNumber = doc.Number
	item.ReconciliationID = rec.ID

	uc.audit.Record(AuditEntry{
		Actor:            actor,
		Operation:        models.AuditAdjustmentApplied,
		EntityType:       "bank_movement",
		EntityID:         movement.ID,
		ReconciliationID: &rec.ID,
		Before:           movement,
		After:            proposal,
		Detail:           fmt.Sprintf("document %s, %s %s", doc.Number, proposal.Category, movement.Amount.StringFixed(2)),
	})
	return item, nil
}

func (uc *adjustmentUseCase) GetAccountingConfig(actor *auth.Actor, bankAccountID uint) (*models.AccountingConfig, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	return uc.repos.AccountingConfig.GetByBankAccount(actor.TenantID, bankAccountID)
}

// SaveAccountingConfig creates or replaces the adjustment accounts of a bank account
func (uc *adjustmentUseCase) SaveAccountingConfig(actor *auth.Actor, cfg *models.AccountingConfig) (*models.AccountingConfig, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeAdjustmentsWrite); err != nil {
		return nil, err
	}
	if _, err := uc.repos.BankAccount.GetByID(actor.TenantID, cfg.BankAccountID); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	if cfg.MaterialityThreshold != nil && cfg.MaterialityThreshold.IsNegative() {
		return nil, apperrors.NewValidationError("invalid accounting configuration",
			apperrors.FieldError{Field: "materiality_threshold", Message: "must not be negative"})
	}

	var ids []uint
	for _, id := range []*uint{cfg.CommissionAccountID, cfg.InterestAccountID, cfg.BankChargesAccountID, cfg.AdjustmentAccountID} {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	accounts, err := uc.repos.ChartAccount.GetByIDs(actor.TenantID, ids)
	if err != nil {
		return nil, apperrors.Persistence("load chart accounts", err)
	}
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("chart account %d: %w", id, apperrors.ErrNotFound)
		}
	}

	cfg.TenantID = actor.TenantID
	cfg.ID = 0
	cfg.CreatedAt = time.Time{}
	var before *models.AccountingConfig
	if existing, err := uc.repos.AccountingConfig.GetByBankAccount(actor.TenantID, cfg.BankAccountID); err == nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
		before = existing
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Persistence("load accounting configuration", err)
	}

	if err := uc.repos.AccountingConfig.Save(cfg); err != nil {
		return nil, apperrors.Persistence("save accounting configuration", err)
	}

	entry := AuditEntry{
		Actor:      actor,
		Operation:  models.AuditAccountingConfigSaved,
		EntityType: "accounting_config",
		EntityID:   cfg.ID,
		After:      cfg,
		Detail:     fmt.Sprintf("bank account %d", cfg.BankAccountID),
	}
	if before != nil {
		entry.Before = before
	}
	uc.audit.Record(entry)
	return cfg, nil
}
