package usecases

import (
	"fmt"
	"log"
	"time"

	"github.com/limistah/bank-reconciliation/internal/apperrors"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/models"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/statement"
	"github.com/limistah/bank-reconciliation/internal/utils"
)

// ImportRequest is one statement file to load into a bank account
type ImportRequest struct {
	BankAccountID   uint
	ConfigurationID uint
	FileName        string
	Data            []byte
	// SkipDuplicates drops rows flagged as duplicates instead of storing them
	SkipDuplicates bool
}

// ImportResult is the outcome of an import
type ImportResult struct {
	Session    *models.ImportSession `json:"session"`
	Duplicates *DuplicateReport      `json:"duplicates"`
}

// DuplicateMatch points at a candidate row that repeats an earlier movement
type DuplicateMatch struct {
	Row int `json:"row"`
	// MovementID is the stored movement it repeats, zero for in-file repeats
	MovementID uint `json:"movement_id,omitempty"`
	// FirstRow is the earlier row of the same file it repeats, zero for stored repeats
	FirstRow int `json:"first_row,omitempty"`
}

// DuplicateReport lists candidates matching stored movements or each other on
// date, amount and normalized description. It is advisory.
type DuplicateReport struct {
	Existing        []DuplicateMatch `json:"existing"`
	InBatch         []DuplicateMatch `json:"in_batch"`
	TotalDuplicates int              `json:"total_duplicates"`
}

// Count is the number of flagged rows
func (r *DuplicateReport) Count() int {
	return len(r.Existing) + len(r.InBatch)
}

// Rows returns the flagged row numbers
func (r *DuplicateReport) Rows() map[int]bool {
	rows := make(map[int]bool, r.Count())
	for _, d := range r.Existing {
		rows[d.Row] = true
	}
	for _, d := range r.InBatch {
		rows[d.Row] = true
	}
	return rows
}

type importUseCase struct {
	repos *repositories.Repositories
	audit AuditService
	opts  Options
}

// NewImportUseCase creates a new import use case
func NewImportUseCase(repos *repositories.Repositories, audit AuditService, opts Options) ImportUseCase {
	return &importUseCase{repos: repos, audit: audit, opts: opts}
}

func (uc *importUseCase) ValidateFile(actor *auth.Actor, configurationID uint, fileName string, data []byte) (*statement.ValidationResult, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeStatementsImport); err != nil {
		return nil, err
	}

	cfg, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, configurationID)
	if err != nil {
		return nil, err
	}

	return validateData(cfg, fileName, data, statement.Options{MaxRows: uc.opts.MaxRows, SampleSize: uc.opts.SampleRows})
}

func duplicateKey(c statement.Candidate) string {
	return c.TransactionDate.Format("2006-01-02") + "|" + c.Amount.StringFixed(2) + "|" + utils.NormalizeText(c.Description)
}

func movementKey(m models.BankMovement) string {
	return statement.DateOnly(m.TransactionDate).Format("2006-01-02") + "|" + m.Amount.StringFixed(2) + "|" + utils.NormalizeText(m.Description)
}

func (uc *importUseCase) DetectDuplicates(actor *auth.Actor, bankAccountID uint, candidates []statement.Candidate) (*DuplicateReport, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeStatementsImport); err != nil {
		return nil, err
	}
	if _, err := uc.repos.BankAccount.GetByID(actor.TenantID, bankAccountID); err != nil {
		return nil, err
	}
	return detectDuplicates(uc.repos, actor.TenantID, bankAccountID, candidates)
}

func detectDuplicates(repos *repositories.Repositories, tenantID, bankAccountID uint, candidates []statement.Candidate) (*DuplicateReport, error) {
	report := &DuplicateReport{Existing: []DuplicateMatch{}, InBatch: []DuplicateMatch{}}
	if len(candidates) == 0 {
		return report, nil
	}

	from, to := candidates[0].TransactionDate, candidates[0].TransactionDate
	for _, c := range candidates[1:] {
		if c.TransactionDate.Before(from) {
			from = c.TransactionDate
		}
		if c.TransactionDate.After(to) {
			to = c.TransactionDate
		}
	}

	stored, err := repos.BankMovement.List(repositories.MovementFilter{
		TenantID:      tenantID,
		BankAccountID: bankAccountID,
		From:          &from,
		To:            &to,
	})
	if err != nil {
		return nil, apperrors.Persistence("list bank movements", err)
	}

	existing := make(map[string]uint, len(stored))
	for _, m := range stored {
		key := movementKey(m)
		if _, ok := existing[key]; !ok {
			existing[key] = m.ID
		}
	}

	firstRow := make(map[string]int, len(candidates))
	for _, c := range candidates {
		key := duplicateKey(c)
		if id, ok := existing[key]; ok {
			report.Existing = append(report.Existing, DuplicateMatch{Row: c.Row, MovementID: id})
			continue
		}
		if row, ok := firstRow[key]; ok {
			report.InBatch = append(report.InBatch, DuplicateMatch{Row: c.Row, FirstRow: row})
			continue
		}
		firstRow[key] = c.Row
	}

	report.TotalDuplicates = report.Count()
	return report, nil
}

// Import loads a statement file into the bank account. Rows that fail to parse
// are reported on the session; the remaining rows are stored in a single
// transaction or not at all.
func (uc *importUseCase) Import(actor *auth.Actor, req ImportRequest) (*ImportResult, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeStatementsImport); err != nil {
		return nil, err
	}

	account, err := uc.repos.BankAccount.GetByID(actor.TenantID, req.BankAccountID)
	if err != nil {
		return nil, err
	}
	cfg, err := uc.repos.ImportConfiguration.GetByID(actor.TenantID, req.ConfigurationID)
	if err != nil {
		return nil, err
	}
	if !cfg.IsActive {
		return nil, apperrors.NewValidationError(fmt.Sprintf("import configuration %d is not active", cfg.ID))
	}

	session, err := uc.createSession(actor, account, cfg, req)
	if err != nil {
		return nil, err
	}

	schema := statement.SchemaFromConfiguration(cfg)
	if problems := statement.CheckSchema(schema); len(problems) > 0 {
		return nil, uc.failSession(actor, session, apperrors.NewValidationError("invalid import configuration", problems...))
	}

	rows, err := statement.ReadRows(req.Data, schema)
	if err != nil {
		return nil, uc.failSession(actor, session, apperrors.NewValidationError(
			fmt.Sprintf("cannot read %s", req.FileName), apperrors.FieldError{Message: err.Error()}))
	}

	candidates, rowErrors := statement.Parse(rows, schema)
	session.Errors = rowErrors
	session.ParsedRows = len(candidates)
	session.TotalRows = len(candidates) + distinctRows(rowErrors)

	if session.TotalRows == 0 {
		return nil, uc.failSession(actor, session, apperrors.NewValidationError("file has no data rows"))
	}
	if len(candidates) == 0 {
		return nil, uc.failSession(actor, session, apperrors.NewValidationError("no row could be parsed", rowErrors...))
	}

	duplicates, err := detectDuplicates(uc.repos, actor.TenantID, account.ID, candidates)
	if err != nil {
		return nil, uc.failSession(actor, session, err)
	}
	session.DuplicateRows = duplicates.Count()
	if duplicates.Count() > 0 {
		session.Warnings = append(session.Warnings,
			fmt.Sprintf("%d row(s) look like movements already imported or repeated in the file", duplicates.Count()))
	}

	skip := req.SkipDuplicates || uc.opts.SkipDuplicates
	if skip && duplicates.Count() > 0 {
		flagged := duplicates.Rows()
		kept := candidates[:0:0]
		for _, c := range candidates {
			if !flagged[c.Row] {
				kept = append(kept, c)
			}
		}
		candidates = kept
		session.Warnings = append(session.Warnings, "duplicate rows were skipped")
	}

	movements := make([]models.BankMovement, 0, len(candidates))
	for _, c := range candidates {
		movements = append(movements, models.BankMovement{
			TenantID:        actor.TenantID,
			BankAccountID:   account.ID,
			ImportSessionID: session.ID,
			TransactionDate: c.TransactionDate,
			ValueDate:       c.ValueDate,
			Amount:          c.Amount,
			Description:     c.Description,
			Reference:       c.Reference,
			TransactionType: c.TransactionType,
			Balance:         c.Balance,
			SourceRow:       c.Row,
			Status:          models.BankMovementStatusPending,
		})
	}

	err = uc.repos.Transaction(func(tx *repositories.Repositories) error {
		if err := tx.BankMovement.CreateBatch(movements); err != nil {
			return fmt.Errorf("failed to store movements: %w", err)
		}

		now := time.Now()
		session.StoredRows = len(movements)
		session.Status = models.ImportSessionStatusCompleted
		session.CompletedAt = &now
		if err := tx.ImportSession.Update(session); err != nil {
			return fmt.Errorf("failed to complete import session: %w", err)
		}
		return nil
	})
	if err != nil {
		session.StoredRows = 0
		session.CompletedAt = nil
		return nil, uc.failSession(actor, session, apperrors.Persistence("store statement movements", err))
	}

	log.Printf("[import] session %d stored %d of %d rows from %s", session.ID, session.StoredRows, session.TotalRows, req.FileName)

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditStatementImported,
		EntityType: "import_session",
		EntityID:   session.ID,
		After:      session,
		Detail: fmt.Sprintf("stored %d movement(s), %d row error(s), %d duplicate(s)",
			session.StoredRows, distinctRows(session.Errors), session.DuplicateRows),
	})

	return &ImportResult{Session: session, Duplicates: duplicates}, nil
}

// createSession opens a PROCESSING session. Re-importing a file already
// imported into the account only adds a warning.
func (uc *importUseCase) createSession(actor *auth.Actor, account *models.BankAccount, cfg *models.ImportConfiguration, req ImportRequest) (*models.ImportSession, error) {
	session := &models.ImportSession{
		TenantID:        actor.TenantID,
		BankAccountID:   account.ID,
		ConfigurationID: cfg.ID,
		FileName:        req.FileName,
		FileHash:        statement.ContentHash(req.Data),
		Status:          models.ImportSessionStatusProcessing,
		Errors:          []apperrors.FieldError{},
		Warnings:        []string{},
		CreatedBy:       actor.Name(),
	}

	previous, err := uc.repos.ImportSession.FindCompletedByHash(actor.TenantID, account.ID, session.FileHash, 0)
	if err != nil {
		return nil, apperrors.Persistence("look up previous imports", err)
	}
	if previous != nil {
		session.Warnings = append(session.Warnings,
			fmt.Sprintf("the same file was already imported in session %d on %s",
				previous.ID, previous.CreatedAt.Format("2006-01-02")))
	}

	if err := uc.repos.ImportSession.Create(session); err != nil {
		return nil, apperrors.Persistence("create import session", err)
	}
	return session, nil
}

// failSession marks the session FAILED and returns cause
func (uc *importUseCase) failSession(actor *auth.Actor, session *models.ImportSession, cause error) error {
	now := time.Now()
	session.Status = models.ImportSessionStatusFailed
	session.FailureReason = cause.Error()
	session.CompletedAt = &now
	if err := uc.repos.ImportSession.Update(session); err != nil {
		log.Printf("[import] failed to mark session %d as failed: %v", session.ID, err)
	}

	uc.audit.Record(AuditEntry{
		Actor:      actor,
		Operation:  models.AuditStatementImportFailed,
		EntityType: "import_session",
		EntityID:   session.ID,
		After:      session,
		Detail:     cause.Error(),
	})
	return cause
}

func distinctRows(errs []apperrors.FieldError) int {
	rows := make(map[int]bool, len(errs))
	for _, e := range errs {
		rows[e.Row] = true
	}
	return len(rows)
}

func (uc *importUseCase) GetSession(actor *auth.Actor, id uint) (*models.ImportSession, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	return uc.repos.ImportSession.GetByID(actor.TenantID, id)
}

func (uc *importUseCase) ListSessions(actor *auth.Actor, bankAccountID uint, page, pageSize int) ([]models.ImportSession, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	offset, limit := utils.Paginate(page, pageSize)
	return uc.repos.ImportSession.List(actor.TenantID, bankAccountID, offset, limit)
}

func (uc *importUseCase) ListMovements(actor *auth.Actor, bankAccountID uint, status models.BankMovementStatus, page, pageSize int) ([]models.BankMovement, error) {
	if err := auth.Authorize(actor, tenantOf(actor), auth.ScopeReconciliationsRead); err != nil {
		return nil, err
	}
	offset, limit := utils.Paginate(page, pageSize)
	return uc.repos.BankMovement.List(repositories.MovementFilter{
		TenantID:      actor.TenantID,
		BankAccountID: bankAccountID,
		Status:        status,
		Offset:        offset,
		Limit:         limit,
	})
}
