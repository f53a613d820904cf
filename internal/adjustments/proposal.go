package adjustments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaterialityThresholdMinor is the default approval threshold in currency minor units
const DefaultMaterialityThresholdMinor = 100000

// DefaultMaterialityThreshold is the absolute amount, in currency units, above
// which a proposal needs approval (100000 minor units, i.e. 1000.00)
var DefaultMaterialityThreshold = FromMinorUnits(DefaultMaterialityThresholdMinor)

// FromMinorUnits converts an amount of currency minor units (cents) to currency units
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Movement is the bank movement an adjustment is proposed for
type Movement struct {
	ID          uint
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// Mapping holds the ledger accounts a bank account's adjustments post to
type Mapping struct {
	BankLedgerAccountID uint
	Commission          *uint
	Interest            *uint
	BankCharges         *uint
	Adjustment          *uint
	CostCenter          string
}

// AccountFor resolves the ledger account of a category. Categories without a
// specific account fall back to the generic adjustment account.
func (m *Mapping) AccountFor(c Category) (uint, bool) {
	var specific *uint
	switch c {
	case CategoryCommission:
		specific = m.Commission
	case CategoryDebitNote:
		specific = m.BankCharges
	case CategoryInterest:
		specific = m.Interest
	case CategoryCreditNote:
		specific = m.Adjustment
	default:
		return 0, false
	}
	if specific != nil && *specific != 0 {
		return *specific, true
	}
	if m.Adjustment != nil && *m.Adjustment != 0 {
		return *m.Adjustment, true
	}
	return 0, false
}

// Entry is one line of a proposed ledger document
type Entry struct {
	AccountID   uint            `json:"account_id"`
	AccountCode string          `json:"account_code,omitempty"`
	AccountName string          `json:"account_name,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Concept     string          `json:"concept"`
	CostCenter  string          `json:"cost_center,omitempty"`
	BankSide    bool            `json:"bank_side"`
}

// Proposal is the adjustment suggested for one bank movement
type Proposal struct {
	BankMovementID       uint            `json:"bank_movement_id"`
	Date                 time.Time       `json:"date"`
	Description          string          `json:"description"`
	Amount               decimal.Decimal `json:"amount"`
	Category             Category        `json:"category"`
	Entries              []Entry         `json:"entries"`
	RequiresApproval     bool            `json:"requires_approval"`
	ConfigurationMissing bool            `json:"configuration_missing"`
	Problems             []string        `json:"problems,omitempty"`
}

// IsBalanced checks that the entries sum to zero
func (p Proposal) IsBalanced() bool {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Debit).Sub(e.Credit)
	}
	return total.IsZero()
}

// Applicable reports whether the proposal can be written to the ledger
func (p Proposal) Applicable() bool {
	return !p.ConfigurationMissing && len(p.Problems) == 0 && len(p.Entries) == 2 && p.IsBalanced()
}

// Propose classifies m and, when it matches a category, builds its proposal.
// A nil mapping yields a proposal flagged ConfigurationMissing with no entries.
func Propose(m Movement, mapping *Mapping, threshold decimal.Decimal) (Proposal, bool) {
	category, ok := Classify(m.Description, m.Amount)
	if !ok {
		return Proposal{}, false
	}

	amount := m.Amount.Abs()
	p := Proposal{
		BankMovementID:   m.ID,
		Date:             m.Date,
		Description:      m.Description,
		Amount:           m.Amount,
		Category:         category,
		Entries:          []Entry{},
		RequiresApproval: amount.GreaterThan(threshold),
	}

	if mapping == nil {
		p.ConfigurationMissing = true
		return p, true
	}

	accountID, ok := mapping.AccountFor(category)
	if !ok {
		p.Problems = append(p.Problems, fmt.Sprintf("no ledger account configured for %s", category))
		return p, true
	}
	if mapping.BankLedgerAccountID == 0 {
		p.Problems = append(p.Problems, "bank account has no ledger account")
		return p, true
	}

	bank := Entry{AccountID: mapping.BankLedgerAccountID, Concept: m.Description, BankSide: true}
	counter := Entry{AccountID: accountID, Concept: m.Description, CostCenter: mapping.CostCenter}

	switch category.Nature() {
	case NatureExpense:
		counter.Debit, counter.Credit = amount, decimal.Zero
		bank.Debit, bank.Credit = decimal.Zero, amount
		p.Entries = append(p.Entries, counter, bank)
	case NatureIncome:
		bank.Debit, bank.Credit = amount, decimal.Zero
		counter.Debit, counter.Credit = decimal.Zero, amount
		p.Entries = append(p.Entries, bank, counter)
	}

	return p, true
}
