// Package adjustments detects bank-only movements (fees, interest, bank notes)
// and builds the balanced ledger entries that account for them.
package adjustments

import (
	"strings"

	"github.com/limistah/bank-reconciliation/internal/utils"
	"github.com/shopspring/decimal"
)

// Category is the closed set of adjustment kinds
type Category string

const (
	CategoryCommission Category = "COMMISSION"
	CategoryDebitNote  Category = "DEBIT_NOTE"
	CategoryInterest   Category = "INTEREST"
	CategoryCreditNote Category = "CREDIT_NOTE"
)

// Nature tells which side of the bank account a category lands on
type Nature int

const (
	// NatureExpense categories debit an expense account and credit the bank
	NatureExpense Nature = iota + 1
	// NatureIncome categories debit the bank and credit an income account
	NatureIncome
)

type definition struct {
	category Category
	nature   Nature
	// keywords are already normalized (lowercase, no accents)
	keywords []string
}

// catalog is ordered by priority: the first matching definition wins
var catalog = []definition{
	{
		category: CategoryCommission,
		nature:   NatureExpense,
		keywords: []string{
			"comision", "commission", "cuota de manejo", "cuota manejo", "manejo cuenta",
			"manejo de cuenta", "cargo bancario", "cargo por servicio", "bank fee", "service fee",
			"monthly fee", "maintenance fee", "gravamen", "gmf", "4x1000", "chequera",
		},
	},
	{
		category: CategoryDebitNote,
		nature:   NatureExpense,
		keywords: []string{
			"nota debito", "nota de debito", "debit note", "debit memo", "nota de cargo", "ajuste debito",
		},
	},
	{
		category: CategoryInterest,
		nature:   NatureIncome,
		keywords: []string{
			"interes", "interest", "rendimiento", "rend financieros",
		},
	},
	{
		category: CategoryCreditNote,
		nature:   NatureIncome,
		keywords: []string{
			"nota credito", "nota de credito", "credit note", "credit memo", "ajuste credito",
			"reverso comision", "devolucion comision", "bonificacion",
		},
	},
}

// Categories lists every category in priority order
func Categories() []Category {
	out := make([]Category, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d.category)
	}
	return out
}

func lookup(c Category) (definition, bool) {
	for _, d := range catalog {
		if d.category == c {
			return d, true
		}
	}
	return definition{}, false
}

// Nature returns the accounting nature of the category, zero for unknown categories
func (c Category) Nature() Nature {
	d, _ := lookup(c)
	return d.nature
}

// Keywords returns a copy of the category vocabulary
func (c Category) Keywords() []string {
	d, _ := lookup(c)
	return append([]string(nil), d.keywords...)
}

// Valid reports whether c belongs to the closed set
func (c Category) Valid() bool {
	_, ok := lookup(c)
	return ok
}

// Classify returns the category of a bank movement. Negative amounts are checked
// against expense vocabularies, positive ones against income vocabularies. The
// result depends only on the arguments.
func Classify(description string, amount decimal.Decimal) (Category, bool) {
	if amount.IsZero() {
		return "", false
	}
	nature := NatureIncome
	if amount.IsNegative() {
		nature = NatureExpense
	}

	text := utils.NormalizeText(description)
	if text == "" {
		return "", false
	}

	for _, d := range catalog {
		if d.nature != nature {
			continue
		}
		for _, kw := range d.keywords {
			if strings.Contains(text, kw) {
				return d.category, true
			}
		}
	}
	return "", false
}
