package matching

import (
	"math"
	"sort"
	"time"

	"github.com/limistah/bank-reconciliation/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Criteria recorded on reconciliations
const (
	CriterionDateExact          = "date_exact"
	CriterionDateClose          = "date_within_tolerance"
	CriterionAmountExact        = "amount_exact"
	CriterionAmountClose        = "amount_within_variance"
	CriterionDescriptionSimilar = "description_similar"
	CriterionDescriptionPartial = "description_partial"
)

// BankItem is the part of a bank movement the matcher looks at
type BankItem struct {
	ID          uint
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// LedgerItem is the part of a ledger movement the matcher looks at. Amount is
// signed from the bank's point of view (debit minus credit).
type LedgerItem struct {
	ID      uint
	Date    time.Time
	Amount  decimal.Decimal
	Concept string
}

// Breakdown shows how each term contributed to a score
type Breakdown struct {
	DaysApart        int             `json:"days_apart"`
	AmountDifference decimal.Decimal `json:"amount_difference"`
	Similarity       float64         `json:"similarity"`
	DateScore        float64         `json:"date_score"`
	AmountScore      float64         `json:"amount_score"`
	DescriptionScore float64         `json:"description_score"`
}

// Candidate is a scored bank/ledger pair
type Candidate struct {
	BankID    uint      `json:"bank_movement_id"`
	LedgerID  uint      `json:"ledger_movement_id"`
	Score     float64   `json:"score"`
	Exact     bool      `json:"exact"`
	Criteria  []string  `json:"criteria"`
	Breakdown Breakdown `json:"breakdown"`
}

// IsExact reports a same-day pair whose amounts differ by no more than the tolerance
func (p Policy) IsExact(b BankItem, l LedgerItem) bool {
	return daysApart(b.Date, l.Date) == 0 &&
		b.Amount.Sub(l.Amount).Abs().LessThanOrEqual(p.AmountTolerance)
}

func (p Policy) exactCandidate(b BankItem, l LedgerItem) Candidate {
	return Candidate{
		BankID:   b.ID,
		LedgerID: l.ID,
		Score:    1.0,
		Exact:    true,
		Criteria: []string{CriterionDateExact, CriterionAmountExact},
		Breakdown: Breakdown{
			AmountDifference: b.Amount.Sub(l.Amount).Abs(),
			DateScore:        1,
			AmountScore:      1,
		},
	}
}

// Score computes the weighted confidence of a pair. ok is false when the dates
// are further apart than the date tolerance.
func (p Policy) Score(b BankItem, l LedgerItem) (c Candidate, ok bool) {
	days := daysApart(b.Date, l.Date)
	if days > p.DateToleranceDays {
		return Candidate{}, false
	}

	var criteria []string
	bd := Breakdown{DaysApart: days}

	bd.DateScore = p.dateScore(days)
	if days == 0 {
		criteria = append(criteria, CriterionDateExact)
	} else if bd.DateScore > 0 {
		criteria = append(criteria, CriterionDateClose)
	}

	bd.AmountDifference = b.Amount.Sub(l.Amount).Abs()
	bd.AmountScore = p.amountScore(b.Amount, l.Amount)
	if bd.AmountDifference.LessThanOrEqual(p.AmountTolerance) {
		criteria = append(criteria, CriterionAmountExact)
	} else if bd.AmountScore > 0 {
		criteria = append(criteria, CriterionAmountClose)
	}

	bd.Similarity = Similarity(b.Description, l.Concept)
	switch {
	case bd.Similarity >= p.FullSimilarity:
		bd.DescriptionScore = 1
		criteria = append(criteria, CriterionDescriptionSimilar)
	case bd.Similarity >= p.PartialSimilarity:
		bd.DescriptionScore = bd.Similarity
		criteria = append(criteria, CriterionDescriptionPartial)
	}

	score := p.DateWeight*bd.DateScore + p.AmountWeight*bd.AmountScore + p.DescriptionWeight*bd.DescriptionScore

	return Candidate{
		BankID:    b.ID,
		LedgerID:  l.ID,
		Score:     round4(score),
		Criteria:  criteria,
		Breakdown: bd,
	}, true
}

// Rank scores b against every ledger item and returns the best candidates at or
// above the minimum score, highest first. limit <= 0 uses MaxSuggestions.
func (p Policy) Rank(b BankItem, ledger []LedgerItem, limit int) []Candidate {
	if limit <= 0 {
		limit = p.MaxSuggestions
	}
	var ranked []Candidate
	for _, l := range ledger {
		c, ok := p.Score(b, l)
		if !ok || c.Score < p.MinScore {
			continue
		}
		ranked = append(ranked, c)
	}
	sortCandidates(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func (p Policy) dateScore(days int) float64 {
	if days == 0 {
		return 1
	}
	if p.DateToleranceDays == 0 || days >= p.DateToleranceDays {
		return 0
	}
	return 1 - float64(days)/float64(p.DateToleranceDays)
}

func (p Policy) amountScore(bank, ledger decimal.Decimal) float64 {
	diff := bank.Sub(ledger).Abs()
	if diff.LessThanOrEqual(p.AmountTolerance) {
		return 1
	}
	base := decimal.Max(bank.Abs(), ledger.Abs())
	if base.IsZero() {
		return 0
	}
	relative, _ := diff.Div(base).Float64()
	if relative >= p.MaxAmountVariance {
		return 0
	}
	return 1 - relative/p.MaxAmountVariance
}

// Similarity is the normalized Levenshtein ratio of two descriptions, in [0, 1]
func Similarity(a, b string) float64 {
	na, nb := utils.NormalizeText(a), utils.NormalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
}

func daysApart(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Abs(math.Round(da.Sub(db).Hours() / 24)))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// sortCandidates orders by score descending, then by ids for determinism
func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		if cs[i].BankID != cs[j].BankID {
			return cs[i].BankID < cs[j].BankID
		}
		return cs[i].LedgerID < cs[j].LedgerID
	})
}
