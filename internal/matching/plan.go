package matching

import (
	"sort"
)

// Plan is the outcome of matching a set of bank movements against a set of ledger movements
type Plan struct {
	// Exact pairs are always applied
	Exact []Candidate
	// Scored pairs reached the auto-apply score
	Scored []Candidate
	// Suggestions holds up to MaxSuggestions candidates per bank movement left unmatched
	Suggestions map[uint][]Candidate
	// Unmatched lists bank movements with neither a match nor a suggestion
	Unmatched []uint
}

// Apply returns the pairs to reconcile, exact ones first
func (pl Plan) Apply() []Candidate {
	out := make([]Candidate, 0, len(pl.Exact)+len(pl.Scored))
	out = append(out, pl.Exact...)
	return append(out, pl.Scored...)
}

// Plan runs the exact pass and the scored pass. Each bank and ledger item ends
// up in at most one applied pair.
func (p Policy) Plan(bank []BankItem, ledger []LedgerItem) Plan {
	bank = sortedBank(bank)
	ledger = sortedLedger(ledger)

	plan := Plan{Suggestions: make(map[uint][]Candidate)}
	usedLedger := make(map[uint]bool)
	matchedBank := make(map[uint]bool)

	for _, b := range bank {
		for _, l := range ledger {
			if usedLedger[l.ID] || !p.IsExact(b, l) {
				continue
			}
			plan.Exact = append(plan.Exact, p.exactCandidate(b, l))
			usedLedger[l.ID] = true
			matchedBank[b.ID] = true
			break
		}
	}

	remainingLedger := make([]LedgerItem, 0, len(ledger))
	for _, l := range ledger {
		if !usedLedger[l.ID] {
			remainingLedger = append(remainingLedger, l)
		}
	}

	ranked := make(map[uint][]Candidate)
	var strong []Candidate
	for _, b := range bank {
		if matchedBank[b.ID] {
			continue
		}
		all := p.Rank(b, remainingLedger, len(remainingLedger))
		ranked[b.ID] = all
		for _, c := range all {
			if c.Score >= p.AutoApplyScore {
				strong = append(strong, c)
			}
		}
	}

	sortCandidates(strong)
	for _, c := range strong {
		if matchedBank[c.BankID] || usedLedger[c.LedgerID] {
			continue
		}
		plan.Scored = append(plan.Scored, c)
		matchedBank[c.BankID] = true
		usedLedger[c.LedgerID] = true
	}

	for _, b := range bank {
		if matchedBank[b.ID] {
			continue
		}
		var suggestions []Candidate
		for _, c := range ranked[b.ID] {
			if usedLedger[c.LedgerID] {
				continue
			}
			suggestions = append(suggestions, c)
			if len(suggestions) == p.MaxSuggestions {
				break
			}
		}
		if len(suggestions) == 0 {
			plan.Unmatched = append(plan.Unmatched, b.ID)
			continue
		}
		plan.Suggestions[b.ID] = suggestions
	}

	return plan
}

func sortedBank(items []BankItem) []BankItem {
	out := append([]BankItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedLedger(items []LedgerItem) []LedgerItem {
	out := append([]LedgerItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
