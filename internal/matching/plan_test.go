package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_ExactMatch(t *testing.T) {
	p := DefaultPolicy()
	bank := []BankItem{{ID: 1, Date: day(1), Amount: amt("1000.00"), Description: "Pago cliente"}}
	ledger := []LedgerItem{{ID: 7, Date: day(1), Amount: amt("1000.00"), Concept: "Factura 1"}}

	plan := p.Plan(bank, ledger)
	require.Len(t, plan.Exact, 1)
	assert.Empty(t, plan.Scored)
	assert.Equal(t, uint(1), plan.Exact[0].BankID)
	assert.Equal(t, uint(7), plan.Exact[0].LedgerID)
	assert.Equal(t, 1.0, plan.Exact[0].Score)
	assert.True(t, plan.Exact[0].Exact)
	assert.Empty(t, plan.Suggestions)
}

func TestPlan_FirstExactCandidateWins(t *testing.T) {
	p := DefaultPolicy()
	bank := []BankItem{
		{ID: 1, Date: day(1), Amount: amt("50.00")},
		{ID: 2, Date: day(1), Amount: amt("50.00")},
	}
	ledger := []LedgerItem{
		{ID: 20, Date: day(1), Amount: amt("50.00")},
		{ID: 10, Date: day(1), Amount: amt("50.00")},
	}
	plan := p.Plan(bank, ledger)
	require.Len(t, plan.Exact, 2)
	assert.Equal(t, uint(10), plan.Exact[0].LedgerID)
	assert.Equal(t, uint(20), plan.Exact[1].LedgerID)
}

func TestPlan_ScoredAutoApplyAndSuggestions(t *testing.T) {
	p := DefaultPolicy()
	bank := []BankItem{
		// one day off, same amount, same text: 0.4*2/3 + 0.4 + 0.2 = 0.8667
		{ID: 1, Date: day(5), Amount: amt("300.00"), Description: "Pago proveedor Lopez"},
		// two days off, different text: 0.4/3 + 0.4 = 0.5333 -> suggestion only
		{ID: 2, Date: day(8), Amount: amt("75.00"), Description: "Retiro"},
		// nothing close
		{ID: 3, Date: day(20), Amount: amt("9.99"), Description: "Cargo"},
	}
	ledger := []LedgerItem{
		{ID: 100, Date: day(6), Amount: amt("300.00"), Concept: "Pago proveedor Lopez"},
		{ID: 101, Date: day(10), Amount: amt("75.00"), Concept: "Caja menor"},
	}

	plan := p.Plan(bank, ledger)
	assert.Empty(t, plan.Exact)
	require.Len(t, plan.Scored, 1)
	assert.Equal(t, uint(1), plan.Scored[0].BankID)
	assert.Equal(t, uint(100), plan.Scored[0].LedgerID)
	assert.InDelta(t, 0.8667, plan.Scored[0].Score, 0.0001)

	require.Len(t, plan.Suggestions[2], 1)
	assert.Equal(t, uint(101), plan.Suggestions[2][0].LedgerID)
	assert.Less(t, plan.Suggestions[2][0].Score, p.AutoApplyScore)

	assert.Equal(t, []uint{3}, plan.Unmatched)
	assert.Len(t, plan.Apply(), 1)
}

func TestPlan_LedgerUsedOnce(t *testing.T) {
	p := DefaultPolicy()
	bank := []BankItem{
		{ID: 1, Date: day(5), Amount: amt("300.00"), Description: "Pago"},
		{ID: 2, Date: day(5), Amount: amt("300.00"), Description: "Pago"},
	}
	ledger := []LedgerItem{{ID: 100, Date: day(6), Amount: amt("300.00"), Concept: "Pago"}}

	plan := p.Plan(bank, ledger)
	require.Len(t, plan.Scored, 1)
	assert.Equal(t, uint(1), plan.Scored[0].BankID)
	assert.Empty(t, plan.Suggestions[2])
	assert.Equal(t, []uint{2}, plan.Unmatched)
}
