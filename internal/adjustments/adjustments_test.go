package adjustments

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v uint) *uint { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		amount      string
		want        Category
		ok          bool
	}{
		{"commission with accent", "COMISIÓN MANEJO CUENTA", "-5000", CategoryCommission, true},
		{"english fee", "Monthly fee", "-12.50", CategoryCommission, true},
		{"debit note", "Nota Débito 4432", "-800", CategoryDebitNote, true},
		{"interest", "Abono Intereses ahorro", "35.10", CategoryInterest, true},
		{"yield", "Rendimientos financieros", "10", CategoryInterest, true},
		{"credit note", "NOTA CREDITO ajuste", "200", CategoryCreditNote, true},
		{"commission refund is income", "Reverso comisión", "5000", CategoryCreditNote, true},
		{"sign mismatch", "Intereses", "-35.10", "", false},
		{"unrelated", "Pago proveedor Lopez", "-1200", "", false},
		{"zero amount", "Comision", "0", "", false},
		{"empty description", "", "-10", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.description, amt(tt.amount))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	for i := 0; i < 5; i++ {
		got, ok := Classify("Cuota de manejo tarjeta", amt("-9900"))
		require.True(t, ok)
		assert.Equal(t, CategoryCommission, got)
	}
}

func TestCategories_AllResolveAnAccount(t *testing.T) {
	mapping := &Mapping{
		BankLedgerAccountID: 1,
		Commission:          ptr(2),
		Interest:            ptr(3),
		BankCharges:         ptr(4),
		Adjustment:          ptr(5),
	}
	seen := map[Category]bool{}
	for _, c := range Categories() {
		assert.True(t, c.Valid())
		assert.NotZero(t, c.Nature(), c)
		assert.NotEmpty(t, c.Keywords(), c)
		id, ok := mapping.AccountFor(c)
		assert.True(t, ok, c)
		assert.NotZero(t, id)
		seen[c] = true
	}
	assert.Len(t, seen, 4)
	assert.False(t, Category("OTHER").Valid())
}

func TestMapping_FallsBackToAdjustmentAccount(t *testing.T) {
	mapping := &Mapping{BankLedgerAccountID: 1, Adjustment: ptr(9)}
	id, ok := mapping.AccountFor(CategoryCommission)
	require.True(t, ok)
	assert.Equal(t, uint(9), id)

	_, ok = (&Mapping{BankLedgerAccountID: 1}).AccountFor(CategoryInterest)
	assert.False(t, ok)
}

func TestPropose_Commission(t *testing.T) {
	mapping := &Mapping{BankLedgerAccountID: 11, Commission: ptr(53), CostCenter: "ADM"}
	m := Movement{ID: 7, Date: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), Amount: amt("-5000"), Description: "Comision manejo cuenta"}

	p, ok := Propose(m, mapping, DefaultMaterialityThreshold)
	require.True(t, ok)
	assert.Equal(t, CategoryCommission, p.Category)
	assert.True(t, p.RequiresApproval, "5000.00 is above the 1000.00 default")
	assert.False(t, p.ConfigurationMissing)
	require.Len(t, p.Entries, 2)

	expense, bank := p.Entries[0], p.Entries[1]
	assert.Equal(t, uint(53), expense.AccountID)
	assert.True(t, expense.Debit.Equal(amt("5000")))
	assert.True(t, expense.Credit.IsZero())
	assert.Equal(t, "ADM", expense.CostCenter)

	assert.Equal(t, uint(11), bank.AccountID)
	assert.True(t, bank.BankSide)
	assert.True(t, bank.Credit.Equal(amt("5000")))
	assert.True(t, bank.Debit.IsZero())

	assert.True(t, p.IsBalanced())
	assert.True(t, p.Applicable())
}

func TestPropose_InterestDebitsBank(t *testing.T) {
	mapping := &Mapping{BankLedgerAccountID: 11, Interest: ptr(42)}
	p, ok := Propose(Movement{ID: 1, Amount: amt("35.10"), Description: "Intereses"}, mapping, DefaultMaterialityThreshold)
	require.True(t, ok)
	require.Len(t, p.Entries, 2)
	assert.True(t, p.Entries[0].BankSide)
	assert.True(t, p.Entries[0].Debit.Equal(amt("35.10")))
	assert.Equal(t, uint(42), p.Entries[1].AccountID)
	assert.True(t, p.Entries[1].Credit.Equal(amt("35.10")))
	assert.True(t, p.IsBalanced())
}

func TestPropose_Flags(t *testing.T) {
	m := Movement{ID: 3, Amount: amt("-150000"), Description: "Nota debito"}

	p, ok := Propose(m, nil, DefaultMaterialityThreshold)
	require.True(t, ok)
	assert.True(t, p.ConfigurationMissing)
	assert.True(t, p.RequiresApproval)
	assert.Empty(t, p.Entries)
	assert.False(t, p.Applicable())

	p, ok = Propose(m, &Mapping{BankLedgerAccountID: 1}, DefaultMaterialityThreshold)
	require.True(t, ok)
	assert.False(t, p.ConfigurationMissing)
	assert.NotEmpty(t, p.Problems)
	assert.False(t, p.Applicable())

	p, _ = Propose(Movement{Amount: amt("-1000"), Description: "Nota debito"}, nil, DefaultMaterialityThreshold)
	assert.False(t, p.RequiresApproval)

	p, _ = Propose(Movement{Amount: amt("-1000.01"), Description: "Nota debito"}, nil, DefaultMaterialityThreshold)
	assert.True(t, p.RequiresApproval)

	_, ok = Propose(Movement{Amount: amt("-10"), Description: "Transferencia"}, nil, DefaultMaterialityThreshold)
	assert.False(t, ok)
}

func TestDefaultMaterialityThreshold(t *testing.T) {
	assert.True(t, DefaultMaterialityThreshold.Equal(amt("1000")))
	assert.True(t, FromMinorUnits(12345).Equal(amt("123.45")))
}
