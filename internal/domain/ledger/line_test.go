package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBalanced(t *testing.T) {
	cash := uuid.New()
	income := uuid.New()

	t.Run("balanced pair", func(t *testing.T) {
		lines := []EntryLine{
			{AccountID: cash, Debit: decimal.NewFromFloat(150.00)},
			{AccountID: income, Credit: decimal.NewFromFloat(150.00)},
		}
		assert.True(t, Balanced(lines))
	})

	t.Run("ten unit imbalance rejected", func(t *testing.T) {
		lines := []EntryLine{
			{AccountID: cash, Debit: decimal.NewFromInt(100)},
			{AccountID: income, Credit: decimal.NewFromInt(90)},
		}
		assert.False(t, Balanced(lines))
	})

	t.Run("imbalance within epsilon accepted", func(t *testing.T) {
		lines := []EntryLine{
			{AccountID: cash, Debit: decimal.RequireFromString("33.33335")},
			{AccountID: income, Credit: decimal.RequireFromString("33.3334")},
		}
		assert.True(t, Balanced(lines))
	})

	t.Run("imbalance just past epsilon rejected", func(t *testing.T) {
		lines := []EntryLine{
			{AccountID: cash, Debit: decimal.RequireFromString("10.0002")},
			{AccountID: income, Credit: decimal.RequireFromString("10.0000")},
		}
		assert.False(t, Balanced(lines))
	})

	t.Run("multi-line", func(t *testing.T) {
		lines := []EntryLine{
			{AccountID: cash, Debit: decimal.NewFromInt(60)},
			{AccountID: income, Credit: decimal.NewFromInt(40)},
			{AccountID: uuid.New(), Credit: decimal.NewFromInt(20)},
		}
		assert.True(t, Balanced(lines))
	})
}

func TestTotals(t *testing.T) {
	lines := []EntryLine{
		{Debit: decimal.NewFromInt(100)},
		{Credit: decimal.NewFromInt(90)},
		{Credit: decimal.NewFromInt(5)},
	}
	debits, credits := Totals(lines)
	assert.True(t, debits.Equal(decimal.NewFromInt(100)))
	assert.True(t, credits.Equal(decimal.NewFromInt(95)))
}

func TestReferenceTypeAliases(t *testing.T) {
	t.Run("expense payment includes legacy tag", func(t *testing.T) {
		aliases := RefExpensePayment.Aliases()
		assert.ElementsMatch(t, []ReferenceType{RefExpense, RefExpensePayment}, aliases)
	})

	t.Run("legacy tag includes current tag", func(t *testing.T) {
		aliases := RefExpense.Aliases()
		assert.ElementsMatch(t, []ReferenceType{RefExpense, RefExpensePayment}, aliases)
	})

	t.Run("unaliased type returns itself", func(t *testing.T) {
		assert.Equal(t, []ReferenceType{RefSaleCOGS}, RefSaleCOGS.Aliases())
	})
}

func TestReferenceString(t *testing.T) {
	ref := Reference{Type: RefReceiptPayment, ID: "R-1"}
	assert.Equal(t, "receipt_payment/R-1", ref.String())
}
