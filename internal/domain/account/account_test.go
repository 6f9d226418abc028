package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	orgID := uuid.New()

	t.Run("valid account", func(t *testing.T) {
		subtype := SubtypeCash
		acc, err := New(orgID, "1001", "Cash on Hand", TypeAsset, &subtype, decimal.Zero)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, orgID, acc.OrganizationID)
		assert.Equal(t, "1001", acc.Code)
		assert.Equal(t, TypeAsset, acc.Type)
		assert.Equal(t, SubtypeCash, *acc.Subtype)
		assert.True(t, acc.IsActive)
		assert.True(t, acc.CurrentBalance.IsZero())
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := New(orgID, "", "Cash", TypeAsset, nil, decimal.Zero)
		assert.ErrorIs(t, err, ErrEmptyCode)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New(orgID, "1001", "", TypeAsset, nil, decimal.Zero)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := New(orgID, "1001", "Cash", Type("REVENUE"), nil, decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestTypeNormalBalance(t *testing.T) {
	tests := []struct {
		accType Type
		want    NormalBalance
	}{
		{TypeAsset, NormalBalanceDebit},
		{TypeExpense, NormalBalanceDebit},
		{TypeLiability, NormalBalanceCredit},
		{TypeEquity, NormalBalanceCredit},
		{TypeIncome, NormalBalanceCredit},
	}

	for _, tt := range tests {
		t.Run(string(tt.accType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.accType.NormalBalance())
		})
	}
}

func TestDeactivate(t *testing.T) {
	acc, err := New(uuid.New(), "5400", "General Expenses", TypeExpense, nil, decimal.Zero)
	require.NoError(t, err)

	acc.Deactivate()
	assert.False(t, acc.IsActive)
}

func TestErrRoleNotResolved_Is(t *testing.T) {
	err := ErrRoleNotResolved{Role: "default income"}
	assert.ErrorIs(t, err, ErrRoleNotResolved{})
	assert.ErrorIs(t, err, ErrRoleNotResolved{Role: "default income"})
	assert.NotErrorIs(t, err, ErrRoleNotResolved{Role: "receivable"})
}
