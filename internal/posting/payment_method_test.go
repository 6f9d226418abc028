package posting

import (
	"testing"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPaymentMethod(t *testing.T) {
	tests := []struct {
		method   string
		expected account.Subtype
	}{
		{"", account.SubtypeCash},
		{"cash", account.SubtypeCash},
		{"Cash", account.SubtypeCash},
		{"  cash  ", account.SubtypeCash},
		{"petty cash", account.SubtypeCash},
		{"card", account.SubtypeBank},
		{"credit card", account.SubtypeBank},
		{"bank transfer", account.SubtypeBank},
		{"cheque", account.SubtypeBank},
		{"mobile money", account.SubtypeBank},
	}

	for _, tt := range tests {
		t.Run("method "+tt.method, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyPaymentMethod(tt.method))
		})
	}
}

func TestDepositCodeForSubtype(t *testing.T) {
	assert.Equal(t, codeCash, depositCodeForSubtype(account.SubtypeCash))
	assert.Equal(t, codeBank, depositCodeForSubtype(account.SubtypeBank))
}
