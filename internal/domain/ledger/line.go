package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNoLines       = errors.New("entry must contain at least one line")
)

// BalanceEpsilon is the tolerance applied when checking the double-entry
// balance law over an entry's lines.
var BalanceEpsilon = decimal.New(1, -4) // 0.0001

// Line is one row of the append-mostly ledger. Exactly one of DebitAmount and
// CreditAmount is non-zero on any line.
type Line struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	ReferenceType   ReferenceType   `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	LocationID      *uuid.UUID      `json:"location_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryLine is one caller-supplied line of a multi-line entry, before it is
// stamped with the entry's date and reference.
type EntryLine struct {
	AccountID   uuid.UUID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	LocationID  *uuid.UUID
}

// Balanced reports whether the lines satisfy the double-entry balance law:
// the debit and credit sums differ by no more than BalanceEpsilon.
func Balanced(lines []EntryLine) bool {
	var debits, credits decimal.Decimal
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Sub(credits).Abs().LessThanOrEqual(BalanceEpsilon)
}

// Totals returns the debit and credit sums over the lines
func Totals(lines []EntryLine) (debits, credits decimal.Decimal) {
	for _, l := range lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits, credits
}
