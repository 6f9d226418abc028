package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyCode   = errors.New("account code cannot be empty")
	ErrEmptyName   = errors.New("account name cannot be empty")
	ErrInvalidType = errors.New("invalid account type")
)

// Type classifies an account within the chart of accounts
type Type string

const (
	TypeAsset     Type = "ASSET"
	TypeLiability Type = "LIABILITY"
	TypeEquity    Type = "EQUITY"
	TypeIncome    Type = "INCOME"
	TypeExpense   Type = "EXPENSE"
)

// Valid reports whether t is one of the five account types
func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeIncome, TypeExpense:
		return true
	}
	return false
}

// NormalBalance is the side on which increases to an account are recorded
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// NormalBalance returns the normal balance side for the account type.
// Assets and expenses grow on the debit side; everything else on the credit side.
func (t Type) NormalBalance() NormalBalance {
	switch t {
	case TypeAsset, TypeExpense:
		return NormalBalanceDebit
	default:
		return NormalBalanceCredit
	}
}

// Subtype refines an account type into a semantic role. Nullable in storage:
// legacy schemas predate the column.
type Subtype string

const (
	SubtypeCash            Subtype = "Cash"
	SubtypeBank            Subtype = "Bank"
	SubtypeReceivable      Subtype = "Accounts Receivable"
	SubtypeInventory       Subtype = "Inventory"
	SubtypePayable         Subtype = "Accounts Payable"
	SubtypeUnearnedRevenue Subtype = "Unearned Revenue"
	SubtypeCOGS            Subtype = "Cost of Goods Sold"
)

// Account is one node in an organization's chart of accounts
type Account struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Type           Type            `json:"type"`
	Subtype        *Subtype        `json:"subtype,omitempty"`
	IsActive       bool            `json:"is_active"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"` // denormalized cache, not authoritative
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// New creates an active account at the given chart position
func New(organizationID uuid.UUID, code, name string, accType Type, subtype *Subtype, openingBalance decimal.Decimal) (*Account, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if !accType.Valid() {
		return nil, ErrInvalidType
	}

	now := time.Now().UTC()
	return &Account{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Code:           code,
		Name:           name,
		Type:           accType,
		Subtype:        subtype,
		IsActive:       true,
		OpeningBalance: openingBalance,
		CurrentBalance: openingBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Deactivate soft-deletes the account. Accounts referenced by ledger lines
// are never removed, only deactivated.
func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
}
