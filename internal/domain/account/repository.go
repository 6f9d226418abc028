package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines chart-of-accounts persistence and lookup operations.
// Lookup methods scoped to an organization return (nil, nil) when no active
// account matches; callers treat an unresolved lookup as a hard stop, not an
// error.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByCode(ctx context.Context, organizationID uuid.UUID, code string) (*Account, error)
	GetBySubtype(ctx context.Context, organizationID uuid.UUID, subtype Subtype) (*Account, error)

	// FindByNameSubstring matches active accounts of the given type whose name
	// contains the substring, case-insensitively, lowest code first.
	FindByNameSubstring(ctx context.Context, organizationID uuid.UUID, accType Type, substring string) (*Account, error)

	// FirstOfType returns the active account of the given type with the lowest code
	FirstOfType(ctx context.Context, organizationID uuid.UUID, accType Type) (*Account, error)

	ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Account, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ComputedBalance derives the balance from ledger lines, signed by the
	// account's normal balance. The stored current_balance column is a cache
	// and is never consulted.
	ComputedBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrDuplicateCode indicates an account code collision within an organization
type ErrDuplicateCode struct {
	OrganizationID uuid.UUID
	Code           string
}

func (e ErrDuplicateCode) Error() string {
	return "account code already exists in organization: " + e.Code
}

// ErrRoleNotResolved indicates that no account in the chart satisfies a
// semantic role required by a posting workflow. Postings never guess an
// account; the whole operation aborts with this error and nothing is written.
type ErrRoleNotResolved struct {
	Role string
}

func (e ErrRoleNotResolved) Error() string {
	return "no account resolves role: " + e.Role
}

// Is implements the errors.Is interface for ErrRoleNotResolved
func (e ErrRoleNotResolved) Is(target error) bool {
	t, ok := target.(ErrRoleNotResolved)
	if !ok {
		return false
	}
	if t.Role == "" {
		return true
	}
	return e.Role == t.Role
}
