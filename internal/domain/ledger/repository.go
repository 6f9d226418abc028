package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LineUpdate carries the mutable fields of a reference-keyed upsert. Nil
// fields are left untouched. SetLocation distinguishes clearing the location
// (true with a nil LocationID) from not touching it at all.
type LineUpdate struct {
	AccountID       *uuid.UUID
	TransactionDate *time.Time
	Description     *string
	DebitAmount     *decimal.Decimal
	CreditAmount    *decimal.Decimal
	LocationID      *uuid.UUID
	SetLocation     bool
}

// Repository manages ledger line persistence. Writes that must be atomic with
// other operations run through WithTx inside a single database transaction.
type Repository interface {
	// InsertLines writes all lines of one posting. Callers wrap the call in a
	// transaction so the line group is written together or not at all.
	InsertLines(ctx context.Context, lines []*Line) error

	// RegisterPosting claims the reference for a posting. A second
	// registration of the same reference fails with ErrDuplicatePosting,
	// which makes duplicate postings structurally impossible rather than a
	// racy check-then-insert.
	RegisterPosting(ctx context.Context, ref Reference) error

	// GetByReference returns lines tagged with the reference or any of its
	// legacy aliases, oldest first.
	GetByReference(ctx context.Context, ref Reference) ([]*Line, error)

	// ExistsByReference reports whether any line exists under the reference
	// or its aliases.
	ExistsByReference(ctx context.Context, ref Reference) (bool, error)

	// UpdateByReference updates lines under the reference and its aliases in
	// place and returns the number of rows touched.
	UpdateByReference(ctx context.Context, ref Reference, update LineUpdate) (int64, error)

	// DeleteByReference removes lines under the reference and every legacy
	// alias, plus the posting registration, and returns the deleted line count.
	DeleteByReference(ctx context.Context, ref Reference) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrUnbalancedEntry indicates a violation of the double-entry balance law.
// Nothing is written when it is returned.
type ErrUnbalancedEntry struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e ErrUnbalancedEntry) Error() string {
	return "unbalanced entry: debits " + e.Debits.String() + " != credits " + e.Credits.String()
}

// Is implements the errors.Is interface for ErrUnbalancedEntry
func (e ErrUnbalancedEntry) Is(target error) bool {
	_, ok := target.(ErrUnbalancedEntry)
	return ok
}

// ErrDuplicatePosting indicates the reference already has a registered posting
type ErrDuplicatePosting struct {
	Reference Reference
}

func (e ErrDuplicatePosting) Error() string {
	return "posting already exists for reference: " + e.Reference.String()
}

// Is implements the errors.Is interface for ErrDuplicatePosting
func (e ErrDuplicatePosting) Is(target error) bool {
	t, ok := target.(ErrDuplicatePosting)
	if !ok {
		return false
	}
	if t.Reference == (Reference{}) {
		return true
	}
	return e.Reference == t.Reference
}
