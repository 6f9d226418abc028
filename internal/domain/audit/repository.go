package audit

import (
	"context"
)

// Repository persists the posting audit trail. Writes are best-effort: a
// failed audit write is logged by the caller and never fails the posting.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByReference(ctx context.Context, referenceType, referenceID string) ([]*Record, error)
}
