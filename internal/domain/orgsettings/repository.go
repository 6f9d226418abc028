package orgsettings

import (
	"context"

	"github.com/google/uuid"
)

// Repository reads per-organization posting configuration maintained by the
// surrounding application. Both lookups return (nil, nil) when nothing is
// configured; the engine then falls back to its own resolution heuristics.
type Repository interface {
	GetDepositMapping(ctx context.Context, organizationID uuid.UUID, paymentMethod string) (*DepositMapping, error)
	GetItemAccounts(ctx context.Context, itemID uuid.UUID) (*ItemAccounts, error)
}
