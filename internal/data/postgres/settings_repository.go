package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/domain/orgsettings"
	"github.com/bizdesk-posting-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the orgsettings.Repository interface for
// PostgreSQL. It only reads; the surrounding application owns these tables.
type SettingsRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(logger *slog.Logger, db *persistence.PostgresDB) orgsettings.Repository {
	return &SettingsRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetDepositMapping retrieves the account an organization configured for a
// payment method. Returns (nil, nil) when no mapping exists.
func (r *SettingsRepository) GetDepositMapping(ctx context.Context, organizationID uuid.UUID, paymentMethod string) (*orgsettings.DepositMapping, error) {
	query := `
		SELECT organization_id, payment_method, account_id
		FROM deposit_account_mappings
		WHERE organization_id = $1 AND payment_method = $2
	`

	var mapping orgsettings.DepositMapping
	err := r.querier.QueryRow(ctx, query, organizationID, paymentMethod).Scan(
		&mapping.OrganizationID,
		&mapping.PaymentMethod,
		&mapping.AccountID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get deposit mapping",
			"organization_id", organizationID.String(),
			"payment_method", paymentMethod,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get deposit mapping: %w", err)
	}

	return &mapping, nil
}

// GetItemAccounts retrieves an item's configured account overrides.
// Returns (nil, nil) when the item has no overrides row.
func (r *SettingsRepository) GetItemAccounts(ctx context.Context, itemID uuid.UUID) (*orgsettings.ItemAccounts, error) {
	query := `
		SELECT item_id, sales_account_id, purchase_account_id, inventory_account_id
		FROM item_account_overrides
		WHERE item_id = $1
	`

	var accounts orgsettings.ItemAccounts
	err := r.querier.QueryRow(ctx, query, itemID).Scan(
		&accounts.ItemID,
		&accounts.SalesAccountID,
		&accounts.PurchaseAccountID,
		&accounts.InventoryAccountID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get item account overrides", "item_id", itemID.String(), "error", err)
		return nil, fmt.Errorf("failed to get item account overrides: %w", err)
	}

	return &accounts, nil
}
