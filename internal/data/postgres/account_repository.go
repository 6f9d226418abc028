// Package postgres provides PostgreSQL implementations of the domain
// repositories. All posting writes go through pgx transactions obtained from
// persistence.PostgresDB so line groups are written atomically.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolationCode = "23505"

// accountColumns is the select list shared by every account query
const accountColumns = `id, organization_id, account_code, account_name, account_type, account_subtype, is_active, opening_balance, current_balance, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account. Returns ErrDuplicateCode if the organization
// already has an account with the same code.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, organization_id, account_code, account_name, account_type, account_subtype, is_active, opening_balance, current_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var subtype *string
	if acc.Subtype != nil {
		s := string(*acc.Subtype)
		subtype = &s
	}

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.OrganizationID,
		acc.Code,
		acc.Name,
		acc.Type,
		subtype,
		acc.IsActive,
		acc.OpeningBalance,
		acc.CurrentBalance,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return account.ErrDuplicateCode{OrganizationID: acc.OrganizationID, Code: acc.Code}
		}
		r.logger.Error("Failed to create account", "code", acc.Code, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByCode retrieves an active account by its chart code.
// Returns (nil, nil) when no active account carries the code.
func (r *AccountRepository) GetByCode(ctx context.Context, organizationID uuid.UUID, code string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1 AND account_code = $2 AND is_active = TRUE
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, organizationID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get account by code: %w", err)
	}

	return acc, nil
}

// GetBySubtype retrieves the lowest-code active account with the subtype.
// Returns (nil, nil) when none matches.
func (r *AccountRepository) GetBySubtype(ctx context.Context, organizationID uuid.UUID, subtype account.Subtype) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1 AND account_subtype = $2 AND is_active = TRUE
		ORDER BY account_code ASC
		LIMIT 1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, organizationID, subtype))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by subtype", "subtype", string(subtype), "error", err)
		return nil, fmt.Errorf("failed to get account by subtype: %w", err)
	}

	return acc, nil
}

// FindByNameSubstring retrieves the lowest-code active account of the type
// whose name contains the substring, case-insensitively.
// Returns (nil, nil) when none matches.
func (r *AccountRepository) FindByNameSubstring(ctx context.Context, organizationID uuid.UUID, accType account.Type, substring string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1 AND account_type = $2 AND account_name ILIKE '%' || $3 || '%' AND is_active = TRUE
		ORDER BY account_code ASC
		LIMIT 1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, organizationID, accType, substring))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find account by name substring", "substring", substring, "error", err)
		return nil, fmt.Errorf("failed to find account by name substring: %w", err)
	}

	return acc, nil
}

// FirstOfType retrieves the lowest-code active account of the given type.
// Returns (nil, nil) when the organization has none.
func (r *AccountRepository) FirstOfType(ctx context.Context, organizationID uuid.UUID, accType account.Type) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1 AND account_type = $2 AND is_active = TRUE
		ORDER BY account_code ASC
		LIMIT 1
	`

	acc, err := r.scanAccount(r.querier.QueryRow(ctx, query, organizationID, accType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get first account of type", "type", string(accType), "error", err)
		return nil, fmt.Errorf("failed to get first account of type: %w", err)
	}

	return acc, nil
}

// ListByOrganization retrieves all accounts of an organization ordered by code
func (r *AccountRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1
		ORDER BY account_code ASC
	`

	rows, err := r.querier.Query(ctx, query, organizationID)
	if err != nil {
		r.logger.Error("Failed to list accounts", "organization_id", organizationID.String(), "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// Deactivate soft-deletes the account so historical lines keep a valid target
func (r *AccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to deactivate account", "id", id.String(), "error", err)
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// ComputedBalance derives the balance from the account's ledger lines, signed
// by the account type's normal balance, on top of the opening balance.
func (r *AccountRepository) ComputedBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT a.opening_balance + COALESCE(SUM(
			CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
				THEN l.debit_amount - l.credit_amount
				ELSE l.credit_amount - l.debit_amount
			END), 0)
		FROM accounts a
		LEFT JOIN ledger_lines l ON l.account_id = a.id
		WHERE a.id = $1
		GROUP BY a.id, a.opening_balance
	`

	var balance decimal.Decimal
	err := r.querier.QueryRow(ctx, query, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to compute account balance", "id", id.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to compute account balance: %w", err)
	}

	return balance, nil
}

// scanAccount scans one account row, converting the nullable subtype column
func (r *AccountRepository) scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	var subtype *string
	err := row.Scan(
		&acc.ID,
		&acc.OrganizationID,
		&acc.Code,
		&acc.Name,
		&acc.Type,
		&subtype,
		&acc.IsActive,
		&acc.OpeningBalance,
		&acc.CurrentBalance,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if subtype != nil {
		s := account.Subtype(*subtype)
		acc.Subtype = &s
	}
	return &acc, nil
}
