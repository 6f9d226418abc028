package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// It honors the detected schema capabilities: on deployments without the
// location_id column, inserts, reads, and updates omit it.
type LedgerRepository struct {
	querier persistence.Querier
	caps    persistence.Capabilities
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB, caps persistence.Capabilities) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		caps:    caps,
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		caps:    r.caps,
		logger:  r.logger,
	}
}

// InsertLines writes all lines of one posting. Callers run this inside a
// transaction; a failure on any line rolls back the whole group.
func (r *LedgerRepository) InsertLines(ctx context.Context, lines []*ledger.Line) error {
	if len(lines) == 0 {
		return ledger.ErrNoLines
	}

	withLocation := `
		INSERT INTO ledger_lines (id, account_id, transaction_date, description, debit_amount, credit_amount, reference_type, reference_id, location_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	withoutLocation := `
		INSERT INTO ledger_lines (id, account_id, transaction_date, description, debit_amount, credit_amount, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, line := range lines {
		var err error
		if r.caps.LedgerLocationColumn {
			_, err = r.querier.Exec(ctx, withLocation,
				line.ID,
				line.AccountID,
				line.TransactionDate,
				line.Description,
				line.DebitAmount,
				line.CreditAmount,
				line.ReferenceType,
				line.ReferenceID,
				line.LocationID,
				line.CreatedAt,
			)
		} else {
			_, err = r.querier.Exec(ctx, withoutLocation,
				line.ID,
				line.AccountID,
				line.TransactionDate,
				line.Description,
				line.DebitAmount,
				line.CreditAmount,
				line.ReferenceType,
				line.ReferenceID,
				line.CreatedAt,
			)
		}
		if err != nil {
			r.logger.Error("Failed to insert ledger line",
				"line_id", line.ID.String(),
				"account_id", line.AccountID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to insert ledger line: %w", err)
		}
	}

	return nil
}

// RegisterPosting claims the reference. The primary key on
// posting_registrations turns a second posting of the same reference into a
// unique violation, surfaced as ErrDuplicatePosting.
func (r *LedgerRepository) RegisterPosting(ctx context.Context, ref ledger.Reference) error {
	query := `
		INSERT INTO posting_registrations (reference_type, reference_id, posted_at)
		VALUES ($1, $2, NOW())
	`

	_, err := r.querier.Exec(ctx, query, ref.Type, ref.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ledger.ErrDuplicatePosting{Reference: ref}
		}
		r.logger.Error("Failed to register posting", "reference", ref.String(), "error", err)
		return fmt.Errorf("failed to register posting: %w", err)
	}

	return nil
}

// GetByReference retrieves lines under the reference and its legacy aliases.
// The select list follows the detected schema: deployments without the
// location_id column never see it named in a query.
func (r *LedgerRepository) GetByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Line, error) {
	columns := "id, account_id, transaction_date, description, debit_amount, credit_amount, reference_type, reference_id, created_at"
	if r.caps.LedgerLocationColumn {
		columns = "id, account_id, transaction_date, description, debit_amount, credit_amount, reference_type, reference_id, location_id, created_at"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM ledger_lines
		WHERE reference_type = ANY($1) AND reference_id = $2
		ORDER BY created_at ASC, id ASC
	`, columns)

	rows, err := r.querier.Query(ctx, query, aliasStrings(ref.Type), ref.ID)
	if err != nil {
		r.logger.Error("Failed to get ledger lines by reference", "reference", ref.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger lines by reference: %w", err)
	}
	defer rows.Close()

	var lines []*ledger.Line
	for rows.Next() {
		var line ledger.Line
		dest := []interface{}{
			&line.ID,
			&line.AccountID,
			&line.TransactionDate,
			&line.Description,
			&line.DebitAmount,
			&line.CreditAmount,
			&line.ReferenceType,
			&line.ReferenceID,
		}
		if r.caps.LedgerLocationColumn {
			dest = append(dest, &line.LocationID)
		}
		dest = append(dest, &line.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, &line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger lines: %w", err)
	}

	return lines, nil
}

// ExistsByReference reports whether lines exist under the reference or its aliases
func (r *LedgerRepository) ExistsByReference(ctx context.Context, ref ledger.Reference) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_lines
			WHERE reference_type = ANY($1) AND reference_id = $2
		)
	`

	var exists bool
	err := r.querier.QueryRow(ctx, query, aliasStrings(ref.Type), ref.ID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check ledger lines existence", "reference", ref.String(), "error", err)
		return false, fmt.Errorf("failed to check ledger lines existence: %w", err)
	}

	return exists, nil
}

// UpdateByReference updates lines under the reference and its aliases in place
func (r *LedgerRepository) UpdateByReference(ctx context.Context, ref ledger.Reference, update ledger.LineUpdate) (int64, error) {
	var sets []string
	var args []interface{}
	idx := 1

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if update.AccountID != nil {
		appendSet("account_id", *update.AccountID)
	}
	if update.TransactionDate != nil {
		appendSet("transaction_date", *update.TransactionDate)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.DebitAmount != nil {
		appendSet("debit_amount", *update.DebitAmount)
	}
	if update.CreditAmount != nil {
		appendSet("credit_amount", *update.CreditAmount)
	}
	if update.SetLocation && r.caps.LedgerLocationColumn {
		appendSet("location_id", update.LocationID)
	}

	if len(sets) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE ledger_lines
		SET %s
		WHERE reference_type = ANY($%d) AND reference_id = $%d
	`, strings.Join(sets, ", "), idx, idx+1)
	args = append(args, aliasStrings(ref.Type), ref.ID)

	result, err := r.querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update ledger lines by reference", "reference", ref.String(), "error", err)
		return 0, fmt.Errorf("failed to update ledger lines by reference: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByReference removes lines under the reference and every legacy alias,
// together with the posting registrations, so no orphaned rows survive under
// an old tag. Callers run it inside a transaction for atomicity.
func (r *LedgerRepository) DeleteByReference(ctx context.Context, ref ledger.Reference) (int64, error) {
	aliases := aliasStrings(ref.Type)

	linesQuery := `
		DELETE FROM ledger_lines
		WHERE reference_type = ANY($1) AND reference_id = $2
	`
	result, err := r.querier.Exec(ctx, linesQuery, aliases, ref.ID)
	if err != nil {
		r.logger.Error("Failed to delete ledger lines by reference", "reference", ref.String(), "error", err)
		return 0, fmt.Errorf("failed to delete ledger lines by reference: %w", err)
	}
	deleted := result.RowsAffected()

	registrationsQuery := `
		DELETE FROM posting_registrations
		WHERE reference_type = ANY($1) AND reference_id = $2
	`
	if _, err := r.querier.Exec(ctx, registrationsQuery, aliases, ref.ID); err != nil {
		r.logger.Error("Failed to delete posting registrations", "reference", ref.String(), "error", err)
		return 0, fmt.Errorf("failed to delete posting registrations: %w", err)
	}

	return deleted, nil
}

// aliasStrings converts a reference type's alias set for ANY() matching
func aliasStrings(t ledger.ReferenceType) []string {
	aliases := t.Aliases()
	out := make([]string, len(aliases))
	for i, a := range aliases {
		out[i] = string(a)
	}
	return out
}
