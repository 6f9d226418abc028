package persistence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Capabilities records which optional schema features the connected database
// supports. It is detected once at startup and passed explicitly to the
// components that need it; there is no lazily-initialized global state.
type Capabilities struct {
	// LedgerLocationColumn reports whether ledger_lines carries the optional
	// location_id column. Older deployments predate it.
	LedgerLocationColumn bool
}

// DetectCapabilities probes the schema for optional columns. A conclusive
// "column does not exist" answer disables the feature; any other failure
// keeps it enabled, preferring the richer behavior over silently dropping
// location tracking when the cause of the failure is unknown.
func DetectCapabilities(ctx context.Context, q Querier, logger *slog.Logger) Capabilities {
	caps := Capabilities{
		LedgerLocationColumn: detectColumn(ctx, q, logger, "ledger_lines", "location_id"),
	}

	logger.Info("Detected schema capabilities", "ledger_location_column", caps.LedgerLocationColumn)
	return caps
}

func detectColumn(ctx context.Context, q Querier, logger *slog.Logger, table, column string) bool {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1 AND column_name = $2
	`

	var name string
	err := q.QueryRow(ctx, query, table, column).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false
		}
		logger.Warn("Inconclusive schema probe, assuming column exists",
			"table", table, "column", column, "error", err)
		return true
	}

	return true
}
