package posting

import (
	"context"
	"log/slog"
	"time"

	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TxRunner runs a function inside one database transaction, rolling back on
// error. Satisfied by *persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// DoubleEntry describes the simplest posting: one amount moved from a credit
// account to a debit account.
type DoubleEntry struct {
	Amount          decimal.Decimal
	Date            time.Time
	Description     string
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	Reference       *ledger.Reference
	LocationID      *uuid.UUID
}

// Entry is a general multi-line posting. Lines must satisfy the balance law.
type Entry struct {
	Date        time.Time
	Description string
	Lines       []ledger.EntryLine
	Reference   *ledger.Reference
}

// Poster writes validated entries to the ledger. Each posting runs in a single
// database transaction covering the reference registration, every line, and
// the outbox message, so a posting is either fully visible or absent.
type Poster struct {
	db         TxRunner
	ledgerRepo ledger.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewPoster creates a posting writer
func NewPoster(logger *slog.Logger, db TxRunner, ledgerRepo ledger.Repository, outboxRepo outbox.Repository) *Poster {
	return &Poster{
		db:         db,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// PostDoubleEntry validates and writes a two-line entry
func (p *Poster) PostDoubleEntry(ctx context.Context, de DoubleEntry) ([]*ledger.Line, error) {
	if !de.Amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}

	return p.PostEntry(ctx, Entry{
		Date:        de.Date,
		Description: de.Description,
		Reference:   de.Reference,
		Lines: []ledger.EntryLine{
			{AccountID: de.DebitAccountID, Debit: de.Amount, Description: de.Description, LocationID: de.LocationID},
			{AccountID: de.CreditAccountID, Credit: de.Amount, Description: de.Description, LocationID: de.LocationID},
		},
	})
}

// PostEntry validates and writes a multi-line entry atomically. On success it
// returns the lines as written, ids and timestamps assigned.
func (p *Poster) PostEntry(ctx context.Context, entry Entry) ([]*ledger.Line, error) {
	if len(entry.Lines) == 0 {
		return nil, ledger.ErrNoLines
	}
	for _, l := range entry.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, ledger.ErrInvalidAmount
		}
	}
	if !ledger.Balanced(entry.Lines) {
		debits, credits := ledger.Totals(entry.Lines)
		return nil, ledger.ErrUnbalancedEntry{Debits: debits, Credits: credits}
	}

	date := entry.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	lines := make([]*ledger.Line, 0, len(entry.Lines))
	now := time.Now().UTC()
	for _, el := range entry.Lines {
		description := el.Description
		if description == "" {
			description = entry.Description
		}
		line := &ledger.Line{
			ID:              uuid.New(),
			AccountID:       el.AccountID,
			TransactionDate: date,
			Description:     description,
			DebitAmount:     el.Debit,
			CreditAmount:    el.Credit,
			LocationID:      el.LocationID,
			CreatedAt:       now,
		}
		if entry.Reference != nil {
			line.ReferenceType = entry.Reference.Type
			line.ReferenceID = entry.Reference.ID
		}
		lines = append(lines, line)
	}

	err := p.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		ledgerRepo := p.ledgerRepo.WithTx(tx)

		if entry.Reference != nil {
			if err := ledgerRepo.RegisterPosting(ctx, *entry.Reference); err != nil {
				return err
			}
		}
		if err := ledgerRepo.InsertLines(ctx, lines); err != nil {
			return err
		}
		if entry.Reference != nil {
			message, err := outbox.NewMessage(*entry.Reference, lines)
			if err != nil {
				return err
			}
			return p.outboxRepo.WithTx(tx).Create(ctx, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry.Reference != nil {
		p.logger.Info("Posted entry",
			"reference", entry.Reference.String(),
			"lines", len(lines),
		)
	} else {
		p.logger.Info("Posted unreferenced entry", "lines", len(lines))
	}

	return lines, nil
}
