package posting

import (
	"context"
	"log/slog"
	"time"

	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MirrorLine carries the desired state of a single-line mirror posting. The
// balance report adjustment workflow keeps exactly one ledger line in sync
// with its source document by upserting this state.
type MirrorLine struct {
	AccountID   uuid.UUID
	Date        time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	LocationID  *uuid.UUID
}

// Lifecycle manages postings after they are written: reference-keyed updates
// when a source document changes, and deletion when it is voided. Deletions
// cover legacy reference aliases so old documents clean up completely.
type Lifecycle struct {
	db         TxRunner
	ledgerRepo ledger.Repository
	logger     *slog.Logger
}

// NewLifecycle creates a posting lifecycle manager
func NewLifecycle(logger *slog.Logger, db TxRunner, ledgerRepo ledger.Repository) *Lifecycle {
	return &Lifecycle{
		db:         db,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// UpsertMirror updates the line tagged with the reference in place, or
// inserts it when none exists yet. Runs in one transaction so concurrent
// upserts of the same reference cannot interleave into two lines.
func (l *Lifecycle) UpsertMirror(ctx context.Context, ref ledger.Reference, mirror MirrorLine) error {
	if mirror.Debit.IsNegative() || mirror.Credit.IsNegative() {
		return ledger.ErrInvalidAmount
	}

	date := mirror.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	err := l.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := l.ledgerRepo.WithTx(tx)

		updated, err := repo.UpdateByReference(ctx, ref, ledger.LineUpdate{
			AccountID:       &mirror.AccountID,
			TransactionDate: &date,
			Description:     &mirror.Description,
			DebitAmount:     &mirror.Debit,
			CreditAmount:    &mirror.Credit,
			LocationID:      mirror.LocationID,
			SetLocation:     true,
		})
		if err != nil {
			return err
		}
		if updated > 0 {
			return nil
		}

		line := &ledger.Line{
			ID:              uuid.New(),
			AccountID:       mirror.AccountID,
			TransactionDate: date,
			Description:     mirror.Description,
			DebitAmount:     mirror.Debit,
			CreditAmount:    mirror.Credit,
			ReferenceType:   ref.Type,
			ReferenceID:     ref.ID,
			LocationID:      mirror.LocationID,
			CreatedAt:       time.Now().UTC(),
		}
		return repo.InsertLines(ctx, []*ledger.Line{line})
	})
	if err != nil {
		return err
	}

	l.logger.Info("Upserted mirror line", "reference", ref.String())
	return nil
}

// DeleteByReference removes every line tagged with the reference or its
// legacy aliases and releases the posting registration. Returns the number
// of lines removed; zero is not an error.
func (l *Lifecycle) DeleteByReference(ctx context.Context, ref ledger.Reference) (int64, error) {
	var deleted int64
	err := l.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		deleted, err = l.ledgerRepo.WithTx(tx).DeleteByReference(ctx, ref)
		return err
	})
	if err != nil {
		return 0, err
	}

	l.logger.Info("Deleted posting", "reference", ref.String(), "lines", deleted)
	return deleted, nil
}
