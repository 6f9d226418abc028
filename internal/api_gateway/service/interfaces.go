package service

import (
	"context"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/audit"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/posting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountParams carries the fields needed to add an account to a chart
type CreateAccountParams struct {
	OrganizationID uuid.UUID
	Code           string
	Name           string
	Type           account.Type
	Subtype        *account.Subtype
	OpeningBalance decimal.Decimal
}

// AccountService defines the interface for chart-of-accounts operations
type AccountService interface {
	// CreateAccount adds an account to an organization's chart
	// Returns ErrDuplicateCode if the code is already taken within the organization
	CreateAccount(ctx context.Context, params CreateAccountParams) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// ListAccounts returns every account of an organization, active and inactive
	ListAccounts(ctx context.Context, organizationID uuid.UUID) ([]*account.Account, error)

	// DeactivateAccount soft-deletes an account; ledger history stays intact
	DeactivateAccount(ctx context.Context, id uuid.UUID) error

	// GetComputedBalance derives an account's balance from its ledger lines
	GetComputedBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

// PostingService defines the interface for ledger posting operations. Every
// write either fully posts a balanced line group or reports a typed error
// with nothing written.
type PostingService interface {
	ReceiptPayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error)
	InvoicePayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error)
	Prepayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error)
	ApplyPrepayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error)
	ExpensePayment(ctx context.Context, req posting.ExpensePaymentRequest) ([]*ledger.Line, error)
	PurchaseReceive(ctx context.Context, req posting.PurchaseRequest) ([]*ledger.Line, error)
	PurchasePayment(ctx context.Context, req posting.PurchaseRequest) ([]*ledger.Line, error)
	AccountTransfer(ctx context.Context, req posting.TransferRequest) ([]*ledger.Line, error)
	SaleCOGS(ctx context.Context, req posting.COGSRequest) ([]*ledger.Line, error)

	// UpsertMirror updates the single line tagged with the reference in
	// place, or inserts it when none exists yet.
	UpsertMirror(ctx context.Context, ref ledger.Reference, mirror posting.MirrorLine) error

	// GetLinesByReference returns the lines posted for a reference, covering
	// legacy aliases, oldest first.
	GetLinesByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Line, error)

	// DeletePosting removes all lines for a reference and its aliases and
	// returns the deleted line count.
	DeletePosting(ctx context.Context, ref ledger.Reference) (int64, error)

	// GetAuditTrail returns the recorded posting attempts for a reference,
	// newest first.
	GetAuditTrail(ctx context.Context, referenceType, referenceID string) ([]*audit.Record, error)
}
