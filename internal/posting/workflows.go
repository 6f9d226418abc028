package posting

import (
	"context"
	"log/slog"
	"time"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/domain/orgsettings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest carries the fields shared by all money-movement workflows.
// ItemID is optional; when the paid item has configured accounts they take
// precedence over the generic roles.
type PaymentRequest struct {
	OrganizationID uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	Description    string
	PaymentMethod  string
	ReferenceID    string
	ItemID         *uuid.UUID
	LocationID     *uuid.UUID
}

// ExpensePaymentRequest extends PaymentRequest with an optional explicit
// expense account chosen on the source document.
type ExpensePaymentRequest struct {
	PaymentRequest
	ExpenseAccountID *uuid.UUID
}

// PurchaseRequest carries a purchase capitalization or payment, with an
// optional item whose configured accounts override the generic roles.
type PurchaseRequest struct {
	OrganizationID uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	Description    string
	PaymentMethod  string
	ReferenceID    string
	ItemID         *uuid.UUID
	LocationID     *uuid.UUID
}

// TransferRequest moves money between two explicitly chosen accounts
type TransferRequest struct {
	OrganizationID uuid.UUID
	Amount         decimal.Decimal
	Date           time.Time
	Description    string
	FromAccountID  uuid.UUID
	ToAccountID    uuid.UUID
	ReferenceID    string
	LocationID     *uuid.UUID
}

// COGSRequest recognizes the cost of inventory consumed by a sale
type COGSRequest struct {
	OrganizationID uuid.UUID
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	Date           time.Time
	Description    string
	ReferenceID    string
	ItemID         *uuid.UUID
	LocationID     *uuid.UUID
}

// Workflows is the catalogue of named business postings. Each workflow is a
// fixed recipe: resolve the roles it needs through the directory, then hand a
// balanced entry to the poster. No workflow writes anything when a role fails
// to resolve.
type Workflows struct {
	directory *Directory
	poster    *Poster
	settings  orgsettings.Repository
	logger    *slog.Logger
}

// NewWorkflows creates the posting workflow catalogue
func NewWorkflows(logger *slog.Logger, directory *Directory, poster *Poster, settings orgsettings.Repository) *Workflows {
	return &Workflows{
		directory: directory,
		poster:    poster,
		settings:  settings,
		logger:    logger,
	}
}

// ReceiptPayment records money received for a direct sale or receipt.
// Debits the deposit account for the method, credits the sold item's
// configured sales account when one exists, else default income.
func (w *Workflows) ReceiptPayment(ctx context.Context, req PaymentRequest) ([]*ledger.Line, error) {
	deposit, err := w.directory.DepositAccount(ctx, req.OrganizationID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	income, err := w.incomeAccount(ctx, req.OrganizationID, req.ItemID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  deposit.ID,
		CreditAccountID: income.ID,
		Reference:       &ledger.Reference{Type: ledger.RefReceiptPayment, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// InvoicePayment records money received against an open invoice.
// Debits the deposit account, credits accounts receivable.
func (w *Workflows) InvoicePayment(ctx context.Context, req PaymentRequest) ([]*ledger.Line, error) {
	deposit, err := w.directory.DepositAccount(ctx, req.OrganizationID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	receivable, err := w.directory.Receivable(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  deposit.ID,
		CreditAccountID: receivable.ID,
		Reference:       &ledger.Reference{Type: ledger.RefInvoicePayment, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// Prepayment records money taken before delivery, held as a liability.
// Debits the deposit account, credits unearned revenue.
func (w *Workflows) Prepayment(ctx context.Context, req PaymentRequest) ([]*ledger.Line, error) {
	deposit, err := w.directory.DepositAccount(ctx, req.OrganizationID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	unearned, err := w.directory.UnearnedRevenue(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  deposit.ID,
		CreditAccountID: unearned.ID,
		Reference:       &ledger.Reference{Type: ledger.RefPrepayment, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// ApplyPrepayment consumes a held prepayment against an invoice.
// Debits unearned revenue, credits accounts receivable.
func (w *Workflows) ApplyPrepayment(ctx context.Context, req PaymentRequest) ([]*ledger.Line, error) {
	unearned, err := w.directory.UnearnedRevenue(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	receivable, err := w.directory.Receivable(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  unearned.ID,
		CreditAccountID: receivable.ID,
		Reference:       &ledger.Reference{Type: ledger.RefPrepaymentApplication, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// ExpensePayment records an expense paid from a cash or bank account.
// Debits the expense account (explicit choice or default), credits the
// deposit account for the method.
func (w *Workflows) ExpensePayment(ctx context.Context, req ExpensePaymentRequest) ([]*ledger.Line, error) {
	var expense *account.Account
	var err error
	if req.ExpenseAccountID != nil {
		expense, err = w.directory.AccountByID(ctx, *req.ExpenseAccountID)
	} else {
		expense, err = w.directory.DefaultExpense(ctx, req.OrganizationID)
	}
	if err != nil {
		return nil, err
	}
	deposit, err := w.directory.DepositAccount(ctx, req.OrganizationID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  expense.ID,
		CreditAccountID: deposit.ID,
		Reference:       &ledger.Reference{Type: ledger.RefExpensePayment, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// PurchaseReceive capitalizes received stock.
// Debits the item's configured inventory account first, then its configured
// purchase account, then the generic inventory asset role. Credits accounts
// payable.
func (w *Workflows) PurchaseReceive(ctx context.Context, req PurchaseRequest) ([]*ledger.Line, error) {
	inventory, err := w.purchaseDebitAccount(ctx, req.OrganizationID, req.ItemID)
	if err != nil {
		return nil, err
	}
	payable, err := w.directory.Payable(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  inventory.ID,
		CreditAccountID: payable.ID,
		Reference:       &ledger.Reference{Type: ledger.RefPurchaseReceive, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// PurchasePayment settles a supplier balance.
// Debits accounts payable, credits the deposit account for the method.
func (w *Workflows) PurchasePayment(ctx context.Context, req PurchaseRequest) ([]*ledger.Line, error) {
	payable, err := w.directory.Payable(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	deposit, err := w.directory.DepositAccount(ctx, req.OrganizationID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  payable.ID,
		CreditAccountID: deposit.ID,
		Reference:       &ledger.Reference{Type: ledger.RefPurchasePayment, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// AccountTransfer moves money between two accounts of the same organization.
// Debits the destination, credits the source. Both accounts must exist and
// be active.
func (w *Workflows) AccountTransfer(ctx context.Context, req TransferRequest) ([]*ledger.Line, error) {
	destination, err := w.directory.AccountByID(ctx, req.ToAccountID)
	if err != nil {
		return nil, err
	}
	source, err := w.directory.AccountByID(ctx, req.FromAccountID)
	if err != nil {
		return nil, err
	}
	return w.poster.PostDoubleEntry(ctx, DoubleEntry{
		Amount:          req.Amount,
		Date:            req.Date,
		Description:     req.Description,
		DebitAccountID:  destination.ID,
		CreditAccountID: source.ID,
		Reference:       &ledger.Reference{Type: ledger.RefAccountTransfer, ID: req.ReferenceID},
		LocationID:      req.LocationID,
	})
}

// SaleCOGS recognizes the cost of inventory consumed by a sale. The amount is
// quantity times unit cost. Posted through the multi-line poster: COGS debit,
// inventory credit.
func (w *Workflows) SaleCOGS(ctx context.Context, req COGSRequest) ([]*ledger.Line, error) {
	amount := req.Quantity.Mul(req.UnitCost)
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}

	cogs, err := w.directory.COGS(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}
	inventory, err := w.inventoryAccount(ctx, req.OrganizationID, req.ItemID)
	if err != nil {
		return nil, err
	}

	return w.poster.PostEntry(ctx, Entry{
		Date:        req.Date,
		Description: req.Description,
		Reference:   &ledger.Reference{Type: ledger.RefSaleCOGS, ID: req.ReferenceID},
		Lines: []ledger.EntryLine{
			{AccountID: cogs.ID, Debit: amount, Description: req.Description, LocationID: req.LocationID},
			{AccountID: inventory.ID, Credit: amount, Description: req.Description, LocationID: req.LocationID},
		},
	})
}

// itemOverrideAccount resolves the item account chosen by pick from the
// item's configured overrides. A nil account with a nil error means no usable
// override exists and the caller falls back to its role lookup.
func (w *Workflows) itemOverrideAccount(ctx context.Context, itemID *uuid.UUID, pick func(*orgsettings.ItemAccounts) *uuid.UUID) (*account.Account, error) {
	if itemID == nil {
		return nil, nil
	}
	overrides, err := w.settings.GetItemAccounts(ctx, *itemID)
	if err != nil {
		return nil, err
	}
	if overrides == nil {
		return nil, nil
	}
	accountID := pick(overrides)
	if accountID == nil {
		return nil, nil
	}
	acc, err := w.directory.AccountByID(ctx, *accountID)
	if err != nil {
		w.logger.Warn("Item account override unusable, falling back to role lookup",
			"item_id", itemID.String(), "error", err)
		return nil, nil
	}
	return acc, nil
}

// incomeAccount resolves the income side of a sale: the sold item's
// configured sales account when one exists, else the default income role.
func (w *Workflows) incomeAccount(ctx context.Context, organizationID uuid.UUID, itemID *uuid.UUID) (*account.Account, error) {
	acc, err := w.itemOverrideAccount(ctx, itemID, func(o *orgsettings.ItemAccounts) *uuid.UUID {
		return o.SalesAccountID
	})
	if err != nil || acc != nil {
		return acc, err
	}
	return w.directory.DefaultIncome(ctx, organizationID)
}

// inventoryAccount resolves an item's configured inventory account when one
// exists, falling back to the organization's generic inventory asset role.
func (w *Workflows) inventoryAccount(ctx context.Context, organizationID uuid.UUID, itemID *uuid.UUID) (*account.Account, error) {
	acc, err := w.itemOverrideAccount(ctx, itemID, func(o *orgsettings.ItemAccounts) *uuid.UUID {
		return o.InventoryAccountID
	})
	if err != nil || acc != nil {
		return acc, err
	}
	return w.directory.InventoryAsset(ctx, organizationID)
}

// purchaseDebitAccount resolves the debit side of a purchase receipt. The
// item's inventory override wins over its purchase override; without either
// the generic inventory asset role applies.
func (w *Workflows) purchaseDebitAccount(ctx context.Context, organizationID uuid.UUID, itemID *uuid.UUID) (*account.Account, error) {
	acc, err := w.itemOverrideAccount(ctx, itemID, func(o *orgsettings.ItemAccounts) *uuid.UUID {
		if o.InventoryAccountID != nil {
			return o.InventoryAccountID
		}
		return o.PurchaseAccountID
	})
	if err != nil || acc != nil {
		return acc, err
	}
	return w.directory.InventoryAsset(ctx, organizationID)
}
