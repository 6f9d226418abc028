// Package posting implements the double-entry posting engine: account role
// resolution, balanced entry writing, reference-keyed lifecycle management,
// and the catalogue of business posting workflows.
package posting

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/orgsettings"
	"github.com/google/uuid"
)

// Canonical chart codes historically associated with each role. They are the
// middle link of every resolver chain: after explicit per-organization
// configuration, before heuristics.
const (
	codeCash            = "1001"
	codeBank            = "1002"
	codeReceivable      = "1100"
	codeInventory       = "1200"
	codePayable         = "2000"
	codeUnearnedRevenue = "2300"
	codeIncome          = "4001"
	codeCOGS            = "5000"
	codeExpense         = "5400"
)

// Directory translates semantic account roles into concrete accounts within
// one organization's chart. Every role resolves through an explicit ordered
// chain of strategies; when the chain is exhausted the role is unresolved and
// the caller must abort its posting, never guess.
type Directory struct {
	accounts account.Repository
	settings orgsettings.Repository
	logger   *slog.Logger
}

// NewDirectory creates an account directory
func NewDirectory(logger *slog.Logger, accounts account.Repository, settings orgsettings.Repository) *Directory {
	return &Directory{
		accounts: accounts,
		settings: settings,
		logger:   logger,
	}
}

// resolverStep is one strategy in a role's resolution chain. A step returns
// (nil, nil) when it has no match, handing over to the next step.
type resolverStep struct {
	name string
	fn   func(ctx context.Context) (*account.Account, error)
}

// resolve runs the chain in order and returns the first match.
// Returns ErrRoleNotResolved when every step comes up empty.
func (d *Directory) resolve(ctx context.Context, role string, steps []resolverStep) (*account.Account, error) {
	for _, step := range steps {
		acc, err := step.fn(ctx)
		if err != nil {
			return nil, err
		}
		if acc != nil {
			d.logger.Debug("Resolved account role", "role", role, "step", step.name, "account_id", acc.ID.String())
			return acc, nil
		}
	}
	return nil, account.ErrRoleNotResolved{Role: role}
}

// byCode builds a canonical-code step
func (d *Directory) byCode(organizationID uuid.UUID, code string) resolverStep {
	return resolverStep{
		name: "code " + code,
		fn: func(ctx context.Context) (*account.Account, error) {
			return d.accounts.GetByCode(ctx, organizationID, code)
		},
	}
}

// bySubtype builds a subtype heuristic step
func (d *Directory) bySubtype(organizationID uuid.UUID, subtype account.Subtype) resolverStep {
	return resolverStep{
		name: "subtype " + string(subtype),
		fn: func(ctx context.Context) (*account.Account, error) {
			return d.accounts.GetBySubtype(ctx, organizationID, subtype)
		},
	}
}

// byName builds a name-substring heuristic step
func (d *Directory) byName(organizationID uuid.UUID, accType account.Type, substring string) resolverStep {
	return resolverStep{
		name: "name ~" + substring,
		fn: func(ctx context.Context) (*account.Account, error) {
			return d.accounts.FindByNameSubstring(ctx, organizationID, accType, substring)
		},
	}
}

// firstOfType builds a last-resort first-of-type step
func (d *Directory) firstOfType(organizationID uuid.UUID, accType account.Type) resolverStep {
	return resolverStep{
		name: "first of type " + string(accType),
		fn: func(ctx context.Context) (*account.Account, error) {
			return d.accounts.FirstOfType(ctx, organizationID, accType)
		},
	}
}

// depositMapping builds the explicit per-organization configuration step for
// a payment method. A mapping pointing at a missing or deactivated account
// logs a warning and hands over to the heuristics rather than failing the
// posting outright.
func (d *Directory) depositMapping(organizationID uuid.UUID, paymentMethod string) resolverStep {
	return resolverStep{
		name: "deposit mapping " + paymentMethod,
		fn: func(ctx context.Context) (*account.Account, error) {
			mapping, err := d.settings.GetDepositMapping(ctx, organizationID, paymentMethod)
			if err != nil {
				return nil, err
			}
			if mapping == nil {
				return nil, nil
			}
			acc, err := d.accounts.GetByID(ctx, mapping.AccountID)
			if err != nil {
				if errors.Is(err, account.ErrAccountNotFound{}) {
					d.logger.Warn("Deposit mapping points at missing account",
						"organization_id", organizationID.String(),
						"payment_method", paymentMethod,
						"account_id", mapping.AccountID.String(),
					)
					return nil, nil
				}
				return nil, err
			}
			if !acc.IsActive {
				d.logger.Warn("Deposit mapping points at deactivated account",
					"organization_id", organizationID.String(),
					"payment_method", paymentMethod,
					"account_id", mapping.AccountID.String(),
				)
				return nil, nil
			}
			return acc, nil
		},
	}
}

// DepositAccount resolves where money received or paid via the method lands.
// Precedence: explicit organization mapping, then the subtype matching the
// method's classification, then the canonical Cash/Bank code.
func (d *Directory) DepositAccount(ctx context.Context, organizationID uuid.UUID, paymentMethod string) (*account.Account, error) {
	subtype := ClassifyPaymentMethod(paymentMethod)
	return d.resolve(ctx, "deposit account for "+paymentMethod, []resolverStep{
		d.depositMapping(organizationID, paymentMethod),
		d.bySubtype(organizationID, subtype),
		d.byCode(organizationID, depositCodeForSubtype(subtype)),
	})
}

// DefaultIncome resolves the organization's default sales income account
func (d *Directory) DefaultIncome(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "default income", []resolverStep{
		d.byCode(organizationID, codeIncome),
		d.firstOfType(organizationID, account.TypeIncome),
	})
}

// DefaultExpense resolves the organization's default expense account
func (d *Directory) DefaultExpense(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "default expense", []resolverStep{
		d.byCode(organizationID, codeExpense),
		d.firstOfType(organizationID, account.TypeExpense),
	})
}

// Receivable resolves the accounts receivable account
func (d *Directory) Receivable(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "accounts receivable", []resolverStep{
		d.byCode(organizationID, codeReceivable),
		d.bySubtype(organizationID, account.SubtypeReceivable),
		d.byName(organizationID, account.TypeAsset, "receivable"),
		d.firstOfType(organizationID, account.TypeAsset),
	})
}

// UnearnedRevenue resolves the liability holding prepayments not yet earned
func (d *Directory) UnearnedRevenue(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "unearned revenue", []resolverStep{
		d.byCode(organizationID, codeUnearnedRevenue),
		d.bySubtype(organizationID, account.SubtypeUnearnedRevenue),
		d.byName(organizationID, account.TypeLiability, "unearned"),
		d.byName(organizationID, account.TypeLiability, "deferred"),
		d.firstOfType(organizationID, account.TypeLiability),
	})
}

// InventoryAsset resolves the inventory capitalization account
func (d *Directory) InventoryAsset(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "inventory asset", []resolverStep{
		d.bySubtype(organizationID, account.SubtypeInventory),
		d.byCode(organizationID, codeInventory),
		d.byName(organizationID, account.TypeAsset, "inventory"),
	})
}

// Payable resolves the accounts payable account
func (d *Directory) Payable(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "accounts payable", []resolverStep{
		d.bySubtype(organizationID, account.SubtypePayable),
		d.byCode(organizationID, codePayable),
		d.byName(organizationID, account.TypeLiability, "payable"),
	})
}

// COGS resolves the cost-of-goods-sold expense account
func (d *Directory) COGS(ctx context.Context, organizationID uuid.UUID) (*account.Account, error) {
	return d.resolve(ctx, "cost of goods sold", []resolverStep{
		d.bySubtype(organizationID, account.SubtypeCOGS),
		d.byCode(organizationID, codeCOGS),
		d.byName(organizationID, account.TypeExpense, "cost of goods"),
	})
}

// AccountByID fetches an explicitly chosen account, enforcing that it is
// active. Used by workflows that take account ids directly, like transfers.
func (d *Directory) AccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := d.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	return acc, nil
}
