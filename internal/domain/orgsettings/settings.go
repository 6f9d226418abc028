package orgsettings

import (
	"github.com/google/uuid"
)

// DepositMapping binds a payment method string to the account an organization
// wants that method's money movements posted against. When present it beats
// the engine's subtype heuristic.
type DepositMapping struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	PaymentMethod  string    `json:"payment_method"`
	AccountID      uuid.UUID `json:"account_id"`
}

// ItemAccounts carries an item's configured account overrides. Any field may
// be nil, in which case the generic role lookup applies.
type ItemAccounts struct {
	ItemID             uuid.UUID  `json:"item_id"`
	SalesAccountID     *uuid.UUID `json:"sales_account_id,omitempty"`
	PurchaseAccountID  *uuid.UUID `json:"purchase_account_id,omitempty"`
	InventoryAccountID *uuid.UUID `json:"inventory_account_id,omitempty"`
}
