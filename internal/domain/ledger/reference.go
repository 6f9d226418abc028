package ledger

// ReferenceType tags a ledger line with the business operation that produced
// it. The string values are a stable contract with the calling application.
type ReferenceType string

const (
	// RefExpense is the legacy tag for expense payments, kept for deletion
	// of rows posted before the rename to RefExpensePayment.
	RefExpense               ReferenceType = "expense"
	RefExpensePayment        ReferenceType = "expense_payment"
	RefReceiptPayment        ReferenceType = "receipt_payment"
	RefInvoicePayment        ReferenceType = "invoice_payment"
	RefPrepayment            ReferenceType = "prepayment"
	RefPrepaymentApplication ReferenceType = "prepayment_application"
	RefPurchasePayment       ReferenceType = "purchase_payment"
	RefPurchaseReceive       ReferenceType = "purchase_receive"
	RefSaleCOGS              ReferenceType = "sale_cogs"
	RefAccountTransfer       ReferenceType = "account_transfer"
)

// legacy tag pairs treated as the same conceptual reference
var aliasGroups = [][]ReferenceType{
	{RefExpense, RefExpensePayment},
}

// Aliases returns the reference type together with every legacy tag for the
// same conceptual operation. Deleting by reference must cover all of them so
// a logical deletion never leaves orphaned rows under an old tag.
func (t ReferenceType) Aliases() []ReferenceType {
	for _, group := range aliasGroups {
		for _, member := range group {
			if member == t {
				return group
			}
		}
	}
	return []ReferenceType{t}
}

// Reference links ledger lines back to their originating business document
type Reference struct {
	Type ReferenceType `json:"type"`
	ID   string        `json:"id"`
}

func (r Reference) String() string {
	return string(r.Type) + "/" + r.ID
}
