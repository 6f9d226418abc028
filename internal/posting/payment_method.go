package posting

import (
	"strings"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
)

// ClassifyPaymentMethod maps a free-form payment method string onto the
// deposit account subtype it should settle into. Cash-like methods go to
// Cash; cards, transfers, cheques, and mobile money all settle through Bank.
// An organization-level deposit mapping, when configured, bypasses this
// heuristic entirely.
func ClassifyPaymentMethod(method string) account.Subtype {
	m := strings.ToLower(strings.TrimSpace(method))
	switch {
	case m == "" || m == "cash":
		return account.SubtypeCash
	case strings.Contains(m, "petty"):
		return account.SubtypeCash
	default:
		return account.SubtypeBank
	}
}

// depositCodeForSubtype returns the canonical chart code historically
// associated with a deposit subtype.
func depositCodeForSubtype(subtype account.Subtype) string {
	if subtype == account.SubtypeCash {
		return codeCash
	}
	return codeBank
}
