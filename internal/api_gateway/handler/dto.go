package handler

import (
	"fmt"
	"time"

	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/posting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents a request to add an account to a chart
type CreateAccountRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Subtype        string `json:"subtype,omitempty"`
	OpeningBalance string `json:"opening_balance,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Subtype        string `json:"subtype,omitempty"`
	NormalBalance  string `json:"normal_balance"`
	IsActive       bool   `json:"is_active"`
	OpeningBalance string `json:"opening_balance"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// BalanceResponse carries an account balance derived from ledger lines
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// PostPaymentRequest represents a money-movement posting request shared by
// the receipt, invoice, prepayment, and prepayment-application workflows
type PostPaymentRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Amount         string `json:"amount" binding:"required"`
	Date           string `json:"date,omitempty"`
	Description    string `json:"description,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	ReferenceID    string `json:"reference_id" binding:"required"`
	ItemID         string `json:"item_id,omitempty"`
	LocationID     string `json:"location_id,omitempty"`
}

// PostExpensePaymentRequest adds an optional explicit expense account
type PostExpensePaymentRequest struct {
	PostPaymentRequest
	ExpenseAccountID string `json:"expense_account_id,omitempty"`
}

// PostPurchaseRequest represents a purchase capitalization or payment request
type PostPurchaseRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Amount         string `json:"amount" binding:"required"`
	Date           string `json:"date,omitempty"`
	Description    string `json:"description,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	ReferenceID    string `json:"reference_id" binding:"required"`
	ItemID         string `json:"item_id,omitempty"`
	LocationID     string `json:"location_id,omitempty"`
}

// PostTransferRequest represents an account-to-account transfer request
type PostTransferRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Amount         string `json:"amount" binding:"required"`
	Date           string `json:"date,omitempty"`
	Description    string `json:"description,omitempty"`
	FromAccountID  string `json:"from_account_id" binding:"required,uuid"`
	ToAccountID    string `json:"to_account_id" binding:"required,uuid"`
	ReferenceID    string `json:"reference_id" binding:"required"`
	LocationID     string `json:"location_id,omitempty"`
}

// PostCOGSRequest represents a cost-of-goods-sold posting request
type PostCOGSRequest struct {
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	Quantity       string `json:"quantity" binding:"required"`
	UnitCost       string `json:"unit_cost" binding:"required"`
	Date           string `json:"date,omitempty"`
	Description    string `json:"description,omitempty"`
	ReferenceID    string `json:"reference_id" binding:"required"`
	ItemID         string `json:"item_id,omitempty"`
	LocationID     string `json:"location_id,omitempty"`
}

// MirrorLineRequest represents the desired state of a single-line mirror
type MirrorLineRequest struct {
	AccountID   string `json:"account_id" binding:"required,uuid"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Debit       string `json:"debit_amount,omitempty"`
	Credit      string `json:"credit_amount,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
}

// toMirrorLine converts the DTO into an engine mirror line. Omitted amounts
// default to zero.
func (r MirrorLineRequest) toMirrorLine() (posting.MirrorLine, error) {
	mirror := posting.MirrorLine{
		AccountID:   uuid.MustParse(r.AccountID),
		Description: r.Description,
	}

	var err error
	if r.Debit != "" {
		if mirror.Debit, err = parseAmount(r.Debit); err != nil {
			return posting.MirrorLine{}, err
		}
	}
	if r.Credit != "" {
		if mirror.Credit, err = parseAmount(r.Credit); err != nil {
			return posting.MirrorLine{}, err
		}
	}
	if mirror.Date, err = parseDate(r.Date); err != nil {
		return posting.MirrorLine{}, err
	}
	if mirror.LocationID, err = parseOptionalUUID(r.LocationID); err != nil {
		return posting.MirrorLine{}, err
	}

	return mirror, nil
}

// LineResponse represents one ledger line in API responses
type LineResponse struct {
	ID              string `json:"id"`
	AccountID       string `json:"account_id"`
	TransactionDate string `json:"transaction_date"`
	Description     string `json:"description,omitempty"`
	DebitAmount     string `json:"debit_amount"`
	CreditAmount    string `json:"credit_amount"`
	ReferenceType   string `json:"reference_type,omitempty"`
	ReferenceID     string `json:"reference_id,omitempty"`
	LocationID      string `json:"location_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// PostingResponse represents a written line group in API responses
type PostingResponse struct {
	Lines []LineResponse `json:"lines"`
}

// DeletePostingResponse reports how many lines a deletion removed
type DeletePostingResponse struct {
	DeletedLines int64 `json:"deleted_lines"`
}

// parseAmount parses a positive decimal amount string
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

// parseDate parses an optional RFC 3339 date; empty means "now"
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected RFC 3339", raw)
	}
	return date, nil
}

// parseOptionalUUID parses an optional uuid field; empty means nil
func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	return &id, nil
}

// toPaymentRequest converts the DTO into an engine payment request
func (r PostPaymentRequest) toPaymentRequest() (posting.PaymentRequest, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return posting.PaymentRequest{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return posting.PaymentRequest{}, err
	}
	itemID, err := parseOptionalUUID(r.ItemID)
	if err != nil {
		return posting.PaymentRequest{}, err
	}
	locationID, err := parseOptionalUUID(r.LocationID)
	if err != nil {
		return posting.PaymentRequest{}, err
	}

	return posting.PaymentRequest{
		OrganizationID: uuid.MustParse(r.OrganizationID),
		Amount:         amount,
		Date:           date,
		Description:    r.Description,
		PaymentMethod:  r.PaymentMethod,
		ReferenceID:    r.ReferenceID,
		ItemID:         itemID,
		LocationID:     locationID,
	}, nil
}

// toPurchaseRequest converts the DTO into an engine purchase request
func (r PostPurchaseRequest) toPurchaseRequest() (posting.PurchaseRequest, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return posting.PurchaseRequest{}, err
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return posting.PurchaseRequest{}, err
	}
	itemID, err := parseOptionalUUID(r.ItemID)
	if err != nil {
		return posting.PurchaseRequest{}, err
	}
	locationID, err := parseOptionalUUID(r.LocationID)
	if err != nil {
		return posting.PurchaseRequest{}, err
	}

	return posting.PurchaseRequest{
		OrganizationID: uuid.MustParse(r.OrganizationID),
		Amount:         amount,
		Date:           date,
		Description:    r.Description,
		PaymentMethod:  r.PaymentMethod,
		ReferenceID:    r.ReferenceID,
		ItemID:         itemID,
		LocationID:     locationID,
	}, nil
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	response := AccountResponse{
		ID:             acc.ID.String(),
		OrganizationID: acc.OrganizationID.String(),
		Code:           acc.Code,
		Name:           acc.Name,
		Type:           string(acc.Type),
		NormalBalance:  string(acc.Type.NormalBalance()),
		IsActive:       acc.IsActive,
		OpeningBalance: acc.OpeningBalance.String(),
		CreatedAt:      acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.Subtype != nil {
		response.Subtype = string(*acc.Subtype)
	}
	return response
}

// mapLinesToResponse maps a written line group to a posting response DTO
func mapLinesToResponse(lines []*ledger.Line) PostingResponse {
	response := PostingResponse{Lines: make([]LineResponse, 0, len(lines))}
	for _, line := range lines {
		lr := LineResponse{
			ID:              line.ID.String(),
			AccountID:       line.AccountID.String(),
			TransactionDate: line.TransactionDate.Format(time.RFC3339),
			Description:     line.Description,
			DebitAmount:     line.DebitAmount.String(),
			CreditAmount:    line.CreditAmount.String(),
			ReferenceType:   string(line.ReferenceType),
			ReferenceID:     line.ReferenceID,
			CreatedAt:       line.CreatedAt.Format(time.RFC3339),
		}
		if line.LocationID != nil {
			lr.LocationID = line.LocationID.String()
		}
		response.Lines = append(response.Lines, lr)
	}
	return response
}
