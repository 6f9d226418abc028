package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/api_gateway/middleware"
	"github.com/bizdesk-posting-ledger/internal/api_gateway/service"
	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/posting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PostingHandler handles HTTP requests for ledger posting operations
type PostingHandler struct {
	postingService service.PostingService
	logger         *slog.Logger
}

// NewPostingHandler creates a new posting handler
func NewPostingHandler(logger *slog.Logger, postingService service.PostingService) *PostingHandler {
	return &PostingHandler{
		postingService: postingService,
		logger:         logger,
	}
}

// respondPostingError maps engine errors onto HTTP statuses. Misconfigured
// charts are 422, bad amounts 400, duplicate postings 409; everything else is
// a server error.
func (h *PostingHandler) respondPostingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, account.ErrRoleNotResolved{}):
		h.logger.Warn("Posting rejected: account role not resolved", "error", err)
		RespondUnprocessable(c, "ACCOUNT_NOT_RESOLVED", err.Error())
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondUnprocessable(c, "ACCOUNT_NOT_FOUND", err.Error())
	case errors.Is(err, ledger.ErrUnbalancedEntry{}):
		h.logger.Warn("Posting rejected: unbalanced entry", "error", err)
		RespondBadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrNoLines):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrDuplicatePosting{}):
		RespondConflict(c, "Posting already exists for this reference")
	default:
		h.logger.Error("Posting failed", "error", err)
		RespondInternalError(c)
	}
}

// postPayment handles the four workflows sharing the payment request shape
func (h *PostingHandler) postPayment(c *gin.Context, post func(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error)) {
	var req PostPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	engineReq, err := req.toPaymentRequest()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	lines, err := post(middleware.RequestContext(c), engineReq)
	if err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondCreated(c, mapLinesToResponse(lines))
}

// ReceiptPayment posts money received for a direct sale
func (h *PostingHandler) ReceiptPayment(c *gin.Context) {
	h.postPayment(c, h.postingService.ReceiptPayment)
}

// InvoicePayment posts money received against an open invoice
func (h *PostingHandler) InvoicePayment(c *gin.Context) {
	h.postPayment(c, h.postingService.InvoicePayment)
}

// Prepayment posts money taken before delivery
func (h *PostingHandler) Prepayment(c *gin.Context) {
	h.postPayment(c, h.postingService.Prepayment)
}

// ApplyPrepayment consumes a held prepayment against an invoice
func (h *PostingHandler) ApplyPrepayment(c *gin.Context) {
	h.postPayment(c, h.postingService.ApplyPrepayment)
}

// ExpensePayment posts an expense paid from a cash or bank account
func (h *PostingHandler) ExpensePayment(c *gin.Context) {
	var req PostExpensePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	paymentReq, err := req.toPaymentRequest()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	expenseAccountID, err := parseOptionalUUID(req.ExpenseAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid expense_account_id")
		return
	}

	lines, err := h.postingService.ExpensePayment(middleware.RequestContext(c), posting.ExpensePaymentRequest{
		PaymentRequest:   paymentReq,
		ExpenseAccountID: expenseAccountID,
	})
	if err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondCreated(c, mapLinesToResponse(lines))
}

// PurchaseReceive posts an inventory capitalization for received stock
func (h *PostingHandler) PurchaseReceive(c *gin.Context) {
	h.postPurchase(c, h.postingService.PurchaseReceive)
}

// PurchasePayment posts a supplier balance settlement
func (h *PostingHandler) PurchasePayment(c *gin.Context) {
	h.postPurchase(c, h.postingService.PurchasePayment)
}

func (h *PostingHandler) postPurchase(c *gin.Context, post func(ctx context.Context, req posting.PurchaseRequest) ([]*ledger.Line, error)) {
	var req PostPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	engineReq, err := req.toPurchaseRequest()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	lines, err := post(middleware.RequestContext(c), engineReq)
	if err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondCreated(c, mapLinesToResponse(lines))
}

// AccountTransfer posts a movement between two accounts
func (h *PostingHandler) AccountTransfer(c *gin.Context) {
	var req PostTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	locationID, err := parseOptionalUUID(req.LocationID)
	if err != nil {
		RespondBadRequest(c, "Invalid location_id")
		return
	}

	lines, err := h.postingService.AccountTransfer(middleware.RequestContext(c), posting.TransferRequest{
		OrganizationID: uuid.MustParse(req.OrganizationID),
		Amount:         amount,
		Date:           date,
		Description:    req.Description,
		FromAccountID:  uuid.MustParse(req.FromAccountID),
		ToAccountID:    uuid.MustParse(req.ToAccountID),
		ReferenceID:    req.ReferenceID,
		LocationID:     locationID,
	})
	if err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondCreated(c, mapLinesToResponse(lines))
}

// SaleCOGS posts the cost of inventory consumed by a sale
func (h *PostingHandler) SaleCOGS(c *gin.Context) {
	var req PostCOGSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quantity, err := parseAmount(req.Quantity)
	if err != nil {
		RespondBadRequest(c, "Invalid quantity")
		return
	}
	unitCost, err := parseAmount(req.UnitCost)
	if err != nil {
		RespondBadRequest(c, "Invalid unit_cost")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	itemID, err := parseOptionalUUID(req.ItemID)
	if err != nil {
		RespondBadRequest(c, "Invalid item_id")
		return
	}
	locationID, err := parseOptionalUUID(req.LocationID)
	if err != nil {
		RespondBadRequest(c, "Invalid location_id")
		return
	}

	lines, err := h.postingService.SaleCOGS(middleware.RequestContext(c), posting.COGSRequest{
		OrganizationID: uuid.MustParse(req.OrganizationID),
		Quantity:       quantity,
		UnitCost:       unitCost,
		Date:           date,
		Description:    req.Description,
		ReferenceID:    req.ReferenceID,
		ItemID:         itemID,
		LocationID:     locationID,
	})
	if err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondCreated(c, mapLinesToResponse(lines))
}

// parseReference extracts and validates the reference pair from path params
func (h *PostingHandler) parseReference(c *gin.Context) (ledger.Reference, bool) {
	refType := c.Param("reference_type")
	refID := c.Param("reference_id")
	if refType == "" || refID == "" {
		RespondBadRequest(c, "reference_type and reference_id are required")
		return ledger.Reference{}, false
	}
	return ledger.Reference{Type: ledger.ReferenceType(refType), ID: refID}, true
}

// GetByReference returns the lines posted for a reference, covering aliases
func (h *PostingHandler) GetByReference(c *gin.Context) {
	ref, ok := h.parseReference(c)
	if !ok {
		return
	}

	lines, err := h.postingService.GetLinesByReference(middleware.RequestContext(c), ref)
	if err != nil {
		h.logger.Error("Failed to get lines by reference", "reference", ref.String(), "error", err)
		RespondInternalError(c)
		return
	}
	if len(lines) == 0 {
		RespondNotFound(c, "No posting found for reference")
		return
	}

	RespondOK(c, mapLinesToResponse(lines))
}

// UpsertMirror keeps a single-line mirror posting in sync with its source
// document, updating the tagged line in place or inserting it when missing
func (h *PostingHandler) UpsertMirror(c *gin.Context) {
	ref, ok := h.parseReference(c)
	if !ok {
		return
	}

	var req MirrorLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	mirror, err := req.toMirrorLine()
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.postingService.UpsertMirror(middleware.RequestContext(c), ref, mirror); err != nil {
		h.respondPostingError(c, err)
		return
	}

	RespondNoContent(c)
}

// Delete removes all lines for a reference and its legacy aliases
func (h *PostingHandler) Delete(c *gin.Context) {
	ref, ok := h.parseReference(c)
	if !ok {
		return
	}

	deleted, err := h.postingService.DeletePosting(middleware.RequestContext(c), ref)
	if err != nil {
		h.logger.Error("Failed to delete posting", "reference", ref.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, DeletePostingResponse{DeletedLines: deleted})
}

// GetAuditTrail returns the recorded posting attempts for a reference
func (h *PostingHandler) GetAuditTrail(c *gin.Context) {
	ref, ok := h.parseReference(c)
	if !ok {
		return
	}

	records, err := h.postingService.GetAuditTrail(middleware.RequestContext(c), string(ref.Type), ref.ID)
	if err != nil {
		h.logger.Error("Failed to get audit trail", "reference", ref.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, records)
}
