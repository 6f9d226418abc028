package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bizdesk-posting-ledger/internal/api_gateway/middleware"
	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/bizdesk-posting-ledger/internal/domain/audit"
	"github.com/bizdesk-posting-ledger/internal/domain/ledger"
	"github.com/bizdesk-posting-ledger/internal/posting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingServiceImpl implements the PostingService interface. It delegates to
// the posting engine and records every attempt, successful or not, in the
// audit trail. Audit writes are best-effort: a failed audit write is logged
// and never fails the posting itself.
type PostingServiceImpl struct {
	workflows  *posting.Workflows
	lifecycle  *posting.Lifecycle
	ledgerRepo ledger.Repository
	auditRepo  audit.Repository
	logger     *slog.Logger
}

// NewPostingService creates a new posting service
func NewPostingService(
	logger *slog.Logger,
	workflows *posting.Workflows,
	lifecycle *posting.Lifecycle,
	ledgerRepo ledger.Repository,
	auditRepo audit.Repository,
) PostingService {
	return &PostingServiceImpl{
		workflows:  workflows,
		lifecycle:  lifecycle,
		ledgerRepo: ledgerRepo,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

func (s *PostingServiceImpl) ReceiptPayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.ReceiptPayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "receipt_payment", ledger.RefReceiptPayment, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) InvoicePayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.InvoicePayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "invoice_payment", ledger.RefInvoicePayment, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) Prepayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.Prepayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "prepayment", ledger.RefPrepayment, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) ApplyPrepayment(ctx context.Context, req posting.PaymentRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.ApplyPrepayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "prepayment_application", ledger.RefPrepaymentApplication, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) ExpensePayment(ctx context.Context, req posting.ExpensePaymentRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.ExpensePayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "expense_payment", ledger.RefExpensePayment, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) PurchaseReceive(ctx context.Context, req posting.PurchaseRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.PurchaseReceive(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "purchase_receive", ledger.RefPurchaseReceive, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) PurchasePayment(ctx context.Context, req posting.PurchaseRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.PurchasePayment(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "purchase_payment", ledger.RefPurchasePayment, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) AccountTransfer(ctx context.Context, req posting.TransferRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.AccountTransfer(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "account_transfer", ledger.RefAccountTransfer, req.ReferenceID, req.Amount, err)
	return lines, err
}

func (s *PostingServiceImpl) SaleCOGS(ctx context.Context, req posting.COGSRequest) ([]*ledger.Line, error) {
	lines, err := s.workflows.SaleCOGS(ctx, req)
	s.recordAttempt(ctx, req.OrganizationID, "sale_cogs", ledger.RefSaleCOGS, req.ReferenceID, req.Quantity.Mul(req.UnitCost), err)
	return lines, err
}

func (s *PostingServiceImpl) UpsertMirror(ctx context.Context, ref ledger.Reference, mirror posting.MirrorLine) error {
	return s.lifecycle.UpsertMirror(ctx, ref, mirror)
}

func (s *PostingServiceImpl) GetLinesByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Line, error) {
	return s.ledgerRepo.GetByReference(ctx, ref)
}

func (s *PostingServiceImpl) DeletePosting(ctx context.Context, ref ledger.Reference) (int64, error) {
	return s.lifecycle.DeleteByReference(ctx, ref)
}

func (s *PostingServiceImpl) GetAuditTrail(ctx context.Context, referenceType, referenceID string) ([]*audit.Record, error) {
	return s.auditRepo.GetByReference(ctx, referenceType, referenceID)
}

// recordAttempt writes one audit record for a posting attempt
func (s *PostingServiceImpl) recordAttempt(ctx context.Context, organizationID uuid.UUID, workflow string, refType ledger.ReferenceType, refID string, amount decimal.Decimal, postErr error) {
	record := &audit.Record{
		ID:             uuid.New(),
		OrganizationID: organizationID,
		Workflow:       workflow,
		ReferenceType:  string(refType),
		ReferenceID:    refID,
		Amount:         amount.String(),
		Outcome:        audit.OutcomePosted,
		CreatedAt:      time.Now().UTC(),
	}
	record.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	if postErr != nil {
		record.Outcome, record.ErrorKind = classifyError(postErr)
		record.ErrorDetail = postErr.Error()
	}

	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to record posting attempt in audit trail",
			"workflow", workflow,
			"reference_type", record.ReferenceType,
			"reference_id", refID,
			"error", err,
		)
	}
}

// classifyError maps a posting error onto the audit taxonomy
func classifyError(err error) (audit.Outcome, audit.ErrorKind) {
	switch {
	case errors.Is(err, account.ErrRoleNotResolved{}):
		return audit.OutcomeRejected, audit.ErrorKindRoleNotResolved
	case errors.Is(err, ledger.ErrUnbalancedEntry{}):
		return audit.OutcomeRejected, audit.ErrorKindUnbalanced
	case errors.Is(err, ledger.ErrDuplicatePosting{}):
		return audit.OutcomeRejected, audit.ErrorKindDuplicate
	case errors.Is(err, ledger.ErrInvalidAmount):
		return audit.OutcomeRejected, audit.ErrorKindInvalidAmount
	case errors.Is(err, account.ErrAccountNotFound{}):
		return audit.OutcomeRejected, audit.ErrorKindRoleNotResolved
	default:
		return audit.OutcomeFailed, audit.ErrorKindStorage
	}
}
