package handler

import (
	"errors"
	"log/slog"

	"github.com/bizdesk-posting-ledger/internal/api_gateway/middleware"
	"github.com/bizdesk-posting-ledger/internal/api_gateway/service"
	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler handles HTTP requests for chart-of-accounts operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles adding an account to an organization's chart
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	openingBalance := decimal.Zero
	if req.OpeningBalance != "" {
		parsed, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			RespondBadRequest(c, "Invalid opening balance")
			return
		}
		openingBalance = parsed
	}

	params := service.CreateAccountParams{
		OrganizationID: uuid.MustParse(req.OrganizationID),
		Code:           req.Code,
		Name:           req.Name,
		Type:           account.Type(req.Type),
		OpeningBalance: openingBalance,
	}
	if req.Subtype != "" {
		subtype := account.Subtype(req.Subtype)
		params.Subtype = &subtype
	}

	acc, err := h.accountService.CreateAccount(middleware.RequestContext(c), params)
	if err != nil {
		var duplicateCodeErr account.ErrDuplicateCode
		if errors.As(err, &duplicateCodeErr) {
			h.logger.Warn("Attempt to create account with duplicate code",
				"organization_id", req.OrganizationID, "code", duplicateCodeErr.Code)
			RespondConflict(c, "Account with this code already exists in the organization")
			return
		}
		if errors.Is(err, account.ErrEmptyCode) || errors.Is(err, account.ErrEmptyName) || errors.Is(err, account.ErrInvalidType) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(middleware.RequestContext(c), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// List returns every account of an organization
func (h *AccountHandler) List(c *gin.Context) {
	orgParam := c.Query("organization_id")
	organizationID, err := uuid.Parse(orgParam)
	if err != nil {
		RespondBadRequest(c, "Invalid or missing organization_id")
		return
	}

	accounts, err := h.accountService.ListAccounts(middleware.RequestContext(c), organizationID)
	if err != nil {
		h.logger.Error("Failed to list accounts", "organization_id", orgParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, responses)
}

// Deactivate soft-deletes an account. Ledger history stays intact; the
// account just stops resolving for new postings.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.DeactivateAccount(middleware.RequestContext(c), id); err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to deactivate account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// GetBalance returns the account balance derived from its ledger lines
func (h *AccountHandler) GetBalance(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	balance, err := h.accountService.GetComputedBalance(middleware.RequestContext(c), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to compute account balance", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, BalanceResponse{AccountID: id.String(), Balance: balance.String()})
}
