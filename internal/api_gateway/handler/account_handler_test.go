package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bizdesk-posting-ledger/internal/api_gateway/service"
	"github.com/bizdesk-posting-ledger/internal/domain/account"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, params service.CreateAccountParams) (*account.Account, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, organizationID uuid.UUID) ([]*account.Account, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountService) GetComputedBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var _ service.AccountService = (*MockAccountService)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

// decodeData unmarshals the data field of a response envelope into out
func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var topLevel Response
	require.NoError(t, json.Unmarshal(body, &topLevel))
	require.NotNil(t, topLevel.Data, "'data' field should not be nil")
	dataBytes, err := json.Marshal(topLevel.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(dataBytes, out))
}

func TestAccountHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	orgID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		now := time.Now()
		subtype := account.SubtypeCash
		expectedAccount := &account.Account{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Code:           "1001",
			Name:           "Cash",
			Type:           account.TypeAsset,
			Subtype:        &subtype,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		mockService.On("CreateAccount", mock.Anything, mock.MatchedBy(func(p service.CreateAccountParams) bool {
			return p.OrganizationID == orgID && p.Code == "1001" && p.Type == account.TypeAsset &&
				p.Subtype != nil && *p.Subtype == account.SubtypeCash
		})).Return(expectedAccount, nil)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{
			OrganizationID: orgID.String(),
			Code:           "1001",
			Name:           "Cash",
			Type:           "ASSET",
			Subtype:        "Cash",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody AccountResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, expectedAccount.ID.String(), responseBody.ID)
		assert.Equal(t, "1001", responseBody.Code)
		assert.Equal(t, "ASSET", responseBody.Type)
		assert.Equal(t, "Cash", responseBody.Subtype)
		assert.Equal(t, "DEBIT", responseBody.NormalBalance)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"invalid`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidAccountType", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{
			OrganizationID: orgID.String(),
			Code:           "1001",
			Name:           "Cash",
			Type:           "SOMETHING",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		mockService.On("CreateAccount", mock.Anything, mock.Anything).
			Return(nil, account.ErrDuplicateCode{OrganizationID: orgID, Code: "1001"})

		router := setupTestRouter()
		router.POST("/accounts", handler.Create)

		reqBody := CreateAccountRequest{
			OrganizationID: orgID.String(),
			Code:           "1001",
			Name:           "Cash",
			Type:           "ASSET",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "CONFLICT", response.Error.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		expectedAccount := &account.Account{
			ID:             accountID,
			OrganizationID: uuid.New(),
			Code:           "4001",
			Name:           "Sales Income",
			Type:           account.TypeIncome,
			IsActive:       true,
		}
		mockService.On("GetAccountByID", mock.Anything, accountID).Return(expectedAccount, nil)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody AccountResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, accountID.String(), responseBody.ID)
		assert.Equal(t, "CREDIT", responseBody.NormalBalance)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AccountNotFound", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetAccountByID", mock.Anything, accountID).Return(nil, account.ErrAccountNotFound{AccountID: accountID})

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockAccountService)
		handler := NewAccountHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetAccountByID", mock.Anything, accountID).Return(nil, errors.New("database connection lost"))

		router := setupTestRouter()
		router.GET("/accounts/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAccountHandler_GetBalance(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockAccountService)
	handler := NewAccountHandler(logger, mockService)

	accountID := uuid.New()
	mockService.On("GetComputedBalance", mock.Anything, accountID).
		Return(decimal.RequireFromString("1234.56"), nil)

	router := setupTestRouter()
	router.GET("/accounts/:id/balance", handler.GetBalance)

	req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/balance", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var responseBody BalanceResponse
	decodeData(t, rr.Body.Bytes(), &responseBody)
	assert.Equal(t, accountID.String(), responseBody.AccountID)
	assert.Equal(t, "1234.56", responseBody.Balance)

	mockService.AssertExpectations(t)
}

func TestAccountHandler_Deactivate(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockAccountService)
	handler := NewAccountHandler(logger, mockService)

	accountID := uuid.New()
	mockService.On("DeactivateAccount", mock.Anything, accountID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/accounts/:id", handler.Deactivate)

	req, _ := http.NewRequest(http.MethodDelete, "/accounts/"+accountID.String(), nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	mockService.AssertExpectations(t)
}
