package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bizdesk-posting-ledger/internal/api_gateway/handler"
	"github.com/bizdesk-posting-ledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	postingHandler *handler.PostingHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Chart of accounts operations
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/balance", accountHandler.GetBalance)
			accounts.DELETE("/:id", accountHandler.Deactivate)
		}

		// Posting workflow operations
		postings := v1.Group("/postings")
		{
			postings.POST("/receipt-payments", postingHandler.ReceiptPayment)
			postings.POST("/invoice-payments", postingHandler.InvoicePayment)
			postings.POST("/prepayments", postingHandler.Prepayment)
			postings.POST("/prepayment-applications", postingHandler.ApplyPrepayment)
			postings.POST("/expense-payments", postingHandler.ExpensePayment)
			postings.POST("/purchase-receipts", postingHandler.PurchaseReceive)
			postings.POST("/purchase-payments", postingHandler.PurchasePayment)
			postings.POST("/transfers", postingHandler.AccountTransfer)
			postings.POST("/cogs", postingHandler.SaleCOGS)

			// Reference-keyed lifecycle and inspection
			postings.GET("/:reference_type/:reference_id", postingHandler.GetByReference)
			postings.PUT("/:reference_type/:reference_id/mirror", postingHandler.UpsertMirror)
			postings.DELETE("/:reference_type/:reference_id", postingHandler.Delete)
			postings.GET("/:reference_type/:reference_id/audit", postingHandler.GetAuditTrail)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
