package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const (
	// CorrelationIDHeader is the HTTP header for correlation ID
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the key used to store correlation ID in the context
	CorrelationIDKey = "correlation_id"
)

// CorrelationID middleware ensures each request has a unique identifier for tracing
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID retrieves the correlation ID from the gin context if present
func GetCorrelationID(c *gin.Context) string {
	if id, exists := c.Get(CorrelationIDKey); exists {
		if correlationID, ok := id.(string); ok {
			return correlationID
		}
	}
	return ""
}

// RequestContext returns the request's context annotated with the correlation
// ID so layers below the handlers can attach it to their records.
func RequestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := GetCorrelationID(c); id != "" {
		ctx = context.WithValue(ctx, contextKey(CorrelationIDKey), id)
	}
	return ctx
}

// CorrelationIDFromContext extracts the correlation ID placed by RequestContext
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey(CorrelationIDKey)).(string); ok {
		return id
	}
	return ""
}
