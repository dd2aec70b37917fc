package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orderly-com/wish-insights/internal/types"
)

// HeaderTenantID carries the calling tenant on scheduler and API requests
const HeaderTenantID = "X-Tenant-ID"

// ContextMiddleware stamps every request with a request ID and propagates the
// tenant header into the request context
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = types.SetRequestID(ctx, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		tenantID := c.GetHeader(HeaderTenantID)
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}
		ctx = types.SetTenantID(ctx, tenantID)
		c.Set("tenant_id", tenantID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
