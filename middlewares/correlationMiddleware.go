package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationMiddleware accepts the caller's correlation id or mints one,
// puts it in the request context, and echoes it on the response so
// customer-support traces line up across services.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get(correlationHeader)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(correlationHeader, correlationId)
		c.Next()
	}
}
