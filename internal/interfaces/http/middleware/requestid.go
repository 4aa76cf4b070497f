package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockpilot/internal/shared/constants"
)

// RequestID propagates the caller-supplied X-Request-ID header, or assigns
// a fresh UUID when absent, and echoes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
