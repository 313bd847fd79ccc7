package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taskdesk/taskdesk-api/internal/constants"
)

// RequestID tags every request and response with a correlation id, keeping a
// caller-provided one when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(constants.HeaderRequestID, id)
		c.Writer.Header().Set(constants.HeaderRequestID, id)
		c.Next()
	}
}
