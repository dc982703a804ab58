package middleware

import (
	"github.com/cloud-wave-best-zizon/store-service/pkg/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = requestid.Header

// RequestID propagates the incoming X-Request-ID or generates one, and makes
// it available from the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Request = c.Request.WithContext(requestid.NewContext(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
