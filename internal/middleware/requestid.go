package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/identity"
)

// RequestIDHeader is the header carrying the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// RequestID returns a gin middleware that tags every request with an
// ephemeral identifier, echoed in the response header for log
// correlation. An identifier supplied by the caller is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = identity.NewID()
		}
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
