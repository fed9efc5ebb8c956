// Package middleware holds the gin middleware shared by all routes.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout returns a gin middleware that attaches a deadline to the
// request context. It runs the handler chain synchronously (no goroutine
// spawning), which keeps gin.Context access single-threaded and avoids
// goroutine leaks.
//
// How it works:
//   - Before c.Next(), the context is replaced with one that has a deadline.
//   - After c.Next() returns, if the context expired AND no response has
//     been written yet, a 503 is sent. In practice this happens when a
//     handler returns early without writing (e.g. after detecting
//     ctx.Err() != nil in a select branch that doesn't call c.JSON).
//
// Limitation: this cannot interrupt a handler that blocks without
// checking its context. All upstream and storage calls here propagate
// the context and unblock when the deadline fires at the HTTP/DB level,
// which is the only cancellation this service needs.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		// Replace the request context so all downstream code sees the deadline.
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "request timed out",
			})
		}
	}
}
