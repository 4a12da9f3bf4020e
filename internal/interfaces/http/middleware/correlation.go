package middleware

import (
	"github.com/gin-gonic/gin"

	"skillforge/internal/shared/correlation"
)

// Correlation attaches a correlation context to every request: the inbound
// X-Request-ID when sane, a fresh identifier otherwise. The identifier is
// echoed on the response so clients can quote it in support requests.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		corr := correlation.FromHTTPHeader(c.Request.Header)

		ctx := correlation.NewContext(c.Request.Context(), corr)
		c.Request = c.Request.WithContext(ctx)
		c.Header(correlation.HeaderRequestID, corr.RequestID)

		c.Next()
	}
}
