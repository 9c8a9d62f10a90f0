package middleware

import (
	domainerrors "bookmarket.backend/internal/domain/errors"
	"bookmarket.backend/internal/interfaces/http/response"
	"bookmarket.backend/internal/ratelimit"
	"bookmarket.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// RateLimit rejects clients that exceed limiter's quota. Clients are keyed by
// IP and route. A nil limiter disables the check.
func RateLimit(name string, limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.ClientIP() + "|" + c.FullPath()
		if !limiter.Allow(c.Request.Context(), key) {
			metrics.RateLimitedTotal.WithLabelValues(name).Inc()
			response.Error(c, domainerrors.TooManyRequests("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
