package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askwhyharsh/scamcheck/pkg/logger"
	"github.com/askwhyharsh/scamcheck/pkg/validator"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDKey    = "client_id"
)

type Middleware struct {
	limiter   RateLimiter
	validator validator.Validator
	logger    logger.Logger
}

func NewMiddleware(limiter RateLimiter, v validator.Validator, log logger.Logger) *Middleware {
	return &Middleware{
		limiter:   limiter,
		validator: v,
		logger:    log,
	}
}

func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"message": message,
			"code":    code,
		},
	})
}

// IPRateLimit middleware for general IP-based rate limiting. Limiter
// failures let the request through.
func (m *Middleware) IPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := m.limiter.AllowIPRequest(c.Request.Context(), ip)
		if err != nil {
			m.logger.Error("Failed to check IP rate limit", "ip", ip, "error", err)
			c.Next()
			return
		}

		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", "RATE_LIMIT_IP")
			return
		}

		c.Next()
	}
}

// AnalysisRateLimit limits analysis endpoints per client id, or per IP when
// the request carries none.
func (m *Middleware) AnalysisRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ClientIDHeader)
		if key == "" || m.validator.ValidateClientID(key) != nil {
			key = "ip:" + c.ClientIP()
		}

		allowed, err := m.limiter.AllowAnalysis(c.Request.Context(), key)
		if err != nil {
			m.logger.Error("Failed to check analysis rate limit", "key", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, "Too many analyses. Please slow down.", "RATE_LIMIT_ANALYSIS")
			return
		}

		c.Next()
	}
}

// ClientID requires a valid X-Client-ID header and stores it on the context.
func (m *Middleware) ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(ClientIDHeader)
		if clientID == "" {
			clientID = c.Query("client_id")
		}

		if err := m.validator.ValidateClientID(clientID); err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error(), "INVALID_CLIENT_ID")
			return
		}

		// Store client ID in context for handlers
		c.Set(ClientIDKey, clientID)
		c.Next()
	}
}
