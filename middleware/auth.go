package middleware

import (
	"net/http"
	"strings"
	"time"

	"advocase-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IdentityHeader carries the authenticated advocate id, injected by the
// upstream gateway
const IdentityHeader = "X-User-ID"

const advocateIDKey = "advocate_id"

// RequireIdentity rejects requests without a well-formed identity header
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(IdentityHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing identity header",
				},
			})
			return
		}

		advocateID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid identity header",
				},
			})
			return
		}

		c.Set(advocateIDKey, advocateID)
		c.Next()
	}
}

// AdvocateID returns the identity set by RequireIdentity
func AdvocateID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(advocateIDKey)
	advocateID, _ := id.(uuid.UUID)
	return advocateID
}

// RequireCronSecret guards the cron route with a bearer-token match against
// the server-held secret
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if secret == "" || token == "" || token == auth || token != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid cron token",
				},
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request with latency and status
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}
