package api

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// InternalTokenAuth guards internal endpoints with a bearer token. An empty configured
// token rejects every request.
func InternalTokenAuth(token string) gin.HandlerFunc {
	expected := strings.TrimSpace(token)

	return func(c *gin.Context) {
		provided := bearerTokenFromRequest(c.GetHeader("Authorization"))

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			Fail(c, 401, ErrUnauthorized, "unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerTokenFromRequest(header string) string {
	auth := strings.TrimSpace(header)
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// RequestID propagates or assigns a request id
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
// Query strings and bodies are never logged.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"requestId", c.GetString("requestId"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"clientIp", c.ClientIP(),
			"latency", time.Since(startedAt).String(),
		}

		switch {
		case status >= 500:
			log.Error("HTTP request completed", fields...)
		case status >= 400:
			log.Warn("HTTP request completed", fields...)
		default:
			log.Info("HTTP request completed", fields...)
		}
	}
}
