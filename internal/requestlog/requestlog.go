// Package requestlog tags every request with an id and writes start/finish
// log lines for it.
package requestlog

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/paid-events-service/internal/auth"
)

// HeaderRequestID is read from incoming requests and echoed on responses.
const HeaderRequestID = "X-Request-Id"

const requestIDCtxKey = "request_id"

// Middleware assigns a request id (reusing a client-sent X-Request-Id) and
// logs request start and finish with status and latency.
// It must run after auth.IdentityMiddleware so the caller is known.
func Middleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDCtxKey, id)
		c.Header(HeaderRequestID, id)

		logger.Info("request start",
			"request_id", id,
			"source_ip", c.ClientIP(),
			"caller", auth.Caller(c),
			"method", c.Request.Method,
			"path", c.Request.URL.RequestURI(),
			"protocol", c.Request.Proto,
			"user_agent", c.Request.UserAgent(),
		)

		c.Next()

		logger.Info("request finish",
			"request_id", id,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// RequestID returns the id assigned by Middleware, or "" outside it.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDCtxKey)
}

// Logger returns base annotated with the request id.
func Logger(c *gin.Context, base *slog.Logger) *slog.Logger {
	return base.With("request_id", RequestID(c))
}
