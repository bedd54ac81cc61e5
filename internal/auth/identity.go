package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// callerCtxKey is the Gin context key used to store the resolved caller name.
const callerCtxKey = "caller"

// IdentityMiddleware maps X-API-Key -> username for request logs.
// Unknown or missing keys resolve to anonymous; requests are never rejected here.
func IdentityMiddleware(keys map[string]string, anonymous string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := anonymous
		if apiKey := strings.TrimSpace(c.GetHeader("X-API-Key")); apiKey != "" {
			if user, ok := keys[apiKey]; ok {
				caller = user
			}
		}
		c.Set(callerCtxKey, caller)
		c.Next()
	}
}

// Caller returns the caller name resolved for the request, or "" if the
// middleware did not run.
func Caller(c *gin.Context) string {
	return c.GetString(callerCtxKey)
}
