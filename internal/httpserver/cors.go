package httpserver

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/paid-events-service/internal/models"
)

const corsMaxAge = 300

// CORS allows credentialed requests from exact origins or origins matching
// one of patterns. Disallowed preflights are refused with 403; other
// disallowed requests proceed without CORS headers.
func CORS(exact []string, patterns []*regexp.Regexp) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(exact))
	for _, origin := range exact {
		allowed[origin] = struct{}{}
	}

	isAllowed := func(origin string) bool {
		if _, ok := allowed[origin]; ok {
			return true
		}
		for _, re := range patterns {
			if re.MatchString(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""

		if !isAllowed(origin) {
			if preflight {
				c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
					Name:    "CorsError",
					Message: "Origin not allowed.",
				})
				return
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if preflight {
			h.Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")
			h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
