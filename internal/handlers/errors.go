package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/paid-events-service/internal/models"
	"github.com/PratikDhanave/paid-events-service/internal/records"
)

const internalErrorMessage = "An internal server error occurred."

// writeError translates a domain error into a status and body and logs it
// with the request attributes. Raw store errors never reach the client.
func writeError(c *gin.Context, logger *slog.Logger, err error, attrs ...any) {
	var (
		validation *records.ValidationError
		fetch      *records.DatabaseFetchError
		insert     *records.DatabaseInsertError
	)

	switch {
	case errors.As(err, &validation):
		logger.Info("invalid request", append(attrs, "error", err)...)
		abort(c, http.StatusBadRequest, "ValidationError", validation.Message)

	case errors.As(err, &fetch):
		attrs = append(attrs, "kind", string(fetch.Kind), "error", err)
		status := http.StatusInternalServerError
		switch fetch.Kind {
		case records.KindNotFound:
			logger.Warn("record not found", attrs...)
			status = http.StatusNotFound
		case records.KindAttributeNotFound:
			logger.Warn("attribute not found on record", attrs...)
			status = http.StatusNotFound
		case records.KindPreconditionFailed:
			logger.Warn("attribute does not exist", attrs...)
			status = http.StatusConflict
		default:
			logger.Error("store request failed", attrs...)
		}
		abort(c, status, "DatabaseFetchError", fetch.Message)

	case errors.As(err, &insert):
		logger.Error("store insert failed", append(attrs, "error", err)...)
		abort(c, http.StatusInternalServerError, "DatabaseInsertError", insert.Message)

	default:
		logger.Error("unexpected error", append(attrs, "error", err)...)
		abort(c, http.StatusInternalServerError, "InternalServerError", internalErrorMessage)
	}
}

func abort(c *gin.Context, status int, name, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Name: name, Message: message})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	abort(c, http.StatusNotFound, "NotFoundError", "Route not found.")
}

// Recovered answers a request whose handler panicked.
func Recovered(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("an error occurred and bubbled up",
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"message": internalErrorMessage})
	}
}
