package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/paid-events-service/internal/models"
	"github.com/PratikDhanave/paid-events-service/internal/records"
	"github.com/PratikDhanave/paid-events-service/internal/requestlog"
)

// listCacheControl lets caches serve a stale list for a day while the store is failing.
const listCacheControl = "public, max-age=7200, stale-while-revalidate=900, stale-if-error=86400"

// RecordService is the minimal interface needed for collection endpoints.
type RecordService interface {
	ListAll(ctx context.Context, c records.Collection) ([]models.Record, error)
	GetByID(ctx context.Context, c records.Collection, id string) (models.Record, error)
	GetAttribute(ctx context.Context, c records.Collection, id, attribute string) (models.Value, error)
	UpdateAttribute(ctx context.Context, c records.Collection, id, attribute, rawValue string) (models.Record, error)
}

// RegisterCollectionRoutes registers the endpoints of one collection.
//
// GET /{coll}                 - every record
// GET /{coll}/:id             - one record by identity
// GET /{coll}/:id/:attribute  - one attribute value
// PUT /{coll}/:id             - {"attribute","value"} conditional update
//
// Store calls are detached from client cancellation: once started, a store
// call runs to completion even if the client goes away.
func RegisterCollectionRoutes(r gin.IRouter, coll records.Collection, svc RecordService, logger *slog.Logger) {
	g := r.Group("/" + coll.Name)
	logger = logger.With("collection", coll.Name)

	g.GET("", func(c *gin.Context) {
		log := requestlog.Logger(c, logger)

		recs, err := svc.ListAll(context.WithoutCancel(c.Request.Context()), coll)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.Header("Cache-Control", listCacheControl)
		c.JSON(http.StatusOK, recs)
	})

	g.GET("/:id", func(c *gin.Context) {
		id := c.Param("id")
		log := requestlog.Logger(c, logger)

		rec, err := svc.GetByID(context.WithoutCancel(c.Request.Context()), coll, id)
		if err != nil {
			writeError(c, log, err, "id", id)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	g.GET("/:id/:attribute", func(c *gin.Context) {
		id := c.Param("id")
		attribute := c.Param("attribute")
		log := requestlog.Logger(c, logger)

		v, err := svc.GetAttribute(context.WithoutCancel(c.Request.Context()), coll, id, attribute)
		if err != nil {
			writeError(c, log, err, "id", id, "attribute", attribute)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	g.PUT("/:id", func(c *gin.Context) {
		id := c.Param("id")
		log := requestlog.Logger(c, logger)

		var req models.AttributeUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, log, &records.ValidationError{Message: "Invalid request body."}, "id", id, "cause", err)
			return
		}

		rec, err := svc.UpdateAttribute(context.WithoutCancel(c.Request.Context()), coll, id, req.Attribute, req.Value)
		if err != nil {
			writeError(c, log, err, "id", id, "attribute", req.Attribute)
			return
		}
		log.Info("attribute updated", "id", id, "attribute", req.Attribute)
		c.JSON(http.StatusOK, rec)
	})
}
