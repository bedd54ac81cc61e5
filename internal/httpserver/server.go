package httpserver

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/paid-events-service/internal/auth"
	"github.com/PratikDhanave/paid-events-service/internal/config"
	"github.com/PratikDhanave/paid-events-service/internal/handlers"
	"github.com/PratikDhanave/paid-events-service/internal/records"
	"github.com/PratikDhanave/paid-events-service/internal/requestlog"
	"github.com/PratikDhanave/paid-events-service/internal/store"
)

// NewRouter wires middleware, probes and one route group per collection.
// Public: /api/v1/healthz, /api/v1/readyz, /
// Collections: /ticketevents, /merchevents
func NewRouter(cfg config.Config, st store.Store, logger *slog.Logger) (*gin.Engine, error) {
	exact, patterns, err := config.ParseOrigins(cfg.CORSOrigins())
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		auth.IdentityMiddleware(cfg.APIKeys, config.AnonymousUser),
		requestlog.Middleware(logger),
		gin.CustomRecovery(handlers.Recovered(logger)),
		CORS(exact, patterns),
	)
	r.NoRoute(handlers.NotFound)

	handlers.RegisterHealthRoutes(r, st, logger)

	svc := records.NewService(st)
	for _, coll := range cfg.Collections() {
		handlers.RegisterCollectionRoutes(r, coll, svc, logger)
	}

	return r, nil
}
