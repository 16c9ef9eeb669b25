package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/docqa-api/internal/api/shared"
	"github.com/phrazzld/docqa-api/internal/platform/logger"
)

// ServiceName identifies the service in health and root responses.
const ServiceName = "Async Document Q&A Microservice"

// healthCheckTimeout bounds the database ping of a health check.
const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness and index endpoints
type HealthHandler struct {
	db      Pinger
	docsURL string
	logger  *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil db skips the database check.
func NewHealthHandler(db Pinger, docsURL string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:      db,
		docsURL: docsURL,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Warn("health check failed")
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

// Root handles GET / requests
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Message: ServiceName,
		Docs:    h.docsURL,
		Health:  "/health",
	})
}
