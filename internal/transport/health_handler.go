package transport

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"boutique-catalog/internal/database"
	"boutique-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports the status of the database pool.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status           string            `json:"status"`
	Database         map[string]string `json:"database"`
	Redis            string            `json:"redis"`
	MigrationVersion int64             `json:"migration_version,omitempty"`
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db     HealthChecker
	sqlDB  *sql.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. sqlDB may be nil, in which
// case no migration version is reported.
func NewHealthHandler(db HealthChecker, sqlDB *sql.DB, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		sqlDB:  sqlDB,
		redis:  redisClient,
		logger: logger,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Health)
}

// Health reports the database and Redis status. Redis being down
// degrades the service but does not fail the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Database: h.db.Health(r.Context()),
		Redis:    "up",
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.logger.Warn("Redis health check failed", zap.Error(err))
		resp.Redis = "down"
		resp.Status = "degraded"
	}

	if h.sqlDB != nil && resp.Database["status"] == "up" {
		if version, err := database.MigrationVersion(h.sqlDB); err == nil {
			resp.MigrationVersion = version
		}
	}

	status := http.StatusOK
	if resp.Database["status"] != "up" {
		resp.Status = "down"
		status = http.StatusServiceUnavailable
		middleware.RespondWithJSON(w, status, middleware.Envelope{Success: false, Data: resp, Message: "Database unavailable"})
		return
	}
	middleware.RespondWithData(w, status, resp, "")
}
