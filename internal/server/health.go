package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// HealthResponse maps each dependency to its status.
type HealthResponse map[string]HealthStatus

type HealthStatus struct {
	Status string `json:"status"`
}

func handleHealth(logger *slog.Logger, db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := HealthResponse{
			"sqlite": {Status: "ok"},
		}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.Error("health check failed", "name", "sqlite", "error", err)
			checks["sqlite"] = HealthStatus{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		// Redis is optional; only report it when configured.
		if rdb != nil {
			checks["redis"] = HealthStatus{Status: "ok"}
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Error("health check failed", "name", "redis", "error", err)
				checks["redis"] = HealthStatus{Status: "error"}
				status = http.StatusServiceUnavailable
			}
		}

		writeJSON(w, status, checks)
	}
}
