package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/student-records/apiserver/internal/metrics"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// Pinger checks connectivity to the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Health answers 200 while the store responds to pings and 503 otherwise.
func Health(store Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		start := time.Now()
		err := store.Ping(ctx)
		metrics.ObserveStorePing(time.Since(start))

		if err != nil {
			log.Warn("store ping failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
	}
}

type WelcomeResponse struct {
	Message string `json:"message"`
	API     string `json:"api"`
	Health  string `json:"health"`
}

// Welcome answers the root path with pointers to the API and health check.
func Welcome(apiPrefix string) http.HandlerFunc {
	body := WelcomeResponse{
		Message: "Welcome to Student Management API",
		API:     apiPrefix,
		Health:  "/health",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
