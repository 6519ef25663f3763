package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthCheckResponse represents health check status
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database,omitempty"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime,omitempty"`
}

// Pinger is the store connection the health check probes. Nil means there is
// no external store (memory driver).
type Pinger interface {
	Ping(ctx context.Context) error
}

const Version = "1.0.0"

var startTime = time.Now()

// HealthCheck handles health check requests
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthCheckResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   Version,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				response.Status = "unhealthy"
				response.Database = "disconnected"
			} else {
				response.Database = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if response.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}
