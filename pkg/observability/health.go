package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker reports process liveness and, when the registry is backed by
// a database, its reachability.
type HealthChecker struct {
	db *sql.DB
}

// NewHealthChecker creates a health checker. db may be nil for memory-backed
// deployments.
func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// healthStatus is the /healthz response body.
type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := healthStatus{Status: "ok", Checks: map[string]string{}}
		code := http.StatusOK

		if h.db != nil {
			if err := h.db.PingContext(ctx); err != nil {
				status.Status = "degraded"
				status.Checks["database"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status.Checks["database"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	})
}
