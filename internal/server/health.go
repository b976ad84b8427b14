package server

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/ytlinks/internal/metrics"
)

// HealthHandler serves liveness, readiness and metrics endpoints.
type HealthHandler struct {
	db      Pinger
	metrics *metrics.Metrics
}

func (h *HealthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/{$}", Handler: h.root},
		{Method: http.MethodGet, Path: "/healthz", Handler: h.healthz},
		{Method: http.MethodGet, Path: "/readyz", Handler: h.readyz},
		{Method: http.MethodGet, Path: "/metrics", Handler: h.metrics.Handler().ServeHTTP},
	}
}

func (h *HealthHandler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Message: "not ready", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
