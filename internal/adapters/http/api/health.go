package api

import (
	"net/http"

	"github.com/okian/dueline/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports the published snapshot generation.
type ReadinessProvider interface {
	Generation() uint64
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	ready ReadinessProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ready ReadinessProvider) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// HandleHealth handles GET /healthz requests with the Prometheus exposition.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

type readyResponse struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
}

// HandleReady handles GET /readyz requests. It answers 503 data_not_ready
// until a corpus snapshot is published.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	gen := h.ready.Generation()
	if gen == 0 {
		writeError(w, http.StatusServiceUnavailable, codeDataNotReady, ErrNotReady)
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Status: "ready", Generation: gen})
}
