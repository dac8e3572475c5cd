package api

import (
	"net/http"
	"runtime"
	"time"
)

// StatsProvider exposes a free-form statistics map.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves service statistics alongside process uptime.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
}

// NewStatsHandler creates a stats handler; uptime counts from this call.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now()}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out := make(map[string]interface{})
	for k, v := range h.provider.GetStats() {
		out[k] = v
	}
	out["uptimeSec"] = int64(time.Since(h.started).Seconds())
	out["goroutines"] = runtime.NumGoroutine()
	writeJSON(w, http.StatusOK, out)
}
