package api

import (
	"net/http"
)

// ReloadHandler handles on-demand corpus reloads.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /reload requests.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.Reload(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
