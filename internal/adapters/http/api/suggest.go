package api

import (
	"net/http"
	"strings"
)

// SuggestHandler handles diagnostic suggestion requests.
type SuggestHandler struct {
	deps Dependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps Dependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

// HandleSuggest handles GET /suggest?name= requests.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingName)
		return
	}
	res, err := h.deps.Suggest(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
