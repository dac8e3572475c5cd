package api

import (
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/dueline/internal/app"
)

// TeamHandler handles batch team analysis requests.
type TeamHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps Dependencies, maxLimit int) *TeamHandler {
	return &TeamHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTeam handles GET /team/{code}?role=&sort=&min_score=&limit=&as_of=.
func (h *TeamHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/team/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	role, err := parseRole(q.Get("role"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	asOf, err := parseAsOf(q.Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	req := service.TeamRequest{Team: code, Role: role, AsOf: asOf, Sort: q.Get("sort")}
	if s := q.Get("min_score"); s != "" {
		req.MinScore, err = strconv.ParseFloat(s, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidNum)
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		req.Limit, err = strconv.Atoi(s)
		if err != nil || req.Limit < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrInvalidNum)
			return
		}
		if req.Limit > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
	}

	res, err := h.deps.AnalyzeTeam(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
