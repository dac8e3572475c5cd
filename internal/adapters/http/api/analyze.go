package api

import (
	"net/http"
	"strings"

	service "github.com/okian/dueline/internal/app"
	"github.com/okian/dueline/internal/domain/model"
)

// AnalyzeHandler handles analysis requests.
type AnalyzeHandler struct {
	deps Dependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// HandleAnalyze handles GET /analyze requests. With an opponent parameter it
// returns a matchup, otherwise a single prediction.
//
//	name, team, role, as_of
//	opponent, opponent_team, opponent_role
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	subject, err := requestFrom(q.Get("name"), q.Get("team"), q.Get("role"), q.Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if opp := q.Get("opponent"); opp != "" {
		opponent, err := requestFrom(opp, q.Get("opponent_team"), q.Get("opponent_role"), "")
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		m, err := h.deps.AnalyzeMatchup(r.Context(), service.MatchupRequest{Subject: subject, Opponent: opponent})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
		return
	}

	p, err := h.deps.Analyze(r.Context(), subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func requestFrom(name, team, role, asOf string) (model.Request, error) {
	if strings.TrimSpace(name) == "" {
		return model.Request{}, ErrMissingName
	}
	rl, err := parseRole(role)
	if err != nil {
		return model.Request{}, err
	}
	at, err := parseAsOf(asOf)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{Name: name, Team: team, Role: rl, AsOf: at}, nil
}
