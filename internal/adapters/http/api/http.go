// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/dueline/internal/adapters/corpus"
	service "github.com/okian/dueline/internal/app"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/types"
	"golang.org/x/time/rate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Analyze(ctx context.Context, req model.Request) (types.Prediction, error)
	AnalyzeMatchup(ctx context.Context, req service.MatchupRequest) (types.Matchup, error)
	AnalyzeTeam(ctx context.Context, req service.TeamRequest) (types.TeamAnalysis, error)
	Suggest(ctx context.Context, name string) (types.Suggestions, error)
	Reload(ctx context.Context) (types.ReloadResult, error)

	// Generation is zero until the first corpus snapshot is published.
	Generation() uint64
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	analyzeHandler *AnalyzeHandler
	teamHandler    *TeamHandler
	suggestHandler *SuggestHandler
	reloadHandler  *ReloadHandler

	limiter *rate.Limiter
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxLimit int
	rps      float64
	burst    int
}

// WithMaxLimit caps GET /team/{code}?limit.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithRateLimit limits the analysis routes to rps requests per second with
// the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *serverConfig) {
		c.rps = rps
		c.burst = burst
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		analyzeHandler: NewAnalyzeHandler(deps),
		teamHandler:    NewTeamHandler(deps, cfg.maxLimit),
		suggestHandler: NewSuggestHandler(deps),
		reloadHandler:  NewReloadHandler(deps),
	}
	if cfg.rps > 0 {
		burst := cfg.burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.rps), burst)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	mux.HandleFunc("/analyze", MetricsMiddleware(RateLimitMiddleware(s.limiter, s.analyzeHandler.HandleAnalyze, "analyze"), "analyze"))
	mux.HandleFunc("/team/", MetricsMiddleware(RateLimitMiddleware(s.limiter, s.teamHandler.HandleTeam, "team"), "team"))
	mux.HandleFunc("/suggest", MetricsMiddleware(RateLimitMiddleware(s.limiter, s.suggestHandler.HandleSuggest, "suggest"), "suggest"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service errors into HTTP statuses. Corpus
// unavailability is always reported as data_not_ready.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCorpusUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeDataNotReady, err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", err)
	case errors.Is(err, corpus.ErrBreakerOpen):
		writeError(w, http.StatusServiceUnavailable, "breaker_open", err)
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrUnknownTeam):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseRole accepts an empty role or any spelling model.ParseRole knows.
func parseRole(s string) (model.Role, error) {
	if s == "" {
		return "", nil
	}
	role := model.ParseRole(s)
	if role == "" {
		return "", ErrInvalidRole
	}
	return role, nil
}

// parseAsOf accepts an empty date or YYYY-MM-DD.
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
