// Package fallback turns a prediction request into a ResolvedPrediction,
// stepping down from player-specific to team-based to league-average data
// whenever a step cannot be satisfied.
//
// The tier chain is an explicit state machine. Every step down is recorded on
// the prediction with its reason; identity and history gaps never surface as
// errors. Only a missing corpus does.
package fallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dueline/internal/domain/due"
	"github.com/okian/dueline/internal/domain/history"
	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/trend"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
)

// DefaultWindowSize is N, the number of most recent games in a window.
const DefaultWindowSize = 10

// DefaultRateThreshold is the stability threshold for batting average.
const DefaultRateThreshold = 0.03

// Corpus is the read-only data an aggregation runs against.
type Corpus interface {
	Matcher() *identity.Matcher
	Index() *history.Index
	Generation() uint64
}

type state int

const (
	statePlayer state = iota
	stateTeam
	stateLeague
	stateDone
)

// Aggregator orchestrates identity resolution, history lookup, trend and due
// computation. It holds no per-request state and is safe for concurrent use.
type Aggregator struct {
	windowSize    int
	rateThreshold float64
	classifier    *trend.Classifier
	calculator    *due.Calculator
	logger        logger.Logger
}

// NewAggregator creates an aggregator with default components.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		windowSize:    DefaultWindowSize,
		rateThreshold: DefaultRateThreshold,
		classifier:    trend.NewClassifier(),
		calculator:    due.NewCalculator(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("fallback")
	}
	return a
}

// WindowSize returns N.
func (a *Aggregator) WindowSize() int { return a.windowSize }

// run carries one request through the state machine.
type run struct {
	ctx    context.Context
	corpus Corpus
	req    model.Request
	role   model.Role
	p      *model.Prediction
}

// Aggregate produces a prediction for req. It fails only with
// ErrCorpusUnavailable.
func (a *Aggregator) Aggregate(ctx context.Context, c Corpus, req model.Request) (model.Prediction, error) {
	if c == nil || c.Matcher() == nil || c.Index() == nil {
		return model.Prediction{}, ErrCorpusUnavailable
	}
	start := time.Now()

	p := model.Prediction{
		ID:            uuid.NewString(),
		RequestedName: req.Name,
		Role:          req.Role,
		Team:          model.NormalizeTeam(req.Team),
		Suggestions:   []string{},
		Downgrades:    []model.Downgrade{},
		Generation:    c.Generation(),
		Trend:         model.TrendResult{Direction: model.DirectionStable},
	}
	r := &run{ctx: ctx, corpus: c, req: req, role: req.Role, p: &p}
	if r.role == "" {
		r.role = model.RoleHitter
	}

	for st := statePlayer; st != stateDone; {
		switch st {
		case statePlayer:
			st = a.player(r)
		case stateTeam:
			st = a.team(r)
		case stateLeague:
			st = a.league(r)
		}
	}
	p.Role = r.role

	metrics.RecordResolution(string(p.Tier), string(p.Role))
	metrics.RecordAggregationLatency(float64(time.Since(start).Microseconds()) / 1000)
	a.logger.Debug(ctx, "prediction resolved",
		logger.String("requested", req.Name),
		logger.String("tier", string(p.Tier)),
		logger.Float64("confidence", p.Confidence),
		logger.Int("downgrades", len(p.Downgrades)),
	)
	return p, nil
}

// Matchup resolves subject and opponent independently against the same
// corpus. An opponent without a role faces the subject's opposite role.
func (a *Aggregator) Matchup(ctx context.Context, c Corpus, subject, opponent model.Request) (model.Matchup, error) {
	s, err := a.Aggregate(ctx, c, subject)
	if err != nil {
		return model.Matchup{}, err
	}
	if opponent.Role == "" {
		opponent.Role = model.RolePitcher
		if s.Role == model.RolePitcher {
			opponent.Role = model.RoleHitter
		}
	}
	if opponent.AsOf.IsZero() {
		opponent.AsOf = subject.AsOf
	}
	o, err := a.Aggregate(ctx, c, opponent)
	if err != nil {
		return model.Matchup{}, err
	}
	return model.Matchup{Subject: s, Opponent: o}, nil
}

func (a *Aggregator) player(r *run) state {
	if strings.TrimSpace(r.req.Name) == "" {
		return r.downgrade(model.TierPlayer, ReasonEmptyName, stateTeam)
	}

	m := r.corpus.Matcher()
	match, err := m.ResolveRoster(r.ctx, r.req.Name, r.req.Team, r.req.Role)
	if err != nil {
		if !errors.Is(err, identity.ErrIdentityNotFound) {
			a.logger.Warn(r.ctx, "roster resolution failed", logger.Error(err))
		}
		r.p.Suggestions = append(r.p.Suggestions, identity.Suggestions(err)...)
		return r.downgrade(model.TierPlayer, ReasonIdentityNotFound, stateTeam)
	}

	entry := match.Entry
	r.p.Roster = &entry
	r.p.MatchStrategy = string(match.Strategy)
	r.p.Team = entry.Team
	if r.req.Role == "" && entry.Role != "" {
		r.role = entry.Role
	}

	idx := r.corpus.Index()
	daily, err := m.ResolveDailyName(r.ctx, entry, idx.Candidates(r.role, r.req.AsOf))
	if err != nil {
		r.p.Suggestions = append(r.p.Suggestions, identity.Suggestions(err)...)
		return r.downgrade(model.TierPlayer, ReasonDailyNameNotFound, stateTeam)
	}
	r.p.DailyName = daily.Name

	w := idx.WindowFor(daily.Name, daily.Team, r.role, r.req.AsOf, a.windowSize)
	if w.Empty() {
		return r.downgrade(model.TierPlayer, ReasonInsufficientHistory, stateTeam)
	}
	var season history.Window
	if a.calculator.Baseline() == due.BaselineSeason {
		season = idx.Season(daily.Name, daily.Team, r.role, r.req.AsOf)
	}
	a.fill(r, model.TierPlayer, w, season)
	return stateDone
}

func (a *Aggregator) team(r *run) state {
	if r.p.Team == "" {
		return r.downgrade(model.TierTeam, ReasonNoTeam, stateLeague)
	}
	idx := r.corpus.Index()
	w := idx.TeamWindow(r.p.Team, r.role, r.req.AsOf, a.windowSize)
	if w.Empty() {
		return r.downgrade(model.TierTeam, ReasonNoTeamHistory, stateLeague)
	}
	var season history.Window
	if a.calculator.Baseline() == due.BaselineSeason {
		season = idx.TeamSeason(r.p.Team, r.role, r.req.AsOf)
	}
	a.fill(r, model.TierTeam, w, season)
	return stateDone
}

func (a *Aggregator) league(r *run) state {
	b, ok := r.corpus.Index().League(r.role)
	r.p.Tier = model.TierLeague
	r.p.Rate = b.Rate(r.role)
	r.p.Confidence = Confidence(model.TierLeague, 0, a.windowSize, 0, ok)
	return stateDone
}

// fill computes the derived metrics for a tier's window.
func (a *Aggregator) fill(r *run, tier model.Tier, w, season history.Window) {
	metric := trend.ForRole(r.role, a.rateThreshold)
	res, err := a.classifier.Classify(w, metric)
	if err != nil && !errors.Is(err, trend.ErrInsufficientHistory) {
		a.logger.Warn(r.ctx, "trend classification failed", logger.Error(err))
	}

	r.p.Tier = tier
	r.p.Trend = res
	r.p.Games = w.Len()
	if r.role == model.RolePitcher {
		r.p.Rate, _ = w.Mean(model.StatERA)
	} else {
		r.p.Due = a.calculator.Compute(w, season)
		r.p.Rate, _ = w.Rate(model.StatHits, model.StatAtBats)
	}
	r.p.Confidence = Confidence(tier, w.Len(), a.windowSize, a.classifier.Certainty(res, metric), true)
}

func (r *run) downgrade(from model.Tier, reason string, next state) state {
	r.p.Downgrades = append(r.p.Downgrades, model.Downgrade{From: from, Reason: reason})
	return next
}
