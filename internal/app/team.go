package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/types"
	"github.com/okian/dueline/pkg/logger"
)

// Sort keys accepted by AnalyzeTeam.
const (
	SortScore      = "score"
	SortConfidence = "confidence"
	SortDue        = "due"
	SortName       = "name"
)

// TeamRequest asks for predictions for every roster entry of a team.
type TeamRequest struct {
	Team     string
	Role     model.Role
	AsOf     time.Time
	Sort     string
	MinScore float64
	// Limit caps the result count; zero means the configured maximum.
	Limit int
}

// AnalyzeTeam fans the team's roster out over the worker pool, then filters,
// sorts and truncates the predictions. A reload that lands mid-batch is
// visible through each prediction's generation.
func (s *Service) AnalyzeTeam(ctx context.Context, req TeamRequest) (types.TeamAnalysis, error) {
	if !s.isStarted() {
		return types.TeamAnalysis{}, ErrNotStarted
	}
	team := model.NormalizeTeam(req.Team)
	if team == "" {
		return types.TeamAnalysis{}, fmt.Errorf("%w: team is required", ErrInvalidRequest)
	}
	less, err := sortFunc(req.Sort)
	if err != nil {
		return types.TeamAnalysis{}, err
	}
	limit := req.Limit
	if limit <= 0 || limit > s.maxResultLimit {
		limit = s.maxResultLimit
	}

	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.TeamAnalysis{}, err
	}
	var members []model.RosterEntry
	for _, e := range snap.Roster() {
		if e.Team == team && (req.Role == "" || e.Role == req.Role) {
			members = append(members, e)
		}
	}
	if len(members) == 0 {
		return types.TeamAnalysis{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}

	preds, err := s.runBatch(ctx, members, req)
	if err != nil {
		return types.TeamAnalysis{}, err
	}

	out := types.TeamAnalysis{Team: team, Role: string(req.Role), Predictions: []types.Prediction{}}
	for _, p := range preds {
		if p.Score < req.MinScore {
			continue
		}
		out.Predictions = append(out.Predictions, types.NewPrediction(p))
	}
	sort.SliceStable(out.Predictions, func(i, j int) bool {
		return less(&out.Predictions[i], &out.Predictions[j])
	})
	if len(out.Predictions) > limit {
		out.Predictions = out.Predictions[:limit]
	}
	out.Count = len(out.Predictions)
	return out, nil
}

// runBatch enqueues one job per member and collects every reply. Jobs that
// fail for reasons other than corpus unavailability are dropped.
func (s *Service) runBatch(ctx context.Context, members []model.RosterEntry, req TeamRequest) ([]model.Prediction, error) {
	reply := make(chan model.JobResult, len(members))
	sent := 0
	var enqueueErr error
	for _, e := range members {
		job := model.Job{
			ID:      uuid.NewString(),
			Request: model.Request{Name: e.FullName, Team: e.Team, Role: e.Role, AsOf: req.AsOf},
			Reply:   reply,
		}
		if !s.jobQueue.Enqueue(ctx, job) {
			enqueueErr = ErrBackpressure
			if ctx.Err() != nil {
				enqueueErr = ctx.Err()
			}
			break
		}
		sent++
	}

	preds := make([]model.Prediction, 0, sent)
	var corpusErr error
	for i := 0; i < sent; i++ {
		select {
		case res := <-reply:
			switch {
			case res.Err == nil:
				preds = append(preds, res.Prediction)
			case errors.Is(res.Err, ErrCorpusUnavailable):
				corpusErr = res.Err
			default:
				s.logger.Warn(ctx, "team job failed", logger.String("job_id", res.JobID), logger.Error(res.Err))
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("team analysis: %w", ctx.Err())
		}
	}

	if enqueueErr != nil {
		return nil, fmt.Errorf("team analysis after %d of %d jobs: %w", sent, len(members), enqueueErr)
	}
	if corpusErr != nil {
		return nil, corpusErr
	}
	return preds, nil
}

func sortFunc(key string) (func(a, b *types.Prediction) bool, error) {
	byName := func(a, b *types.Prediction) bool { return a.MatchedName < b.MatchedName }
	desc := func(f func(p *types.Prediction) float64) func(a, b *types.Prediction) bool {
		return func(a, b *types.Prediction) bool {
			if fa, fb := f(a), f(b); fa != fb {
				return fa > fb
			}
			return byName(a, b)
		}
	}

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", SortScore:
		return desc(func(p *types.Prediction) float64 { return p.Score }), nil
	case SortConfidence:
		return desc(func(p *types.Prediction) float64 { return p.Confidence }), nil
	case SortDue:
		return desc(func(p *types.Prediction) float64 { return p.HitsBasedDueScore }), nil
	case SortName:
		return byName, nil
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidRequest, key)
	}
}
