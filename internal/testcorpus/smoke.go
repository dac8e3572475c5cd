package testcorpus

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/types"
	"github.com/okian/dueline/pkg/logger"
)

// Smoke checks readiness, then analyses every roster name over HTTP and
// verifies each response is well formed.
func Smoke(ctx context.Context, cfg SmokeConfig, roster []model.RosterEntry) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), ByTier: make(map[string]int)}
	lg := logger.Get().Named("smoke")
	client := newHTTPClient(cfg.Timeout)

	var ready map[string]any
	if _, err := client.getJSON(ctx, cfg.BaseURL+"/readyz", &ready); err != nil {
		return nil, fmt.Errorf("service not ready: %w", err)
	}
	lg.Info(ctx, "service is ready", logger.Any("readyz", ready))

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan model.RosterEntry, workers*2)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				p, err := analyze(ctx, client, cfg.BaseURL, e)
				problem := ""
				if err == nil {
					problem = Verify(p)
				}

				mu.Lock()
				stats.Requests++
				switch {
				case err != nil:
					stats.Failed++
					lg.Warn(ctx, "analyze failed", logger.String("name", e.FullName), logger.Error(err))
				case problem != "":
					stats.Malformed++
					lg.Warn(ctx, "malformed prediction", logger.String("name", e.FullName), logger.String("problem", problem))
				default:
					stats.Succeeded++
					stats.ByTier[p.Tier]++
					if cfg.Verbose {
						lg.Info(ctx, "analyzed",
							logger.String("name", e.FullName),
							logger.String("tier", p.Tier),
							logger.Float64("confidence", p.Confidence),
							logger.String("trend", p.TrendDirection),
						)
					}
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, e := range roster {
			select {
			case <-ctx.Done():
				return
			case jobs <- e:
			}
		}
	}()
	wg.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	lg.Info(ctx, "smoke run finished",
		logger.Int("requests", stats.Requests),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("failed", stats.Failed),
		logger.Int("malformed", stats.Malformed),
		logger.Any("byTier", stats.ByTier),
		logger.Duration("duration", stats.Duration),
	)
	if stats.Failed+stats.Malformed > 0 {
		return stats, fmt.Errorf("%d failed and %d malformed of %d requests", stats.Failed, stats.Malformed, stats.Requests)
	}
	return stats, nil
}

func analyze(ctx context.Context, client *HTTPClient, baseURL string, e model.RosterEntry) (types.Prediction, error) {
	q := url.Values{}
	q.Set("name", e.FullName)
	q.Set("team", e.Team)
	var p types.Prediction
	_, err := client.getJSON(ctx, baseURL+"/analyze?"+q.Encode(), &p)
	return p, err
}

// Verify returns a description of the first contract violation in p, or ""
// when p is well formed.
func Verify(p types.Prediction) string { //nolint:gocritic // hugeParam
	switch {
	case p.Tier != string(model.TierPlayer) && p.Tier != string(model.TierTeam) && p.Tier != string(model.TierLeague):
		return fmt.Sprintf("unknown tier %q", p.Tier)
	case p.TrendDirection == "":
		return "empty trend_direction"
	case p.TrendDirection != p.RecentGames.TrendDirection:
		return "trend_direction differs from recent_games"
	case p.ABSinceLastHR != p.Details.ABSinceLastHR:
		return "ab_since_last_hr differs from details"
	case p.HitsBasedDueScore != p.Details.HitsBasedDueScore:
		return "hits_based_due_score differs from details"
	case p.Confidence < 0 || p.Confidence > 1:
		return fmt.Sprintf("confidence %v out of range", p.Confidence)
	}
	return ""
}
