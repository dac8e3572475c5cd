// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/dueline/internal/adapters/corpus"
	"github.com/okian/dueline/internal/adapters/mq/queue"
	workerpool "github.com/okian/dueline/internal/adapters/mq/worker"
	"github.com/okian/dueline/internal/adapters/repository"
	"github.com/okian/dueline/internal/adapters/scheduler"
	"github.com/okian/dueline/internal/domain/canon"
	"github.com/okian/dueline/internal/domain/dedupe"
	"github.com/okian/dueline/internal/domain/due"
	"github.com/okian/dueline/internal/domain/fallback"
	"github.com/okian/dueline/internal/domain/identity"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/domain/scoring"
	"github.com/okian/dueline/internal/domain/trend"
	"github.com/okian/dueline/internal/domain/types"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
)

// Service resolves prediction requests against the current corpus snapshot.
type Service struct {
	mu       sync.RWMutex
	reloadMu sync.Mutex

	// Core components
	store      repository.Store
	loader     corpus.Loader
	aggregator *fallback.Aggregator
	scorer     scoring.Scorer
	unmatched  dedupe.Deduper
	jobQueue   queue.Queue
	workerPool *workerpool.Pool
	scheduler  *scheduler.Scheduler

	// Configuration
	rosterPath         string
	logsDir            string
	windowSize         int
	stabilityThreshold float64
	rateThreshold      float64
	dueBaseline        due.Baseline
	suggestionLimit    int
	workerCount        int
	queueSize          int
	unmatchedSize      int
	scoreWeights       map[string]float64
	maxResultLimit     int
	breakerMaxFailures uint32
	breakerTimeout     time.Duration
	reloadInterval     time.Duration
	reloadCron         string

	// State
	started        bool
	reloads        atomic.Int64
	reloadFailures atomic.Int64
	lastReloadErr  atomic.Value

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCorpusPaths sets the roster file and the game-log directory.
func WithCorpusPaths(rosterPath, logsDir string) Option {
	return func(s *Service) {
		s.rosterPath = rosterPath
		s.logsDir = logsDir
	}
}

// WithLoader replaces the file loader built from the corpus paths.
func WithLoader(l corpus.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithWindowSize sets N, the number of most recent games analysed.
func WithWindowSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.windowSize = n
		}
	}
}

// WithStabilityThresholds sets the ERA threshold and the batting-rate threshold.
func WithStabilityThresholds(era, rate float64) Option {
	return func(s *Service) {
		if era > 0 {
			s.stabilityThreshold = era
		}
		if rate > 0 {
			s.rateThreshold = rate
		}
	}
}

// WithDueBaseline sets the due-factor baseline mode.
func WithDueBaseline(b due.Baseline) Option {
	return func(s *Service) {
		if b != "" {
			s.dueBaseline = b
		}
	}
}

// WithSuggestionLimit caps near-candidate suggestions.
func WithSuggestionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.suggestionLimit = n
		}
	}
}

// WithWorkerCount sets the number of batch analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithUnmatchedCacheSize bounds the unmatched-name tracker.
func WithUnmatchedCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.unmatchedSize = size
		}
	}
}

// WithScoreWeights sets the composite score weights.
func WithScoreWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.scoreWeights = weights
	}
}

// WithMaxResultLimit caps team analysis results.
func WithMaxResultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResultLimit = n
		}
	}
}

// WithBreaker tunes the corpus read circuit breaker.
func WithBreaker(maxFailures int, timeout time.Duration) Option {
	return func(s *Service) {
		if maxFailures > 0 {
			s.breakerMaxFailures = uint32(maxFailures) //nolint:gosec // bounded by config validation
		}
		if timeout > 0 {
			s.breakerTimeout = timeout
		}
	}
}

// WithReloadSchedule enables scheduled reloads. A cron expression wins over
// the interval.
func WithReloadSchedule(interval time.Duration, cronExpr string) Option {
	return func(s *Service) {
		s.reloadInterval = interval
		s.reloadCron = cronExpr
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		windowSize:         fallback.DefaultWindowSize,
		stabilityThreshold: trend.DefaultStabilityThreshold,
		rateThreshold:      fallback.DefaultRateThreshold,
		dueBaseline:        due.BaselineWindow,
		suggestionLimit:    5,
		workerCount:        runtime.NumCPU() * 2,
		queueSize:          1024,
		unmatchedSize:      10_000,
		maxResultLimit:     100,
		breakerMaxFailures: 3,
		breakerTimeout:     30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components, performs the first corpus load and
// starts the worker pool and reload schedule. A failed first load is logged
// and leaves the service unready rather than failing Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting dueline service...")

	s.store = repository.NewSnapshotStore(
		repository.WithLogger(s.logger.Named("snapshot")),
		repository.WithMatcherOptions(
			identity.WithSuggestionLimit(s.suggestionLimit),
			identity.WithLogger(s.logger.Named("identity")),
		),
	)
	if s.loader == nil {
		s.loader = corpus.NewFileLoader(s.rosterPath, s.logsDir,
			corpus.WithBreaker(s.breakerMaxFailures, s.breakerTimeout),
			corpus.WithLogger(s.logger.Named("corpus")),
		)
	}
	s.aggregator = fallback.NewAggregator(
		fallback.WithWindowSize(s.windowSize),
		fallback.WithRateThreshold(s.rateThreshold),
		fallback.WithClassifier(trend.NewClassifier(trend.WithStabilityThreshold(s.stabilityThreshold))),
		fallback.WithCalculator(due.NewCalculator(due.WithBaseline(s.dueBaseline))),
		fallback.WithLogger(s.logger.Named("fallback")),
	)
	s.scorer = scoring.NewWeightedScorer(scoring.WithWeightsFromConfig(s.scoreWeights))
	s.unmatched = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.unmatchedSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, workerpool.AnalyzerFunc(s.analyze),
		workerpool.WithLogger(s.logger.Named("worker")),
	)

	// A schedule failure must leave no workers running.
	sched, err := scheduler.New(s.reloadFromSchedule,
		scheduler.WithInterval(s.reloadInterval),
		scheduler.WithCron(s.reloadCron),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	)
	if err != nil {
		return fmt.Errorf("create reload scheduler: %w", err)
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start reload scheduler: %w", err)
	}
	s.scheduler = sched

	s.workerPool.Start(ctx)
	if _, err := s.reload(ctx); err != nil {
		s.logger.Warn(ctx, "initial corpus load failed; serving data_not_ready until a reload succeeds", logger.Error(err))
	}

	s.started = true
	s.logger.Info(ctx, "dueline service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("windowSize", s.windowSize),
		logger.String("dueBaseline", string(s.dueBaseline)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping dueline service...")

	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			s.logger.Warn(ctx, "reload scheduler shutdown failed", logger.Error(err))
		}
	}
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "dueline service stopped")
}

// Reload reads the corpus and publishes it as a new snapshot.
func (s *Service) Reload(ctx context.Context) (types.ReloadResult, error) {
	if !s.isStarted() {
		return types.ReloadResult{}, ErrNotStarted
	}
	return s.reload(ctx)
}

func (s *Service) reloadFromSchedule(ctx context.Context) error {
	_, err := s.reload(ctx)
	return err
}

func (s *Service) reload(ctx context.Context) (types.ReloadResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	data, err := s.loader.Load(ctx)
	if err == nil {
		var snap *repository.Snapshot
		snap, err = s.store.Swap(ctx, data.Roster, data.Records)
		if err == nil {
			s.reloads.Add(1)
			s.lastReloadErr.Store("")
			s.unmatched.Reset()
			metrics.UpdateUnmatchedNames(0)
			metrics.RecordSnapshotReloadDuration(float64(time.Since(start).Microseconds()) / 1000)
			return types.ReloadResult{
				Generation:    snap.Generation(),
				SnapshotID:    snap.ID(),
				RosterEntries: len(snap.Roster()),
				Records:       snap.Index().Len(),
				Files:         data.Files,
				Skipped:       data.Skipped,
				LoadedAt:      snap.LoadedAt().UTC().Format(time.RFC3339),
			}, nil
		}
	}

	s.reloadFailures.Add(1)
	s.lastReloadErr.Store(err.Error())
	metrics.RecordSnapshotReloadFailure()
	metrics.RecordErrorByComponent("service", "reload")
	return types.ReloadResult{}, fmt.Errorf("reload corpus: %w", err)
}

// Analyze resolves one request against the current snapshot.
func (s *Service) Analyze(ctx context.Context, req model.Request) (types.Prediction, error) {
	if !s.isStarted() {
		return types.Prediction{}, ErrNotStarted
	}
	p, err := s.analyze(ctx, req)
	if err != nil {
		return types.Prediction{}, err
	}
	return types.NewPrediction(p), nil
}

// MatchupRequest pairs a subject request with its opponent.
type MatchupRequest struct {
	Subject  model.Request
	Opponent model.Request
}

// AnalyzeMatchup resolves subject and opponent independently against one
// snapshot.
func (s *Service) AnalyzeMatchup(ctx context.Context, req MatchupRequest) (types.Matchup, error) {
	if !s.isStarted() {
		return types.Matchup{}, ErrNotStarted
	}
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Matchup{}, err
	}
	m, err := s.aggregator.Matchup(ctx, snap, req.Subject, req.Opponent)
	if err != nil {
		return types.Matchup{}, err
	}
	s.finish(ctx, &m.Subject)
	s.finish(ctx, &m.Opponent)
	return types.NewMatchup(m), nil
}

// Suggest lists near-candidates for name from the current roster.
func (s *Service) Suggest(ctx context.Context, name string) (types.Suggestions, error) {
	if !s.isStarted() {
		return types.Suggestions{}, ErrNotStarted
	}
	snap, err := s.store.Current(ctx)
	if err != nil {
		return types.Suggestions{}, err
	}
	out := types.Suggestions{Name: name, Suggestions: []string{}}
	out.Suggestions = append(out.Suggestions, snap.Matcher().Suggest(name)...)
	return out, nil
}

// Generation returns the published snapshot generation, zero before the
// first successful load.
func (s *Service) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return 0
	}
	return s.store.Generation()
}

// analyze is the single-request path shared by Analyze and the workers.
func (s *Service) analyze(ctx context.Context, req model.Request) (model.Prediction, error) {
	snap, err := s.store.Current(ctx)
	if err != nil {
		return model.Prediction{}, err
	}
	p, err := s.aggregator.Aggregate(ctx, snap, req)
	if err != nil {
		return model.Prediction{}, err
	}
	s.finish(ctx, &p)
	return p, nil
}

// finish scores p and records an unmatched name.
func (s *Service) finish(ctx context.Context, p *model.Prediction) {
	res, err := s.scorer.Score(ctx, scoring.InputOf(*p))
	if err != nil {
		s.logger.Debug(ctx, "scoring skipped", logger.String("id", p.ID), logger.Error(err))
	} else {
		p.Score = res.Score
	}

	for _, d := range p.Downgrades {
		if d.Reason != fallback.ReasonIdentityNotFound {
			continue
		}
		key := canon.Key(p.RequestedName)
		if s.unmatched.SeenAndRecord(ctx, key) {
			s.logger.Debug(ctx, "unmatched name", logger.String("name", p.RequestedName))
		} else {
			s.logger.Warn(ctx, "unmatched name",
				logger.String("name", p.RequestedName),
				logger.String("team", p.Team),
				logger.Any("suggestions", p.Suggestions),
			)
		}
		metrics.UpdateUnmatchedNames(s.unmatched.Size())
		break
	}
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"windowSize":     s.windowSize,
		"dueBaseline":    string(s.dueBaseline),
		"reloads":        s.reloads.Load(),
		"reloadFailures": s.reloadFailures.Load(),
	}
	if msg, ok := s.lastReloadErr.Load().(string); ok && msg != "" {
		stats["lastReloadError"] = msg
	}
	if !s.started {
		return stats
	}

	queueLen := s.jobQueue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["unmatchedNames"] = s.unmatched.Size()
	stats["recentUnmatched"] = s.unmatched.Recent()
	if fl, ok := s.loader.(*corpus.FileLoader); ok {
		stats["breakerState"] = fl.State()
	}

	snap, err := s.store.Current(ctx)
	if err != nil {
		stats["ready"] = false
		return stats
	}
	stats["ready"] = true
	stats["generation"] = snap.Generation()
	stats["snapshotId"] = snap.ID()
	stats["loadedAt"] = snap.LoadedAt().UTC().Format(time.RFC3339)
	stats["rosterEntries"] = len(snap.Roster())
	stats["records"] = snap.Index().Len()
	stats["identities"] = snap.Index().Identities()

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}
