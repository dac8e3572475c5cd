// Package corpus reads the roster file and per-date game-log files from disk.
//
// Layout: a roster JSON array of entries, and a directory of *.json game logs,
// each an object with a "players" array. A record's date comes from its own
// "date" field, then the file's "date" field, then a YYYY-MM-DD stamp in the
// file name.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
	"github.com/sony/gobreaker"
)

const (
	defaultMaxFailures    = 3
	defaultBreakerTimeout = 30 * time.Second
)

var fileDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Data is one complete read of the corpus.
type Data struct {
	Roster  []model.RosterEntry
	Records []model.DailyGameRecord
	Files   int
	Skipped int
}

// Loader reads the corpus.
type Loader interface {
	Load(ctx context.Context) (Data, error)
}

// FileLoader reads the corpus from the local filesystem behind a circuit
// breaker, so a broken data directory is not re-read on every reload tick.
type FileLoader struct {
	rosterPath     string
	logsDir        string
	maxFailures    uint32
	breakerTimeout time.Duration
	breaker        *gobreaker.CircuitBreaker
	logger         logger.Logger
}

// NewFileLoader creates a loader for rosterPath and logsDir.
func NewFileLoader(rosterPath, logsDir string, opts ...Option) *FileLoader {
	l := &FileLoader{
		rosterPath:     rosterPath,
		logsDir:        logsDir,
		maxFailures:    defaultMaxFailures,
		breakerTimeout: defaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("corpus")
	}

	maxFailures := l.maxFailures
	l.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "corpus",
		MaxRequests: 1,
		Timeout:     l.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return l
}

// State returns the breaker state name.
func (l *FileLoader) State() string {
	return l.breaker.State().String()
}

// Load implements Loader.Load.
func (l *FileLoader) Load(ctx context.Context) (Data, error) {
	res, err := l.breaker.Execute(func() (interface{}, error) {
		return l.load(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordErrorByComponent("corpus", "breaker_open")
			return Data{}, fmt.Errorf("%w: %w", ErrBreakerOpen, err)
		}
		metrics.RecordErrorByComponent("corpus", "load")
		return Data{}, err
	}
	return res.(Data), nil
}

type logFile struct {
	Date    string            `json:"date"`
	Players []json.RawMessage `json:"players"`
}

func (l *FileLoader) load(ctx context.Context) (Data, error) {
	roster, err := readRoster(l.rosterPath)
	if err != nil {
		return Data{}, err
	}

	entries, err := os.ReadDir(l.logsDir)
	if err != nil {
		return Data{}, fmt.Errorf("%w: read logs dir: %w", ErrLoad, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	data := Data{Roster: roster}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return Data{}, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		records, skipped, err := readLog(filepath.Join(l.logsDir, name))
		if err != nil {
			return Data{}, err
		}
		if skipped > 0 {
			l.logger.Warn(ctx, "skipped unreadable or undated records",
				logger.String("file", name),
				logger.Int("skipped", skipped),
			)
		}
		data.Records = append(data.Records, records...)
		data.Skipped += skipped
		data.Files++
	}

	l.logger.Debug(ctx, "corpus read",
		logger.Int("roster_entries", len(roster)),
		logger.Int("files", data.Files),
		logger.Int("records", len(data.Records)),
	)
	return data, nil
}

func readRoster(path string) ([]model.RosterEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read roster: %w", ErrLoad, err)
	}
	var roster []model.RosterEntry
	if err := json.Unmarshal(b, &roster); err != nil {
		return nil, fmt.Errorf("%w: decode roster: %w", ErrLoad, err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrLoad, ErrEmptyRoster)
	}
	return roster, nil
}

func readLog(path string) ([]model.DailyGameRecord, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read %s: %w", ErrLoad, filepath.Base(path), err)
	}
	var f logFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, 0, fmt.Errorf("%w: decode %s: %w", ErrLoad, filepath.Base(path), err)
	}

	fallback := dateOf(f.Date)
	if fallback.IsZero() {
		fallback = dateOf(fileDate.FindString(filepath.Base(path)))
	}

	out := make([]model.DailyGameRecord, 0, len(f.Players))
	skipped := 0
	for _, raw := range f.Players {
		var r model.DailyGameRecord
		if err := json.Unmarshal(raw, &r); err != nil {
			skipped++
			continue
		}
		if r.Date.IsZero() {
			r.Date = fallback
		}
		if r.Date.IsZero() {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, skipped, nil
}

func dateOf(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}
