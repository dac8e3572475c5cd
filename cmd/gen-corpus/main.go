package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/internal/testcorpus"
	"github.com/okian/dueline/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultSmokeTimeout = 5 * time.Minute
	maxPlayersPerTeam   = 40
)

func main() {
	defaults := testcorpus.DefaultConfig()
	var (
		out      = flag.String("out", "data", "Output directory")
		teams    = flag.String("teams", strings.Join(defaults.Teams, ","), "Comma-separated team codes")
		hitters  = flag.Int("hitters", defaults.HittersPerTeam, "Hitters per team")
		pitchers = flag.Int("pitchers", defaults.PitchersPerTeam, "Pitchers per team")
		days     = flag.Int("days", defaults.Days, "Number of game-log files")
		start    = flag.String("start", defaults.Start.Format(model.DateLayout), "First game date")
		seed     = flag.Uint64("seed", defaults.Seed, "Seed for the stat stream")
		baseURL  = flag.String("url", "", "Base URL of a running server to smoke-test")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent smoke requests")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Log every smoke response")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testcorpus.ShowHelp()
		return
	}
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	lg := logger.Get().Named("gen-corpus")
	ctx := context.Background()

	first, err := time.Parse(model.DateLayout, *start)
	if err != nil {
		lg.Error(ctx, "invalid start date", logger.String("start", *start), logger.Error(err))
		os.Exit(1)
	}
	if *hitters+*pitchers > maxPlayersPerTeam || *days < 1 {
		lg.Error(ctx, "invalid corpus size",
			logger.Int("hitters", *hitters),
			logger.Int("pitchers", *pitchers),
			logger.Int("days", *days),
		)
		os.Exit(1)
	}

	teamList := splitTeams(*teams)
	if len(teamList)*(*hitters+*pitchers) > testcorpus.Capacity()/2 {
		lg.Error(ctx, "too many players for the name pool", logger.Int("capacity", testcorpus.Capacity()/2))
		os.Exit(1)
	}

	cfg := testcorpus.Config{
		Teams:           teamList,
		HittersPerTeam:  *hitters,
		PitchersPerTeam: *pitchers,
		Days:            *days,
		Start:           first,
		Seed:            *seed,
	}
	c := testcorpus.Generate(cfg)
	paths, err := testcorpus.Write(*out, c)
	if err != nil {
		lg.Error(ctx, "failed to write corpus", logger.Error(err))
		os.Exit(1)
	}
	lg.Info(ctx, "corpus written",
		logger.String("roster", paths.Roster),
		logger.String("logs", paths.Logs),
		logger.Int("players", len(c.Roster)),
		logger.Int("days", len(c.Days)),
	)

	if *baseURL == "" {
		return
	}
	smokeCtx, cancel := context.WithTimeout(ctx, defaultSmokeTimeout)
	defer cancel()
	if _, err := testcorpus.Smoke(smokeCtx, testcorpus.SmokeConfig{
		BaseURL: strings.TrimRight(*baseURL, "/"),
		Workers: *workers,
		Timeout: *timeout,
		Verbose: *verbose,
	}, c.Roster); err != nil {
		lg.Error(ctx, "smoke test failed", logger.Error(err))
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel called explicitly
	}
}

func splitTeams(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = model.NormalizeTeam(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
