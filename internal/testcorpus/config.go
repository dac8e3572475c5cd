package testcorpus

import "time"

// Config drives corpus generation.
type Config struct {
	Teams           []string  // Team codes
	HittersPerTeam  int       // Hitters per team, anchors included
	PitchersPerTeam int       // Pitchers per team, anchors included
	Days            int       // Number of dated game-log files
	Start           time.Time // Date of the first game log
	Seed            uint64    // Seed for the stat stream
}

// DefaultConfig returns a small corpus suitable for tests.
func DefaultConfig() Config {
	return Config{
		Teams:           []string{"SF", "TEX", "CLE", "NYY"},
		HittersPerTeam:  6,
		PitchersPerTeam: 2,
		Days:            12,
		Start:           time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		Seed:            42,
	}
}

// SmokeConfig holds configuration for a smoke run against a live server.
type SmokeConfig struct {
	BaseURL string        // Base URL of the service
	Workers int           // Number of concurrent requests
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every response
}

// Stats holds smoke run statistics.
type Stats struct {
	Requests  int
	Succeeded int
	Failed    int
	Malformed int
	ByTier    map[string]int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
