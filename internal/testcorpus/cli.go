package testcorpus

import (
	"os"
)

// ShowHelp prints usage information for the corpus generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`dueline corpus generator
========================

Writes a deterministic roster and dated game logs, and optionally smoke-tests
a running server against them.

Usage:
  go run ./cmd/gen-corpus [options]

Options:
  -out string
        Output directory (default "data")
  -teams string
        Comma-separated team codes (default "SF,TEX,CLE,NYY")
  -hitters int
        Hitters per team (default 6)
  -pitchers int
        Pitchers per team (default 2)
  -days int
        Number of game-log files (default 12)
  -start string
        First game date, YYYY-MM-DD (default "2025-04-01")
  -seed uint
        Seed for the stat stream (default 42)
  -url string
        Base URL of a running server to smoke-test after writing
  -workers int
        Concurrent smoke requests (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every smoke response
  -help
        Show this help message

Examples:
  go run ./cmd/gen-corpus -out data
  go run ./cmd/gen-corpus -out data -url http://localhost:9080 -verbose
`)
}
