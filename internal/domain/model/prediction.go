package model

import "time"

// Tier is the data-specificity level a prediction was produced from.
type Tier string

const (
	TierPlayer Tier = "player-specific"
	TierTeam   Tier = "team-based"
	TierLeague Tier = "league-average"
)

// Direction classifies a metric's change between window halves.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionDeclining Direction = "declining"
	DirectionStable    Direction = "stable"
)

// TrendResult is the outcome of comparing the earlier and recent halves of a
// window. Classified is false when the window was too short and Direction
// holds the stable default.
type TrendResult struct {
	Metric           string
	Direction        Direction
	EarlierAggregate float64
	RecentAggregate  float64
	Classified       bool
}

// DueFactor carries the "due for event" signals. Zero means no signal.
type DueFactor struct {
	ABSinceLastEvent  int
	HitsBasedDueScore float64
	BaselineRate      float64
	RecentRate        float64
}

// Request asks for a prediction for one named player.
type Request struct {
	Name string
	Team string
	Role Role
	// AsOf bounds the history inclusively; zero means latest.
	AsOf time.Time
}

// Downgrade records one deliberate tier step and why it was taken.
type Downgrade struct {
	From   Tier
	Reason string
}

// Prediction is the engine's output unit, built fresh per request.
type Prediction struct {
	ID            string
	RequestedName string
	Role          Role
	Team          string

	Roster        *RosterEntry
	DailyName     string
	MatchStrategy string
	Suggestions   []string

	Tier       Tier
	Confidence float64
	Downgrades []Downgrade

	Trend TrendResult
	Due   DueFactor
	Games int
	// Rate is H/AB over the window for hitters and mean ERA for pitchers.
	Rate float64

	Score      float64
	Generation uint64
}

// Matchup pairs a subject prediction with an independently resolved opponent.
type Matchup struct {
	Subject  Prediction
	Opponent Prediction
}

// Job is one queued analysis with the channel its result is delivered on.
type Job struct {
	ID      string
	Request Request
	Reply   chan<- JobResult
}

// JobResult is what a worker sends back for a Job.
type JobResult struct {
	JobID      string
	Prediction Prediction
	Err        error
}
