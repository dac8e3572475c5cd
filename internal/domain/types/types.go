// Package types contains the response shapes returned at the service boundary.
package types

import (
	"github.com/okian/dueline/internal/domain/model"
)

// Prediction is the boundary shape of one resolved prediction. The trend
// direction and due-factor fields appear both at the top level and nested
// under RecentGames and Details. Both copies are always filled from the same
// values.
type Prediction struct {
	ID            string      `json:"id"`
	RequestedName string      `json:"requested_name"`
	MatchedName   string      `json:"matched_name"`
	DailyName     string      `json:"daily_name"`
	Team          string      `json:"team"`
	Role          string      `json:"role"`
	Tier          string      `json:"tier"`
	Confidence    float64     `json:"confidence"`
	Score         float64     `json:"score"`
	MatchStrategy string      `json:"match_strategy"`
	Suggestions   []string    `json:"suggestions"`
	Downgrades    []Downgrade `json:"downgrades"`
	Generation    uint64      `json:"generation"`

	TrendDirection    string  `json:"trend_direction"`
	ABSinceLastHR     int     `json:"ab_since_last_hr"`
	HitsBasedDueScore float64 `json:"hits_based_due_score"`

	RecentGames RecentGames `json:"recent_games"`
	Details     Details     `json:"details"`
}

// Downgrade is one reported tier step.
type Downgrade struct {
	From   string `json:"from"`
	Reason string `json:"reason"`
}

// RecentGames summarises the analysed window.
type RecentGames struct {
	Games            int     `json:"games"`
	Metric           string  `json:"metric"`
	Rate             float64 `json:"rate"`
	TrendDirection   string  `json:"trend_direction"`
	EarlierAggregate float64 `json:"earlier_aggregate"`
	RecentAggregate  float64 `json:"recent_aggregate"`
}

// Details carries the due-factor breakdown.
type Details struct {
	ABSinceLastHR     int     `json:"ab_since_last_hr"`
	HitsBasedDueScore float64 `json:"hits_based_due_score"`
	BaselineRate      float64 `json:"baseline_rate"`
	RecentRate        float64 `json:"recent_rate"`
}

// Matchup is the boundary shape of a subject/opponent pair.
type Matchup struct {
	Subject  Prediction `json:"subject"`
	Opponent Prediction `json:"opponent"`
}

// TeamAnalysis is the boundary shape of a batch team analysis.
type TeamAnalysis struct {
	Team        string       `json:"team"`
	Role        string       `json:"role"`
	Count       int          `json:"count"`
	Predictions []Prediction `json:"predictions"`
}

// Suggestions lists near-candidates for a name that did not resolve.
type Suggestions struct {
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions"`
}

// NewPrediction converts an engine prediction into its boundary shape,
// substituting defaults so no documented field is ever null.
func NewPrediction(p model.Prediction) Prediction { //nolint:gocritic // hugeParam: value semantics match the engine
	direction := p.Trend.Direction
	if direction == "" {
		direction = model.DirectionStable
	}
	tier := p.Tier
	if tier == "" {
		tier = model.TierLeague
	}

	out := Prediction{
		ID:            p.ID,
		RequestedName: p.RequestedName,
		MatchedName:   p.RequestedName,
		DailyName:     p.DailyName,
		Team:          p.Team,
		Role:          string(p.Role),
		Tier:          string(tier),
		Confidence:    p.Confidence,
		Score:         p.Score,
		MatchStrategy: p.MatchStrategy,
		Suggestions:   make([]string, 0, len(p.Suggestions)),
		Downgrades:    make([]Downgrade, 0, len(p.Downgrades)),
		Generation:    p.Generation,

		TrendDirection:    string(direction),
		ABSinceLastHR:     p.Due.ABSinceLastEvent,
		HitsBasedDueScore: p.Due.HitsBasedDueScore,

		RecentGames: RecentGames{
			Games:            p.Games,
			Metric:           p.Trend.Metric,
			Rate:             p.Rate,
			TrendDirection:   string(direction),
			EarlierAggregate: p.Trend.EarlierAggregate,
			RecentAggregate:  p.Trend.RecentAggregate,
		},
		Details: Details{
			ABSinceLastHR:     p.Due.ABSinceLastEvent,
			HitsBasedDueScore: p.Due.HitsBasedDueScore,
			BaselineRate:      p.Due.BaselineRate,
			RecentRate:        p.Due.RecentRate,
		},
	}
	if p.Roster != nil {
		out.MatchedName = p.Roster.FullName
	}
	out.Suggestions = append(out.Suggestions, p.Suggestions...)
	for _, d := range p.Downgrades {
		out.Downgrades = append(out.Downgrades, Downgrade{From: string(d.From), Reason: d.Reason})
	}
	return out
}

// NewMatchup converts an engine matchup into its boundary shape.
func NewMatchup(m model.Matchup) Matchup { //nolint:gocritic // hugeParam
	return Matchup{Subject: NewPrediction(m.Subject), Opponent: NewPrediction(m.Opponent)}
}

// ReloadResult describes a freshly published corpus snapshot.
type ReloadResult struct {
	Generation    uint64 `json:"generation"`
	SnapshotID    string `json:"snapshot_id"`
	RosterEntries int    `json:"roster_entries"`
	Records       int    `json:"records"`
	Files         int    `json:"files"`
	Skipped       int    `json:"skipped"`
	LoadedAt      string `json:"loaded_at"`
}
