package fallback

import (
	"math"

	"github.com/okian/dueline/internal/domain/model"
)

// Confidence bands per tier. Bands do not overlap, so for any input a
// player-specific result outranks team-based, which outranks league-average.
const (
	playerFloor = 0.7
	teamFloor   = 0.3
	leagueFloor = 0.1
	leagueCap   = 0.2
)

// Confidence scores a result from its tier, how full its window was and how
// decisively its trend classified. certainty is clamped to [0, 1].
func Confidence(tier model.Tier, games, windowSize int, certainty float64, hasBaseline bool) float64 {
	fill := 0.0
	if windowSize > 0 {
		fill = math.Min(1, float64(games)/float64(windowSize))
	}
	certainty = math.Max(0, math.Min(1, certainty))

	var c float64
	switch tier {
	case model.TierPlayer:
		c = playerFloor + 0.2*fill + 0.1*certainty
	case model.TierTeam:
		c = teamFloor + 0.1*fill + 0.1*certainty
	default:
		c = leagueFloor
		if hasBaseline {
			c = leagueCap
		}
	}
	return math.Round(c*1000) / 1000
}
