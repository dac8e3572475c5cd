package trend

import (
	"github.com/okian/dueline/internal/domain/model"
)

// Polarity says which direction of change counts as improvement.
type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
)

// Extractor reads one game's value for a metric. ok is false when the game
// carries no usable value and should be left out of the mean.
type Extractor func(r model.DailyGameRecord) (v float64, ok bool)

// Metric describes what is classified. Threshold overrides the classifier's
// stability threshold when positive.
type Metric struct {
	Name      string
	Polarity  Polarity
	Threshold float64
	Extract   Extractor
}

// Stat extracts a raw stat value.
func Stat(key string) Extractor {
	return func(r model.DailyGameRecord) (float64, bool) {
		return r.Stat(key)
	}
}

// Ratio extracts num/den per game, skipping games with no denominator.
func Ratio(num, den string) Extractor {
	return func(r model.DailyGameRecord) (float64, bool) {
		d, ok := r.Stat(den)
		if !ok || d <= 0 {
			return 0, false
		}
		n, _ := r.Stat(num)
		return n / d, true
	}
}

// ERA is the pitcher metric: lower is better, classified in runs.
func ERA() Metric {
	return Metric{Name: "era", Polarity: LowerIsBetter, Extract: Stat(model.StatERA)}
}

// BattingAverage is the hitter metric: per-game H/AB, higher is better. Its
// threshold is on the rate scale since the classifier default is in runs.
func BattingAverage(threshold float64) Metric {
	return Metric{
		Name:      "batting_average",
		Polarity:  HigherIsBetter,
		Threshold: threshold,
		Extract:   Ratio(model.StatHits, model.StatAtBats),
	}
}

// ForRole picks the headline metric for a role.
func ForRole(role model.Role, rateThreshold float64) Metric {
	if role == model.RolePitcher {
		return ERA()
	}
	return BattingAverage(rateThreshold)
}
