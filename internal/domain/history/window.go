package history

import (
	"github.com/okian/dueline/internal/domain/model"
)

// Window is a chronologically ascending run of one identity's games, bounded
// to the most recent N entries. The zero value is an empty window.
type Window struct {
	Records []model.DailyGameRecord
}

// Len returns the number of games in the window.
func (w Window) Len() int { return len(w.Records) }

// Empty reports whether the window holds no games.
func (w Window) Empty() bool { return len(w.Records) == 0 }

// Halves splits the window at len/2: earlier gets the first ⌊N/2⌋ games and
// recent the rest, so for odd N the recent half is the larger one.
func (w Window) Halves() (earlier, recent Window) {
	mid := len(w.Records) / 2
	return Window{Records: w.Records[:mid]}, Window{Records: w.Records[mid:]}
}

// Sum totals stat over the window. Missing values count as zero.
func (w Window) Sum(stat string) float64 {
	var total float64
	for _, r := range w.Records {
		total += r.Stats[stat]
	}
	return total
}

// Rate returns Σnum/Σden and whether the denominator was positive.
func (w Window) Rate(num, den string) (float64, bool) {
	d := w.Sum(den)
	if d <= 0 {
		return 0, false
	}
	return w.Sum(num) / d, true
}

// Mean averages stat over the games that recorded it.
func (w Window) Mean(stat string) (float64, bool) {
	var total float64
	var n int
	for _, r := range w.Records {
		if v, ok := r.Stats[stat]; ok {
			total += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// Last returns the most recent game.
func (w Window) Last() (model.DailyGameRecord, bool) {
	if len(w.Records) == 0 {
		return model.DailyGameRecord{}, false
	}
	return w.Records[len(w.Records)-1], true
}
