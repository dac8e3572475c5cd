// Package history indexes per-date game records by identity and serves
// bounded, chronologically ordered windows over them.
//
// An Index is built once per corpus load and never mutated afterwards, so it
// can be shared by any number of concurrent readers.
package history

import (
	"sort"
	"time"

	"github.com/okian/dueline/internal/domain/canon"
	"github.com/okian/dueline/internal/domain/model"
)

// Baseline holds league-wide rates for one role.
type Baseline struct {
	BattingAverage float64
	HomeRunRate    float64
	ERA            float64
	Games          int
}

// Rate is the role's headline rate: batting average for hitters, ERA for
// pitchers.
func (b Baseline) Rate(role model.Role) float64 {
	if role == model.RolePitcher {
		return b.ERA
	}
	return b.BattingAverage
}

type seriesKey struct {
	team string
	role model.Role
	name string
}

type teamKey struct {
	team string
	role model.Role
}

// Index is an immutable lookup over a corpus of daily game records.
type Index struct {
	series  map[seriesKey][]model.DailyGameRecord
	byName  map[string][]seriesKey
	teams   map[teamKey][]model.DailyGameRecord
	latest  []model.DailyGameRecord
	league  map[model.Role]Baseline
	records int
}

// Build indexes records. Names are keyed by their folded canonical form, so
// spellings that differ only in case, accents or initial punctuation land in
// the same series. Records without a name or date are ignored.
func Build(records []model.DailyGameRecord) *Index {
	idx := &Index{
		series: make(map[seriesKey][]model.DailyGameRecord),
		byName: make(map[string][]seriesKey),
		teams:  make(map[teamKey][]model.DailyGameRecord),
		league: make(map[model.Role]Baseline, 2),
	}

	for _, r := range records {
		key := canon.Key(r.Name)
		if key == "" || r.Date.IsZero() {
			continue
		}
		r.Team = model.NormalizeTeam(r.Team)
		r.Role = r.InferredRole()
		sk := seriesKey{team: r.Team, role: r.Role, name: key}
		if _, ok := idx.series[sk]; !ok {
			idx.byName[key] = append(idx.byName[key], sk)
		}
		idx.series[sk] = append(idx.series[sk], r)
		idx.records++
	}

	for sk, rs := range idx.series {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })
		idx.latest = append(idx.latest, rs[len(rs)-1])
		tk := teamKey{team: sk.team, role: sk.role}
		idx.teams[tk] = append(idx.teams[tk], rs...)
	}
	for _, keys := range idx.byName {
		sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })
	}
	sort.Slice(idx.latest, func(i, j int) bool { return lessRecord(idx.latest[i], idx.latest[j]) })

	for tk, rs := range idx.teams {
		idx.teams[tk] = aggregateByDate(tk, rs)
	}
	idx.league[model.RoleHitter] = hitterBaseline(idx.series)
	idx.league[model.RolePitcher] = pitcherBaseline(idx.series)
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return idx.records }

// Identities returns the number of distinct (team, role, name) series.
func (idx *Index) Identities() int { return len(idx.series) }

// WindowFor returns the most recent n games on or before asOf for the named
// identity. A zero asOf means latest and n <= 0 means unbounded. Empty team or
// role widen the lookup; the first series in (team, role) order is used. An
// unknown identity yields an empty window.
func (idx *Index) WindowFor(name, team string, role model.Role, asOf time.Time, n int) Window {
	rs := idx.lookup(canon.Key(name), model.NormalizeTeam(team), role)
	return bound(rs, asOf, n)
}

// Season returns every game on or before asOf for the named identity.
func (idx *Index) Season(name, team string, role model.Role, asOf time.Time) Window {
	return idx.WindowFor(name, team, role, asOf, 0)
}

// TeamWindow returns the most recent n per-date team aggregates for a team and
// role. Counting stats are summed across the team's players for each date and
// ERA is averaged.
func (idx *Index) TeamWindow(team string, role model.Role, asOf time.Time, n int) Window {
	return bound(idx.teams[teamKey{team: model.NormalizeTeam(team), role: role}], asOf, n)
}

// TeamSeason returns every team aggregate on or before asOf.
func (idx *Index) TeamSeason(team string, role model.Role, asOf time.Time) Window {
	return idx.TeamWindow(team, role, asOf, 0)
}

// Candidates returns the latest record on or before asOf for every identity
// of the given role (any role when empty), ordered by team then name. These
// are the log spellings daily-name resolution chooses from.
func (idx *Index) Candidates(role model.Role, asOf time.Time) []model.DailyGameRecord {
	out := make([]model.DailyGameRecord, 0, len(idx.latest))
	if asOf.IsZero() {
		for _, r := range idx.latest {
			if role == "" || r.Role == role {
				out = append(out, r)
			}
		}
		return out
	}
	for sk, rs := range idx.series {
		if role != "" && sk.role != role {
			continue
		}
		if w := bound(rs, asOf, 1); !w.Empty() {
			out = append(out, w.Records[0])
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessRecord(out[i], out[j]) })
	return out
}

// League returns the league-wide baseline for role.
func (idx *Index) League(role model.Role) (Baseline, bool) {
	b, ok := idx.league[role]
	if !ok || b.Games == 0 {
		return Baseline{}, false
	}
	return b, true
}

func (idx *Index) lookup(key, team string, role model.Role) []model.DailyGameRecord {
	if key == "" {
		return nil
	}
	if team != "" && role != "" {
		return idx.series[seriesKey{team: team, role: role, name: key}]
	}
	for _, sk := range idx.byName[key] {
		if (team == "" || sk.team == team) && (role == "" || sk.role == role) {
			return idx.series[sk]
		}
	}
	return nil
}

// bound trims an ascending series to games on or before asOf and keeps the
// last n of them.
func bound(rs []model.DailyGameRecord, asOf time.Time, n int) Window {
	end := len(rs)
	if !asOf.IsZero() {
		end = sort.Search(len(rs), func(i int) bool { return rs[i].Date.After(asOf) })
	}
	start := 0
	if n > 0 && end > n {
		start = end - n
	}
	if start >= end {
		return Window{}
	}
	return Window{Records: rs[start:end:end]}
}

func aggregateByDate(tk teamKey, rs []model.DailyGameRecord) []model.DailyGameRecord {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Date.Before(rs[j].Date) })
	var out []model.DailyGameRecord
	for i := 0; i < len(rs); {
		day := model.DailyGameRecord{
			Name:  tk.team,
			Team:  tk.team,
			Role:  tk.role,
			Date:  rs[i].Date,
			Stats: make(map[string]float64),
		}
		var eraSum float64
		eraCount := 0
		j := i
		for ; j < len(rs) && rs[j].Date.Equal(rs[i].Date); j++ {
			for k, v := range rs[j].Stats {
				if k == model.StatERA {
					eraSum += v
					eraCount++
					continue
				}
				day.Stats[k] += v
			}
		}
		if eraCount > 0 {
			day.Stats[model.StatERA] = eraSum / float64(eraCount)
		}
		out = append(out, day)
		i = j
	}
	return out
}

func hitterBaseline(series map[seriesKey][]model.DailyGameRecord) Baseline {
	var ab, h, hr float64
	var games int
	for sk, rs := range series {
		if sk.role != model.RoleHitter {
			continue
		}
		w := Window{Records: rs}
		ab += w.Sum(model.StatAtBats)
		h += w.Sum(model.StatHits)
		hr += w.Sum(model.StatHomeRuns)
		games += len(rs)
	}
	b := Baseline{Games: games}
	if ab > 0 {
		b.BattingAverage = h / ab
		b.HomeRunRate = hr / ab
	}
	return b
}

func pitcherBaseline(series map[seriesKey][]model.DailyGameRecord) Baseline {
	var sum float64
	var n, games int
	for sk, rs := range series {
		if sk.role != model.RolePitcher {
			continue
		}
		for _, r := range rs {
			if v, ok := r.Stats[model.StatERA]; ok {
				sum += v
				n++
			}
		}
		games += len(rs)
	}
	b := Baseline{Games: games}
	if n > 0 {
		b.ERA = sum / float64(n)
	}
	return b
}

func lessKey(a, b seriesKey) bool {
	if a.team != b.team {
		return a.team < b.team
	}
	return a.role < b.role
}

func lessRecord(a, b model.DailyGameRecord) bool {
	if a.Team != b.Team {
		return a.Team < b.Team
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Role < b.Role
}
