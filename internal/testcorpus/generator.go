// Package testcorpus generates deterministic roster and game-log corpora for
// tests and local runs, and smoke-tests a running server against them.
package testcorpus

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/okian/dueline/internal/domain/canon"
	"github.com/okian/dueline/internal/domain/model"
)

// Corpus is a generated roster plus its dated game logs.
type Corpus struct {
	Roster []model.RosterEntry
	Days   []Day
}

// Day is one game-log file.
type Day struct {
	Date    time.Time
	Records []model.DailyGameRecord
}

// anchor players exercise accents, suffixes and shared abbreviations. Each
// lands on Teams[team % len(Teams)].
var anchors = []struct {
	name string
	team int
	role model.Role
}{
	{"Aramis Garcia", 0, model.RoleHitter},
	{"Adolis García", 1, model.RoleHitter},
	{"José Ramírez", 2, model.RoleHitter},
	{"Ken Griffey Jr.", 3, model.RoleHitter},
	{"Gerrit Cole", 3, model.RolePitcher},
	{"Logan Webb", 0, model.RolePitcher},
}

var (
	firstNames = []string{
		"Alex", "Brandon", "Carlos", "Dylan", "Eduardo", "Francisco", "Gavin",
		"Hunter", "Ian", "Jorge", "Kyle", "Luis", "Marcus", "Nolan", "Oscar",
		"Pablo", "Ryan", "Seth", "Tyler", "Victor", "Wander", "Yordan",
	}
	lastNames = []string{
		"Alvarez", "Bellinger", "Castillo", "Diaz", "Estrada", "Flores",
		"Gonzalez", "Hernandez", "Iglesias", "Jimenez", "Kim", "Lopez",
		"Martinez", "Nunez", "Ortiz", "Perez", "Quintana", "Rodriguez",
		"Suarez", "Torres", "Urias", "Vargas",
	}
)

// Capacity is the number of distinct generated names available.
func Capacity() int { return len(firstNames) * len(lastNames) }

// Generate builds a corpus from cfg. The same cfg always yields the same
// corpus.
func Generate(cfg Config) Corpus {
	if len(cfg.Teams) == 0 {
		cfg.Teams = DefaultConfig().Teams
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // fixtures, not secrets

	roster := buildRoster(cfg, rng)
	skill := make([]float64, len(roster))
	for i, e := range roster {
		if e.Role == model.RolePitcher {
			skill[i] = 2.5 + rng.Float64()*3 // target ERA
		} else {
			skill[i] = 0.200 + rng.Float64()*0.120 // target AVG
		}
	}

	days := make([]Day, 0, cfg.Days)
	for d := 0; d < cfg.Days; d++ {
		date := cfg.Start.AddDate(0, 0, d)
		day := Day{Date: date, Records: make([]model.DailyGameRecord, 0, len(roster))}
		for i, e := range roster {
			var stats map[string]float64
			if e.Role == model.RolePitcher {
				if (d+i)%5 != 0 { // starters pitch every fifth day
					continue
				}
				stats = pitcherLine(rng, skill[i])
			} else {
				stats = hitterLine(rng, skill[i])
			}
			day.Records = append(day.Records, model.DailyGameRecord{
				Name:  e.AbbreviatedName,
				Team:  e.Team,
				Role:  e.Role,
				Date:  date,
				Stats: stats,
			})
		}
		days = append(days, day)
	}
	return Corpus{Roster: roster, Days: days}
}

func buildRoster(cfg Config, rng *rand.Rand) []model.RosterEntry {
	var roster []model.RosterEntry
	used := make(map[string]bool)
	counts := make(map[string]map[model.Role]int)
	add := func(name, team string, role model.Role) {
		used[canon.Key(name)] = true
		if counts[team] == nil {
			counts[team] = make(map[model.Role]int)
		}
		counts[team][role]++
		roster = append(roster, Entry(name, team, role))
	}

	for _, a := range anchors {
		add(a.name, cfg.Teams[a.team%len(cfg.Teams)], a.role)
	}
	for _, team := range cfg.Teams {
		for _, want := range []struct {
			role model.Role
			n    int
		}{{model.RoleHitter, cfg.HittersPerTeam}, {model.RolePitcher, cfg.PitchersPerTeam}} {
			for counts[team][want.role] < want.n {
				name := firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))]
				if used[canon.Key(name)] {
					continue
				}
				add(name, team, want.role)
			}
		}
	}
	return roster
}

// Entry builds a roster entry whose abbreviated name is the first initial
// followed by the rest of the name.
func Entry(fullName, team string, role model.Role) model.RosterEntry {
	abbr := Abbreviate(fullName)
	return model.RosterEntry{
		FullName:               fullName,
		FullNameCleaned:        canon.Canonicalize(fullName),
		AbbreviatedName:        abbr,
		AbbreviatedNameCleaned: canon.Canonicalize(abbr),
		Team:                   team,
		Role:                   role,
	}
}

// Abbreviate turns "Ken Griffey Jr." into "K. Griffey Jr.".
func Abbreviate(fullName string) string {
	first, rest, ok := strings.Cut(strings.TrimSpace(fullName), " ")
	if !ok || first == "" {
		return fullName
	}
	r := []rune(first)
	return fmt.Sprintf("%s. %s", string(r[0]), rest)
}

func hitterLine(rng *rand.Rand, avg float64) map[string]float64 {
	ab := 3 + rng.IntN(3)
	h := 0
	for i := 0; i < ab; i++ {
		if rng.Float64() < avg {
			h++
		}
	}
	hr := 0
	if h > 0 && rng.Float64() < 0.12 {
		hr = 1
	}
	return map[string]float64{
		model.StatAtBats:   float64(ab),
		model.StatHits:     float64(h),
		model.StatHomeRuns: float64(hr),
	}
}

func pitcherLine(rng *rand.Rand, era float64) map[string]float64 {
	ip := 5 + float64(rng.IntN(3))
	er := math.Round(rng.Float64() * 2 * era * ip / 9)
	return map[string]float64{
		model.StatInningsPitched: ip,
		model.StatEarnedRuns:     er,
		model.StatERA:            math.Round(er*9/ip*100) / 100,
	}
}
