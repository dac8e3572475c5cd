// Package identity resolves requested names to roster entries and roster
// entries to the spelling used in daily game logs.
//
// Resolution runs an ordered chain of strategies. Every candidate is tried
// against the first strategy before the second is consulted, and the first
// acceptance wins. When nothing is accepted, a similarity pass collects
// near-candidates for diagnostics; those are never treated as a match.
package identity

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/okian/dueline/internal/domain/canon"
	"github.com/okian/dueline/internal/domain/model"
	"github.com/okian/dueline/pkg/logger"
	"github.com/okian/dueline/pkg/metrics"
)

const (
	defaultSuggestionLimit = 5
	similarityPrefixLen    = 3

	StageRoster = "roster"
	StageDaily  = "daily"
)

// Match is an accepted roster resolution.
type Match struct {
	Entry    model.RosterEntry
	Strategy MatchType
}

// DailyMatch is an accepted daily-log resolution. Name is the spelling exactly
// as it appears in the log.
type DailyMatch struct {
	Name     string
	Team     string
	Strategy MatchType
}

// Matcher resolves names against an immutable roster. It is safe for
// concurrent use.
type Matcher struct {
	entries         []model.RosterEntry
	strategies      []Strategy
	suggestionLimit int
	logger          logger.Logger
}

// NewMatcher normalises the roster (filling any missing cleaned fields) and
// returns a matcher over a private copy of it.
func NewMatcher(roster []model.RosterEntry, opts ...Option) *Matcher {
	m := &Matcher{
		entries:         make([]model.RosterEntry, len(roster)),
		strategies:      DefaultStrategies(),
		suggestionLimit: defaultSuggestionLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("identity")
	}
	for i, e := range roster {
		m.entries[i] = Normalize(e)
	}
	return m
}

// Normalize fills the cleaned name fields and tidies team and role.
func Normalize(e model.RosterEntry) model.RosterEntry {
	if e.FullNameCleaned == "" {
		e.FullNameCleaned = canon.Canonicalize(e.FullName)
	}
	if e.AbbreviatedNameCleaned == "" {
		e.AbbreviatedNameCleaned = canon.Canonicalize(e.AbbreviatedName)
	}
	e.Team = model.NormalizeTeam(e.Team)
	if r := model.ParseRole(string(e.Role)); r != "" {
		e.Role = r
	}
	return e
}

// Entries returns the normalised roster. Callers must not modify it.
func (m *Matcher) Entries() []model.RosterEntry {
	return m.entries
}

// Len returns the roster size.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// ResolveRoster resolves a requested name to a roster entry. Team and role
// are preferences: matching candidates are tried first within each strategy.
// A miss returns a *NotFoundError wrapping ErrIdentityNotFound.
func (m *Matcher) ResolveRoster(ctx context.Context, requested, team string, role model.Role) (Match, error) {
	query := NameOf(requested)
	order := preferenceOrder(len(m.entries), func(i int) (string, model.Role) {
		return m.entries[i].Team, m.entries[i].Role
	}, model.NormalizeTeam(team), role)

	for _, s := range m.strategies {
		for _, i := range order {
			if s.Attempt(query, FullNameOf(m.entries[i])) {
				metrics.RecordStrategyMatch(StageRoster, string(s.Type()))
				m.logger.Debug(ctx, "roster match",
					logger.String("requested", requested),
					logger.String("matched", m.entries[i].FullName),
					logger.String("strategy", string(s.Type())),
				)
				return Match{Entry: m.entries[i], Strategy: s.Type()}, nil
			}
		}
	}

	metrics.RecordIdentityMiss(StageRoster)
	pool := make([]string, len(m.entries))
	for i, e := range m.entries {
		pool[i] = e.FullName
	}
	return Match{}, &NotFoundError{
		Name:        requested,
		Stage:       StageRoster,
		Suggestions: Suggest(requested, pool, m.suggestionLimit),
	}
}

// ResolveDailyName finds the log spelling for entry among candidate records.
// Only candidates on entry's team are considered, unless that team has no
// candidates at all.
func (m *Matcher) ResolveDailyName(ctx context.Context, entry model.RosterEntry, candidates []model.DailyGameRecord) (DailyMatch, error) {
	entry = Normalize(entry)
	candidates = sameTeam(candidates, entry.Team)
	order := preferenceOrder(len(candidates), func(i int) (string, model.Role) {
		return model.NormalizeTeam(candidates[i].Team), candidates[i].Role
	}, entry.Team, entry.Role)

	query := ShortNameOf(entry)
	for _, s := range m.strategies {
		for _, i := range order {
			if s.Attempt(query, NameOf(candidates[i].Name)) {
				metrics.RecordStrategyMatch(StageDaily, string(s.Type()))
				return DailyMatch{
					Name:     candidates[i].Name,
					Team:     candidates[i].Team,
					Strategy: s.Type(),
				}, nil
			}
		}
	}

	metrics.RecordIdentityMiss(StageDaily)
	pool := make([]string, len(candidates))
	for i, c := range candidates {
		pool[i] = c.Name
	}
	name := entry.AbbreviatedName
	if name == "" {
		name = entry.FullName
	}
	return DailyMatch{}, &NotFoundError{
		Name:        name,
		Stage:       StageDaily,
		Suggestions: Suggest(name, pool, m.suggestionLimit),
	}
}

// Suggest returns near-candidates for a requested name from the roster.
func (m *Matcher) Suggest(requested string) []string {
	pool := make([]string, len(m.entries))
	for i, e := range m.entries {
		pool[i] = e.FullName
	}
	return Suggest(requested, pool, m.suggestionLimit)
}

// Suggest is the similarity pass: candidates whose first three letters, or
// whose last word's first three letters, match the query's. Results are
// ordered by Levenshtein distance, then alphabetically, and capped at limit.
func Suggest(query string, pool []string, limit int) []string {
	qk := canon.Key(query)
	qTokens := strings.Fields(qk)
	if len(qTokens) == 0 || limit <= 0 {
		return nil
	}
	qLast := qTokens[len(qTokens)-1]

	type scored struct {
		name string
		dist int
	}
	seen := make(map[string]struct{}, len(pool))
	var hits []scored
	for _, name := range pool {
		ck := canon.Key(name)
		cTokens := strings.Fields(ck)
		if len(cTokens) == 0 {
			continue
		}
		if _, dup := seen[ck]; dup {
			continue
		}
		if !strings.HasPrefix(ck, prefix(qk)) && !strings.HasPrefix(cTokens[len(cTokens)-1], prefix(qLast)) {
			continue
		}
		seen[ck] = struct{}{}
		hits = append(hits, scored{name: name, dist: fuzzy.LevenshteinDistance(qk, ck)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

func sameTeam(candidates []model.DailyGameRecord, team string) []model.DailyGameRecord {
	if team == "" {
		return candidates
	}
	var out []model.DailyGameRecord
	for _, c := range candidates {
		if model.NormalizeTeam(c.Team) == team {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

func prefix(s string) string {
	r := []rune(s)
	if len(r) > similarityPrefixLen {
		r = r[:similarityPrefixLen]
	}
	return string(r)
}

// preferenceOrder returns candidate indexes with team-and-role matches first,
// then team-only, then role-only, then the rest. Order within a band follows
// the input. Empty preferences match everything.
func preferenceOrder(n int, attrs func(int) (string, model.Role), team string, role model.Role) []int {
	rank := func(i int) int {
		t, r := attrs(i)
		teamOK := team == "" || t == team
		roleOK := role == "" || r == role
		switch {
		case teamOK && roleOK:
			return 0
		case teamOK:
			return 1
		case roleOK:
			return 2
		default:
			return 3
		}
	}
	order := make([]int, n)
	ranks := make([]int, n)
	for i := range order {
		order[i] = i
		ranks[i] = rank(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] < ranks[order[b]]
	})
	return order
}
