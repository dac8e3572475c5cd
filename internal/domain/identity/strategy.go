package identity

import (
	"strings"

	"github.com/okian/dueline/internal/domain/canon"
	"github.com/okian/dueline/internal/domain/model"
)

// MatchType names the strategy that accepted a match.
type MatchType string

const (
	MatchExactCanonical  MatchType = "exact_canonical"
	MatchCaseInsensitive MatchType = "case_insensitive"
	MatchAbbreviation    MatchType = "abbreviation"
	// MatchSimilarity only ever produces suggestions.
	MatchSimilarity MatchType = "similarity"
)

// Name is one side of a comparison: the raw spelling plus the canonical full
// and abbreviated forms the strategies look at.
type Name struct {
	Raw       string
	Canonical string
	Full      string
	Short     string
}

// NameOf describes a caller-supplied or daily-log name. With only one
// spelling known, it stands in for both the full and short forms.
func NameOf(raw string) Name {
	c := canon.Canonicalize(raw)
	return Name{Raw: raw, Canonical: c, Full: c, Short: c}
}

// FullNameOf describes a roster entry by its registered full name. Short is
// left empty so a requested full name is never read as an expansion of the
// entry's abbreviation ("Gerry Cole" must not resolve through "G. Cole").
func FullNameOf(e model.RosterEntry) Name {
	return Name{
		Raw:       e.FullName,
		Canonical: e.FullNameCleaned,
		Full:      e.FullNameCleaned,
	}
}

// ShortNameOf describes a roster entry by its daily-log abbreviation.
func ShortNameOf(e model.RosterEntry) Name {
	return Name{
		Raw:       e.AbbreviatedName,
		Canonical: e.AbbreviatedNameCleaned,
		Full:      e.FullNameCleaned,
		Short:     e.AbbreviatedNameCleaned,
	}
}

// Strategy is one step of the matching chain.
type Strategy interface {
	Type() MatchType
	// Attempt reports whether query and candidate name the same player.
	Attempt(query, candidate Name) bool
}

// DefaultStrategies returns the accepting strategies in chain order.
func DefaultStrategies() []Strategy {
	return []Strategy{exactCanonical{}, caseInsensitive{}, abbreviation{}}
}

type exactCanonical struct{}

func (exactCanonical) Type() MatchType { return MatchExactCanonical }

func (exactCanonical) Attempt(q, c Name) bool {
	qk := canon.Key(q.Canonical)
	return qk != "" && qk == canon.Key(c.Canonical)
}

type caseInsensitive struct{}

func (caseInsensitive) Type() MatchType { return MatchCaseInsensitive }

func (caseInsensitive) Attempt(q, c Name) bool {
	if canon.Key(q.Raw) == "" {
		return false
	}
	return canon.EqualFold(q.Raw, c.Raw)
}

type abbreviation struct{}

func (abbreviation) Type() MatchType { return MatchAbbreviation }

func (abbreviation) Attempt(q, c Name) bool {
	return Abbreviates(q.Short, c.Full) || Abbreviates(c.Short, q.Full)
}

// Abbreviates reports whether abbr is an abbreviated form of full. Both must
// have the same number of words. A first word of at most two letters must
// prefix full's first word; every other word must match exactly. Comparison
// ignores case and diacritics.
func Abbreviates(abbr, full string) bool {
	a := canon.Tokens(abbr)
	f := canon.Tokens(full)
	if len(a) == 0 || len(a) != len(f) {
		return false
	}
	if len([]rune(a[0])) <= 2 {
		if !strings.HasPrefix(f[0], a[0]) {
			return false
		}
	} else if a[0] != f[0] {
		return false
	}
	for i := 1; i < len(a); i++ {
		if a[i] != f[i] {
			return false
		}
	}
	return true
}
