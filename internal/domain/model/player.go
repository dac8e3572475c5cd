// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date layout used by game logs and requests.
const DateLayout = "2006-01-02"

// Stat keys carried in DailyGameRecord.Stats.
const (
	StatAtBats         = "AB"
	StatHits           = "H"
	StatHomeRuns       = "HR"
	StatEarnedRuns     = "ER"
	StatInningsPitched = "IP"
	StatERA            = "ERA"
)

// Role is the playing role of a roster entry or game record.
type Role string

const (
	RoleHitter  Role = "hitter"
	RolePitcher Role = "pitcher"
)

// ParseRole maps the role spellings seen in source files onto a Role.
// Unknown or empty input yields the empty Role.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hitter", "batter", "h", "b":
		return RoleHitter
	case "pitcher", "p", "sp", "rp":
		return RolePitcher
	default:
		return ""
	}
}

// NormalizeTeam upper-cases and trims a team code.
func NormalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}

// RosterEntry is one registry record for a known player.
type RosterEntry struct {
	FullName               string `json:"fullName"`
	FullNameCleaned        string `json:"fullNameCleaned"`
	AbbreviatedName        string `json:"abbreviatedName"`
	AbbreviatedNameCleaned string `json:"abbreviatedNameCleaned"`
	Team                   string `json:"team"`
	Role                   Role   `json:"role"`
}

// DailyGameRecord is one player's statistical line for one date, keyed by the
// name exactly as it appeared in that date's source file.
type DailyGameRecord struct {
	Name  string
	Team  string
	Role  Role
	Date  time.Time
	Stats map[string]float64
}

// Stat returns the named statistic and whether it was recorded.
func (r DailyGameRecord) Stat(key string) (float64, bool) {
	v, ok := r.Stats[key]
	return v, ok
}

// InferredRole returns the recorded role, or guesses it from the stat line:
// innings pitched or ERA mark a pitcher, anything else a hitter.
func (r DailyGameRecord) InferredRole() Role {
	if r.Role != "" {
		return r.Role
	}
	if _, ok := r.Stats[StatInningsPitched]; ok {
		return RolePitcher
	}
	if _, ok := r.Stats[StatERA]; ok {
		return RolePitcher
	}
	return RoleHitter
}

// UnmarshalJSON reads name/team/role/date and keeps every other numeric
// field (numbers or numeric strings) as an opaque stat.
func (r *DailyGameRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := DailyGameRecord{Stats: make(map[string]float64, len(raw))}
	for k, v := range raw {
		switch strings.ToLower(k) {
		case "name":
			if err := json.Unmarshal(v, &out.Name); err != nil {
				return fmt.Errorf("name: %w", err)
			}
		case "team":
			if err := json.Unmarshal(v, &out.Team); err != nil {
				return fmt.Errorf("team: %w", err)
			}
		case "role", "position":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			out.Role = ParseRole(s)
		case "date":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("date: %w", err)
			}
			if s == "" {
				continue
			}
			d, err := time.Parse(DateLayout, s)
			if err != nil {
				return fmt.Errorf("date: %w", err)
			}
			out.Date = d
		default:
			if f, ok := numeric(v); ok {
				out.Stats[k] = f
			}
		}
	}
	*r = out
	return nil
}

// MarshalJSON writes the record in the flat shape UnmarshalJSON reads.
func (r DailyGameRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Stats)+4)
	for k, v := range r.Stats {
		m[k] = v
	}
	m["name"] = r.Name
	m["team"] = r.Team
	m["role"] = string(r.Role)
	if !r.Date.IsZero() {
		m["date"] = r.Date.Format(DateLayout)
	}
	return json.Marshal(m)
}

func numeric(v json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
