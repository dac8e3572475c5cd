package fallback

import "errors"

// ErrCorpusUnavailable means no roster or game-log snapshot is loaded. No
// tier can be attempted, so it always reaches the caller.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// Downgrade reasons recorded on a prediction.
const (
	ReasonEmptyName           = "empty_name"
	ReasonIdentityNotFound    = "identity_not_found"
	ReasonDailyNameNotFound   = "daily_name_not_found"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonNoTeam              = "no_team"
	ReasonNoTeamHistory       = "no_team_history"
)
