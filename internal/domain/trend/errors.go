package trend

import "errors"

// ErrInsufficientHistory is reported when a window is too short to split into
// two non-empty halves. Callers substitute the stable default.
var ErrInsufficientHistory = errors.New("insufficient history")
