package identity

import (
	"errors"
	"fmt"
)

// ErrIdentityNotFound is reported when no strategy accepted any candidate.
var ErrIdentityNotFound = errors.New("identity not found")

// NotFoundError carries the near-candidates collected by the similarity pass.
type NotFoundError struct {
	Name        string
	Stage       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s match for %q", ErrIdentityNotFound, e.Stage, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrIdentityNotFound }

// Suggestions returns the near-candidates attached to err, if any.
func Suggestions(err error) []string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Suggestions
	}
	return nil
}
