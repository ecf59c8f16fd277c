package records

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the upstream API answers 404 for a record.
var ErrNotFound = errors.New("record not found")

// ErrUnauthenticated is returned when the upstream API refuses the
// caller's credentials. It is surfaced distinctly so the edge can answer
// 401 instead of a generic failure.
var ErrUnauthenticated = errors.New("authentication required")

// StatusError reports an unexpected upstream HTTP status.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("records api: unexpected status %d for %s", e.Status, e.Path)
}

// IsNotFound reports whether err resolves to a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthenticated reports whether err resolves to refused credentials.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
