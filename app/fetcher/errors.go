package fetcher

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every fetch failure: transport errors, timeouts,
// redirect overflow, HTTP status >= 400 and undecodable bodies.
var ErrUnavailable = errors.New("resource unavailable")

type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status > 0:
		return fmt.Sprintf("GET %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

func statusOf(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Status
	}
	return 0
}

// StatusOf returns the HTTP status carried by a fetch error, or 0.
func StatusOf(err error) int { return statusOf(err) }
