package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalid is returned when the form is still invalid after the last
	// prompting round.
	ErrInvalid = errors.New("tui: form is invalid")
	// ErrUnsupportedAccessor is returned for accessors the runner cannot
	// prompt for.
	ErrUnsupportedAccessor = errors.New("tui: unsupported accessor")
)
