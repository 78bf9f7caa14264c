package control

import (
	"fmt"
	"strings"
)

// PathError attaches the control path of the offending binding to a sentinel
// error so messages read "<reason> path: 'a -> b'".
type PathError struct {
	Path []string
	Err  error
}

func (e *PathError) Error() string {
	if e == nil || e.Err == nil {
		return "<nil>"
	}
	return e.Err.Error() + " " + DescribePath(e.Path)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *PathError) Unwrap() error { return e.Err }

// NewPathError wraps err with a copy of path.
func NewPathError(path []string, err error) *PathError {
	return &PathError{Path: append([]string(nil), path...), Err: err}
}

// DescribePath renders a control path for error messages.
func DescribePath(path []string) string {
	switch {
	case len(path) > 1:
		return fmt.Sprintf("path: '%s'", strings.Join(path, " -> "))
	case len(path) == 1 && path[0] != "":
		return fmt.Sprintf("name: '%s'", path[0])
	default:
		return "unspecified name attribute"
	}
}

// ControlPath appends name to the parent container's path.
func ControlPath(name string, parent []string) []string {
	out := make([]string, 0, len(parent)+1)
	out = append(out, parent...)
	return append(out, name)
}
