package directive

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralBinding reports a Model or ModelGroup inside a parent
	// that is not a template-driven container.
	ErrStructuralBinding = errors.New("directive: model binding must be inside a form or model group, or marked standalone")
	// ErrFormGroupName reports a Model nested in a reactive group.
	ErrFormGroupName = fmt.Errorf("%w: parent is a reactive form group name", ErrStructuralBinding)
	// ErrMissingName reports a non-standalone Model without a name.
	ErrMissingName = errors.New("directive: name must be set when model binding is used within a form, or options must mark it standalone")
	// ErrNoScheduler reports a Model with nowhere to defer its work.
	ErrNoScheduler = errors.New("directive: scheduler is required")
	// ErrDuplicateControl reports a second binding for a path already taken.
	ErrDuplicateControl = errors.New("directive: control already registered with")
	// ErrNoContainer reports a registration whose group path does not exist.
	ErrNoContainer = errors.New("directive: cannot find container for control with")
)
