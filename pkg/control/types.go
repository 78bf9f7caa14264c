package control

import (
	"context"
	"fmt"
	"strings"
)

// UpdateOn selects when a pending view edit is committed to the control.
type UpdateOn string

const (
	// UpdateOnChange commits every view edit immediately.
	UpdateOnChange UpdateOn = "change"
	// UpdateOnBlur commits the pending edit when the view loses focus.
	UpdateOnBlur UpdateOn = "blur"
	// UpdateOnSubmit commits only when the owning form syncs pending controls.
	UpdateOnSubmit UpdateOn = "submit"
)

// ParseUpdateOn normalises a textual policy. Empty input yields an empty
// policy, meaning "inherit from the parent".
func ParseUpdateOn(raw string) (UpdateOn, error) {
	switch value := UpdateOn(strings.ToLower(strings.TrimSpace(raw))); value {
	case "", UpdateOnChange, UpdateOnBlur, UpdateOnSubmit:
		return value, nil
	default:
		return "", fmt.Errorf("control: unknown update policy %q", raw)
	}
}

// Status is the validation status of a control.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusInvalid  Status = "INVALID"
	StatusPending  Status = "PENDING"
	StatusDisabled Status = "DISABLED"
)

// ValidationErrors maps an error key (e.g. "required", "minlength") to
// validator specific details. A nil map means the value is valid.
type ValidationErrors map[string]any

// Validator validates a control synchronously.
type Validator interface {
	Validate(c AbstractControl) ValidationErrors
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(c AbstractControl) ValidationErrors

// Validate implements Validator.
func (f ValidatorFunc) Validate(c AbstractControl) ValidationErrors {
	if f == nil {
		return nil
	}
	return f(c)
}

// AsyncValidator validates a snapshot of a control value, possibly off the
// control's goroutine. A non-nil error is surfaced as an "async" validation
// error.
type AsyncValidator interface {
	ValidateAsync(ctx context.Context, value any) (ValidationErrors, error)
}

// AsyncValidatorFunc adapts a function to AsyncValidator.
type AsyncValidatorFunc func(ctx context.Context, value any) (ValidationErrors, error)

// ValidateAsync implements AsyncValidator.
func (f AsyncValidatorFunc) ValidateAsync(ctx context.Context, value any) (ValidationErrors, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, value)
}

// ValidatorChangeNotifier is implemented by validators whose parameters can
// change at runtime. Registering nil removes the callback.
type ValidatorChangeNotifier interface {
	RegisterOnValidatorChange(fn func())
}

// ChangeFunc receives model-to-view notifications. emitModelEvent reports
// whether the change should also be published to the outside consumer.
type ChangeFunc func(value any, emitModelEvent bool)

// Scheduler defers work onto the goroutine that owns the controls. Schedule
// must be safe to call from any goroutine.
type Scheduler interface {
	Schedule(task func())
}
