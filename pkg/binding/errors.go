package binding

import "errors"

var (
	// ErrNoControl reports a setup call without a control.
	ErrNoControl = errors.New("binding: cannot find control with")
	// ErrNoValueAccessor reports a directive without an accessor.
	ErrNoValueAccessor = errors.New("binding: no value accessor for form control with")
	// ErrDetachedControl reports an accessor callback firing after teardown.
	ErrDetachedControl = errors.New("binding: there is no form control instance attached to form control element with")
)
