package binding

import (
	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/control"
)

// ContainerDirective is the part of a directive the pipeline needs to set up
// a group: its address and its raw validators.
type ContainerDirective interface {
	Path() []string
	Validators() []control.Validator
	AsyncValidators() []control.AsyncValidator
}

// Directive binds one control to one accessor. ViewToModelUpdate is called
// by the pipeline only.
type Directive interface {
	ContainerDirective
	ValueAccessor() accessor.ValueAccessor
	ViewToModelUpdate(value any)
}

// ControlDirective is a Directive that owns its control.
type ControlDirective interface {
	Directive
	Control() *control.FormControl
}
