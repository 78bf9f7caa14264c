package directive

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/control"
)

// Options is the options input of a Model.
type Options struct {
	Name       string
	Standalone bool
	UpdateOn   control.UpdateOn
}

// Dependencies are what a Model is constructed with. Parent may be nil for a
// standalone binding. Scheduler falls back to the parent form's scheduler.
// A nil Accessors leaves the model without an accessor until setup fails;
// a non-nil empty set is rejected by accessor selection.
type Dependencies struct {
	Parent          Container
	Validators      []control.Validator
	AsyncValidators []control.AsyncValidator
	Accessors       []accessor.ValueAccessor
	Scheduler       control.Scheduler
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithModelPipeline sets the pipeline used for standalone setup.
func WithModelPipeline(p *binding.Pipeline) ModelOption {
	return func(m *Model) {
		if p != nil {
			m.pipeline = p
		}
	}
}

// WithModelLogger sets the Model logger.
func WithModelLogger(logger *slog.Logger) ModelOption {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithControlOptions passes options to the Model's control.
func WithControlOptions(opts ...control.ControlOption) ModelOption {
	return func(m *Model) { m.controlOpts = append(m.controlOpts, opts...) }
}

// Model binds an external value to a FormControl it owns. The control is
// created with the Model and never replaced; the accessor is selected once
// at construction.
type Model struct {
	ctl         *control.FormControl
	controlOpts []control.ControlOption
	parent      Container
	validators  []control.Validator
	async       []control.AsyncValidator
	acc         accessor.ValueAccessor
	scheduler   control.Scheduler
	pipeline    *binding.Pipeline
	logger      *slog.Logger

	name       string
	isDisabled any
	model      any
	options    *Options

	viewModel  any
	registered bool
	listeners  []func(any)
}

var _ binding.ControlDirective = (*Model)(nil)

// NewModel creates a Model. Accessor selection errors are returned here; an
// empty accessor set is left for setup to report.
func NewModel(deps Dependencies, opts ...ModelOption) (*Model, error) {
	m := &Model{
		parent:     deps.Parent,
		validators: append([]control.Validator(nil), deps.Validators...),
		async:      append([]control.AsyncValidator(nil), deps.AsyncValidators...),
		scheduler:  deps.Scheduler,
		pipeline:   binding.New(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.scheduler == nil && m.parent != nil {
		if form := m.parent.FormDirective(); form != nil {
			m.scheduler = form.Scheduler()
		}
	}
	if m.scheduler == nil {
		return nil, ErrNoScheduler
	}

	controlOpts := append([]control.ControlOption{control.WithScheduler(m.scheduler)}, m.controlOpts...)
	m.ctl = control.NewFormControl(nil, controlOpts...)

	if deps.Accessors != nil {
		acc, err := accessor.Select(m.Path(), deps.Accessors)
		if err != nil {
			return nil, err
		}
		m.acc = acc
	}
	return m, nil
}

// Control returns the owned control.
func (m *Model) Control() *control.FormControl { return m.ctl }

// ValueAccessor returns the selected accessor.
func (m *Model) ValueAccessor() accessor.ValueAccessor { return m.acc }

// Validators returns the raw directive validators.
func (m *Model) Validators() []control.Validator { return m.validators }

// AsyncValidators returns the raw directive async validators.
func (m *Model) AsyncValidators() []control.AsyncValidator { return m.async }

// Name returns the resolved name.
func (m *Model) Name() string { return m.name }

// ViewModel returns the last value pushed to or observed from the view.
func (m *Model) ViewModel() any { return m.viewModel }

// Registered reports whether setup has run.
func (m *Model) Registered() bool { return m.registered }

// Path returns the names from the root container to this control.
func (m *Model) Path() []string {
	if m.parent != nil {
		return control.ControlPath(m.name, m.parent.Path())
	}
	return []string{m.name}
}

// FormDirective returns the root form, if any.
func (m *Model) FormDirective() *Form {
	if m.parent == nil {
		return nil
	}
	return m.parent.FormDirective()
}

// OnModelChange subscribes to outbound value changes.
func (m *Model) OnModelChange(fn func(value any)) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// ViewToModelUpdate records value as the view model and publishes it.
func (m *Model) ViewToModelUpdate(value any) {
	m.viewModel = value
	for _, fn := range m.listeners {
		fn(value)
	}
}

// OnChanges runs one change-detection pass.
func (m *Model) OnChanges(changes Changes) error {
	m.applyInputs(changes)
	if err := m.checkForErrors(); err != nil {
		return err
	}
	if !m.registered {
		if err := m.setUpControl(); err != nil {
			return err
		}
	}
	if change, ok := changes[InputDisabled]; ok {
		m.updateDisabled(change.Current)
	}
	if IsPropertyUpdated(changes, m.viewModel) {
		m.updateValue(m.model)
		m.viewModel = m.model
	}
	return nil
}

// OnDestroy unregisters from the form, or tears down a standalone binding.
func (m *Model) OnDestroy() {
	if form := m.FormDirective(); form != nil && !m.isStandalone() {
		form.RemoveControl(m)
		return
	}
	if m.registered {
		m.pipeline.CleanUpControl(m.ctl, m)
	}
}

func (m *Model) applyInputs(changes Changes) {
	if change, ok := changes[InputName]; ok {
		m.name = fmt.Sprint(valueOrEmpty(change.Current))
	}
	if change, ok := changes[InputDisabled]; ok {
		m.isDisabled = change.Current
	}
	if change, ok := changes[InputModel]; ok {
		m.model = change.Current
	}
	if change, ok := changes[InputOptions]; ok {
		switch opts := change.Current.(type) {
		case Options:
			m.options = &opts
		case *Options:
			m.options = opts
		case nil:
			m.options = nil
		}
	}
}

func (m *Model) isStandalone() bool {
	return m.parent == nil || (m.options != nil && m.options.Standalone)
}

func (m *Model) checkForErrors() error {
	if !m.isStandalone() {
		if err := checkParent(m.parent); err != nil {
			return err
		}
	}
	if m.options != nil && m.options.Name != "" {
		m.name = m.options.Name
	}
	if !m.isStandalone() && m.name == "" {
		return ErrMissingName
	}
	return nil
}

func (m *Model) setUpControl() error {
	if m.options != nil && m.options.UpdateOn != "" {
		m.ctl.SetUpdateOn(m.options.UpdateOn)
	}
	if m.isStandalone() {
		if err := m.pipeline.SetUpControl(m.ctl, m); err != nil {
			return err
		}
		m.ctl.UpdateValueAndValidity(control.Silent())
	} else {
		form := m.FormDirective()
		if form == nil {
			return ErrStructuralBinding
		}
		if err := form.AddControl(m); err != nil {
			return err
		}
	}
	m.registered = true
	m.logger.Debug("model registered", "path", m.Path(), "standalone", m.isStandalone())
	return nil
}

func (m *Model) updateValue(value any) {
	m.scheduler.Schedule(func() {
		m.ctl.SetValue(value, control.WithoutViewToModel())
	})
}

func (m *Model) updateDisabled(value any) {
	disabled := isDisabledValue(value)
	m.scheduler.Schedule(func() {
		switch {
		case disabled && !m.ctl.Disabled():
			m.ctl.Disable()
		case !disabled && m.ctl.Disabled():
			m.ctl.Enable()
		}
	})
}

// isDisabledValue treats the empty string and any truthy value other than
// the string "false" as disabled.
func isDisabledValue(value any) bool {
	if s, ok := value.(string); ok {
		return s != "false"
	}
	return truthy(value)
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
