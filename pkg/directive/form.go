package directive

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/control"
)

// FormOption configures a Form.
type FormOption func(*Form)

// WithFormValidators sets the raw validators of the root group.
func WithFormValidators(validators ...control.Validator) FormOption {
	return func(f *Form) { f.validators = append(f.validators, validators...) }
}

// WithFormAsyncValidators sets the raw async validators of the root group.
func WithFormAsyncValidators(validators ...control.AsyncValidator) FormOption {
	return func(f *Form) { f.async = append(f.async, validators...) }
}

// WithFormUpdateOn sets the policy inherited by controls without their own.
func WithFormUpdateOn(policy control.UpdateOn) FormOption {
	return func(f *Form) { f.updateOn = policy }
}

// WithFormPipeline sets the pipeline used to bind registered Models.
func WithFormPipeline(p *binding.Pipeline) FormOption {
	return func(f *Form) {
		if p != nil {
			f.pipeline = p
		}
	}
}

// WithFormLogger sets the Form logger.
func WithFormLogger(logger *slog.Logger) FormOption {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFormErrorHandler receives errors raised by deferred registrations.
// The default handler logs them.
func WithFormErrorHandler(fn func(error)) FormOption {
	return func(f *Form) {
		if fn != nil {
			f.onError = fn
		}
	}
}

// Form is the template-driven root container. Registrations are deferred
// onto the scheduler so they never mutate the group mid-pass.
type Form struct {
	group      *control.FormGroup
	scheduler  control.Scheduler
	pipeline   *binding.Pipeline
	logger     *slog.Logger
	validators []control.Validator
	async      []control.AsyncValidator
	updateOn   control.UpdateOn
	onError    func(error)

	directives []*Model
	claimed    map[string]*Model
	submitted  bool
	onSubmit   []func(value map[string]any)
	onReset    []func()
}

var _ Container = (*Form)(nil)

// NewForm creates a root form that defers its work onto scheduler.
func NewForm(scheduler control.Scheduler, opts ...FormOption) (*Form, error) {
	if scheduler == nil {
		return nil, ErrNoScheduler
	}
	f := &Form{
		scheduler: scheduler,
		pipeline:  binding.New(),
		logger:    slog.New(slog.DiscardHandler),
		claimed:   map[string]*Model{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.onError == nil {
		f.onError = func(err error) { f.logger.Error("form registration failed", "error", err) }
	}

	groupOpts := []control.GroupOption{
		control.WithGroupValidator(binding.ComposeValidators(f.validators)),
		control.WithGroupAsyncValidator(binding.ComposeAsyncValidators(f.async)),
		control.WithGroupScheduler(scheduler),
	}
	if f.updateOn != "" {
		groupOpts = append(groupOpts, control.WithGroupUpdateOn(f.updateOn))
	}
	f.group = control.NewFormGroup(groupOpts...)
	return f, nil
}

// Path is empty for the root.
func (f *Form) Path() []string { return []string{} }

// FormDirective returns f.
func (f *Form) FormDirective() *Form { return f }

// ContainerKind implements Container.
func (f *Form) ContainerKind() ContainerKind { return KindForm }

// Scheduler returns the queue deferred work runs on.
func (f *Form) Scheduler() control.Scheduler { return f.scheduler }

// Group returns the root group.
func (f *Form) Group() *control.FormGroup { return f.group }

// Controls returns the root group's children by name.
func (f *Form) Controls() map[string]control.AbstractControl {
	out := make(map[string]control.AbstractControl)
	for _, name := range f.group.Names() {
		if c, ok := f.group.Control(name); ok {
			out[name] = c
		}
	}
	return out
}

// Value returns the root group's value.
func (f *Form) Value() map[string]any {
	if v, ok := f.group.Value().(map[string]any); ok {
		return v
	}
	return nil
}

// Submitted reports whether Submit ran since the last Reset.
func (f *Form) Submitted() bool { return f.submitted }

// Directives returns the registered Models.
func (f *Form) Directives() []*Model {
	return append([]*Model(nil), f.directives...)
}

// OnSubmit subscribes to submissions.
func (f *Form) OnSubmit(fn func(value map[string]any)) {
	if fn != nil {
		f.onSubmit = append(f.onSubmit, fn)
	}
}

// OnReset subscribes to resets.
func (f *Form) OnReset(fn func()) {
	if fn != nil {
		f.onReset = append(f.onReset, fn)
	}
}

// AddControl claims dir's path and schedules its registration. A path
// claimed by another Model is rejected.
func (f *Form) AddControl(dir *Model) error {
	key := pathKey(dir.Path())
	if owner, ok := f.claimed[key]; ok && owner != dir {
		return control.NewPathError(dir.Path(), ErrDuplicateControl)
	}
	f.claimed[key] = dir

	f.scheduler.Schedule(func() {
		if f.claimed[key] != dir {
			return
		}
		path := dir.Path()
		container := f.findContainer(path[:len(path)-1])
		if container == nil {
			f.onError(control.NewPathError(path, ErrNoContainer))
			return
		}
		if existing, ok := container.Control(dir.Name()); ok && existing != control.AbstractControl(dir.Control()) {
			f.onError(control.NewPathError(path, ErrDuplicateControl))
			return
		}
		container.RegisterControl(dir.Name(), dir.Control())
		if err := f.pipeline.SetUpControl(dir.Control(), dir); err != nil {
			f.onError(err)
			return
		}
		dir.Control().UpdateValueAndValidity(control.Silent())
		f.directives = append(f.directives, dir)
		f.logger.Debug("control registered", "path", path)
	})
	return nil
}

// RemoveControl releases dir's path and schedules its removal and teardown.
func (f *Form) RemoveControl(dir *Model) {
	key := pathKey(dir.Path())
	if f.claimed[key] == dir {
		delete(f.claimed, key)
	}
	f.scheduler.Schedule(func() {
		if !f.removeDirective(dir) {
			return
		}
		path := dir.Path()
		if container := f.findContainer(path[:len(path)-1]); container != nil {
			if existing, ok := container.Control(dir.Name()); ok && existing == control.AbstractControl(dir.Control()) {
				container.RemoveControl(dir.Name())
			}
		}
		f.pipeline.CleanUpControl(dir.Control(), dir)
		f.logger.Debug("control removed", "path", path)
	})
}

// AddModelGroup schedules creation of the group for dir.
func (f *Form) AddModelGroup(dir *ModelGroup) {
	f.scheduler.Schedule(func() {
		path := dir.Path()
		container := f.findContainer(path[:len(path)-1])
		if container == nil {
			f.onError(control.NewPathError(path, ErrNoContainer))
			return
		}
		group := control.NewFormGroup(control.WithGroupScheduler(f.scheduler))
		if err := f.pipeline.SetUpFormContainer(group, dir); err != nil {
			f.onError(err)
			return
		}
		container.RegisterControl(dir.Name(), group)
		group.UpdateValueAndValidity(control.Silent())
	})
}

// RemoveModelGroup schedules removal of dir's group.
func (f *Form) RemoveModelGroup(dir *ModelGroup) {
	f.scheduler.Schedule(func() {
		path := dir.Path()
		if container := f.findContainer(path[:len(path)-1]); container != nil {
			container.RemoveControl(dir.Name())
		}
	})
}

// GetControl returns the registered control for dir.
func (f *Form) GetControl(dir *Model) *control.FormControl {
	c, _ := f.group.Get(dir.Path()...).(*control.FormControl)
	return c
}

// GetModelGroup returns the registered group for dir.
func (f *Form) GetModelGroup(dir *ModelGroup) *control.FormGroup {
	g, _ := f.group.Get(dir.Path()...).(*control.FormGroup)
	return g
}

// UpdateModel schedules an assignment of value to dir's control.
func (f *Form) UpdateModel(dir *Model, value any) {
	f.scheduler.Schedule(func() {
		if c := f.GetControl(dir); c != nil {
			c.SetValue(value)
		}
	})
}

// PatchValue assigns values to the root group.
func (f *Form) PatchValue(values map[string]any) {
	f.group.PatchValue(values)
}

// Submit commits pending submit-policy edits, marks the form submitted and
// notifies subscribers with the form value.
func (f *Form) Submit() {
	f.submitted = true
	dirs := make([]binding.ControlDirective, len(f.directives))
	for i, dir := range f.directives {
		dirs[i] = dir
	}
	f.pipeline.SyncPendingControls(f.group, dirs)
	value := f.Value()
	for _, fn := range f.onSubmit {
		fn(value)
	}
	f.logger.Debug("form submitted", "valid", f.group.Valid())
}

// Reset resets the root group to values and clears the submitted flag.
func (f *Form) Reset(values map[string]any) {
	f.group.Reset(values)
	f.submitted = false
	for _, fn := range f.onReset {
		fn()
	}
}

func (f *Form) findContainer(path []string) *control.FormGroup {
	if len(path) == 0 {
		return f.group
	}
	g, _ := f.group.Get(path...).(*control.FormGroup)
	return g
}

func (f *Form) removeDirective(dir *Model) bool {
	for i, existing := range f.directives {
		if existing == dir {
			f.directives = append(f.directives[:i], f.directives[i+1:]...)
			return true
		}
	}
	return false
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}
