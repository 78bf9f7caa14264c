package binding

import (
	"log/slog"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// DetachedHandler is called when an accessor fires into a torn-down
// binding. err is a *control.PathError wrapping ErrDetachedControl.
type DetachedHandler func(err error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver receives every pipeline event.
func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		if observer != nil {
			p.observer = observer
		}
	}
}

// WithDetachedHandler replaces the default handler, which panics.
func WithDetachedHandler(handler DetachedHandler) Option {
	return func(p *Pipeline) {
		if handler != nil {
			p.detached = handler
		}
	}
}

// Pipeline sets up and tears down control bindings. It holds no per-binding
// state; one Pipeline can serve any number of controls.
type Pipeline struct {
	logger   *slog.Logger
	observer Observer
	detached DetachedHandler
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
		detached: func(err error) { panic(err) },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// SetUpControl binds c to the accessor of dir. Nothing is wired when an
// error is returned.
func (p *Pipeline) SetUpControl(c *control.FormControl, dir Directive) error {
	if c == nil {
		p.emit(EventSetUpFailed, dir.Path(), "")
		return control.NewPathError(dir.Path(), ErrNoControl)
	}
	acc := dir.ValueAccessor()
	if acc == nil {
		p.emit(EventSetUpFailed, dir.Path(), c.UpdateOn())
		return control.NewPathError(dir.Path(), ErrNoValueAccessor)
	}

	c.SetValidator(validation.Compose(c.Validator(), ComposeValidators(dir.Validators())))
	c.SetAsyncValidator(validation.ComposeAsync(c.AsyncValidator(), ComposeAsyncValidators(dir.AsyncValidators())))

	if binder, ok := acc.(accessor.ControlBinder); ok {
		binder.BindControl(c)
	}
	acc.WriteValue(c.Value())

	p.setUpViewChangePipeline(c, dir, acc)
	p.setUpModelChangePipeline(c, dir, acc)
	p.setUpBlurPipeline(c, dir, acc)

	if setter, ok := acc.(accessor.DisabledStateSetter); ok {
		c.RegisterOnDisabledChange(setter.SetDisabledState)
	}

	revalidate := func() { c.UpdateValueAndValidity() }
	for _, v := range dir.Validators() {
		if n, ok := v.(control.ValidatorChangeNotifier); ok {
			n.RegisterOnValidatorChange(revalidate)
		}
	}
	for _, v := range dir.AsyncValidators() {
		if n, ok := v.(control.ValidatorChangeNotifier); ok {
			n.RegisterOnValidatorChange(revalidate)
		}
	}

	p.logger.Debug("control set up",
		"path", dir.Path(),
		"update_on", c.UpdateOn(),
		"accessor", accessor.Classify(acc).String(),
	)
	p.emit(EventSetUp, dir.Path(), c.UpdateOn())
	return nil
}

func (p *Pipeline) setUpViewChangePipeline(c *control.FormControl, dir Directive, acc accessor.ValueAccessor) {
	acc.RegisterOnChange(func(value any) {
		c.StageViewValue(value)
		p.emit(EventViewChange, dir.Path(), c.UpdateOn())
		if c.UpdateOn() == control.UpdateOnChange {
			p.updateControl(c, dir)
		}
	})
}

func (p *Pipeline) setUpBlurPipeline(c *control.FormControl, dir Directive, acc accessor.ValueAccessor) {
	acc.RegisterOnTouched(func() {
		c.MarkPendingTouched()
		policy := c.UpdateOn()
		if policy == control.UpdateOnBlur && c.HasPendingChange() {
			p.updateControl(c, dir)
		}
		if policy != control.UpdateOnSubmit {
			c.MarkAsTouched()
			p.emit(EventTouched, dir.Path(), policy)
		}
	})
}

func (p *Pipeline) setUpModelChangePipeline(c *control.FormControl, dir Directive, acc accessor.ValueAccessor) {
	c.RegisterOnChange(func(value any, emitModelEvent bool) {
		acc.WriteValue(value)
		p.emit(EventModelToView, dir.Path(), c.UpdateOn())
		if emitModelEvent {
			dir.ViewToModelUpdate(value)
		}
	})
}

// updateControl commits the pending view value without writing it back into
// the accessor it came from.
func (p *Pipeline) updateControl(c *control.FormControl, dir Directive) {
	if c.PendingDirty() {
		c.MarkAsDirty()
	}
	value := c.PendingValue()
	c.SetValue(value, control.WithoutModelToView())
	dir.ViewToModelUpdate(value)
	c.ClearPendingChange()
	p.emit(EventCommit, dir.Path(), c.UpdateOn())
}

// CleanUpControl detaches dir from c. Accessor callbacks are replaced by
// stubs that report ErrDetachedControl, validator change callbacks are
// unregistered and the control's listeners are cleared.
func (p *Pipeline) CleanUpControl(c *control.FormControl, dir Directive) {
	if acc := dir.ValueAccessor(); acc != nil {
		detached := func() {
			p.emit(EventDetached, dir.Path(), "")
			p.logger.Warn("accessor fired into detached control", "path", dir.Path())
			p.detached(control.NewPathError(dir.Path(), ErrDetachedControl))
		}
		acc.RegisterOnChange(func(any) { detached() })
		acc.RegisterOnTouched(detached)
	}

	for _, v := range dir.Validators() {
		if n, ok := v.(control.ValidatorChangeNotifier); ok {
			n.RegisterOnValidatorChange(nil)
		}
	}
	for _, v := range dir.AsyncValidators() {
		if n, ok := v.(control.ValidatorChangeNotifier); ok {
			n.RegisterOnValidatorChange(nil)
		}
	}

	var policy control.UpdateOn
	if c != nil {
		c.ClearChangeFns()
		policy = c.UpdateOn()
	}
	p.logger.Debug("control cleaned up", "path", dir.Path())
	p.emit(EventCleanUp, dir.Path(), policy)
}

// SyncPendingControls lets form commit its own submit-policy children, then
// publishes the pending value of every submit-policy directive exactly once.
func (p *Pipeline) SyncPendingControls(form *control.FormGroup, dirs []ControlDirective) {
	if form != nil {
		form.SyncPendingControls()
	}
	for _, dir := range dirs {
		c := dir.Control()
		if c == nil {
			continue
		}
		if c.UpdateOn() == control.UpdateOnSubmit && c.HasPendingChange() {
			dir.ViewToModelUpdate(c.PendingValue())
			c.ClearPendingChange()
			p.emit(EventSyncPending, dir.Path(), control.UpdateOnSubmit)
		}
	}
}

// SetUpFormContainer merges the container directive's validators into
// group.
func (p *Pipeline) SetUpFormContainer(group *control.FormGroup, dir ContainerDirective) error {
	if group == nil {
		return control.NewPathError(dir.Path(), ErrNoControl)
	}
	group.SetValidator(validation.Compose(group.Validator(), ComposeValidators(dir.Validators())))
	group.SetAsyncValidator(validation.ComposeAsync(group.AsyncValidator(), ComposeAsyncValidators(dir.AsyncValidators())))
	p.logger.Debug("form container set up", "path", dir.Path())
	return nil
}

func (p *Pipeline) emit(kind EventKind, path []string, policy control.UpdateOn) {
	p.observer.Observe(Event{Kind: kind, Path: path, Policy: policy})
}

// ComposeValidators folds raw validators into one, or nil when there are
// none.
func ComposeValidators(validators []control.Validator) control.ValidatorFunc {
	if validators == nil {
		return nil
	}
	return validation.Compose(validators...)
}

// ComposeAsyncValidators folds raw async validators into one, or nil when
// there are none.
func ComposeAsyncValidators(validators []control.AsyncValidator) control.AsyncValidatorFunc {
	if validators == nil {
		return nil
	}
	return validation.ComposeAsync(validators...)
}

var defaultPipeline = New()

// SetUpControl binds c to dir using the default pipeline.
func SetUpControl(c *control.FormControl, dir Directive) error {
	return defaultPipeline.SetUpControl(c, dir)
}

// CleanUpControl detaches dir from c using the default pipeline.
func CleanUpControl(c *control.FormControl, dir Directive) {
	defaultPipeline.CleanUpControl(c, dir)
}

// SyncPendingControls commits submit-policy edits using the default
// pipeline.
func SyncPendingControls(form *control.FormGroup, dirs []ControlDirective) {
	defaultPipeline.SyncPendingControls(form, dirs)
}

// SetUpFormContainer merges container validators using the default pipeline.
func SetUpFormContainer(group *control.FormGroup, dir ContainerDirective) error {
	return defaultPipeline.SetUpFormContainer(group, dir)
}
