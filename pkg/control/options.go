package control

// UpdateOption tweaks how a value or state change propagates.
type UpdateOption func(*updateOptions)

type updateOptions struct {
	onlySelf      bool
	silent        bool
	noModelToView bool
	noViewToModel bool
}

// OnlySelf stops the change from propagating to the parent group.
func OnlySelf() UpdateOption {
	return func(o *updateOptions) { o.onlySelf = true }
}

// Silent suppresses value and status change events.
func Silent() UpdateOption {
	return func(o *updateOptions) { o.silent = true }
}

// WithoutModelToView skips the registered change listeners, so the value is
// not written back into the view.
func WithoutModelToView() UpdateOption {
	return func(o *updateOptions) { o.noModelToView = true }
}

// WithoutViewToModel tells change listeners not to publish the change to the
// outside consumer.
func WithoutViewToModel() UpdateOption {
	return func(o *updateOptions) { o.noViewToModel = true }
}

func collectOptions(opts []UpdateOption) updateOptions {
	var o updateOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// ControlOption configures a FormControl at construction.
type ControlOption func(*FormControl)

// WithValidator installs the control's synchronous validator.
func WithValidator(fn ValidatorFunc) ControlOption {
	return func(c *FormControl) { c.validator = fn }
}

// WithAsyncValidator installs the control's asynchronous validator.
func WithAsyncValidator(fn AsyncValidatorFunc) ControlOption {
	return func(c *FormControl) { c.asyncValidator = fn }
}

// WithUpdateOn sets the control's own update policy.
func WithUpdateOn(policy UpdateOn) ControlOption {
	return func(c *FormControl) { c.updateOn = policy }
}

// WithScheduler routes asynchronous validation results through scheduler.
// Without one, async validators run inline.
func WithScheduler(scheduler Scheduler) ControlOption {
	return func(c *FormControl) { c.scheduler = scheduler }
}

// WithDisabled creates the control in the disabled state.
func WithDisabled(disabled bool) ControlOption {
	return func(c *FormControl) {
		if disabled {
			c.status = StatusDisabled
		}
	}
}
