package control

import (
	"context"
	"errors"
	"slices"
)

// AbstractControl is the behaviour shared by FormControl and FormGroup.
type AbstractControl interface {
	Value() any
	Status() Status
	Valid() bool
	Invalid() bool
	Pending() bool
	Enabled() bool
	Disabled() bool
	Errors() ValidationErrors
	Dirty() bool
	Pristine() bool
	Touched() bool
	Untouched() bool
	Parent() *FormGroup
	UpdateOn() UpdateOn
	SetUpdateOn(policy UpdateOn)
	Validator() ValidatorFunc
	SetValidator(fn ValidatorFunc)
	AsyncValidator() AsyncValidatorFunc
	SetAsyncValidator(fn AsyncValidatorFunc)
	SetErrors(errs ValidationErrors, opts ...UpdateOption)
	MarkAsDirty(opts ...UpdateOption)
	MarkAsPristine(opts ...UpdateOption)
	MarkAsTouched(opts ...UpdateOption)
	MarkAsUntouched(opts ...UpdateOption)
	Enable(opts ...UpdateOption)
	Disable(opts ...UpdateOption)
	UpdateValueAndValidity(opts ...UpdateOption)
	RegisterOnDisabledChange(fn func(disabled bool))
	OnValueChange(fn func(value any))
	OnStatusChange(fn func(status Status))

	core() *controlBase
	updateValue()
	forEachChild(fn func(name string, child AbstractControl))
	allChildrenDisabled() bool
	anyChildHasStatus(status Status) bool
	anyChildDirty() bool
	anyChildTouched() bool
	syncPendingControls() bool
}

// controlBase carries the state every control kind shares. self points back
// at the concrete control so shared code can reach kind specific behaviour.
type controlBase struct {
	self AbstractControl

	value    any
	status   Status
	errors   ValidationErrors
	dirty    bool
	touched  bool
	updateOn UpdateOn
	parent   *FormGroup

	pendingDirty   bool
	pendingTouched bool

	validator      ValidatorFunc
	asyncValidator AsyncValidatorFunc
	scheduler      Scheduler
	asyncCancel    context.CancelFunc
	asyncSeq       uint64

	disabledListeners []func(bool)
	valueListeners    []func(any)
	statusListeners   []func(Status)
}

func (b *controlBase) core() *controlBase { return b }

// Value returns the current value.
func (b *controlBase) Value() any { return b.value }

// Status returns the validation status.
func (b *controlBase) Status() Status { return b.status }

func (b *controlBase) Valid() bool     { return b.status == StatusValid }
func (b *controlBase) Invalid() bool   { return b.status == StatusInvalid }
func (b *controlBase) Pending() bool   { return b.status == StatusPending }
func (b *controlBase) Disabled() bool  { return b.status == StatusDisabled }
func (b *controlBase) Enabled() bool   { return b.status != StatusDisabled }
func (b *controlBase) Dirty() bool     { return b.dirty }
func (b *controlBase) Pristine() bool  { return !b.dirty }
func (b *controlBase) Touched() bool   { return b.touched }
func (b *controlBase) Untouched() bool { return !b.touched }

// Errors returns the last validation errors, nil when valid.
func (b *controlBase) Errors() ValidationErrors { return b.errors }

// Parent returns the containing group, if any.
func (b *controlBase) Parent() *FormGroup { return b.parent }

// UpdateOn resolves the effective policy: the control's own, then the
// parent's, then UpdateOnChange.
func (b *controlBase) UpdateOn() UpdateOn {
	if b.updateOn != "" {
		return b.updateOn
	}
	if b.parent != nil {
		return b.parent.UpdateOn()
	}
	return UpdateOnChange
}

// SetUpdateOn overrides the control's own policy. An empty policy restores
// inheritance.
func (b *controlBase) SetUpdateOn(policy UpdateOn) { b.updateOn = policy }

func (b *controlBase) Validator() ValidatorFunc           { return b.validator }
func (b *controlBase) SetValidator(fn ValidatorFunc)      { b.validator = fn }
func (b *controlBase) AsyncValidator() AsyncValidatorFunc { return b.asyncValidator }

func (b *controlBase) SetAsyncValidator(fn AsyncValidatorFunc) { b.asyncValidator = fn }

// RegisterOnDisabledChange appends a listener invoked after Enable/Disable.
func (b *controlBase) RegisterOnDisabledChange(fn func(disabled bool)) {
	if fn == nil {
		return
	}
	b.disabledListeners = append(b.disabledListeners, fn)
}

// OnValueChange subscribes to value change events.
func (b *controlBase) OnValueChange(fn func(value any)) {
	if fn == nil {
		return
	}
	b.valueListeners = append(b.valueListeners, fn)
}

// OnStatusChange subscribes to status change events.
func (b *controlBase) OnStatusChange(fn func(status Status)) {
	if fn == nil {
		return
	}
	b.statusListeners = append(b.statusListeners, fn)
}

// SetErrors replaces the errors without running validators, typically from
// server-side validation.
func (b *controlBase) SetErrors(errs ValidationErrors, opts ...UpdateOption) {
	o := collectOptions(opts)
	b.errors = normalizeErrors(errs)
	b.updateControlsErrors(!o.silent)
}

func (b *controlBase) MarkAsTouched(opts ...UpdateOption) {
	o := collectOptions(opts)
	b.touched = true
	if b.parent != nil && !o.onlySelf {
		b.parent.MarkAsTouched(opts...)
	}
}

func (b *controlBase) MarkAsUntouched(opts ...UpdateOption) {
	o := collectOptions(opts)
	b.touched = false
	b.pendingTouched = false
	b.self.forEachChild(func(_ string, child AbstractControl) {
		child.MarkAsUntouched(OnlySelf())
	})
	if b.parent != nil && !o.onlySelf {
		b.parent.updateTouched(o)
	}
}

func (b *controlBase) MarkAsDirty(opts ...UpdateOption) {
	o := collectOptions(opts)
	b.dirty = true
	if b.parent != nil && !o.onlySelf {
		b.parent.MarkAsDirty(opts...)
	}
}

func (b *controlBase) MarkAsPristine(opts ...UpdateOption) {
	o := collectOptions(opts)
	b.dirty = false
	b.pendingDirty = false
	b.self.forEachChild(func(_ string, child AbstractControl) {
		child.MarkAsPristine(OnlySelf())
	})
	if b.parent != nil && !o.onlySelf {
		b.parent.updatePristine(o)
	}
}

// Disable switches the control (and its children) off. Disabled controls
// are excluded from the parent's value and carry no errors.
func (b *controlBase) Disable(opts ...UpdateOption) {
	o := collectOptions(opts)
	skipPristineCheck := b.parentMarkedDirty(o.onlySelf)

	b.status = StatusDisabled
	b.errors = nil
	b.self.forEachChild(func(_ string, child AbstractControl) {
		child.Disable(childOptions(o)...)
	})
	b.self.updateValue()

	if !o.silent {
		b.emitValue()
		b.emitStatus()
	}
	b.updateAncestors(o, skipPristineCheck)
	b.notifyDisabled(true)
}

// Enable switches the control back on and recomputes its validity.
func (b *controlBase) Enable(opts ...UpdateOption) {
	o := collectOptions(opts)
	skipPristineCheck := b.parentMarkedDirty(o.onlySelf)

	b.status = StatusValid
	b.self.forEachChild(func(_ string, child AbstractControl) {
		child.Enable(childOptions(o)...)
	})
	b.updateValueAndValidity(updateOptions{onlySelf: true, silent: o.silent})

	b.updateAncestors(o, skipPristineCheck)
	b.notifyDisabled(false)
}

// UpdateValueAndValidity recomputes value, errors and status, then bubbles
// up to the parent unless OnlySelf is given.
func (b *controlBase) UpdateValueAndValidity(opts ...UpdateOption) {
	b.updateValueAndValidity(collectOptions(opts))
}

func (b *controlBase) updateValueAndValidity(o updateOptions) {
	b.setInitialStatus()
	b.self.updateValue()

	if b.Enabled() {
		b.cancelAsync()
		b.errors = b.runValidator()
		b.status = b.calculateStatus()
		if b.status == StatusValid || b.status == StatusPending {
			b.runAsyncValidator(o.silent)
		}
	}

	if !o.silent {
		b.emitValue()
		b.emitStatus()
	}

	if b.parent != nil && !o.onlySelf {
		b.parent.updateValueAndValidity(o)
	}
}

func (b *controlBase) setInitialStatus() {
	if b.self.allChildrenDisabled() {
		b.status = StatusDisabled
		return
	}
	b.status = StatusValid
}

func (b *controlBase) runValidator() ValidationErrors {
	if b.validator == nil {
		return nil
	}
	return normalizeErrors(b.validator(b.self))
}

func (b *controlBase) calculateStatus() Status {
	switch {
	case b.self.allChildrenDisabled():
		return StatusDisabled
	case b.errors != nil:
		return StatusInvalid
	case b.self.anyChildHasStatus(StatusPending):
		return StatusPending
	case b.self.anyChildHasStatus(StatusInvalid):
		return StatusInvalid
	default:
		return StatusValid
	}
}

func (b *controlBase) updateControlsErrors(emit bool) {
	b.status = b.calculateStatus()
	if emit {
		b.emitStatus()
	}
	if b.parent != nil {
		b.parent.updateControlsErrors(emit)
	}
}

// runAsyncValidator marks the control pending and runs the async validator
// against a snapshot of the value. With a scheduler the validator runs on its
// own goroutine and the result is applied through the scheduler; a newer run
// cancels and supersedes an older one.
func (b *controlBase) runAsyncValidator(silent bool) {
	if b.asyncValidator == nil {
		return
	}
	b.status = StatusPending

	ctx, cancel := context.WithCancel(context.Background())
	b.asyncCancel = cancel
	b.asyncSeq++
	seq := b.asyncSeq
	validator := b.asyncValidator
	value := b.value

	finish := func(errs ValidationErrors, err error) {
		if seq != b.asyncSeq {
			return
		}
		b.asyncCancel = nil
		cancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			errs = ValidationErrors{"async": err.Error()}
		}
		var opts []UpdateOption
		if silent {
			opts = append(opts, Silent())
		}
		b.SetErrors(errs, opts...)
	}

	if b.scheduler == nil {
		finish(validator(ctx, value))
		return
	}

	scheduler := b.scheduler
	go func() {
		errs, err := validator(ctx, value)
		if ctx.Err() != nil {
			return
		}
		scheduler.Schedule(func() { finish(errs, err) })
	}()
}

func (b *controlBase) cancelAsync() {
	if b.asyncCancel != nil {
		b.asyncCancel()
		b.asyncCancel = nil
	}
}

func (b *controlBase) parentMarkedDirty(onlySelf bool) bool {
	if onlySelf || b.parent == nil {
		return false
	}
	return b.parent.Dirty() && !b.parent.anyChildDirty()
}

func (b *controlBase) updateAncestors(o updateOptions, skipPristineCheck bool) {
	if b.parent == nil || o.onlySelf {
		return
	}
	b.parent.updateValueAndValidity(o)
	if !skipPristineCheck {
		b.parent.updatePristine(updateOptions{})
	}
	b.parent.updateTouched(updateOptions{})
}

func (b *controlBase) updatePristine(o updateOptions) {
	b.dirty = b.self.anyChildDirty()
	if b.parent != nil && !o.onlySelf {
		b.parent.updatePristine(o)
	}
}

func (b *controlBase) updateTouched(o updateOptions) {
	b.touched = b.self.anyChildTouched()
	if b.parent != nil && !o.onlySelf {
		b.parent.updateTouched(o)
	}
}

func (b *controlBase) emitValue() {
	for _, fn := range slices.Clone(b.valueListeners) {
		fn(b.value)
	}
}

func (b *controlBase) emitStatus() {
	for _, fn := range slices.Clone(b.statusListeners) {
		fn(b.status)
	}
}

func (b *controlBase) notifyDisabled(disabled bool) {
	for _, fn := range slices.Clone(b.disabledListeners) {
		fn(disabled)
	}
}

func childOptions(o updateOptions) []UpdateOption {
	opts := []UpdateOption{OnlySelf()}
	if o.silent {
		opts = append(opts, Silent())
	}
	return opts
}

func normalizeErrors(errs ValidationErrors) ValidationErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
