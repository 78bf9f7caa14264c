package control

// FormControl tracks the value and state of a single input. View edits are
// staged as pending state first; the binding pipeline decides when they are
// committed according to UpdateOn.
type FormControl struct {
	controlBase

	pendingValue  any
	pendingChange bool

	changeListeners []ChangeFunc
}

var _ AbstractControl = (*FormControl)(nil)

// NewFormControl creates a control holding value. Validity is computed
// silently before the control is returned.
func NewFormControl(value any, opts ...ControlOption) *FormControl {
	c := &FormControl{}
	c.self = c
	c.status = StatusValid
	c.value = value
	c.pendingValue = value

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.updateValueAndValidity(updateOptions{onlySelf: true, silent: true})
	return c
}

// SetValue assigns value. Unless WithoutModelToView is given, registered
// change listeners are told about the new value; WithoutViewToModel marks
// the notification as one that must not be published outward.
func (c *FormControl) SetValue(value any, opts ...UpdateOption) {
	o := collectOptions(opts)
	c.value = value
	c.pendingValue = value

	if len(c.changeListeners) > 0 && !o.noModelToView {
		for _, fn := range append([]ChangeFunc(nil), c.changeListeners...) {
			fn(c.value, !o.noViewToModel)
		}
	}

	c.updateValueAndValidity(o)
}

// PatchValue is SetValue for a single control.
func (c *FormControl) PatchValue(value any, opts ...UpdateOption) {
	c.SetValue(value, opts...)
}

// Reset marks the control pristine and untouched, assigns value and drops
// any pending view edit.
func (c *FormControl) Reset(value any, opts ...UpdateOption) {
	c.MarkAsPristine(opts...)
	c.MarkAsUntouched(opts...)
	c.SetValue(value, opts...)
	c.pendingChange = false
}

// RegisterOnChange appends a model-to-view listener. Unlike accessor
// callbacks, control listeners accumulate.
func (c *FormControl) RegisterOnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	c.changeListeners = append(c.changeListeners, fn)
}

// ClearChangeFns drops every change and disabled-state listener.
func (c *FormControl) ClearChangeFns() {
	c.changeListeners = nil
	c.disabledListeners = nil
}

// StageViewValue records a view edit that has not been committed yet.
func (c *FormControl) StageViewValue(value any) {
	c.pendingValue = value
	c.pendingChange = true
	c.pendingDirty = true
}

// MarkPendingTouched records a blur that has not been committed yet.
func (c *FormControl) MarkPendingTouched() { c.pendingTouched = true }

// PendingValue returns the last staged view value.
func (c *FormControl) PendingValue() any { return c.pendingValue }

// HasPendingChange reports whether a staged view edit awaits commit.
func (c *FormControl) HasPendingChange() bool { return c.pendingChange }

// PendingDirty reports whether a view edit has been staged since the control
// was last marked pristine.
func (c *FormControl) PendingDirty() bool { return c.pendingDirty }

// PendingTouched reports whether a blur has been staged since the control was
// last marked untouched.
func (c *FormControl) PendingTouched() bool { return c.pendingTouched }

// ClearPendingChange marks the staged edit as committed.
func (c *FormControl) ClearPendingChange() { c.pendingChange = false }

// SyncPendingControls commits staged state for submit-policy controls and
// reports whether a value was committed.
func (c *FormControl) SyncPendingControls() bool {
	return c.syncPendingControls()
}

func (c *FormControl) syncPendingControls() bool {
	if c.UpdateOn() != UpdateOnSubmit {
		return false
	}
	if c.pendingDirty {
		c.MarkAsDirty()
	}
	if c.pendingTouched {
		c.MarkAsTouched()
	}
	if c.pendingChange {
		c.SetValue(c.pendingValue, OnlySelf(), WithoutModelToView())
		return true
	}
	return false
}

func (c *FormControl) updateValue() {}

func (c *FormControl) forEachChild(func(string, AbstractControl)) {}

func (c *FormControl) allChildrenDisabled() bool { return c.status == StatusDisabled }

func (c *FormControl) anyChildHasStatus(Status) bool { return false }

func (c *FormControl) anyChildDirty() bool { return false }

func (c *FormControl) anyChildTouched() bool { return false }
