package control

import "strings"

// FormGroup aggregates named child controls. Its value is a map of the
// enabled children's values (all children when the group itself is
// disabled) and its status derives from its own validator and its children.
type FormGroup struct {
	controlBase

	controls map[string]AbstractControl
	order    []string
}

var _ AbstractControl = (*FormGroup)(nil)

// GroupOption configures a FormGroup at construction.
type GroupOption func(*FormGroup)

// WithGroupValidator installs the group's synchronous validator.
func WithGroupValidator(fn ValidatorFunc) GroupOption {
	return func(g *FormGroup) { g.validator = fn }
}

// WithGroupAsyncValidator installs the group's asynchronous validator.
func WithGroupAsyncValidator(fn AsyncValidatorFunc) GroupOption {
	return func(g *FormGroup) { g.asyncValidator = fn }
}

// WithGroupUpdateOn sets the policy inherited by children without their own.
func WithGroupUpdateOn(policy UpdateOn) GroupOption {
	return func(g *FormGroup) { g.updateOn = policy }
}

// WithGroupScheduler routes asynchronous validation results through
// scheduler.
func WithGroupScheduler(scheduler Scheduler) GroupOption {
	return func(g *FormGroup) { g.scheduler = scheduler }
}

// NewFormGroup creates an empty group.
func NewFormGroup(opts ...GroupOption) *FormGroup {
	g := &FormGroup{controls: make(map[string]AbstractControl)}
	g.self = g
	g.status = StatusValid
	g.value = map[string]any{}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	g.updateValueAndValidity(updateOptions{onlySelf: true, silent: true})
	return g
}

// RegisterControl attaches child under name without recomputing validity.
// When name is already taken the existing control is returned unchanged.
func (g *FormGroup) RegisterControl(name string, child AbstractControl) AbstractControl {
	if existing, ok := g.controls[name]; ok {
		return existing
	}
	if child == nil {
		return nil
	}
	g.controls[name] = child
	g.order = append(g.order, name)
	child.core().parent = g
	return child
}

// AddControl registers child and recomputes the group's value and validity.
func (g *FormGroup) AddControl(name string, child AbstractControl, opts ...UpdateOption) {
	g.RegisterControl(name, child)
	g.updateValueAndValidity(collectOptions(opts))
}

// SetControl replaces (or adds) the child under name.
func (g *FormGroup) SetControl(name string, child AbstractControl, opts ...UpdateOption) {
	g.detach(name)
	if child != nil {
		g.RegisterControl(name, child)
	}
	g.updateValueAndValidity(collectOptions(opts))
}

// RemoveControl detaches the child under name, if any.
func (g *FormGroup) RemoveControl(name string, opts ...UpdateOption) {
	g.detach(name)
	g.updateValueAndValidity(collectOptions(opts))
}

func (g *FormGroup) detach(name string) {
	child, ok := g.controls[name]
	if !ok {
		return
	}
	if fc, ok := child.(*FormControl); ok {
		fc.ClearChangeFns()
	}
	child.core().parent = nil
	delete(g.controls, name)
	for i, existing := range g.order {
		if existing == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether an enabled child is registered under name.
func (g *FormGroup) Contains(name string) bool {
	child, ok := g.controls[name]
	return ok && child.Enabled()
}

// Control returns the direct child registered under name.
func (g *FormGroup) Control(name string) (AbstractControl, bool) {
	child, ok := g.controls[name]
	return child, ok
}

// Names returns child names in registration order.
func (g *FormGroup) Names() []string {
	return append([]string(nil), g.order...)
}

// Get walks path through nested groups. A single dotted segment is split.
func (g *FormGroup) Get(path ...string) AbstractControl {
	if len(path) == 1 && strings.Contains(path[0], ".") {
		path = strings.Split(path[0], ".")
	}
	if len(path) == 0 {
		return nil
	}
	var current AbstractControl = g
	for _, segment := range path {
		group, ok := current.(*FormGroup)
		if !ok {
			return nil
		}
		child, ok := group.controls[segment]
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// RawValue returns every child's value, including disabled children.
func (g *FormGroup) RawValue() map[string]any {
	out := make(map[string]any, len(g.order))
	for _, name := range g.order {
		child := g.controls[name]
		if group, ok := child.(*FormGroup); ok {
			out[name] = group.RawValue()
			continue
		}
		out[name] = child.Value()
	}
	return out
}

// PatchValue assigns the values present in values to matching children and
// leaves the others untouched.
func (g *FormGroup) PatchValue(values map[string]any, opts ...UpdateOption) {
	o := collectOptions(opts)
	childOpts := append(append([]UpdateOption(nil), opts...), OnlySelf())
	for _, name := range g.order {
		value, ok := values[name]
		if !ok {
			continue
		}
		switch child := g.controls[name].(type) {
		case *FormControl:
			child.SetValue(value, childOpts...)
		case *FormGroup:
			if nested, ok := value.(map[string]any); ok {
				child.PatchValue(nested, childOpts...)
			}
		}
	}
	g.updateValueAndValidity(o)
}

// Reset resets every child, assigning the matching entry of values (nil when
// absent), and marks the group pristine and untouched.
func (g *FormGroup) Reset(values map[string]any, opts ...UpdateOption) {
	childOpts := append(append([]UpdateOption(nil), opts...), OnlySelf())
	for _, name := range g.order {
		switch child := g.controls[name].(type) {
		case *FormControl:
			child.Reset(values[name], childOpts...)
		case *FormGroup:
			nested, _ := values[name].(map[string]any)
			child.Reset(nested, childOpts...)
		}
	}
	g.updateValueAndValidity(collectOptions(opts))
	g.updatePristine(collectOptions(opts))
	g.updateTouched(collectOptions(opts))
}

// SyncPendingControls commits staged view edits of submit-policy
// descendants and reports whether any value changed.
func (g *FormGroup) SyncPendingControls() bool {
	return g.syncPendingControls()
}

func (g *FormGroup) syncPendingControls() bool {
	updated := false
	g.forEachChild(func(_ string, child AbstractControl) {
		if child.syncPendingControls() {
			updated = true
		}
	})
	if updated {
		g.updateValueAndValidity(updateOptions{onlySelf: true})
	}
	return updated
}

func (g *FormGroup) updateValue() {
	value := make(map[string]any, len(g.order))
	groupDisabled := g.status == StatusDisabled
	for _, name := range g.order {
		child := g.controls[name]
		if child.Enabled() || groupDisabled {
			value[name] = child.Value()
		}
	}
	g.value = value
}

func (g *FormGroup) forEachChild(fn func(string, AbstractControl)) {
	for _, name := range append([]string(nil), g.order...) {
		if child, ok := g.controls[name]; ok {
			fn(name, child)
		}
	}
}

func (g *FormGroup) allChildrenDisabled() bool {
	if len(g.order) == 0 {
		return g.status == StatusDisabled
	}
	for _, name := range g.order {
		if g.controls[name].Enabled() {
			return false
		}
	}
	return true
}

func (g *FormGroup) anyChildHasStatus(status Status) bool {
	for _, name := range g.order {
		if g.controls[name].Status() == status {
			return true
		}
	}
	return false
}

func (g *FormGroup) anyChildDirty() bool {
	for _, name := range g.order {
		if g.controls[name].Dirty() {
			return true
		}
	}
	return false
}

func (g *FormGroup) anyChildTouched() bool {
	for _, name := range g.order {
		if g.controls[name].Touched() {
			return true
		}
	}
	return false
}
