package accessor

import (
	"sync"

	"github.com/goliatone/go-formbind/pkg/control"
)

// ControlBinder is the optional capability to learn which control an
// accessor was set up against.
type ControlBinder interface {
	BindControl(c control.AbstractControl)
}

// RadioRegistry tracks radio accessors so checking one unchecks its
// siblings: accessors sharing a name whose controls share a parent group.
type RadioRegistry struct {
	mu       sync.Mutex
	accessor []*RadioAccessor
}

// NewRadioRegistry creates an empty registry.
func NewRadioRegistry() *RadioRegistry {
	return &RadioRegistry{}
}

func (r *RadioRegistry) add(a *RadioAccessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accessor = append(r.accessor, a)
}

// Remove drops a from the registry.
func (r *RadioRegistry) Remove(a *RadioAccessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.accessor {
		if existing == a {
			r.accessor = append(r.accessor[:i], r.accessor[i+1:]...)
			return
		}
	}
}

func (r *RadioRegistry) selectAccessor(selected *RadioAccessor) {
	r.mu.Lock()
	siblings := make([]*RadioAccessor, 0, len(r.accessor))
	for _, a := range r.accessor {
		if a != selected && a.name == selected.name && a.group() == selected.group() {
			siblings = append(siblings, a)
		}
	}
	r.mu.Unlock()
	for _, a := range siblings {
		a.fireUncheck(selected.value)
	}
}

// RadioAccessor binds one radio button carrying value to a control. The
// control holds the value of the checked button.
type RadioAccessor struct {
	callbacks
	renderer Renderer
	element  *Element
	registry *RadioRegistry
	ctl      control.AbstractControl
	name     string
	value    any
	checked  bool
}

// NewRadioAccessor binds a radio accessor to el and registers it under name.
func NewRadioAccessor(renderer Renderer, el *Element, registry *RadioRegistry, name string, value any) *RadioAccessor {
	a := &RadioAccessor{renderer: renderer, element: el, registry: registry, name: name, value: value}
	if registry != nil {
		registry.add(a)
	}
	return a
}

// Element returns the bound element.
func (a *RadioAccessor) Element() *Element { return a.element }

// BindControl records the control a was set up against.
func (a *RadioAccessor) BindControl(c control.AbstractControl) {
	a.ctl = c
}

// group identifies the radio group of a: the parent of its control, the
// control itself when it has no parent, or nil before setup.
func (a *RadioAccessor) group() any {
	if a.ctl == nil {
		return nil
	}
	if parent := a.ctl.Parent(); parent != nil {
		return parent
	}
	return a.ctl
}

// Checked reports the last written checked state.
func (a *RadioAccessor) Checked() bool { return a.checked }

// WriteValue checks the button when value matches the button's value.
func (a *RadioAccessor) WriteValue(value any) {
	a.checked = control.LooseIdentical(value, a.value)
	a.renderer.SetProperty(a.element, PropertyChecked, a.checked)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *RadioAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleChange reports that the user checked this button.
func (a *RadioAccessor) HandleChange() {
	a.checked = true
	a.change(a.value)
	if a.registry != nil {
		a.registry.selectAccessor(a)
	}
}

// Close unregisters the accessor.
func (a *RadioAccessor) Close() {
	if a.registry != nil {
		a.registry.Remove(a)
	}
}

func (a *RadioAccessor) fireUncheck(value any) {
	a.WriteValue(value)
}

var _ ControlBinder = (*RadioAccessor)(nil)
