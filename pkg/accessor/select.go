package accessor

import (
	"github.com/goliatone/go-formbind/pkg/control"
)

// SelectAccessor binds a control to a single-choice select. Options are
// registered with ids; the view works with ids, the control with values.
type SelectAccessor struct {
	callbacks
	renderer Renderer
	element  *Element
	options  optionSet
	value    any
}

// NewSelectAccessor binds a select accessor to el. A nil compare falls back
// to control.LooseIdentical.
func NewSelectAccessor(renderer Renderer, el *Element, compare CompareFunc) *SelectAccessor {
	if compare == nil {
		compare = control.LooseIdentical
	}
	return &SelectAccessor{renderer: renderer, element: el, options: optionSet{compare: compare}}
}

// Element returns the bound element.
func (a *SelectAccessor) Element() *Element { return a.element }

// AddOption registers an option and returns its view id.
func (a *SelectAccessor) AddOption(value any, label string) string {
	return a.options.register(value, label)
}

// Labels returns option labels in registration order.
func (a *SelectAccessor) Labels() []string { return a.options.labels() }

// OptionIDs returns option ids in registration order.
func (a *SelectAccessor) OptionIDs() []string { return a.options.ids() }

// SelectedID returns the id matching the last written value.
func (a *SelectAccessor) SelectedID() (string, bool) { return a.options.idFor(a.value) }

// WriteValue selects the option matching value, or clears the selection.
func (a *SelectAccessor) WriteValue(value any) {
	a.value = value
	id, ok := a.options.idFor(value)
	if !ok {
		a.renderer.SetProperty(a.element, PropertySelectedIndex, -1)
		return
	}
	a.renderer.SetProperty(a.element, PropertyValue, id)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *SelectAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleChange forwards the value of the option with id.
func (a *SelectAccessor) HandleChange(id string) {
	a.value = a.options.valueFor(id)
	a.change(a.value)
}

// SelectMultipleAccessor binds a control holding a []any to a multi-select.
type SelectMultipleAccessor struct {
	callbacks
	renderer Renderer
	element  *Element
	options  optionSet
	value    []any
}

// NewSelectMultipleAccessor binds a multi-select accessor to el.
func NewSelectMultipleAccessor(renderer Renderer, el *Element, compare CompareFunc) *SelectMultipleAccessor {
	if compare == nil {
		compare = control.LooseIdentical
	}
	return &SelectMultipleAccessor{renderer: renderer, element: el, options: optionSet{compare: compare}}
}

// Element returns the bound element.
func (a *SelectMultipleAccessor) Element() *Element { return a.element }

// AddOption registers an option and returns its view id.
func (a *SelectMultipleAccessor) AddOption(value any, label string) string {
	return a.options.register(value, label)
}

// Labels returns option labels in registration order.
func (a *SelectMultipleAccessor) Labels() []string { return a.options.labels() }

// OptionIDs returns option ids in registration order.
func (a *SelectMultipleAccessor) OptionIDs() []string { return a.options.ids() }

// SelectedIDs returns the ids matching the last written values.
func (a *SelectMultipleAccessor) SelectedIDs() []string {
	var ids []string
	for _, v := range a.value {
		if id, ok := a.options.idFor(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// WriteValue selects every option whose value appears in value. Non-slice
// values clear the selection.
func (a *SelectMultipleAccessor) WriteValue(value any) {
	a.value = toSlice(value)
	a.renderer.SetProperty(a.element, PropertySelected, a.SelectedIDs())
}

// SetDisabledState reflects the disabled flag in the view.
func (a *SelectMultipleAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleChange forwards the values of the selected option ids.
func (a *SelectMultipleAccessor) HandleChange(ids []string) {
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, a.options.valueFor(id))
	}
	a.value = values
	a.change(values)
}

func toSlice(value any) []any {
	switch typed := value.(type) {
	case []any:
		return append([]any(nil), typed...)
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out
	default:
		return nil
	}
}
