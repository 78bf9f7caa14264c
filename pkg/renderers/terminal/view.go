package terminal

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formbind/pkg/accessor"
)

// View keeps the state of every element as the accessors left it. It plays
// the role a document plays for a browser: accessors write to it and the
// widgets read their current text back from it.
type View struct {
	mu    sync.RWMutex
	props map[string]map[string]any
	dirty bool
}

var _ accessor.Renderer = (*View)(nil)

// NewView returns an empty view.
func NewView() *View {
	return &View{props: map[string]map[string]any{}}
}

// SetProperty implements accessor.Renderer.
func (v *View) SetProperty(el *accessor.Element, name string, value any) {
	if el == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.props[el.ID] == nil {
		v.props[el.ID] = map[string]any{}
	}
	v.props[el.ID][name] = value
	v.dirty = true
}

// Property returns the last value written for name on el.
func (v *View) Property(el *accessor.Element, name string) (any, bool) {
	if el == nil {
		return nil, false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.props[el.ID][name]
	return value, ok
}

// Text returns the value property of el as a string.
func (v *View) Text(el *accessor.Element) string {
	value, _ := v.Property(el, accessor.PropertyValue)
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

// Checked reports the checked property of el.
func (v *View) Checked(el *accessor.Element) bool {
	value, _ := v.Property(el, accessor.PropertyChecked)
	checked, _ := value.(bool)
	return checked
}

// Disabled reports the disabled property of el.
func (v *View) Disabled(el *accessor.Element) bool {
	value, _ := v.Property(el, accessor.PropertyDisabled)
	disabled, _ := value.(bool)
	return disabled
}

// Dirty reports whether anything was written since the last call and
// clears the flag.
func (v *View) Dirty() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	dirty := v.dirty
	v.dirty = false
	return dirty
}
