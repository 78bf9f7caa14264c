package accessor

//go:generate mockgen -source=accessor.go -destination=mocks/mocks.go -package=mocks Renderer,ValueAccessor

import (
	"github.com/google/uuid"
)

// Renderer sets properties on view elements. Implementations are
// synchronous and must not raise view events for writes.
type Renderer interface {
	SetProperty(el *Element, name string, value any)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(el *Element, name string, value any)

// SetProperty implements Renderer.
func (f RendererFunc) SetProperty(el *Element, name string, value any) { f(el, name, value) }

// Element identifies a view element. Name is the bound control name when
// known; ID is unique per element.
type Element struct {
	ID    string
	Name  string
	Kind  string
	Attrs map[string]string
}

// NewElement creates an element with a fresh id.
func NewElement(name, kind string) *Element {
	return &Element{ID: uuid.NewString(), Name: name, Kind: kind, Attrs: map[string]string{}}
}

// ValueAccessor bridges one view element and a control. RegisterOnChange and
// RegisterOnTouched replace the previously registered callback: only one of
// each is held at a time.
type ValueAccessor interface {
	WriteValue(value any)
	RegisterOnChange(fn func(value any))
	RegisterOnTouched(fn func())
}

// DisabledStateSetter is the optional capability to reflect the control's
// disabled state in the view.
type DisabledStateSetter interface {
	SetDisabledState(disabled bool)
}

// callbacks holds the single-slot callbacks every accessor in this package
// shares. Unregistered slots are no-ops so forwarding is swallowed, not lost.
type callbacks struct {
	onChange  func(any)
	onTouched func()
}

func (c *callbacks) RegisterOnChange(fn func(value any)) { c.onChange = fn }

func (c *callbacks) RegisterOnTouched(fn func()) { c.onTouched = fn }

func (c *callbacks) change(value any) {
	if c.onChange != nil {
		c.onChange(value)
	}
}

// HandleBlur forwards a blur to the touched callback.
func (c *callbacks) HandleBlur() {
	if c.onTouched != nil {
		c.onTouched()
	}
}

// Property names written through the Renderer.
const (
	PropertyValue         = "value"
	PropertyChecked       = "checked"
	PropertyDisabled      = "disabled"
	PropertySelectedIndex = "selectedIndex"
	PropertySelected      = "selected"
)
