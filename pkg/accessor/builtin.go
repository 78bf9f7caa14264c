package accessor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BuiltinKind names a member of the closed built-in accessor set.
type BuiltinKind string

const (
	BuiltinCheckbox       BuiltinKind = "checkbox"
	BuiltinRange          BuiltinKind = "range"
	BuiltinNumber         BuiltinKind = "number"
	BuiltinSelect         BuiltinKind = "select"
	BuiltinSelectMultiple BuiltinKind = "select-multiple"
	BuiltinRadio          BuiltinKind = "radio"
)

// CheckboxAccessor binds a boolean control to a checkbox.
type CheckboxAccessor struct {
	callbacks
	renderer Renderer
	element  *Element
}

// NewCheckboxAccessor binds a checkbox accessor to el.
func NewCheckboxAccessor(renderer Renderer, el *Element) *CheckboxAccessor {
	return &CheckboxAccessor{renderer: renderer, element: el}
}

// Element returns the bound element.
func (a *CheckboxAccessor) Element() *Element { return a.element }

// WriteValue checks the box for true and unchecks it otherwise.
func (a *CheckboxAccessor) WriteValue(value any) {
	checked, _ := value.(bool)
	a.renderer.SetProperty(a.element, PropertyChecked, checked)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *CheckboxAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleChange forwards the new checked state.
func (a *CheckboxAccessor) HandleChange(checked bool) { a.change(checked) }

// numeric backs the number and range accessors: view text is parsed as a
// float, empty text becomes nil and unparsable text NaN.
type numeric struct {
	callbacks
	renderer Renderer
	element  *Element
}

// Element returns the bound element.
func (a *numeric) Element() *Element { return a.element }

// WriteValue writes the number, or the empty string for nil.
func (a *numeric) WriteValue(value any) {
	if value == nil {
		value = ""
	}
	a.renderer.SetProperty(a.element, PropertyValue, value)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *numeric) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleInput parses raw and forwards the number.
func (a *numeric) HandleInput(raw string) {
	a.change(parseNumber(raw))
}

func parseNumber(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

// NumberAccessor binds a numeric control to a number input.
type NumberAccessor struct{ numeric }

// NewNumberAccessor binds a number accessor to el.
func NewNumberAccessor(renderer Renderer, el *Element) *NumberAccessor {
	return &NumberAccessor{numeric{renderer: renderer, element: el}}
}

// RangeAccessor binds a numeric control to a range slider.
type RangeAccessor struct{ numeric }

// NewRangeAccessor binds a range accessor to el.
func NewRangeAccessor(renderer Renderer, el *Element) *RangeAccessor {
	return &RangeAccessor{numeric{renderer: renderer, element: el}}
}

// CompareFunc decides whether an option value matches the model value.
type CompareFunc func(a, b any) bool

type option struct {
	id    string
	value any
	label string
}

// optionSet maps option ids to values in registration order.
type optionSet struct {
	options []option
	nextID  int
	compare CompareFunc
}

func (s *optionSet) register(value any, label string) string {
	id := strconv.Itoa(s.nextID)
	s.nextID++
	if label == "" {
		label = fmt.Sprint(value)
	}
	s.options = append(s.options, option{id: id, value: value, label: label})
	return id
}

func (s *optionSet) idFor(value any) (string, bool) {
	for _, opt := range s.options {
		if s.compare(opt.value, value) {
			return opt.id, true
		}
	}
	return "", false
}

func (s *optionSet) valueFor(id string) any {
	for _, opt := range s.options {
		if opt.id == id {
			return opt.value
		}
	}
	return id
}

func (s *optionSet) labels() []string {
	out := make([]string, len(s.options))
	for i, opt := range s.options {
		out[i] = opt.label
	}
	return out
}

func (s *optionSet) ids() []string {
	out := make([]string, len(s.options))
	for i, opt := range s.options {
		out[i] = opt.id
	}
	return out
}
