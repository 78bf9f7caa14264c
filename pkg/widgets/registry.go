package widgets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText           = "text"
	WidgetCheckbox       = "checkbox"
	WidgetNumber         = "number"
	WidgetRange          = "range"
	WidgetSelect         = "select"
	WidgetSelectMultiple = "select-multiple"
	WidgetSanitizedText  = "sanitized-text"
)

// ErrUnknownWidget is returned when a resolved widget has no factory.
var ErrUnknownWidget = errors.New("widgets: no accessor factory for widget")

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

// Env carries what a factory needs to build an accessor for one element.
type Env struct {
	Renderer       accessor.Renderer
	Element        *accessor.Element
	Compare        accessor.CompareFunc
	DefaultOptions []accessor.DefaultOption
}

// Factory builds the accessor for a widget.
type Factory func(field model.Field, env Env) (accessor.ValueAccessor, error)

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit metadata or
// registered matchers, and builds their accessors. Higher priority wins; ties
// fall back to registration order. Fields nothing matches use WidgetText.
type Registry struct {
	mu        sync.RWMutex
	rules     []rule
	factories map[string]Factory
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{factories: make(map[string]Factory)}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. The
// latest registration wins during resolution for duplicate names.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// RegisterFactory binds an accessor factory to a widget name, replacing any
// previous binding.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	if r == nil || factory == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[trimmed] = factory
}

// Resolve returns the widget name for a field. Metadata["widget"] is honoured
// before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Accessors returns the candidate accessors for field: the default text
// accessor plus the resolved widget's accessor. The selector later picks
// the most specific one. Checkbox widgets omit the default accessor since a
// boolean field never takes free text.
func (r *Registry) Accessors(field model.Field, env Env) ([]accessor.ValueAccessor, error) {
	if env.Element == nil {
		env.Element = accessor.NewElement(field.Name, WidgetText)
	}
	widget, ok := r.Resolve(field)
	if !ok {
		widget = WidgetText
	}
	env.Element.Kind = widget

	text := accessor.NewDefaultAccessor(env.Renderer, env.Element, env.DefaultOptions...)
	if widget == WidgetText {
		return []accessor.ValueAccessor{text}, nil
	}

	r.mu.RLock()
	factory, ok := r.factories[widget]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownWidget, widget)
	}
	built, err := factory(field, env)
	if err != nil {
		return nil, fmt.Errorf("widgets: build %q for %q: %w", widget, field.Name, err)
	}
	if widget == WidgetCheckbox {
		return []accessor.ValueAccessor{built}, nil
	}
	return []accessor.ValueAccessor{text, built}, nil
}

// Decorate implements model.Decorator, recording the resolved widget in
// Metadata["widget"] for every field that does not already carry one.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.Field, len(fields))
	for idx, field := range fields {
		decorated[idx] = r.decorateField(field)
	}
	return decorated
}

func (r *Registry) decorateField(field model.Field) model.Field {
	if widget, ok := r.Resolve(field); ok && widget != "" {
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		if field.Metadata[model.MetadataWidget] == "" {
			field.Metadata[model.MetadataWidget] = widget
		}
	}

	if field.Items != nil {
		item := r.decorateField(*field.Items)
		field.Items = &item
	}
	if len(field.Nested) > 0 {
		field.Nested = r.decorateFields(field.Nested)
	}
	return field
}

func explicitWidget(field model.Field) string {
	if field.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(field.Metadata[model.MetadataWidget])
}

func enumOf(field model.Field) []any {
	if len(field.Enum) > 0 {
		return field.Enum
	}
	if field.Items != nil {
		return field.Items.Enum
	}
	return nil
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})
	r.RegisterFactory(WidgetCheckbox, func(_ model.Field, env Env) (accessor.ValueAccessor, error) {
		return accessor.NewCheckboxAccessor(env.Renderer, env.Element), nil
	})

	r.Register(WidgetSelectMultiple, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeArray && len(enumOf(field)) > 0
	})
	r.RegisterFactory(WidgetSelectMultiple, func(field model.Field, env Env) (accessor.ValueAccessor, error) {
		a := accessor.NewSelectMultipleAccessor(env.Renderer, env.Element, env.Compare)
		for _, value := range enumOf(field) {
			a.AddOption(value, fmt.Sprint(value))
		}
		return a, nil
	})

	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		if field.Type == model.FieldTypeArray || field.Type == model.FieldTypeObject {
			return false
		}
		return len(field.Enum) > 0
	})
	r.RegisterFactory(WidgetSelect, func(field model.Field, env Env) (accessor.ValueAccessor, error) {
		a := accessor.NewSelectAccessor(env.Renderer, env.Element, env.Compare)
		for _, value := range field.Enum {
			a.AddOption(value, fmt.Sprint(value))
		}
		return a, nil
	})

	r.Register(WidgetNumber, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeInteger || field.Type == model.FieldTypeNumber
	})
	r.RegisterFactory(WidgetNumber, func(_ model.Field, env Env) (accessor.ValueAccessor, error) {
		return accessor.NewNumberAccessor(env.Renderer, env.Element), nil
	})

	r.Register(WidgetSanitizedText, 50, func(field model.Field) bool {
		return field.Type == model.FieldTypeString && field.Metadata[model.MetadataSanitize] == "true"
	})
	r.RegisterFactory(WidgetSanitizedText, func(_ model.Field, env Env) (accessor.ValueAccessor, error) {
		return accessor.NewSanitizedTextAccessor(env.Renderer, env.Element), nil
	})

	// Range has no matcher; fields opt in with Metadata["widget"] = "range".
	r.RegisterFactory(WidgetRange, func(_ model.Field, env Env) (accessor.ValueAccessor, error) {
		return accessor.NewRangeAccessor(env.Renderer, env.Element), nil
	})
}
