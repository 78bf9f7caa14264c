package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a decorator addresses a field the form
// does not have.
var ErrUnknownField = errors.New("model: unknown field")

// Decorator adjusts a built form before it is bound, typically to set
// binding metadata such as update policy, widget or standalone flags.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// FieldMetadata returns a decorator merging values into the metadata of the
// field at the dotted path (for example "contact.email").
func FieldMetadata(path string, values map[string]string) Decorator {
	return DecoratorFunc(func(form *FormModel) error {
		field := lookupField(form.Fields, strings.Split(path, "."))
		if field == nil {
			return fmt.Errorf("%w %q", ErrUnknownField, path)
		}
		if field.Metadata == nil {
			field.Metadata = make(map[string]string, len(values))
		}
		for key, value := range values {
			field.Metadata[key] = value
		}
		return nil
	})
}

func lookupField(fields []Field, path []string) *Field {
	for i := range fields {
		if fields[i].Name != path[0] {
			continue
		}
		if len(path) == 1 {
			return &fields[i]
		}
		return lookupField(fields[i].Nested, path[1:])
	}
	return nil
}
