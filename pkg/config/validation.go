package config

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks policies, text settings and that every rule compiles.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if _, err := control.ParseUpdateOn(c.Form.UpdateOn); err != nil {
		errs = append(errs, ValidationError{Field: "form.update_on", Message: err.Error()})
	}
	switch c.Form.Composition {
	case "", CompositionAuto, CompositionOn, CompositionOff:
	default:
		errs = append(errs, ValidationError{
			Field:   "form.composition",
			Message: fmt.Sprintf("unknown mode %q (want auto, on or off)", c.Form.Composition),
		})
	}
	if _, ok := normalizationForms[c.Form.Normalize]; c.Form.Normalize != "" && !ok {
		errs = append(errs, ValidationError{
			Field:   "form.normalize",
			Message: fmt.Sprintf("unknown form %q", c.Form.Normalize),
		})
	}

	for _, path := range c.Paths() {
		ctrl := c.Controls[path]
		if strings.TrimSpace(path) == "" {
			errs = append(errs, ValidationError{Field: "controls", Message: "empty control path"})
			continue
		}
		if _, err := control.ParseUpdateOn(ctrl.UpdateOn); err != nil {
			errs = append(errs, ValidationError{Field: "controls." + path + ".update_on", Message: err.Error()})
		}
		for i, rule := range ctrl.Rules {
			if _, err := validation.NewRule(rule); err != nil {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("controls.%s.rules[%d]", path, i),
					Message: err.Error(),
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
