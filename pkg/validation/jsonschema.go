package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaIssue is a JSON Schema violation with the dotted control path it
// points at.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// JSONSchema compiles raw (registered under url) and returns a validator
// that checks the control's value against it. Violations are reported under
// the "schema" key as a []SchemaIssue.
func JSONSchema(url string, raw []byte) (control.ValidatorFunc, error) {
	if strings.TrimSpace(url) == "" {
		url = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("validation: add schema %s: %w", url, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema %s: %w", url, err)
	}

	return func(c control.AbstractControl) control.ValidationErrors {
		instance, err := normalizeInstance(c.Value())
		if err != nil {
			return control.ValidationErrors{"schema": []SchemaIssue{{Message: err.Error()}}}
		}
		if err := schema.Validate(instance); err != nil {
			return control.ValidationErrors{"schema": issuesFromError(err)}
		}
		return nil
	}, nil
}

// normalizeInstance round-trips value through encoding/json so Go values
// (ints, structs, typed maps) take the shapes the validator understands.
func normalizeInstance(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("validation: encode value: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("validation: decode value: %w", err)
	}
	return out, nil
}

func issuesFromError(err error) []SchemaIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []SchemaIssue{{Message: strings.TrimSpace(err.Error())}}
	}

	var issues []SchemaIssue
	for _, basic := range validationErr.BasicOutput().Errors {
		msg := strings.TrimSpace(basic.Error)
		if msg == "" || strings.HasPrefix(msg, "doesn't validate with") {
			continue
		}
		issues = append(issues, SchemaIssue{
			Path:    basic.InstanceLocation,
			Field:   fieldPathFromPointer(basic.InstanceLocation),
			Message: msg,
		})
	}
	if len(issues) == 0 {
		issues = append(issues, SchemaIssue{Message: strings.TrimSpace(validationErr.Message)})
	}
	return issues
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}
