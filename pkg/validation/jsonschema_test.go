package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbind/pkg/control"
)

func TestJSONSchemaNestedFieldPath(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "contact": {
      "type": "object",
      "properties": {
        "postcode": { "type": "string", "pattern": "^[0-9]{5}$" }
      }
    }
  }
}`)
	validator, err := JSONSchema("", raw)
	require.NoError(t, err)

	contact := control.NewFormGroup()
	contact.AddControl("postcode", control.NewFormControl("abc"))
	root := control.NewFormGroup(control.WithGroupValidator(validator))
	root.AddControl("contact", contact)

	issues, ok := root.Errors()["schema"].([]SchemaIssue)
	require.True(t, ok)
	require.NotEmpty(t, issues)
	assert.Equal(t, "contact.postcode", issues[0].Field)
	assert.Equal(t, "/contact/postcode", issues[0].Path)
}

func TestJSONSchemaScalarControl(t *testing.T) {
	validator, err := JSONSchema("tags.json", []byte(`{"type": "array", "maxItems": 2}`))
	require.NoError(t, err)

	tags := control.NewFormControl([]any{"a", "b", "c"}, control.WithValidator(validator))
	require.True(t, tags.Invalid())

	tags.SetValue([]any{"a"})
	assert.True(t, tags.Valid())
}

func TestFieldPathFromPointer(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"#":            "",
		"/name":        "name",
		"#/a/b":        "a.b",
		"/a~1b/c~0d":   "a/b.c~d",
		" /contact/0 ": "contact.0",
	}
	for pointer, want := range cases {
		assert.Equal(t, want, fieldPathFromPointer(pointer), "pointer %q", pointer)
	}
}
