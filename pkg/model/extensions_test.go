package model_test

import (
	"testing"

	"github.com/goliatone/go-formbind/pkg/model"
)

func TestExtensionMetadata(t *testing.T) {
	extensions := map[string]any{
		"x-formbind": map[string]any{
			"updateOn": "blur",
			"widget":   "select",
			"disabled": false,
			"nested":   map[string]any{"ignored": true},
		},
		"x-formbind-updateOn": "submit",
		"x-formbind-order":    float64(3),
		"x-other":             "skip",
	}

	metadata := model.ExtensionMetadata("x-formbind", extensions)

	if got := metadata[model.MetadataUpdateOn]; got != "submit" {
		t.Fatalf("expected prefixed key to win, got %q", got)
	}
	if got := metadata[model.MetadataWidget]; got != "select" {
		t.Fatalf("expected widget metadata, got %q", got)
	}
	if got := metadata[model.MetadataDisabled]; got != "false" {
		t.Fatalf("expected disabled=false, got %q", got)
	}
	if got := metadata["order"]; got != "3" {
		t.Fatalf("expected order=3, got %q", got)
	}
	if _, ok := metadata["nested"]; ok {
		t.Fatalf("expected nested maps to be ignored")
	}
	if _, ok := metadata["x-other"]; ok {
		t.Fatalf("expected foreign extensions to be ignored")
	}
}

func TestExtensionMetadataEmpty(t *testing.T) {
	if got := model.ExtensionMetadata("x-formbind", nil); got != nil {
		t.Fatalf("expected nil metadata, got %v", got)
	}
	if got := model.ExtensionMetadata("x-formbind", map[string]any{"x-formbind": "scalar"}); got != nil {
		t.Fatalf("expected nil metadata for non-map namespace, got %v", got)
	}
}

func TestFormModelField(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{{Name: "a"}, {Name: "b", Type: model.FieldTypeInteger}}}

	field, ok := form.Field("b")
	if !ok || field.Type != model.FieldTypeInteger {
		t.Fatalf("expected field b, got %+v %v", field, ok)
	}
	if _, ok := form.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
}

func TestAllowedExtensionKeys(t *testing.T) {
	keys := model.AllowedExtensionKeys()
	want := []string{"cli.help", "disabled", "label", "placeholder", "sanitize", "standalone", "updateOn", "widget"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
	if !model.IsAllowedExtensionKey(model.MetadataUpdateOn) {
		t.Fatalf("expected updateOn to be allowed")
	}
	if model.IsAllowedExtensionKey("order") {
		t.Fatalf("expected order to be rejected")
	}
}
