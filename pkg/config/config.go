// Package config loads binding configuration for a form: the form-wide
// update policy and text input behaviour, plus per-control overrides for
// update policy, standalone mode, disabled state, widget and validator rules.
package config

import (
	"maps"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/model"
)

// Composition modes for text accessors.
const (
	CompositionAuto = "auto"
	CompositionOn   = "on"
	CompositionOff  = "off"
)

// Config is the binding configuration of one form.
type Config struct {
	Form     FormConfig               `toml:"form" json:"form" yaml:"form"`
	Controls map[string]ControlConfig `toml:"controls" json:"controls" yaml:"controls"`
}

// FormConfig holds form-wide settings.
type FormConfig struct {
	UpdateOn    string `toml:"update_on" json:"update_on" yaml:"update_on"`
	Composition string `toml:"composition" json:"composition" yaml:"composition"`
	Normalize   string `toml:"normalize" json:"normalize" yaml:"normalize"`
	UserAgent   string `toml:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// ControlConfig overrides a single control, keyed by its dotted path.
type ControlConfig struct {
	UpdateOn   string                 `toml:"update_on" json:"update_on" yaml:"update_on"`
	Standalone bool                   `toml:"standalone" json:"standalone" yaml:"standalone"`
	Disabled   *bool                  `toml:"disabled" json:"disabled" yaml:"disabled"`
	Widget     string                 `toml:"widget" json:"widget" yaml:"widget"`
	Rules      []model.ValidationRule `toml:"rules" json:"rules" yaml:"rules"`
}

// DefaultConfig returns a configuration with change updates and automatic
// composition detection.
func DefaultConfig() *Config {
	return &Config{
		Form: FormConfig{
			UpdateOn:    "change",
			Composition: CompositionAuto,
		},
		Controls: map[string]ControlConfig{},
	}
}

// Control returns the overrides for path.
func (c *Config) Control(path string) (ControlConfig, bool) {
	if c == nil {
		return ControlConfig{}, false
	}
	ctrl, ok := c.Controls[path]
	return ctrl, ok
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{Form: c.Form, Controls: make(map[string]ControlConfig, len(c.Controls))}
	for path, ctrl := range c.Controls {
		if ctrl.Disabled != nil {
			disabled := *ctrl.Disabled
			ctrl.Disabled = &disabled
		}
		rules := make([]model.ValidationRule, len(ctrl.Rules))
		for i, rule := range ctrl.Rules {
			rules[i] = model.ValidationRule{Kind: rule.Kind, Params: maps.Clone(rule.Params)}
		}
		ctrl.Rules = rules
		out.Controls[path] = ctrl
	}
	return out
}

// Paths returns the configured control paths in sorted order.
func (c *Config) Paths() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Controls))
}

// DefaultOptions maps the text settings to accessor options.
func (f FormConfig) DefaultOptions() []accessor.DefaultOption {
	var opts []accessor.DefaultOption
	switch f.Composition {
	case CompositionOn:
		opts = append(opts, accessor.WithCompositionMode(true))
	case CompositionOff:
		opts = append(opts, accessor.WithCompositionMode(false))
	}
	if f.UserAgent != "" {
		opts = append(opts, accessor.WithPlatform(accessor.UserAgent(f.UserAgent)))
	}
	if form, ok := normalizationForms[f.Normalize]; ok {
		opts = append(opts, accessor.WithNormalization(form))
	}
	return opts
}

var normalizationForms = map[string]norm.Form{
	"nfc":  norm.NFC,
	"nfd":  norm.NFD,
	"nfkc": norm.NFKC,
	"nfkd": norm.NFKD,
}
