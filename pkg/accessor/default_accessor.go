package accessor

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Platform describes the runtime the view runs on.
type Platform interface {
	UserAgent() string
}

// UserAgent is a fixed Platform.
type UserAgent string

// UserAgent implements Platform.
func (u UserAgent) UserAgent() string { return string(u) }

var androidPattern = regexp.MustCompile(`android (\d+)`)

// isAndroid reports whether the platform is a mobile OS family whose IMEs
// emit composition events unreliably.
func isAndroid(p Platform) bool {
	if p == nil {
		return false
	}
	return androidPattern.MatchString(strings.ToLower(p.UserAgent()))
}

// DefaultAccessor is the text accessor used when nothing more specific is
// attached. With composition buffering on, input events that arrive between
// a composition start and end are not forwarded; the composition end forwards
// the final value once.
type DefaultAccessor struct {
	callbacks

	renderer        Renderer
	element         *Element
	compositionMode bool
	composing       bool
	normalize       *norm.Form
}

var (
	_ ValueAccessor       = (*DefaultAccessor)(nil)
	_ DisabledStateSetter = (*DefaultAccessor)(nil)
)

type defaultConfig struct {
	compositionMode *bool
	platform        Platform
	normalize       *norm.Form
}

// DefaultOption configures a DefaultAccessor.
type DefaultOption func(*defaultConfig)

// WithCompositionMode forces composition buffering on or off.
func WithCompositionMode(enabled bool) DefaultOption {
	return func(c *defaultConfig) { c.compositionMode = &enabled }
}

// WithPlatform sets the platform used to pick the default composition mode.
func WithPlatform(p Platform) DefaultOption {
	return func(c *defaultConfig) { c.platform = p }
}

// WithNormalization applies a Unicode normalization form to the value
// forwarded when a composition ends.
func WithNormalization(form norm.Form) DefaultOption {
	return func(c *defaultConfig) { c.normalize = &form }
}

// NewDefaultAccessor binds a text accessor to el. Composition buffering is
// on unless configured otherwise or the platform is Android.
func NewDefaultAccessor(renderer Renderer, el *Element, opts ...DefaultOption) *DefaultAccessor {
	cfg := defaultConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	mode := !isAndroid(cfg.platform)
	if cfg.compositionMode != nil {
		mode = *cfg.compositionMode
	}
	return &DefaultAccessor{
		renderer:        renderer,
		element:         el,
		compositionMode: mode,
		normalize:       cfg.normalize,
	}
}

// Element returns the bound element.
func (a *DefaultAccessor) Element() *Element { return a.element }

// CompositionMode reports whether composition buffering is on.
func (a *DefaultAccessor) CompositionMode() bool { return a.compositionMode }

// Composing reports whether a composition is in progress.
func (a *DefaultAccessor) Composing() bool { return a.composing }

// WriteValue pushes value into the view; nil becomes the empty string.
func (a *DefaultAccessor) WriteValue(value any) {
	if value == nil {
		value = ""
	}
	a.renderer.SetProperty(a.element, PropertyValue, value)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *DefaultAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleInput forwards a raw input event unless buffering a composition.
func (a *DefaultAccessor) HandleInput(value any) {
	if !a.compositionMode || !a.composing {
		a.change(value)
	}
}

// CompositionStart marks the beginning of an IME composition.
func (a *DefaultAccessor) CompositionStart() {
	a.composing = true
}

// CompositionEnd clears the composing flag and, when buffering, forwards the
// final value.
func (a *DefaultAccessor) CompositionEnd(value any) {
	a.composing = false
	if !a.compositionMode {
		return
	}
	if s, ok := value.(string); ok && a.normalize != nil {
		value = a.normalize.String(s)
	}
	a.change(value)
}
