package accessor

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips every tag from raw and returns the plain text.
func SanitizeText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

// SanitizedTextAccessor is a text accessor that strips markup from view
// input before forwarding it. It belongs to the custom bucket.
type SanitizedTextAccessor struct {
	callbacks
	renderer Renderer
	element  *Element
}

var (
	_ ValueAccessor       = (*SanitizedTextAccessor)(nil)
	_ DisabledStateSetter = (*SanitizedTextAccessor)(nil)
)

// NewSanitizedTextAccessor binds a sanitising accessor to el.
func NewSanitizedTextAccessor(renderer Renderer, el *Element) *SanitizedTextAccessor {
	return &SanitizedTextAccessor{renderer: renderer, element: el}
}

// Element returns the bound element.
func (a *SanitizedTextAccessor) Element() *Element { return a.element }

// WriteValue pushes value into the view; nil becomes the empty string.
func (a *SanitizedTextAccessor) WriteValue(value any) {
	if value == nil {
		value = ""
	}
	a.renderer.SetProperty(a.element, PropertyValue, value)
}

// SetDisabledState reflects the disabled flag in the view.
func (a *SanitizedTextAccessor) SetDisabledState(disabled bool) {
	a.renderer.SetProperty(a.element, PropertyDisabled, disabled)
}

// HandleInput forwards the sanitised form of raw.
func (a *SanitizedTextAccessor) HandleInput(raw string) {
	a.change(SanitizeText(raw))
}
