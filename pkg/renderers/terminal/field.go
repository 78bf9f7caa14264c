package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/goliatone/go-formbind/pkg/accessor"
)

// Composer is implemented by accessors that buffer composition sessions.
type Composer interface {
	CompositionStart()
	CompositionEnd(value any)
}

// TextField translates terminal events for one text-like element. Typed
// runes edit the element text held by the view and each edit is forwarded
// to input. A bracketed paste is reported as a composition so accessors in
// composition mode commit the pasted text once, when the paste ends.
type TextField struct {
	view     *View
	element  *accessor.Element
	input    func(string)
	composer Composer
	pasting  bool
}

// NewTextField binds a field to el. composer may be nil.
func NewTextField(view *View, el *accessor.Element, input func(string), composer Composer) *TextField {
	return &TextField{view: view, element: el, input: input, composer: composer}
}

// Text returns the element text.
func (f *TextField) Text() string { return f.view.Text(f.element) }

// Pasting reports whether a bracketed paste is in progress.
func (f *TextField) Pasting() bool { return f.pasting }

// HandleEvent applies ev and reports whether it was consumed.
func (f *TextField) HandleEvent(ev tcell.Event) bool {
	switch e := ev.(type) {
	case *tcell.EventPaste:
		if e.Start() {
			f.pasting = true
			if f.composer != nil {
				f.composer.CompositionStart()
			}
			return true
		}
		f.pasting = false
		if f.composer != nil {
			f.composer.CompositionEnd(f.Text())
		} else {
			f.input(f.Text())
		}
		return true

	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyRune:
			f.edit(f.Text() + string(e.Rune()))
			return true
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			text := f.Text()
			if text == "" {
				return true
			}
			f.edit(dropLastGrapheme(text))
			return true
		case tcell.KeyCtrlU:
			f.edit("")
			return true
		case tcell.KeyEnter:
			if f.pasting {
				f.edit(f.Text() + "\n")
				return true
			}
		}
	}
	return false
}

func (f *TextField) edit(text string) {
	f.view.SetProperty(f.element, accessor.PropertyValue, text)
	if f.pasting && f.composer == nil {
		return
	}
	f.input(text)
}

// dropLastGrapheme removes the last user-perceived character so a single
// backspace deletes a whole emoji or combined sequence.
func dropLastGrapheme(s string) string {
	last := 0
	offset := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = offset
		offset += len(cluster)
	}
	return s[:last]
}
