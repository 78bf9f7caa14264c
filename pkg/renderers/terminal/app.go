package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binder"
)

var (
	// ErrCancelled is returned by Run when the user leaves without submitting.
	ErrCancelled = errors.New("terminal: cancelled")
	// ErrScreenClosed is returned when the screen stops delivering events.
	ErrScreenClosed = errors.New("terminal: screen closed")
)

type widget struct {
	binding *binder.Binding
	text    *TextField
	cursor  int
}

// App renders a session on a screen and routes events to the focused
// control. Keys: Tab/Down and Shift-Tab/Up move focus (blurring the control
// left behind), Space toggles checkboxes and multi-select options,
// Left/Right cycle options, Enter on the last control or Ctrl-S submits and
// Esc cancels.
type App struct {
	screen  tcell.Screen
	session *binder.Session
	view    *View
	logger  *slog.Logger

	widgets []*widget
	focus   int
	status  string
	done    bool
	result  map[string]any
}

// AppOption configures an App.
type AppOption func(*App)

// WithAppLogger sets the logger.
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewApp builds widgets for every binding of session. view must be the
// renderer the session's binder writes to.
func NewApp(screen tcell.Screen, session *binder.Session, view *View, opts ...AppOption) (*App, error) {
	if screen == nil || session == nil || view == nil {
		return nil, errors.New("terminal: screen, session and view are required")
	}
	a := &App{
		screen:  screen,
		session: session,
		view:    view,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	for _, path := range session.Paths() {
		b, ok := session.Binding(path)
		if !ok {
			continue
		}
		w := &widget{binding: b}
		switch acc := b.Accessor().(type) {
		case *accessor.DefaultAccessor:
			w.text = NewTextField(view, b.Element, func(s string) { acc.HandleInput(s) }, acc)
		case *accessor.SanitizedTextAccessor:
			w.text = NewTextField(view, b.Element, acc.HandleInput, nil)
		case *accessor.NumberAccessor:
			w.text = NewTextField(view, b.Element, acc.HandleInput, nil)
		case *accessor.RangeAccessor:
			w.text = NewTextField(view, b.Element, acc.HandleInput, nil)
		case *accessor.CheckboxAccessor, *accessor.SelectAccessor, *accessor.SelectMultipleAccessor:
		default:
			return nil, fmt.Errorf("terminal: unsupported accessor %T at %s", acc, path)
		}
		a.widgets = append(a.widgets, w)
	}
	a.focus = a.nextEnabled(-1, 1)
	return a, nil
}

// Focused returns the path of the focused control, or "".
func (a *App) Focused() string {
	if a.focus < 0 || a.focus >= len(a.widgets) {
		return ""
	}
	return a.widgets[a.focus].binding.Key()
}

// Status returns the status line.
func (a *App) Status() string { return a.status }

// Done reports whether the form was submitted successfully.
func (a *App) Done() bool { return a.done }

// Result returns the submitted value once Done.
func (a *App) Result() map[string]any { return a.result }

// Run draws the form and processes events until the form is submitted, the
// user cancels or ctx ends. The caller owns screen initialisation.
func (a *App) Run(ctx context.Context) (map[string]any, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx))
	})
	defer stop()

	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil, ErrScreenClosed
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cancelled := a.HandleEvent(ev)
		a.Draw()
		if cancelled {
			return nil, ErrCancelled
		}
		if a.done {
			return a.result, nil
		}
	}
}

// HandleEvent applies ev and drains the session. It reports true when the
// user cancelled.
func (a *App) HandleEvent(ev tcell.Event) bool {
	defer a.session.Drain()

	if _, ok := ev.(*tcell.EventResize); ok {
		a.screen.Sync()
		return false
	}

	w := a.current()
	if w != nil && w.text != nil && w.text.HandleEvent(ev) {
		return false
	}

	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	switch key.Key() {
	case tcell.KeyEscape:
		return true
	case tcell.KeyTab, tcell.KeyDown:
		a.move(1)
	case tcell.KeyBacktab, tcell.KeyUp:
		a.move(-1)
	case tcell.KeyCtrlS:
		a.blur()
		a.submit()
	case tcell.KeyEnter:
		if next := a.nextEnabled(a.focus, 1); next <= a.focus {
			a.blur()
			a.submit()
			return false
		}
		a.move(1)
	case tcell.KeyLeft:
		a.cycle(w, -1)
	case tcell.KeyRight:
		a.cycle(w, 1)
	case tcell.KeyRune:
		if key.Rune() == ' ' {
			a.toggle(w)
		}
	}
	return false
}

func (a *App) current() *widget {
	if a.focus < 0 || a.focus >= len(a.widgets) {
		return nil
	}
	return a.widgets[a.focus]
}

func (a *App) blur() {
	if w := a.current(); w != nil {
		if toucher, ok := w.binding.Accessor().(interface{ HandleBlur() }); ok {
			toucher.HandleBlur()
		}
	}
}

func (a *App) move(step int) {
	next := a.nextEnabled(a.focus, step)
	if next == a.focus {
		return
	}
	a.blur()
	a.focus = next
}

// nextEnabled returns the next enabled widget index from start in the
// direction of step, wrapping around. It returns start when none is found.
func (a *App) nextEnabled(start, step int) int {
	n := len(a.widgets)
	if n == 0 {
		return -1
	}
	idx := start
	for range n {
		idx = ((idx+step)%n + n) % n
		if !a.widgets[idx].binding.Control().Disabled() {
			return idx
		}
	}
	return start
}

func (a *App) toggle(w *widget) {
	if w == nil {
		return
	}
	switch acc := w.binding.Accessor().(type) {
	case *accessor.CheckboxAccessor:
		checked := !a.view.Checked(w.binding.Element)
		a.view.SetProperty(w.binding.Element, accessor.PropertyChecked, checked)
		acc.HandleChange(checked)
	case *accessor.SelectMultipleAccessor:
		ids := acc.OptionIDs()
		if len(ids) == 0 {
			return
		}
		id := ids[w.cursor%len(ids)]
		selected := acc.SelectedIDs()
		if idx := slices.Index(selected, id); idx >= 0 {
			selected = slices.Delete(selected, idx, idx+1)
		} else {
			selected = append(selected, id)
		}
		acc.HandleChange(selected)
	}
}

func (a *App) cycle(w *widget, step int) {
	if w == nil {
		return
	}
	switch acc := w.binding.Accessor().(type) {
	case *accessor.SelectAccessor:
		ids := acc.OptionIDs()
		if len(ids) == 0 {
			return
		}
		idx := -1
		if id, ok := acc.SelectedID(); ok {
			idx = slices.Index(ids, id)
		}
		if idx < 0 && step < 0 {
			idx = 0
		}
		idx = ((idx+step)%len(ids) + len(ids)) % len(ids)
		acc.HandleChange(ids[idx])
	case *accessor.SelectMultipleAccessor:
		if n := len(acc.OptionIDs()); n > 0 {
			w.cursor = ((w.cursor+step)%n + n) % n
		}
	}
}

func (a *App) submit() {
	values, err := a.session.Submit()
	if err != nil {
		a.status = err.Error()
		return
	}
	if !a.session.Valid() {
		var invalid []string
		for i, w := range a.widgets {
			ctrl := w.binding.Control()
			if ctrl.Enabled() && ctrl.Invalid() {
				if len(invalid) == 0 {
					a.focus = i
				}
				invalid = append(invalid, w.binding.Key())
			}
		}
		a.status = "invalid: " + strings.Join(invalid, ", ")
		a.logger.Debug("submit rejected", "invalid", invalid)
		return
	}
	a.status = "submitted"
	a.done = true
	a.result = values
}

// Draw paints one row per control plus the status line.
func (a *App) Draw() {
	a.screen.Clear()
	a.screen.HideCursor()

	for row, w := range a.widgets {
		b := w.binding
		ctrl := b.Control()
		style := tcell.StyleDefault
		prefix := "  "
		if row == a.focus {
			prefix = "> "
			style = style.Bold(true)
		}
		if ctrl.Disabled() {
			style = style.Dim(true)
		}
		label := b.Field.Label
		if label == "" {
			label = b.Field.Name
		}
		line := prefix + label + ": "
		x := drawText(a.screen, 0, row, line, style)
		end := drawText(a.screen, x, row, a.render(w), style)
		if row == a.focus && w.text != nil && !ctrl.Disabled() {
			a.screen.ShowCursor(end, row)
		}
		if ctrl.Invalid() && (ctrl.Touched() || ctrl.Dirty()) {
			drawText(a.screen, end+1, row, "! "+errorKeys(ctrl.Errors()), style.Foreground(tcell.ColorRed))
		}
	}
	if a.status != "" {
		drawText(a.screen, 0, len(a.widgets)+1, a.status, tcell.StyleDefault)
	}
	a.screen.Show()
}

func (a *App) render(w *widget) string {
	el := w.binding.Element
	switch acc := w.binding.Accessor().(type) {
	case *accessor.CheckboxAccessor:
		if a.view.Checked(el) {
			return "[x]"
		}
		return "[ ]"
	case *accessor.SelectAccessor:
		id, ok := acc.SelectedID()
		if !ok {
			return "< >"
		}
		return "< " + labelFor(acc.OptionIDs(), acc.Labels(), id) + " >"
	case *accessor.SelectMultipleAccessor:
		ids, labels := acc.OptionIDs(), acc.Labels()
		selected := acc.SelectedIDs()
		parts := make([]string, len(ids))
		for i, id := range ids {
			mark := " "
			if slices.Contains(selected, id) {
				mark = "x"
			}
			part := "[" + mark + "]" + labels[i]
			if i == w.cursor {
				part = "(" + part + ")"
			}
			parts[i] = part
		}
		return strings.Join(parts, " ")
	default:
		if w.binding.Field.Format == "password" {
			return strings.Repeat("*", uniseg.GraphemeClusterCount(a.view.Text(el)))
		}
		return a.view.Text(el)
	}
}

func labelFor(ids, labels []string, id string) string {
	if idx := slices.Index(ids, id); idx >= 0 && idx < len(labels) {
		return labels[idx]
	}
	return id
}

func errorKeys(errs map[string]any) string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}

// drawText writes s grapheme by grapheme and returns the column after it.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		runes := gr.Runes()
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		screen.SetContent(x, y, runes[0], comb, style)
		width := gr.Width()
		if width < 1 {
			width = 1
		}
		x += width
	}
	return x
}
