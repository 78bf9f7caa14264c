package binder

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/model"
	"github.com/goliatone/go-formbind/pkg/scheduler"
	"github.com/goliatone/go-formbind/pkg/validation"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// Binding is one field bound to a control directive.
type Binding struct {
	Field      model.Field
	Path       []string
	Element    *accessor.Element
	Model      *directive.Model
	Rules      []*validation.Rule
	Standalone bool

	tracker *directive.Tracker
	inputs  map[string]any
}

// Accessor returns the selected accessor.
func (b *Binding) Accessor() accessor.ValueAccessor { return b.Model.ValueAccessor() }

// Control returns the bound control.
func (b *Binding) Control() *control.FormControl { return b.Model.Control() }

// Key returns the dotted path.
func (b *Binding) Key() string { return strings.Join(b.Path, ".") }

// Session is a bound form. Methods other than ApplyConfig must be called on
// the goroutine that feeds view events.
type Session struct {
	binder   *Binder
	model    model.FormModel
	queue    *scheduler.Queue
	pipeline *binding.Pipeline
	form     *directive.Form
	logger   *slog.Logger

	mu     sync.Mutex
	config *config.Config
	errs   []error

	groups   []*directive.ModelGroup
	bindings map[string]*Binding
	order    []string
	closed   bool
}

// Model returns the form model the session was built from.
func (s *Session) Model() model.FormModel { return s.model }

// Form returns the root form directive.
func (s *Session) Form() *directive.Form { return s.form }

// Queue returns the deferred task queue.
func (s *Session) Queue() *scheduler.Queue { return s.queue }

// Paths returns the dotted paths of every binding in field order.
func (s *Session) Paths() []string { return slices.Clone(s.order) }

// Binding returns the binding at a dotted path.
func (s *Session) Binding(path string) (*Binding, bool) {
	b, ok := s.bindings[path]
	return b, ok
}

// Drain runs every queued task and returns how many ran.
func (s *Session) Drain() int {
	n := s.queue.Drain()
	if s.binder.metrics != nil {
		s.binder.metrics.ObserveDrain(n)
	}
	return n
}

// Errors returns and clears the errors reported by deferred work.
func (s *Session) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.errs
	s.errs = nil
	return errs
}

func (s *Session) reportError(err error) {
	s.logger.Error("deferred binding failed", "error", err)
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Value returns the aggregated value of the form. Standalone controls are
// not part of it.
func (s *Session) Value() map[string]any { return s.form.Value() }

// ValueJSON returns the form value as JSON.
func (s *Session) ValueJSON() ([]byte, error) { return s.form.Group().ValueJSON() }

// PatchJSON patches the form from a JSON document.
func (s *Session) PatchJSON(data []byte) error { return s.form.Group().PatchJSON(data) }

// Valid reports whether the root group is valid.
func (s *Session) Valid() bool { return s.form.Group().Valid() }

// Submit commits submit-policy edits and returns the form value.
func (s *Session) Submit() (map[string]any, error) {
	if s.closed {
		return nil, ErrClosed
	}
	s.form.Submit()
	s.Drain()
	return s.form.Value(), nil
}

// Reset resets the form to values.
func (s *Session) Reset(values map[string]any) {
	s.form.Reset(values)
}

// SetModel pushes a new model input to the binding at path and runs a
// change-detection pass. The value reaches the control on the next Drain.
func (s *Session) SetModel(path string, value any) error {
	return s.update(path, func(b *Binding) { b.inputs[directive.InputModel] = value })
}

// SetDisabled pushes a new disabled input to the binding at path.
func (s *Session) SetDisabled(path string, disabled bool) error {
	return s.update(path, func(b *Binding) { b.inputs[directive.InputDisabled] = disabled })
}

func (s *Session) update(path string, mutate func(*Binding)) error {
	if s.closed {
		return ErrClosed
	}
	b, ok := s.bindings[path]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownPath, path)
	}
	mutate(b)
	return b.Model.OnChanges(b.tracker.Track(b.inputs))
}

// ApplyConfig schedules cfg to be applied on the next Drain. It is safe to
// call from any goroutine, which makes it usable as a config.Loader
// OnChange callback.
func (s *Session) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	cfg = cfg.Clone()
	s.queue.Schedule(func() { s.applyConfig(cfg) })
}

// Watch applies every reload of loader to the session.
func (s *Session) Watch(loader *config.Loader) {
	loader.OnChange(s.ApplyConfig)
}

func (s *Session) applyConfig(cfg *config.Config) {
	if s.closed {
		return
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	if policy, err := control.ParseUpdateOn(cfg.Form.UpdateOn); err == nil && policy != "" {
		s.form.Group().SetUpdateOn(policy)
	}

	for _, key := range s.order {
		b := s.bindings[key]
		cc, _ := cfg.Control(key)

		for _, raw := range cc.Rules {
			rule := findRule(b.Rules, raw.Kind)
			if rule == nil {
				s.logger.Warn("rule added by reload is ignored until rebind", "path", key, "rule", raw.Kind)
				continue
			}
			if err := rule.SetParams(raw.Params); err != nil {
				s.reportError(control.NewPathError(b.Path, err))
			}
		}

		if policy, err := control.ParseUpdateOn(cc.UpdateOn); err == nil && policy != "" {
			b.Control().SetUpdateOn(policy)
		}

		disabled := fieldDisabled(b.Field)
		if cc.Disabled != nil {
			disabled = *cc.Disabled
		}
		if _, tracked := b.inputs[directive.InputDisabled]; tracked || disabled {
			b.inputs[directive.InputDisabled] = disabled
		}
		if err := b.Model.OnChanges(b.tracker.Track(b.inputs)); err != nil {
			s.reportError(err)
		}
	}
	s.logger.Debug("config applied", "controls", len(cfg.Controls))
}

// Close destroys every binding and group, then drains the queue.
func (s *Session) Close() {
	if s.closed {
		return
	}
	for i := len(s.order) - 1; i >= 0; i-- {
		if b := s.bindings[s.order[i]]; b != nil && b.Model != nil {
			b.Model.OnDestroy()
		}
	}
	for i := len(s.groups) - 1; i >= 0; i-- {
		s.groups[i].OnDestroy()
	}
	s.Drain()
	s.closed = true
}

func (s *Session) bindFields(parent directive.Container, prefix []string, fields []model.Field) error {
	for _, field := range fields {
		path := append(slices.Clone(prefix), field.Name)

		if field.Type == model.FieldTypeObject {
			if len(field.Nested) == 0 {
				s.logger.Debug("skipping object without properties", "path", path)
				continue
			}
			group := directive.NewModelGroup(parent, field.Name, nil, nil)
			if err := group.OnInit(); err != nil {
				return control.NewPathError(path, err)
			}
			s.groups = append(s.groups, group)
			if err := s.bindFields(group, path, field.Nested); err != nil {
				return err
			}
			continue
		}

		if err := s.bindField(parent, path, field); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) bindField(parent directive.Container, path []string, field model.Field) error {
	key := strings.Join(path, ".")
	cc, _ := s.config.Control(key)
	if cc.Widget != "" {
		field.Metadata = maps.Clone(field.Metadata)
		if field.Metadata == nil {
			field.Metadata = map[string]string{}
		}
		field.Metadata[model.MetadataWidget] = cc.Widget
	}

	if field.Type == model.FieldTypeArray {
		if widget, _ := s.binder.registry.Resolve(field); widget == "" {
			s.logger.Debug("skipping array without a widget", "path", path)
			return nil
		}
	}

	el := accessor.NewElement(field.Name, "")
	candidates, err := s.binder.registry.Accessors(field, widgets.Env{
		Renderer:       s.binder.renderer,
		Element:        el,
		Compare:        s.binder.compare,
		DefaultOptions: s.config.Form.DefaultOptions(),
	})
	if err != nil {
		return control.NewPathError(path, err)
	}

	rules, err := fieldRules(field, cc.Rules)
	if err != nil {
		return control.NewPathError(path, err)
	}
	validators := make([]control.Validator, len(rules))
	for i, rule := range rules {
		validators[i] = rule
	}

	policy, err := control.ParseUpdateOn(firstNonEmpty(cc.UpdateOn, field.Metadata[model.MetadataUpdateOn]))
	if err != nil {
		return control.NewPathError(path, err)
	}
	standalone := cc.Standalone || field.Metadata[model.MetadataStandalone] == "true"

	m, err := directive.NewModel(directive.Dependencies{
		Parent:     parent,
		Validators: validators,
		Accessors:  candidates,
		Scheduler:  s.queue,
	},
		directive.WithModelPipeline(s.pipeline),
		directive.WithModelLogger(s.logger),
	)
	if err != nil {
		return control.NewPathError(path, err)
	}

	b := &Binding{
		Field:      field,
		Path:       path,
		Element:    el,
		Model:      m,
		Rules:      rules,
		Standalone: standalone,
		tracker:    directive.NewTracker(),
		inputs: map[string]any{
			directive.InputName:    field.Name,
			directive.InputModel:   field.Default,
			directive.InputOptions: directive.Options{Standalone: standalone, UpdateOn: policy},
		},
	}
	disabled := fieldDisabled(field)
	if cc.Disabled != nil {
		disabled = *cc.Disabled
	}
	if disabled {
		b.inputs[directive.InputDisabled] = true
	}

	if err := m.OnChanges(b.tracker.Track(b.inputs)); err != nil {
		return err
	}
	s.bindings[key] = b
	s.order = append(s.order, key)
	return nil
}

func fieldDisabled(field model.Field) bool {
	return field.Metadata[model.MetadataDisabled] == "true"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
