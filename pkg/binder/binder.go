package binder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/metrics"
	"github.com/goliatone/go-formbind/pkg/model"
	"github.com/goliatone/go-formbind/pkg/openapi"
	"github.com/goliatone/go-formbind/pkg/scheduler"
	"github.com/goliatone/go-formbind/pkg/validation"
	"github.com/goliatone/go-formbind/pkg/widgets"
)

// Option configures a Binder.
type Option func(*Binder)

// WithLogger sets the logger shared by the binder, pipeline and directives.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithRenderer sets the renderer accessors write element properties through.
func WithRenderer(renderer accessor.Renderer) Option {
	return func(b *Binder) {
		if renderer != nil {
			b.renderer = renderer
		}
	}
}

// WithRegistry replaces the widget registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(b *Binder) {
		if registry != nil {
			b.registry = registry
		}
	}
}

// WithConfig applies binding configuration at bind time.
func WithConfig(cfg *config.Config) Option {
	return func(b *Binder) {
		if cfg != nil {
			b.config = cfg
		}
	}
}

// WithObserver adds a pipeline observer.
func WithObserver(observer binding.Observer) Option {
	return func(b *Binder) {
		if observer != nil {
			b.observers = append(b.observers, observer)
		}
	}
}

// WithMetrics records pipeline events and queue drains.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Binder) {
		if m != nil {
			b.metrics = m
			b.observers = append(b.observers, m)
		}
	}
}

// WithCompare sets the option comparison used by select accessors.
func WithCompare(compare accessor.CompareFunc) Option {
	return func(b *Binder) { b.compare = compare }
}

// WithFormValidators adds validators to the root form group.
func WithFormValidators(validators ...control.Validator) Option {
	return func(b *Binder) { b.formValidators = append(b.formValidators, validators...) }
}

// WithDetachedHandler overrides what happens when a torn down accessor
// still fires.
func WithDetachedHandler(handler binding.DetachedHandler) Option {
	return func(b *Binder) { b.detached = handler }
}

// WithOpenAPI replaces the loader, parser and builder used by
// BindOperation. Nil values keep the defaults.
func WithOpenAPI(loader openapi.Loader, parser openapi.Parser, builder openapi.Builder) Option {
	return func(b *Binder) {
		if loader != nil {
			b.loader = loader
		}
		if parser != nil {
			b.parser = parser
		}
		if builder != nil {
			b.builder = builder
		}
	}
}

// Binder builds sessions from form models.
type Binder struct {
	logger         *slog.Logger
	renderer       accessor.Renderer
	registry       *widgets.Registry
	config         *config.Config
	observers      []binding.Observer
	metrics        *metrics.Metrics
	compare        accessor.CompareFunc
	formValidators []control.Validator
	detached       binding.DetachedHandler

	loader  openapi.Loader
	parser  openapi.Parser
	builder openapi.Builder
}

// New creates a Binder with the built-in widgets and default configuration.
func New(opts ...Option) *Binder {
	b := &Binder{
		logger:   slog.New(slog.DiscardHandler),
		renderer: accessor.RendererFunc(func(*accessor.Element, string, any) {}),
		registry: widgets.NewRegistry(),
		config:   config.DefaultConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.loader == nil {
		b.loader = openapi.NewLoader(openapi.WithHTTPFallback(30 * time.Second))
	}
	if b.parser == nil {
		b.parser = openapi.NewParser()
	}
	if b.builder == nil {
		b.builder = openapi.NewBuilder(openapi.WithDecorators(b.registry))
	}
	return b
}

// BindOperation loads src, builds the form model of operationID and binds it.
func (b *Binder) BindOperation(ctx context.Context, src openapi.Source, operationID string) (*Session, error) {
	form, err := b.FormModel(ctx, src, operationID)
	if err != nil {
		return nil, err
	}
	return b.Bind(form)
}

// FormModel loads src and builds the form model of operationID.
func (b *Binder) FormModel(ctx context.Context, src openapi.Source, operationID string) (model.FormModel, error) {
	doc, err := b.loader.Load(ctx, src)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("binder: load %s: %w", src.Location(), err)
	}
	return b.DocumentFormModel(ctx, doc, operationID)
}

// BindDocument binds operationID of an already loaded document.
func (b *Binder) BindDocument(ctx context.Context, doc openapi.Document, operationID string) (*Session, error) {
	form, err := b.DocumentFormModel(ctx, doc, operationID)
	if err != nil {
		return nil, err
	}
	return b.Bind(form)
}

// DocumentFormModel builds the form model of operationID from doc.
func (b *Binder) DocumentFormModel(ctx context.Context, doc openapi.Document, operationID string) (model.FormModel, error) {
	ops, err := b.parser.Operations(ctx, doc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("binder: parse %s: %w", doc.Location(), err)
	}
	op, ok := ops[operationID]
	if !ok {
		return model.FormModel{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	return b.builder.Build(op)
}

// Bind creates a session for form. Registrations are queued; call
// Session.Drain before reading control state.
func (b *Binder) Bind(form model.FormModel) (*Session, error) {
	pipelineOpts := []binding.Option{binding.WithLogger(b.logger)}
	if observer := b.observer(); observer != nil {
		pipelineOpts = append(pipelineOpts, binding.WithObserver(observer))
	}
	if b.detached != nil {
		pipelineOpts = append(pipelineOpts, binding.WithDetachedHandler(b.detached))
	}
	pipeline := binding.New(pipelineOpts...)

	s := &Session{
		binder:   b,
		model:    form,
		queue:    scheduler.New(),
		pipeline: pipeline,
		config:   b.config.Clone(),
		bindings: map[string]*Binding{},
		logger:   b.logger.With("operation", form.OperationID),
	}

	formOpts := []directive.FormOption{
		directive.WithFormPipeline(pipeline),
		directive.WithFormLogger(s.logger),
		directive.WithFormValidators(b.formValidators...),
		directive.WithFormErrorHandler(s.reportError),
	}
	policy, err := formPolicy(form, s.config)
	if err != nil {
		return nil, err
	}
	if policy != "" {
		formOpts = append(formOpts, directive.WithFormUpdateOn(policy))
	}
	root, err := directive.NewForm(s.queue, formOpts...)
	if err != nil {
		return nil, err
	}
	s.form = root

	if err := s.bindFields(root, nil, form.Fields); err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Debug("form bound", "controls", len(s.order), "groups", len(s.groups))
	return s, nil
}

func (b *Binder) observer() binding.Observer {
	switch len(b.observers) {
	case 0:
		return nil
	case 1:
		return b.observers[0]
	}
	observers := append([]binding.Observer(nil), b.observers...)
	return binding.ObserverFunc(func(e binding.Event) {
		for _, o := range observers {
			o.Observe(e)
		}
	})
}

func formPolicy(form model.FormModel, cfg *config.Config) (control.UpdateOn, error) {
	raw := form.Metadata[model.MetadataUpdateOn]
	if cfg != nil && cfg.Form.UpdateOn != "" {
		raw = cfg.Form.UpdateOn
	}
	return control.ParseUpdateOn(raw)
}

// fieldRules compiles the field's rules and merges configured rules into
// them: a configured kind already present updates its parameters, any other
// kind is appended.
func fieldRules(field model.Field, configured []model.ValidationRule) ([]*validation.Rule, error) {
	rules, err := validation.ForField(field)
	if err != nil {
		return nil, err
	}
	for _, raw := range configured {
		if existing := findRule(rules, raw.Kind); existing != nil {
			if err := existing.SetParams(raw.Params); err != nil {
				return nil, err
			}
			continue
		}
		rule, err := validation.NewRule(raw)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func findRule(rules []*validation.Rule, kind string) *validation.Rule {
	kind = strings.TrimSpace(kind)
	for _, rule := range rules {
		if rule.Kind() == kind {
			return rule
		}
	}
	return nil
}
