package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binder"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/model"
)

const defaultMaxAttempts = 3

// Runner drives a bound session from the terminal. Every answer is fed
// through the control's accessor so update policies, sanitising and
// validation behave exactly as they would for any other view.
type Runner struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	theme             Theme
	maxAttempts       int
	submitTransformer SubmitTransformer
	logger            *slog.Logger
}

// New constructs a Runner backed by the survey driver unless overridden.
func New(options ...Option) *Runner {
	r := &Runner{
		outputFormat: OutputFormatJSON,
		maxAttempts:  defaultMaxAttempts,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(os.Stdout)
	}
	return r
}

// Run prompts for every enabled control, submits the form and returns the
// serialized value. Invalid controls are asked again until the form is valid
// or the attempt budget is spent.
func (r *Runner) Run(ctx context.Context, session *binder.Session) ([]byte, error) {
	if session == nil {
		return nil, errors.New("tui: session is nil")
	}

	paths := session.Paths()
	for round := 1; ; round++ {
		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			b, ok := session.Binding(path)
			if !ok || b.Control().Disabled() {
				continue
			}
			if err := r.ask(ctx, session, b); err != nil {
				return nil, err
			}
		}

		values, err := session.Submit()
		if err != nil {
			return nil, err
		}
		if session.Valid() {
			return r.finish(values)
		}

		invalid := invalidPaths(session)
		r.logger.Debug("form invalid after submit", "round", round, "paths", invalid)
		if len(invalid) == 0 || round >= r.maxAttempts {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(invalid, ", "))
		}
		if err := r.driver.Report(ctx, fmt.Sprintf("%s%d field(s) to correct", r.theme.InfoPrefix, len(invalid))); err != nil {
			return nil, err
		}
		for _, path := range invalid {
			b, _ := session.Binding(path)
			if err := r.reportInvalid(ctx, b); err != nil {
				return nil, err
			}
		}
		paths = invalid
	}
}

func (r *Runner) finish(values map[string]any) ([]byte, error) {
	if r.submitTransformer != nil {
		transformed, err := r.submitTransformer(values)
		if err != nil {
			return nil, err
		}
		values = transformed
	}
	return r.serialize(values)
}

// ask prompts for one binding. Controls committing on change or blur are
// validated right away and asked again while invalid.
func (r *Runner) ask(ctx context.Context, session *binder.Session, b *binder.Binding) error {
	ctrl := b.Control()
	for attempt := 1; ; attempt++ {
		if err := r.prompt(ctx, b); err != nil {
			return err
		}
		if toucher, ok := b.Accessor().(interface{ HandleBlur() }); ok {
			toucher.HandleBlur()
		}
		session.Drain()

		if ctrl.Valid() || ctrl.UpdateOn() == control.UpdateOnSubmit || attempt >= r.maxAttempts {
			return nil
		}
		if err := r.reportInvalid(ctx, b); err != nil {
			return err
		}
	}
}

func (r *Runner) prompt(ctx context.Context, b *binder.Binding) error {
	q := question(b)

	switch acc := b.Accessor().(type) {
	case *accessor.CheckboxAccessor:
		checked, _ := b.Control().Value().(bool)
		answer, err := r.driver.Toggle(ctx, q, checked)
		if err != nil {
			return err
		}
		acc.HandleChange(answer)

	case *accessor.SelectAccessor:
		cq := ChoiceQuestion{Question: q, Choices: choices(acc.OptionIDs(), acc.Labels())}
		if id, ok := acc.SelectedID(); ok {
			cq.Selected = []string{id}
		}
		id, err := r.driver.Choose(ctx, cq)
		if err != nil {
			return err
		}
		acc.HandleChange(id)

	case *accessor.SelectMultipleAccessor:
		ids, err := r.driver.ChooseMany(ctx, ChoiceQuestion{
			Question: q,
			Choices:  choices(acc.OptionIDs(), acc.Labels()),
			Selected: acc.SelectedIDs(),
		})
		if err != nil {
			return err
		}
		acc.HandleChange(ids)

	case *accessor.NumberAccessor:
		raw, err := r.driver.Number(ctx, numberQuestion(q, b.Field))
		if err != nil {
			return err
		}
		acc.HandleInput(raw)

	case *accessor.RangeAccessor:
		raw, err := r.driver.Number(ctx, numberQuestion(q, b.Field))
		if err != nil {
			return err
		}
		acc.HandleInput(raw)

	case *accessor.SanitizedTextAccessor:
		raw, err := r.driver.Text(ctx, TextQuestion{Question: q, Mode: textMode(b.Field)})
		if err != nil {
			return err
		}
		acc.HandleInput(raw)

	case *accessor.DefaultAccessor:
		raw, err := r.driver.Text(ctx, TextQuestion{Question: q, Mode: textMode(b.Field)})
		if err != nil {
			return err
		}
		acc.HandleInput(raw)

	default:
		return fmt.Errorf("%w: %T at %s", ErrUnsupportedAccessor, acc, b.Key())
	}
	return nil
}

func (r *Runner) reportInvalid(ctx context.Context, b *binder.Binding) error {
	return r.driver.Report(ctx, r.theme.ErrorPrefix+describeErrors(label(b.Field), b.Control().Errors()))
}

func question(b *binder.Binding) Question {
	return Question{
		Path:    b.Key(),
		Label:   label(b.Field),
		Help:    help(b.Field),
		Default: stringify(b.Control().Value()),
	}
}

func numberQuestion(q Question, field model.Field) NumberQuestion {
	return NumberQuestion{Question: q, Integer: field.Type == model.FieldTypeInteger}
}

func textMode(field model.Field) TextMode {
	switch field.Format {
	case "password":
		return TextSecret
	case "textarea":
		return TextMultiline
	}
	return TextLine
}

func choices(ids, labels []string) []Choice {
	out := make([]Choice, len(ids))
	for i, id := range ids {
		out[i] = Choice{ID: id, Label: id}
		if i < len(labels) {
			out[i].Label = labels[i]
		}
	}
	return out
}

func invalidPaths(session *binder.Session) []string {
	var out []string
	for _, path := range session.Paths() {
		b, ok := session.Binding(path)
		if !ok {
			continue
		}
		if ctrl := b.Control(); ctrl.Enabled() && ctrl.Invalid() {
			out = append(out, path)
		}
	}
	return out
}

func describeErrors(name string, errs control.ValidationErrors) string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return fmt.Sprintf("%s: %s", name, strings.Join(keys, ", "))
}

func label(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func help(field model.Field) string {
	if h := field.Metadata[model.MetadataHelp]; h != "" {
		return h
	}
	if field.Description != "" {
		return field.Description
	}
	if p := field.Metadata[model.MetadataPlaceholder]; p != "" {
		return "e.g. " + p
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
