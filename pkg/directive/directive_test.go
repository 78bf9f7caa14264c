package directive_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/directive"
	"github.com/goliatone/go-formbind/pkg/scheduler"
	"github.com/goliatone/go-formbind/pkg/validation"
)

type viewWrite struct {
	Prop  string
	Value any
}

type viewRecorder struct {
	writes []viewWrite
}

func (r *viewRecorder) SetProperty(_ *accessor.Element, name string, value any) {
	r.writes = append(r.writes, viewWrite{Prop: name, Value: value})
}

func (r *viewRecorder) last(prop string) (any, bool) {
	for i := len(r.writes) - 1; i >= 0; i-- {
		if r.writes[i].Prop == prop {
			return r.writes[i].Value, true
		}
	}
	return nil, false
}

type reactiveParent struct {
	kind directive.ContainerKind
}

func (p reactiveParent) Path() []string                         { return []string{"reactive"} }
func (p reactiveParent) FormDirective() *directive.Form         { return nil }
func (p reactiveParent) ContainerKind() directive.ContainerKind { return p.kind }

type harness struct {
	queue   *scheduler.Queue
	view    *viewRecorder
	acc     *accessor.DefaultAccessor
	model   *directive.Model
	emitted []any
}

func newHarness(t *testing.T, parent directive.Container, q *scheduler.Queue, opts ...directive.ModelOption) *harness {
	t.Helper()
	h := &harness{queue: q, view: &viewRecorder{}}
	h.acc = accessor.NewDefaultAccessor(h.view, accessor.NewElement("field", "input"))
	deps := directive.Dependencies{
		Parent:    parent,
		Accessors: []accessor.ValueAccessor{h.acc},
	}
	if q != nil {
		deps.Scheduler = q
	}
	m, err := directive.NewModel(deps, opts...)
	require.NoError(t, err)
	m.OnModelChange(func(v any) { h.emitted = append(h.emitted, v) })
	h.model = m
	return h
}

func first(key string, value any) directive.Changes {
	return directive.Changes{key: {Current: value, FirstChange: true}}
}

func TestStandaloneModelTypingScenario(t *testing.T) {
	h := newHarness(t, nil, scheduler.New())

	require.NoError(t, h.model.OnChanges(first(directive.InputModel, "init")))
	assert.True(t, h.model.Registered())
	assert.Nil(t, h.model.Control().Value(), "value assignment must be deferred")
	assert.Equal(t, "init", h.model.ViewModel())

	assert.Equal(t, 1, h.queue.Drain())
	assert.Equal(t, "init", h.model.Control().Value())
	written, _ := h.view.last(accessor.PropertyValue)
	assert.Equal(t, "init", written)
	assert.Empty(t, h.emitted, "external assignment must not publish")

	h.acc.HandleInput("a")
	h.acc.HandleInput("ab")

	assert.Equal(t, []any{"a", "ab"}, h.emitted)
	assert.Equal(t, "ab", h.model.Control().Value())
	assert.Equal(t, "ab", h.model.ViewModel())

	// The host echoes the emitted value back as the model input.
	require.NoError(t, h.model.OnChanges(directive.Changes{
		directive.InputModel: {Previous: "init", Current: "ab"},
	}))
	assert.Equal(t, 0, h.queue.Len())
}

func TestStandaloneModelValidityIsSilent(t *testing.T) {
	h := newHarness(t, nil, scheduler.New())
	statuses := 0
	h.model.Control().OnStatusChange(func(control.Status) { statuses++ })

	require.NoError(t, h.model.OnChanges(directive.Changes{}))
	assert.Equal(t, 0, statuses)
}

func TestModelExternalValueDeferredInOrder(t *testing.T) {
	h := newHarness(t, nil, scheduler.New())
	require.NoError(t, h.model.OnChanges(first(directive.InputModel, 1)))
	require.NoError(t, h.model.OnChanges(directive.Changes{directive.InputModel: {Previous: 1, Current: 2}}))
	require.NoError(t, h.model.OnChanges(directive.Changes{directive.InputModel: {Previous: 2, Current: 3}}))

	assert.Equal(t, 3, h.queue.Len())
	h.queue.Drain()
	assert.Equal(t, 3, h.model.Control().Value())
}

func TestModelDisabledInput(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  bool
	}{
		{"empty string", "", true},
		{"true string", "true", true},
		{"any string", "disabled", true},
		{"false string", "false", false},
		{"bool true", true, true},
		{"bool false", false, false},
		{"nil", nil, false},
		{"one", 1, true},
		{"zero", 0, false},
		{"nan", math.NaN(), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, nil, scheduler.New())
			require.NoError(t, h.model.OnChanges(first(directive.InputDisabled, tc.input)))
			assert.False(t, h.model.Control().Disabled(), "toggle must be deferred")

			h.queue.Drain()
			assert.Equal(t, tc.want, h.model.Control().Disabled())
		})
	}
}

func TestModelDisabledReflectsInView(t *testing.T) {
	h := newHarness(t, nil, scheduler.New())
	require.NoError(t, h.model.OnChanges(first(directive.InputDisabled, true)))
	h.queue.Drain()
	disabled, ok := h.view.last(accessor.PropertyDisabled)
	require.True(t, ok)
	assert.Equal(t, true, disabled)

	require.NoError(t, h.model.OnChanges(directive.Changes{directive.InputDisabled: {Previous: true, Current: "false"}}))
	h.queue.Drain()
	assert.True(t, h.model.Control().Enabled())
	disabled, _ = h.view.last(accessor.PropertyDisabled)
	assert.Equal(t, false, disabled)
}

func TestModelOptionsUpdateOn(t *testing.T) {
	h := newHarness(t, nil, scheduler.New())
	require.NoError(t, h.model.OnChanges(first(directive.InputOptions, directive.Options{UpdateOn: control.UpdateOnBlur})))
	assert.Equal(t, control.UpdateOnBlur, h.model.Control().UpdateOn())

	h.acc.HandleInput("x")
	assert.Empty(t, h.emitted)
	h.acc.HandleBlur()
	assert.Equal(t, []any{"x"}, h.emitted)
}

func TestModelPreconditions(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)

	t.Run("missing name", func(t *testing.T) {
		h := newHarness(t, form, q)
		err := h.model.OnChanges(first(directive.InputModel, "x"))
		assert.ErrorIs(t, err, directive.ErrMissingName)
		assert.False(t, h.model.Registered())
	})

	t.Run("name from options", func(t *testing.T) {
		h := newHarness(t, form, q)
		require.NoError(t, h.model.OnChanges(first(directive.InputOptions, &directive.Options{Name: "alias"})))
		assert.Equal(t, []string{"alias"}, h.model.Path())
	})

	t.Run("reactive group name parent", func(t *testing.T) {
		h := newHarness(t, reactiveParent{kind: directive.KindGroupName}, q)
		err := h.model.OnChanges(first(directive.InputName, "x"))
		assert.ErrorIs(t, err, directive.ErrFormGroupName)
		assert.ErrorIs(t, err, directive.ErrStructuralBinding)
	})

	t.Run("reactive form parent", func(t *testing.T) {
		h := newHarness(t, reactiveParent{kind: directive.KindReactiveForm}, q)
		err := h.model.OnChanges(first(directive.InputName, "x"))
		assert.ErrorIs(t, err, directive.ErrStructuralBinding)
		assert.NotErrorIs(t, err, directive.ErrFormGroupName)
	})

	t.Run("standalone option skips parent checks", func(t *testing.T) {
		h := newHarness(t, reactiveParent{kind: directive.KindReactiveForm}, q)
		err := h.model.OnChanges(first(directive.InputOptions, directive.Options{Standalone: true}))
		require.NoError(t, err)
		assert.True(t, h.model.Registered())
	})
}

func TestNewModelErrors(t *testing.T) {
	_, err := directive.NewModel(directive.Dependencies{})
	assert.ErrorIs(t, err, directive.ErrNoScheduler)

	view := &viewRecorder{}
	el := accessor.NewElement("x", "input")
	_, err = directive.NewModel(directive.Dependencies{
		Scheduler: scheduler.New(),
		Accessors: []accessor.ValueAccessor{
			accessor.NewSanitizedTextAccessor(view, el),
			accessor.NewSanitizedTextAccessor(view, el),
		},
	})
	assert.ErrorIs(t, err, accessor.ErrMultipleAccessors)

	_, err = directive.NewModel(directive.Dependencies{
		Scheduler: scheduler.New(),
		Accessors: []accessor.ValueAccessor{},
	})
	assert.ErrorIs(t, err, accessor.ErrNoAccessor)

	m, err := directive.NewModel(directive.Dependencies{Scheduler: scheduler.New()})
	require.NoError(t, err)
	err = m.OnChanges(first(directive.InputName, "x"))
	assert.ErrorIs(t, err, binding.ErrNoValueAccessor)
	assert.False(t, m.Registered())
}

func TestFormRegistrationIsDeferred(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)
	h := newHarness(t, form, nil)

	require.NoError(t, h.model.OnChanges(directive.Changes{
		directive.InputName:  {Current: "email", FirstChange: true},
		directive.InputModel: {Current: "a@b.c", FirstChange: true},
	}))
	assert.Empty(t, form.Controls())

	q.Drain()
	assert.Same(t, h.model.Control(), form.GetControl(h.model))
	assert.Equal(t, map[string]any{"email": "a@b.c"}, form.Value())
	assert.Equal(t, []string{"email"}, h.model.Path())
	assert.Len(t, form.Directives(), 1)
}

func TestFormRejectsDuplicateNames(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)

	a := newHarness(t, form, q)
	require.NoError(t, a.model.OnChanges(first(directive.InputName, "email")))
	b := newHarness(t, form, q)
	err = b.model.OnChanges(first(directive.InputName, "email"))
	require.ErrorIs(t, err, directive.ErrDuplicateControl)
	assert.Contains(t, err.Error(), "name: 'email'")

	q.Drain()
	assert.Same(t, a.model.Control(), form.GetControl(a.model))
}

func TestModelGroupNesting(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)
	group := directive.NewModelGroup(form, "address", nil, nil)
	require.NoError(t, group.OnInit())

	h := newHarness(t, group, nil)
	require.NoError(t, h.model.OnChanges(directive.Changes{
		directive.InputName:  {Current: "city", FirstChange: true},
		directive.InputModel: {Current: "Lisbon", FirstChange: true},
	}))
	q.Drain()

	assert.Equal(t, []string{"address", "city"}, h.model.Path())
	require.NotNil(t, group.Control())
	assert.Same(t, h.model.Control(), form.Group().Get("address", "city"))
	assert.Equal(t, map[string]any{"address": map[string]any{"city": "Lisbon"}}, form.Value())

	group.OnDestroy()
	q.Drain()
	assert.Nil(t, group.Control())
}

func TestModelGroupValidatorsApply(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)
	always := control.ValidatorFunc(func(control.AbstractControl) control.ValidationErrors {
		return control.ValidationErrors{"group": true}
	})
	group := directive.NewModelGroup(form, "g", []control.Validator{always}, nil)
	require.NoError(t, group.OnInit())
	q.Drain()

	require.NotNil(t, group.Control())
	assert.True(t, group.Control().Invalid())
	assert.True(t, form.Group().Invalid())
}

func TestModelGroupParentChecks(t *testing.T) {
	group := directive.NewModelGroup(reactiveParent{kind: directive.KindGroupName}, "g", nil, nil)
	assert.ErrorIs(t, group.OnInit(), directive.ErrFormGroupName)

	orphan := directive.NewModelGroup(nil, "g", nil, nil)
	assert.ErrorIs(t, orphan.OnInit(), directive.ErrStructuralBinding)
}

func TestFormSubmitPolicyScenario(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q, directive.WithFormUpdateOn(control.UpdateOnSubmit))
	require.NoError(t, err)
	var submitted []map[string]any
	form.OnSubmit(func(v map[string]any) { submitted = append(submitted, v) })

	h := newHarness(t, form, nil)
	require.NoError(t, h.model.OnChanges(first(directive.InputName, "name")))
	q.Drain()

	h.acc.HandleInput("y")
	h.acc.HandleBlur()
	assert.Nil(t, h.model.Control().Value())
	assert.Empty(t, h.emitted)
	assert.False(t, h.model.Control().Touched())

	form.Submit()

	assert.True(t, form.Submitted())
	assert.Equal(t, "y", h.model.Control().Value())
	assert.True(t, h.model.Control().Touched())
	assert.Equal(t, []any{"y"}, h.emitted)
	assert.Equal(t, []map[string]any{{"name": "y"}}, submitted)

	resets := 0
	form.OnReset(func() { resets++ })
	form.Reset(nil)
	assert.False(t, form.Submitted())
	assert.Equal(t, 1, resets)
	assert.Nil(t, h.model.Control().Value())
}

func TestFormValidatorsAndUpdateModel(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q, directive.WithFormValidators(control.ValidatorFunc(validation.Required)))
	require.NoError(t, err)
	h := newHarness(t, form, nil, directive.WithControlOptions(control.WithValidator(validation.MinLength(3))))
	require.NoError(t, h.model.OnChanges(first(directive.InputName, "code")))
	q.Drain()

	form.UpdateModel(h.model, "ab")
	q.Drain()
	assert.Equal(t, "ab", h.model.Control().Value())
	assert.Equal(t, []any{"ab"}, h.emitted)
	assert.True(t, h.model.Control().Invalid())
	assert.True(t, form.Group().Invalid())
}

func TestFormRemoveControlTearsDown(t *testing.T) {
	q := scheduler.New()
	var detached []error
	pipeline := binding.New(binding.WithDetachedHandler(func(err error) { detached = append(detached, err) }))
	form, err := directive.NewForm(q, directive.WithFormPipeline(pipeline))
	require.NoError(t, err)

	h := newHarness(t, form, nil)
	require.NoError(t, h.model.OnChanges(first(directive.InputName, "email")))
	q.Drain()
	require.Contains(t, form.Controls(), "email")

	h.model.OnDestroy()
	assert.Contains(t, form.Controls(), "email", "removal must be deferred")
	q.Drain()

	assert.NotContains(t, form.Controls(), "email")
	assert.Empty(t, form.Directives())
	h.acc.HandleInput("late")
	require.Len(t, detached, 1)
	assert.ErrorIs(t, detached[0], binding.ErrDetachedControl)

	// The name can be claimed again once released.
	again := newHarness(t, form, nil)
	require.NoError(t, again.model.OnChanges(first(directive.InputName, "email")))
}

func TestFormAddThenRemoveBeforeDrain(t *testing.T) {
	q := scheduler.New()
	form, err := directive.NewForm(q)
	require.NoError(t, err)
	h := newHarness(t, form, nil)
	require.NoError(t, h.model.OnChanges(first(directive.InputName, "email")))
	h.model.OnDestroy()
	q.Drain()

	assert.Empty(t, form.Controls())
}

func TestFormReportsMissingContainer(t *testing.T) {
	q := scheduler.New()
	var reported []error
	form, err := directive.NewForm(q, directive.WithFormErrorHandler(func(err error) { reported = append(reported, err) }))
	require.NoError(t, err)
	group := directive.NewModelGroup(form, "ghost", nil, nil)

	h := newHarness(t, group, nil)
	require.NoError(t, h.model.OnChanges(first(directive.InputName, "x")))
	q.Drain()

	require.Len(t, reported, 1)
	assert.True(t, errors.Is(reported[0], directive.ErrNoContainer))
	assert.Contains(t, reported[0].Error(), "path: 'ghost -> x'")
}

func TestStandaloneOnDestroyCleansUp(t *testing.T) {
	var detached int
	pipeline := binding.New(binding.WithDetachedHandler(func(error) { detached++ }))
	h := newHarness(t, nil, scheduler.New(), directive.WithModelPipeline(pipeline))
	require.NoError(t, h.model.OnChanges(first(directive.InputModel, "v")))

	h.model.OnDestroy()
	h.acc.HandleBlur()
	assert.Equal(t, 1, detached)
}

func TestNewFormRequiresScheduler(t *testing.T) {
	_, err := directive.NewForm(nil)
	assert.ErrorIs(t, err, directive.ErrNoScheduler)
}
