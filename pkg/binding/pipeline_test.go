package binding_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbind/pkg/accessor"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/model"
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

type testDirective struct {
	path       []string
	acc        accessor.ValueAccessor
	validators []control.Validator
	async      []control.AsyncValidator
	ctl        *control.FormControl
	updates    []any
}

func (d *testDirective) Path() []string                            { return d.path }
func (d *testDirective) ValueAccessor() accessor.ValueAccessor     { return d.acc }
func (d *testDirective) Validators() []control.Validator           { return d.validators }
func (d *testDirective) AsyncValidators() []control.AsyncValidator { return d.async }
func (d *testDirective) Control() *control.FormControl             { return d.ctl }
func (d *testDirective) ViewToModelUpdate(value any)               { d.updates = append(d.updates, value) }

type fixture struct {
	view *viewRecorder
	acc  *accessor.DefaultAccessor
	ctl  *control.FormControl
	dir  *testDirective
}

func newFixture(t *testing.T, policy control.UpdateOn, p *binding.Pipeline) fixture {
	t.Helper()
	view := &viewRecorder{}
	acc := accessor.NewDefaultAccessor(view, accessor.NewElement("name", "input"))
	ctl := control.NewFormControl(nil, control.WithUpdateOn(policy))
	dir := &testDirective{path: []string{"name"}, acc: acc, ctl: ctl}
	if p == nil {
		p = binding.New()
	}
	if err := p.SetUpControl(ctl, dir); err != nil {
		t.Fatalf("SetUpControl: %v", err)
	}
	return fixture{view: view, acc: acc, ctl: ctl, dir: dir}
}

func TestSetUpControlRequiresControlAndAccessor(t *testing.T) {
	dir := &testDirective{path: []string{"user", "email"}}
	err := binding.SetUpControl(nil, dir)
	if !errors.Is(err, binding.ErrNoControl) {
		t.Fatalf("expected ErrNoControl, got %v", err)
	}
	if want := "binding: cannot find control with path: 'user -> email'"; err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}

	ctl := control.NewFormControl("x")
	dir.validators = []control.Validator{control.ValidatorFunc(validation.Required)}
	err = binding.SetUpControl(ctl, dir)
	if !errors.Is(err, binding.ErrNoValueAccessor) {
		t.Fatalf("expected ErrNoValueAccessor, got %v", err)
	}
	if ctl.Validator() != nil {
		t.Fatal("failed setup must not merge validators")
	}
}

func TestSetUpControlWritesInitialValue(t *testing.T) {
	view := &viewRecorder{}
	acc := accessor.NewDefaultAccessor(view, accessor.NewElement("name", "input"))
	dir := &testDirective{path: []string{"name"}, acc: acc}

	if err := binding.SetUpControl(control.NewFormControl(nil), dir); err != nil {
		t.Fatal(err)
	}
	if err := binding.SetUpControl(control.NewFormControl("ready"), &testDirective{path: []string{"other"}, acc: acc}); err != nil {
		t.Fatal(err)
	}

	want := []viewWrite{{accessor.PropertyValue, ""}, {accessor.PropertyValue, "ready"}}
	if diff := cmp.Diff(want, view.writes); diff != "" {
		t.Fatalf("initial writes mismatch (-want +got):\n%s", diff)
	}
}

func TestChangePolicyCommitsEveryInput(t *testing.T) {
	f := newFixture(t, control.UpdateOnChange, nil)
	writesAfterSetUp := len(f.view.writes)

	f.acc.HandleInput("a")
	f.acc.HandleInput("ab")

	if diff := cmp.Diff([]any{"a", "ab"}, f.dir.updates); diff != "" {
		t.Fatalf("model updates mismatch (-want +got):\n%s", diff)
	}
	if f.ctl.Value() != "ab" {
		t.Fatalf("expected control value ab, got %v", f.ctl.Value())
	}
	if f.ctl.HasPendingChange() {
		t.Fatal("commit must clear the pending change")
	}
	if !f.ctl.Dirty() {
		t.Fatal("view edits must mark the control dirty")
	}
	if len(f.view.writes) != writesAfterSetUp {
		t.Fatalf("view edits must not be written back, got %v", f.view.writes[writesAfterSetUp:])
	}
}

func TestChangePolicyBlurMarksTouchedOnly(t *testing.T) {
	f := newFixture(t, control.UpdateOnChange, nil)
	f.acc.HandleBlur()

	if !f.ctl.Touched() {
		t.Fatal("blur must mark the control touched")
	}
	if len(f.dir.updates) != 0 {
		t.Fatalf("blur must not publish, got %v", f.dir.updates)
	}
}

func TestBlurPolicyCommitsOnBlur(t *testing.T) {
	f := newFixture(t, control.UpdateOnBlur, nil)

	f.acc.HandleInput("x")
	if f.ctl.Value() != nil {
		t.Fatalf("input must not commit under blur policy, got %v", f.ctl.Value())
	}
	if f.ctl.PendingValue() != "x" || !f.ctl.HasPendingChange() {
		t.Fatal("input must stage the pending value")
	}
	if len(f.dir.updates) != 0 {
		t.Fatalf("unexpected updates before blur: %v", f.dir.updates)
	}

	f.acc.HandleBlur()

	if f.ctl.Value() != "x" {
		t.Fatalf("expected committed x, got %v", f.ctl.Value())
	}
	if diff := cmp.Diff([]any{"x"}, f.dir.updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
	if !f.ctl.Touched() || !f.ctl.Dirty() {
		t.Fatal("blur commit must leave the control touched and dirty")
	}
}

func TestBlurPolicyBlurWithoutPendingChange(t *testing.T) {
	f := newFixture(t, control.UpdateOnBlur, nil)
	f.acc.HandleBlur()

	if !f.ctl.Touched() {
		t.Fatal("blur must mark touched even without a pending change")
	}
	if len(f.dir.updates) != 0 {
		t.Fatalf("blur without pending change must not publish, got %v", f.dir.updates)
	}

	f.acc.HandleInput("y")
	f.acc.HandleBlur()
	f.acc.HandleBlur()
	if diff := cmp.Diff([]any{"y"}, f.dir.updates); diff != "" {
		t.Fatalf("second blur must not publish again (-want +got):\n%s", diff)
	}
}

func TestSubmitPolicyCommitsOnSync(t *testing.T) {
	f := newFixture(t, control.UpdateOnSubmit, nil)
	form := control.NewFormGroup()
	form.AddControl("name", f.ctl)

	f.acc.HandleInput("y")
	f.acc.HandleBlur()

	if f.ctl.Value() != nil || f.ctl.Touched() || f.ctl.Dirty() {
		t.Fatal("submit policy must defer value, touched and dirty")
	}
	if !f.ctl.PendingTouched() {
		t.Fatal("blur must stage touched")
	}

	binding.SyncPendingControls(form, []binding.ControlDirective{f.dir})

	if f.ctl.Value() != "y" {
		t.Fatalf("expected y after sync, got %v", f.ctl.Value())
	}
	if !f.ctl.Touched() || !f.ctl.Dirty() {
		t.Fatal("sync must commit touched and dirty")
	}
	if f.ctl.HasPendingChange() {
		t.Fatal("sync must clear the pending change")
	}
	if diff := cmp.Diff([]any{"y"}, f.dir.updates); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}

	binding.SyncPendingControls(form, []binding.ControlDirective{f.dir})
	if len(f.dir.updates) != 1 {
		t.Fatalf("second sync must be a no-op, got %v", f.dir.updates)
	}

	rawForm, err := form.ValueJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(rawForm) != `{"name":"y"}` {
		t.Fatalf("unexpected form value %s", rawForm)
	}
}

func TestSyncPendingIgnoresOtherPolicies(t *testing.T) {
	f := newFixture(t, control.UpdateOnBlur, nil)
	f.acc.HandleInput("z")

	binding.SyncPendingControls(nil, []binding.ControlDirective{f.dir})

	if len(f.dir.updates) != 0 || !f.ctl.HasPendingChange() {
		t.Fatal("sync must leave non-submit controls alone")
	}
}

func TestModelToViewRoundTrip(t *testing.T) {
	f := newFixture(t, control.UpdateOnChange, nil)

	f.ctl.SetValue("external", control.WithoutViewToModel())
	last := f.view.writes[len(f.view.writes)-1]
	if diff := cmp.Diff(viewWrite{accessor.PropertyValue, "external"}, last); diff != "" {
		t.Fatalf("view write mismatch (-want +got):\n%s", diff)
	}
	if len(f.dir.updates) != 0 {
		t.Fatalf("external assignment must not publish, got %v", f.dir.updates)
	}

	f.ctl.SetValue("programmatic")
	if diff := cmp.Diff([]any{"programmatic"}, f.dir.updates); diff != "" {
		t.Fatalf("programmatic assignment must publish (-want +got):\n%s", diff)
	}
}

func TestDisabledStatePropagatesToView(t *testing.T) {
	f := newFixture(t, control.UpdateOnChange, nil)

	f.ctl.Disable()
	f.ctl.Enable()

	var got []viewWrite
	for _, w := range f.view.writes {
		if w.Prop == accessor.PropertyDisabled {
			got = append(got, w)
		}
	}
	want := []viewWrite{{accessor.PropertyDisabled, true}, {accessor.PropertyDisabled, false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("disabled writes mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectiveValidatorsAreMerged(t *testing.T) {
	view := &viewRecorder{}
	acc := accessor.NewDefaultAccessor(view, accessor.NewElement("code", "input"))
	ctl := control.NewFormControl("", control.WithValidator(validation.MaxLength(4)))
	dir := &testDirective{
		path:       []string{"code"},
		acc:        acc,
		validators: []control.Validator{control.ValidatorFunc(validation.Required)},
	}
	if err := binding.SetUpControl(ctl, dir); err != nil {
		t.Fatal(err)
	}

	ctl.UpdateValueAndValidity()
	if _, ok := ctl.Errors()["required"]; !ok {
		t.Fatalf("expected required error, got %v", ctl.Errors())
	}

	acc.HandleInput("toolong")
	if _, ok := ctl.Errors()["maxlength"]; !ok {
		t.Fatalf("expected maxlength error, got %v", ctl.Errors())
	}

	acc.HandleInput("ok")
	if !ctl.Valid() {
		t.Fatalf("expected valid control, got %v", ctl.Errors())
	}
}

func TestValidatorChangeRevalidates(t *testing.T) {
	rule, err := validation.NewRule(model.ValidationRule{
		Kind:   model.ValidationRuleMinLength,
		Params: map[string]string{"value": "3"},
	})
	if err != nil {
		t.Fatal(err)
	}
	view := &viewRecorder{}
	acc := accessor.NewDefaultAccessor(view, accessor.NewElement("nick", "input"))
	ctl := control.NewFormControl("abcd")
	dir := &testDirective{path: []string{"nick"}, acc: acc, validators: []control.Validator{rule}}
	if err := binding.SetUpControl(ctl, dir); err != nil {
		t.Fatal(err)
	}
	ctl.UpdateValueAndValidity()
	if !ctl.Valid() {
		t.Fatalf("expected valid, got %v", ctl.Errors())
	}

	if err := rule.SetParams(map[string]string{"value": "5"}); err != nil {
		t.Fatal(err)
	}
	if !ctl.Invalid() {
		t.Fatal("changing the rule parameters must revalidate the control")
	}

	binding.CleanUpControl(ctl, dir)
	if err := rule.SetParams(map[string]string{"value": "1"}); err != nil {
		t.Fatal(err)
	}
	if !ctl.Invalid() {
		t.Fatal("cleaned up rule must not revalidate the control")
	}
}

func TestCleanUpControlDetachesAccessor(t *testing.T) {
	var detached []error
	p := binding.New(binding.WithDetachedHandler(func(err error) { detached = append(detached, err) }))
	f := newFixture(t, control.UpdateOnChange, p)

	p.CleanUpControl(f.ctl, f.dir)
	writes := len(f.view.writes)

	f.acc.HandleInput("late")
	f.acc.HandleBlur()
	f.ctl.SetValue("model")

	if len(detached) != 2 {
		t.Fatalf("expected two detached reports, got %d", len(detached))
	}
	if !errors.Is(detached[0], binding.ErrDetachedControl) {
		t.Fatalf("expected ErrDetachedControl, got %v", detached[0])
	}
	var pathErr *control.PathError
	if !errors.As(detached[0], &pathErr) || pathErr.Error() != binding.ErrDetachedControl.Error()+" name: 'name'" {
		t.Fatalf("unexpected detached error %v", detached[0])
	}
	if len(f.view.writes) != writes {
		t.Fatal("cleared control must not write into the view")
	}
	if len(f.dir.updates) != 0 {
		t.Fatalf("detached binding must not publish, got %v", f.dir.updates)
	}
}

func TestCleanUpControlDefaultHandlerPanics(t *testing.T) {
	f := newFixture(t, control.UpdateOnChange, nil)
	binding.CleanUpControl(f.ctl, f.dir)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, binding.ErrDetachedControl) {
			t.Fatalf("expected detached panic, got %v", r)
		}
	}()
	f.acc.HandleInput("boom")
}

func TestObserverSeesPipelineEvents(t *testing.T) {
	var kinds []binding.EventKind
	p := binding.New(binding.WithObserver(binding.ObserverFunc(func(e binding.Event) {
		kinds = append(kinds, e.Kind)
	})))
	f := newFixture(t, control.UpdateOnChange, p)

	f.acc.HandleInput("a")
	f.acc.HandleBlur()
	f.ctl.SetValue("b", control.WithoutViewToModel())
	p.CleanUpControl(f.ctl, f.dir)

	want := []binding.EventKind{
		binding.EventSetUp,
		binding.EventViewChange,
		binding.EventCommit,
		binding.EventTouched,
		binding.EventModelToView,
		binding.EventCleanUp,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSetUpFormContainerMergesValidators(t *testing.T) {
	group := control.NewFormGroup()
	group.AddControl("a", control.NewFormControl("x"))
	dir := &testDirective{
		path: []string{"group"},
		validators: []control.Validator{control.ValidatorFunc(func(c control.AbstractControl) control.ValidationErrors {
			return control.ValidationErrors{"group": true}
		})},
	}

	if err := binding.SetUpFormContainer(group, dir); err != nil {
		t.Fatal(err)
	}
	group.UpdateValueAndValidity()
	if !group.Invalid() {
		t.Fatal("container validator must apply to the group")
	}

	if err := binding.SetUpFormContainer(nil, dir); !errors.Is(err, binding.ErrNoControl) {
		t.Fatalf("expected ErrNoControl, got %v", err)
	}
}

func TestRadioGroupsAreScopedToParentGroup(t *testing.T) {
	view := &viewRecorder{}
	registry := accessor.NewRadioRegistry()

	bind := func(group *control.FormGroup, value string) (*accessor.RadioAccessor, *control.FormControl) {
		ctl := control.NewFormControl("no")
		group.AddControl("plan", ctl)
		acc := accessor.NewRadioAccessor(view, accessor.NewElement("plan", "radio"), registry, "plan", value)
		if err := binding.SetUpControl(ctl, &testDirective{path: []string{"plan"}, acc: acc, ctl: ctl}); err != nil {
			t.Fatalf("SetUpControl: %v", err)
		}
		return acc, ctl
	}

	first, second := control.NewFormGroup(), control.NewFormGroup()
	firstYes, firstCtl := bind(first, "yes")
	secondNo, _ := bind(second, "no")
	if !secondNo.Checked() {
		t.Fatal("second form radio should start checked")
	}

	firstYes.HandleChange()
	if firstCtl.Value() != "yes" {
		t.Fatalf("expected first control to hold yes, got %v", firstCtl.Value())
	}
	if !secondNo.Checked() {
		t.Fatal("checking a radio in one form must not uncheck another form's radio")
	}
}
