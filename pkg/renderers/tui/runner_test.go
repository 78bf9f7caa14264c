package tui

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goliatone/go-formbind/pkg/binder"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/model"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

// stubDriver answers from scripts. Choices are scripted by label and
// answered with the matching option id.
type stubDriver struct {
	texts   []string
	picks   []string
	many    [][]string
	toggles []bool
	reports []string
	prompts []string
	modes   []TextMode
	seen    []Question
}

func (s *stubDriver) record(q Question) {
	s.prompts = append(s.prompts, q.Label)
	s.seen = append(s.seen, q)
}

func (s *stubDriver) nextText() (string, error) {
	if len(s.texts) == 0 {
		return "", ErrAborted
	}
	val := s.texts[0]
	s.texts = s.texts[1:]
	return val, nil
}

func (s *stubDriver) Text(_ context.Context, q TextQuestion) (string, error) {
	s.record(q.Question)
	s.modes = append(s.modes, q.Mode)
	return s.nextText()
}

func (s *stubDriver) Number(_ context.Context, q NumberQuestion) (string, error) {
	s.record(q.Question)
	val, err := s.nextText()
	if err != nil {
		return "", err
	}
	if err := q.Check(val); err != nil {
		return "", err
	}
	return val, nil
}

func (s *stubDriver) Toggle(_ context.Context, q Question, _ bool) (bool, error) {
	s.record(q)
	if len(s.toggles) == 0 {
		return false, ErrAborted
	}
	val := s.toggles[0]
	s.toggles = s.toggles[1:]
	return val, nil
}

func idFor(choices []Choice, label string) string {
	for _, c := range choices {
		if c.Label == label {
			return c.ID
		}
	}
	return ""
}

func (s *stubDriver) Choose(_ context.Context, q ChoiceQuestion) (string, error) {
	s.record(q.Question)
	if len(s.picks) == 0 {
		return "", ErrAborted
	}
	label := s.picks[0]
	s.picks = s.picks[1:]
	return idFor(q.Choices, label), nil
}

func (s *stubDriver) ChooseMany(_ context.Context, q ChoiceQuestion) ([]string, error) {
	s.record(q.Question)
	if len(s.many) == 0 {
		return nil, ErrAborted
	}
	labels := s.many[0]
	s.many = s.many[1:]
	ids := make([]string, 0, len(labels))
	for _, label := range labels {
		ids = append(ids, idFor(q.Choices, label))
	}
	return ids, nil
}

func (s *stubDriver) Report(_ context.Context, line string) error {
	s.reports = append(s.reports, line)
	return nil
}

func bindForm(t *testing.T, form model.FormModel, opts ...binder.Option) *binder.Session {
	t.Helper()
	session, err := binder.New(opts...).Bind(form)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	session.Drain()
	t.Cleanup(session.Close)
	return session
}

func nameField() model.Field {
	return model.Field{
		Name:        "name",
		Label:       "Name",
		Type:        model.FieldTypeString,
		Required:    true,
		Validations: []model.ValidationRule{{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "3"}}},
	}
}

func decode(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return got
}

func TestRun_CollectsEveryWidget(t *testing.T) {
	session := bindForm(t, model.FormModel{
		OperationID: "createProfile",
		Fields: []model.Field{
			nameField(),
			{Name: "age", Type: model.FieldTypeInteger},
			{Name: "role", Type: model.FieldTypeString, Enum: []any{"admin", "viewer"}, Default: "viewer"},
			{Name: "subscribe", Type: model.FieldTypeBoolean},
			{Name: "tags", Type: model.FieldTypeArray, Items: &model.Field{Type: model.FieldTypeString, Enum: []any{"a", "b", "c"}}},
			{Name: "secret", Type: model.FieldTypeString, Format: "password"},
			{Name: "bio", Type: model.FieldTypeString, Format: "textarea"},
		},
	})
	driver := &stubDriver{
		texts:   []string{"Ada", "42", "hunter2", "hello"},
		picks:   []string{"admin"},
		toggles: []bool{true},
		many:    [][]string{{"a", "c"}},
	}

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := decode(t, out)
	if got["name"] != "Ada" {
		t.Fatalf("name = %v", got["name"])
	}
	if got["age"] != float64(42) {
		t.Fatalf("age = %v", got["age"])
	}
	if got["role"] != "admin" {
		t.Fatalf("role = %v", got["role"])
	}
	if got["subscribe"] != true {
		t.Fatalf("subscribe = %v", got["subscribe"])
	}
	tags, ok := got["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" || tags[1] != "c" {
		t.Fatalf("tags = %v", got["tags"])
	}
	if got["secret"] != "hunter2" || got["bio"] != "hello" {
		t.Fatalf("secret/bio = %v/%v", got["secret"], got["bio"])
	}
	if driver.prompts[0] != "Name" {
		t.Fatalf("expected label as prompt message, got %q", driver.prompts[0])
	}
	if want := []TextMode{TextLine, TextSecret, TextMultiline}; !slices.Equal(driver.modes, want) {
		t.Fatalf("text modes = %v, want %v", driver.modes, want)
	}
	if len(driver.reports) != 0 {
		t.Fatalf("unexpected reports: %v", driver.reports)
	}
}

func TestRun_AsksAgainWhileChangeControlInvalid(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{nameField()}})
	driver := &stubDriver{texts: []string{"Al", "Alan"}}

	out, err := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "i ", ErrorPrefix: "! "})).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := decode(t, out); got["name"] != "Alan" {
		t.Fatalf("name = %v", got["name"])
	}
	if len(driver.reports) != 1 || driver.reports[0] != "! Name: minlength" {
		t.Fatalf("reports = %v", driver.reports)
	}
}

func TestRun_SubmitPolicyRepromptsAfterSubmit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Form.UpdateOn = "submit"
	session := bindForm(t, model.FormModel{Fields: []model.Field{
		nameField(),
		{Name: "city", Type: model.FieldTypeString},
	}}, binder.WithConfig(cfg))
	driver := &stubDriver{texts: []string{"Al", "Paris", "Alan"}}

	out, err := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "i ", ErrorPrefix: "! "})).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := decode(t, out)
	if got["name"] != "Alan" || got["city"] != "Paris" {
		t.Fatalf("values = %v", got)
	}
	if len(driver.prompts) != 3 || driver.prompts[2] != "Name" {
		t.Fatalf("expected only name to be asked again, prompts = %v", driver.prompts)
	}
	if want := []string{"i 1 field(s) to correct", "! Name: minlength"}; !slices.Equal(driver.reports, want) {
		t.Fatalf("reports = %v, want %v", driver.reports, want)
	}
}

func TestRun_GivesUpAfterMaxAttempts(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{nameField()}})
	driver := &stubDriver{texts: []string{"A"}}

	_, err := New(WithPromptDriver(driver), WithMaxAttempts(1)).Run(context.Background(), session)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected invalid path in error, got %v", err)
	}
}

func TestRun_SkipsDisabledControls(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{
		{Name: "id", Type: model.FieldTypeString, Default: "p-1", Metadata: map[string]string{model.MetadataDisabled: "true"}},
		{Name: "title", Type: model.FieldTypeString},
	}})
	driver := &stubDriver{texts: []string{"Hello"}}

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.prompts) != 1 || driver.prompts[0] != "title" {
		t.Fatalf("prompts = %v", driver.prompts)
	}
	if got := decode(t, out); got["title"] != "Hello" {
		t.Fatalf("values = %v", got)
	}
}

func TestRun_PropagatesDriverErrors(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{nameField()}})

	_, err := New(WithPromptDriver(&stubDriver{})).Run(context.Background(), session)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRun_RejectsNonNumericInput(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{{Name: "age", Type: model.FieldTypeNumber}}})

	_, err := New(WithPromptDriver(&stubDriver{texts: []string{"many"}})).Run(context.Background(), session)
	if err == nil || !strings.Contains(err.Error(), "not a number") {
		t.Fatalf("expected number validation error, got %v", err)
	}
}

func TestNumberQuestion_Check(t *testing.T) {
	cases := []struct {
		name    string
		q       NumberQuestion
		raw     string
		wantErr string
	}{
		{name: "empty clears", q: NumberQuestion{}, raw: "  "},
		{name: "decimal", q: NumberQuestion{}, raw: "4.5"},
		{name: "not a number", q: NumberQuestion{}, raw: "four", wantErr: "not a number"},
		{name: "whole number", q: NumberQuestion{Integer: true}, raw: "12"},
		{name: "fraction for integer", q: NumberQuestion{Integer: true}, raw: "4.5", wantErr: "not a whole number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Check(tc.raw)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRun_QuestionsCarryPathAndChoiceIDs(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{
		{Name: "contact", Type: model.FieldTypeObject, Nested: []model.Field{
			{Name: "channel", Type: model.FieldTypeString, Enum: []any{"email", "phone"}, Default: "phone"},
		}},
	}})
	driver := &choiceRecorder{stubDriver: stubDriver{picks: []string{"email"}}}

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := decode(t, out); got["contact"].(map[string]any)["channel"] != "email" {
		t.Fatalf("values = %v", got)
	}
	if len(driver.questions) != 1 {
		t.Fatalf("questions = %v", driver.questions)
	}
	q := driver.questions[0]
	if q.Path != "contact.channel" {
		t.Fatalf("path = %q", q.Path)
	}
	if want := []string{idFor(q.Choices, "phone")}; !slices.Equal(q.Selected, want) {
		t.Fatalf("selected = %v, want %v", q.Selected, want)
	}
}

type choiceRecorder struct {
	stubDriver
	questions []ChoiceQuestion
}

func (c *choiceRecorder) Choose(ctx context.Context, q ChoiceQuestion) (string, error) {
	c.questions = append(c.questions, q)
	return c.stubDriver.Choose(ctx, q)
}

func TestRun_SubmitTransformerAndFormOutput(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{
		{Name: "contact", Type: model.FieldTypeObject, Nested: []model.Field{
			{Name: "email", Type: model.FieldTypeString},
		}},
	}})
	driver := &stubDriver{texts: []string{"ada@example.com"}}
	runner := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatFormURLEncoded),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			values["source"] = "cli"
			return values, nil
		}),
	)

	out, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := string(out), "contact.email=ada%40example.com&source=cli"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if runner.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("content type = %q", runner.ContentType())
	}
}

func TestPrettyPrint_SortsPaths(t *testing.T) {
	got := prettyPrint(map[string]any{
		"tags":    []any{"x", "y"},
		"contact": map[string]any{"email": "a@b.c", "phone": nil},
		"age":     float64(3),
	})
	want := "age=3\ncontact.email=a@b.c\ncontact.phone=\ntags[0]=x\ntags[1]=y\n"
	if got != want {
		t.Fatalf("pretty = %q, want %q", got, want)
	}
}

func TestRun_PrettyOutputMatchesGolden(t *testing.T) {
	session := bindForm(t, model.FormModel{Fields: []model.Field{
		{Name: "age", Type: model.FieldTypeInteger},
		{Name: "contact", Type: model.FieldTypeObject, Nested: []model.Field{
			{Name: "email", Type: model.FieldTypeString},
		}},
		{Name: "role", Type: model.FieldTypeString, Enum: []any{"admin", "viewer"}},
		{Name: "tags", Type: model.FieldTypeArray, Items: &model.Field{Type: model.FieldTypeString, Enum: []any{"a", "b", "c"}}},
	}})
	driver := &stubDriver{
		texts: []string{"42", "ada@example.com"},
		picks: []string{"admin"},
		many:  [][]string{{"a", "c"}},
	}

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText)).Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	golden := filepath.Join("testdata", "profile.pretty.golden")
	if testsupport.WriteMaybeGolden(t, golden, out) {
		return
	}
	if diff := testsupport.CompareGolden(string(testsupport.MustReadGolden(t, golden)), string(out)); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
}
