package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question is what every prompt shows for one control.
type Question struct {
	Path    string
	Label   string
	Help    string
	Default string
}

// TextMode selects how free text is read.
type TextMode int

const (
	TextLine TextMode = iota
	TextSecret
	TextMultiline
)

// TextQuestion asks for free text on behalf of a text accessor.
type TextQuestion struct {
	Question
	Mode TextMode
}

// NumberQuestion asks for a number on behalf of a number or range accessor.
// An empty answer clears the control.
type NumberQuestion struct {
	Question
	Integer bool
}

// Check rejects answers the numeric accessors cannot parse.
func (q NumberQuestion) Check(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	if q.Integer && n != math.Trunc(n) {
		return fmt.Errorf("%q is not a whole number", raw)
	}
	return nil
}

// Choice is one option of a select accessor, addressed by its option id.
type Choice struct {
	ID    string
	Label string
}

// ChoiceQuestion asks for one or more option ids.
type ChoiceQuestion struct {
	Question
	Choices  []Choice
	Selected []string
}

// PromptDriver reads answers for bound controls. Implementations return
// ErrAborted when the user interrupts.
type PromptDriver interface {
	Text(ctx context.Context, q TextQuestion) (string, error)
	Number(ctx context.Context, q NumberQuestion) (string, error)
	Toggle(ctx context.Context, q Question, checked bool) (bool, error)
	Choose(ctx context.Context, q ChoiceQuestion) (string, error)
	ChooseMany(ctx context.Context, q ChoiceQuestion) ([]string, error)
	Report(ctx context.Context, line string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the survey backed driver writing reports to out.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Text(ctx context.Context, q TextQuestion) (string, error) {
	var prompt survey.Prompt
	switch q.Mode {
	case TextSecret:
		prompt = &survey.Password{Message: q.Label, Help: q.Help}
	case TextMultiline:
		prompt = &survey.Multiline{Message: q.Label, Help: q.Help, Default: q.Default}
	default:
		prompt = &survey.Input{Message: q.Label, Help: q.Help, Default: q.Default}
	}
	var out string
	return out, ask(ctx, prompt, &out)
}

func (d *surveyDriver) Number(ctx context.Context, q NumberQuestion) (string, error) {
	prompt := &survey.Input{Message: q.Label, Help: q.Help, Default: q.Default}
	validate := func(ans any) error {
		raw, _ := ans.(string)
		return q.Check(raw)
	}
	var out string
	return out, ask(ctx, prompt, &out, survey.WithValidator(validate))
}

func (d *surveyDriver) Toggle(ctx context.Context, q Question, checked bool) (bool, error) {
	prompt := &survey.Confirm{Message: q.Label, Help: q.Help, Default: checked}
	var out bool
	return out, ask(ctx, prompt, &out)
}

func (d *surveyDriver) Choose(ctx context.Context, q ChoiceQuestion) (string, error) {
	prompt := &survey.Select{Message: q.Label, Help: q.Help, Options: labelsOf(q.Choices)}
	if len(q.Selected) > 0 {
		if idx := choiceIndex(q.Choices, q.Selected[0]); idx >= 0 {
			prompt.Default = q.Choices[idx].Label
		}
	}
	var idx int
	if err := ask(ctx, prompt, &idx); err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(q.Choices) {
		return "", fmt.Errorf("tui: no option at %d for %s", idx, q.Path)
	}
	return q.Choices[idx].ID, nil
}

func (d *surveyDriver) ChooseMany(ctx context.Context, q ChoiceQuestion) ([]string, error) {
	prompt := &survey.MultiSelect{Message: q.Label, Help: q.Help, Options: labelsOf(q.Choices)}
	var defaults []string
	for _, id := range q.Selected {
		if idx := choiceIndex(q.Choices, id); idx >= 0 {
			defaults = append(defaults, q.Choices[idx].Label)
		}
	}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}
	var picked []int
	if err := ask(ctx, prompt, &picked); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(q.Choices) {
			ids = append(ids, q.Choices[idx].ID)
		}
	}
	return ids, nil
}

func (d *surveyDriver) Report(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}

func ask(ctx context.Context, prompt survey.Prompt, out any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := survey.AskOne(prompt, out, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return ErrAborted
		}
		return err
	}
	return nil
}

func labelsOf(choices []Choice) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	return labels
}

func choiceIndex(choices []Choice, id string) int {
	return slices.IndexFunc(choices, func(c Choice) bool { return c.ID == id })
}
