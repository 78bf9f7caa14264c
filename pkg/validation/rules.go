package validation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formbind/pkg/control"
	"github.com/goliatone/go-formbind/pkg/model"
)

var (
	// ErrUnknownRule is returned for rule kinds outside the built-in set.
	ErrUnknownRule = errors.New("validation: unknown rule")
	// ErrInvalidParams is returned when rule parameters cannot be parsed.
	ErrInvalidParams = errors.New("validation: invalid rule params")
)

var emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Required fails for nil, empty strings and empty collections.
func Required(c control.AbstractControl) control.ValidationErrors {
	if isEmptyInputValue(c.Value()) {
		return control.ValidationErrors{"required": true}
	}
	return nil
}

// RequiredTrue fails unless the value is the boolean true.
func RequiredTrue(c control.AbstractControl) control.ValidationErrors {
	if v, ok := c.Value().(bool); ok && v {
		return nil
	}
	return control.ValidationErrors{"required": true}
}

// Email fails for non-empty values that do not look like an address.
func Email(c control.AbstractControl) control.ValidationErrors {
	return checkEmail(c.Value())
}

// MinLength fails when a non-empty value is shorter than n.
func MinLength(n int) control.ValidatorFunc {
	return func(c control.AbstractControl) control.ValidationErrors { return checkMinLength(n, c.Value()) }
}

// MaxLength fails when a value is longer than n.
func MaxLength(n int) control.ValidatorFunc {
	return func(c control.AbstractControl) control.ValidationErrors { return checkMaxLength(n, c.Value()) }
}

// Min fails when a numeric value is below bound.
func Min(bound float64) control.ValidatorFunc {
	return func(c control.AbstractControl) control.ValidationErrors { return checkMin(bound, c.Value()) }
}

// Max fails when a numeric value is above bound.
func Max(bound float64) control.ValidatorFunc {
	return func(c control.AbstractControl) control.ValidationErrors { return checkMax(bound, c.Value()) }
}

// Pattern fails when a non-empty value does not fully match expr.
func Pattern(expr string) (control.ValidatorFunc, error) {
	re, anchored, err := compilePattern(expr)
	if err != nil {
		return nil, err
	}
	return func(c control.AbstractControl) control.ValidationErrors {
		return checkPattern(re, anchored, c.Value())
	}, nil
}

// Rule is a validator built from a model.ValidationRule. Its parameters can
// be replaced at runtime; the bound control is told to revalidate when they
// change.
type Rule struct {
	kind     string
	params   map[string]string
	check    func(any) control.ValidationErrors
	onChange func()
}

var (
	_ control.Validator               = (*Rule)(nil)
	_ control.ValidatorChangeNotifier = (*Rule)(nil)
)

// NewRule compiles rule.
func NewRule(rule model.ValidationRule) (*Rule, error) {
	kind := strings.TrimSpace(rule.Kind)
	check, err := compileRule(kind, rule.Params)
	if err != nil {
		return nil, err
	}
	return &Rule{kind: kind, params: maps.Clone(rule.Params), check: check}, nil
}

// FromRules compiles every rule, failing on the first invalid one.
func FromRules(rules []model.ValidationRule) ([]*Rule, error) {
	out := make([]*Rule, 0, len(rules))
	for _, raw := range rules {
		rule, err := NewRule(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

// ForField compiles the rules implied by a field: required first, then the
// declared validations.
func ForField(field model.Field) ([]*Rule, error) {
	rules := field.Validations
	if field.Required && !hasRule(rules, model.ValidationRuleRequired) {
		rules = append([]model.ValidationRule{{Kind: model.ValidationRuleRequired}}, rules...)
	}
	return FromRules(rules)
}

// Kind returns the rule identifier.
func (r *Rule) Kind() string { return r.kind }

// Params returns a copy of the current parameters.
func (r *Rule) Params() map[string]string { return maps.Clone(r.params) }

// Validate implements control.Validator.
func (r *Rule) Validate(c control.AbstractControl) control.ValidationErrors {
	if r == nil || r.check == nil {
		return nil
	}
	return r.check(c.Value())
}

// SetParams recompiles the rule with params and notifies the registered
// callback when they differ from the current ones.
func (r *Rule) SetParams(params map[string]string) error {
	if maps.Equal(r.params, params) {
		return nil
	}
	check, err := compileRule(r.kind, params)
	if err != nil {
		return err
	}
	r.params = maps.Clone(params)
	r.check = check
	if r.onChange != nil {
		r.onChange()
	}
	return nil
}

// RegisterOnValidatorChange implements control.ValidatorChangeNotifier.
func (r *Rule) RegisterOnValidatorChange(fn func()) { r.onChange = fn }

func hasRule(rules []model.ValidationRule, kind string) bool {
	for _, rule := range rules {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

func compileRule(kind string, params map[string]string) (func(any) control.ValidationErrors, error) {
	switch kind {
	case model.ValidationRuleRequired:
		return func(v any) control.ValidationErrors {
			if isEmptyInputValue(v) {
				return control.ValidationErrors{"required": true}
			}
			return nil
		}, nil
	case model.ValidationRuleEmail:
		return checkEmail, nil
	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		n, err := strconv.Atoi(strings.TrimSpace(params["value"]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %s value %q", ErrInvalidParams, kind, params["value"])
		}
		if kind == model.ValidationRuleMinLength {
			return func(v any) control.ValidationErrors { return checkMinLength(n, v) }, nil
		}
		return func(v any) control.ValidationErrors { return checkMaxLength(n, v) }, nil
	case model.ValidationRuleMin, model.ValidationRuleMax:
		bound, err := strconv.ParseFloat(strings.TrimSpace(params["value"]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q", ErrInvalidParams, kind, params["value"])
		}
		exclusive := strings.EqualFold(params["exclusive"], "true")
		if kind == model.ValidationRuleMin {
			return func(v any) control.ValidationErrors {
				if exclusive {
					if n, ok := toFloat(v); ok && n <= bound {
						return control.ValidationErrors{"min": map[string]any{"min": bound, "actual": n, "exclusive": true}}
					}
					return nil
				}
				return checkMin(bound, v)
			}, nil
		}
		return func(v any) control.ValidationErrors {
			if exclusive {
				if n, ok := toFloat(v); ok && n >= bound {
					return control.ValidationErrors{"max": map[string]any{"max": bound, "actual": n, "exclusive": true}}
				}
				return nil
			}
			return checkMax(bound, v)
		}, nil
	case model.ValidationRulePattern:
		expr := params["pattern"]
		if expr == "" {
			expr = params["value"]
		}
		re, anchored, err := compilePattern(expr)
		if err != nil {
			return nil, err
		}
		return func(v any) control.ValidationErrors { return checkPattern(re, anchored, v) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, kind)
	}
}

func checkEmail(v any) control.ValidationErrors {
	if isEmptyInputValue(v) {
		return nil
	}
	s, ok := v.(string)
	if !ok || !emailPattern.MatchString(s) {
		return control.ValidationErrors{"email": true}
	}
	return nil
}

func checkMinLength(n int, v any) control.ValidationErrors {
	if isEmptyInputValue(v) {
		return nil
	}
	length, ok := lengthOf(v)
	if ok && length < n {
		return control.ValidationErrors{"minlength": map[string]any{"requiredLength": n, "actualLength": length}}
	}
	return nil
}

func checkMaxLength(n int, v any) control.ValidationErrors {
	length, ok := lengthOf(v)
	if ok && length > n {
		return control.ValidationErrors{"maxlength": map[string]any{"requiredLength": n, "actualLength": length}}
	}
	return nil
}

func checkMin(bound float64, v any) control.ValidationErrors {
	if n, ok := toFloat(v); ok && n < bound {
		return control.ValidationErrors{"min": map[string]any{"min": bound, "actual": n}}
	}
	return nil
}

func checkMax(bound float64, v any) control.ValidationErrors {
	if n, ok := toFloat(v); ok && n > bound {
		return control.ValidationErrors{"max": map[string]any{"max": bound, "actual": n}}
	}
	return nil
}

func compilePattern(expr string) (*regexp.Regexp, string, error) {
	if expr == "" {
		return nil, "", fmt.Errorf("%w: empty pattern", ErrInvalidParams)
	}
	anchored := expr
	if !strings.HasPrefix(anchored, "^") {
		anchored = "^" + anchored
	}
	if !strings.HasSuffix(anchored, "$") {
		anchored += "$"
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, "", fmt.Errorf("%w: pattern %q: %v", ErrInvalidParams, expr, err)
	}
	return re, anchored, nil
}

func checkPattern(re *regexp.Regexp, anchored string, v any) control.ValidationErrors {
	if isEmptyInputValue(v) {
		return nil
	}
	s := fmt.Sprint(v)
	if !re.MatchString(s) {
		return control.ValidationErrors{"pattern": map[string]any{"requiredPattern": anchored, "actualValue": s}}
	}
	return nil
}

func isEmptyInputValue(v any) bool {
	if v == nil {
		return true
	}
	length, ok := lengthOf(v)
	return ok && length == 0
}

func lengthOf(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return n, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
