// Package validation composes control validators and provides the built-in
// rule set: required, length bounds, numeric bounds, patterns and JSON Schema
// checks. Rule validators carry parameters that can change at runtime and
// notify the bound control when they do.
package validation

import (
	"context"

	"github.com/goliatone/go-formbind/pkg/control"
	"golang.org/x/sync/errgroup"
)

// Compose folds validators into one that runs them in order and returns the
// first non-empty result. Nil entries are skipped; composing nothing yields
// nil so callers can tell "no validation" apart from "always valid".
func Compose(validators ...control.Validator) control.ValidatorFunc {
	present := make([]control.Validator, 0, len(validators))
	for _, v := range validators {
		if !isNilValidator(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return func(c control.AbstractControl) control.ValidationErrors {
		for _, v := range present {
			if errs := v.Validate(c); len(errs) > 0 {
				return errs
			}
		}
		return nil
	}
}

// ComposeAsync folds async validators into one that runs them concurrently
// and returns the result of the first failing validator in list order. The
// first transport error cancels the others.
func ComposeAsync(validators ...control.AsyncValidator) control.AsyncValidatorFunc {
	present := make([]control.AsyncValidator, 0, len(validators))
	for _, v := range validators {
		if !isNilAsyncValidator(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return func(ctx context.Context, value any) (control.ValidationErrors, error) {
		results := make([]control.ValidationErrors, len(present))
		g, ctx := errgroup.WithContext(ctx)
		for i, v := range present {
			g.Go(func() error {
				errs, err := v.ValidateAsync(ctx, value)
				if err != nil {
					return err
				}
				results[i] = errs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, errs := range results {
			if len(errs) > 0 {
				return errs, nil
			}
		}
		return nil, nil
	}
}

func isNilValidator(v control.Validator) bool {
	if v == nil {
		return true
	}
	fn, ok := v.(control.ValidatorFunc)
	return ok && fn == nil
}

func isNilAsyncValidator(v control.AsyncValidator) bool {
	if v == nil {
		return true
	}
	fn, ok := v.(control.AsyncValidatorFunc)
	return ok && fn == nil
}
