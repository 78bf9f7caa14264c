// Package formbind binds OpenAPI request bodies to live form controls.
//
// The root package offers shortcuts over the packages under pkg/: load a
// document, pick an operation, and get a binder.Session whose controls are
// wired to view accessors and validators.
package formbind

import (
	"context"

	"github.com/goliatone/go-formbind/pkg/binder"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/openapi"
)

// Session aliases binder.Session.
type Session = binder.Session

// Config aliases config.Config.
type Config = config.Config

// NewLoader constructs an OpenAPI loader.
func NewLoader(options ...openapi.LoaderOption) openapi.Loader {
	return openapi.NewLoader(options...)
}

// NewParser constructs an OpenAPI parser.
func NewParser(options ...openapi.ParserOption) openapi.Parser {
	return openapi.NewParser(options...)
}

// NewBinder exposes the binder constructor from the top-level module.
func NewBinder(options ...binder.Option) *binder.Binder {
	return binder.New(options...)
}

// BindOperation loads source, builds the form model for operationID and
// binds it. Pending registrations are drained before returning.
func BindOperation(ctx context.Context, source openapi.Source, operationID string, options ...binder.Option) (*Session, error) {
	session, err := binder.New(options...).BindOperation(ctx, source, operationID)
	if err != nil {
		return nil, err
	}
	session.Drain()
	return session, nil
}

// BindDocument binds operationID from a pre-loaded document, bypassing the
// loader stage.
func BindDocument(ctx context.Context, doc openapi.Document, operationID string, options ...binder.Option) (*Session, error) {
	session, err := binder.New(options...).BindDocument(ctx, doc, operationID)
	if err != nil {
		return nil, err
	}
	session.Drain()
	return session, nil
}

// LoadConfig reads a binding config file. A missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	return config.NewLoader(path).Load()
}
