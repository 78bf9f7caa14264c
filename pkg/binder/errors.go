package binder

import "errors"

var (
	// ErrOperationNotFound is returned when an OpenAPI document has no
	// operation with the requested id.
	ErrOperationNotFound = errors.New("binder: operation not found")
	// ErrUnknownPath is returned when a session has no binding at a path.
	ErrUnknownPath = errors.New("binder: no binding at path")
	// ErrClosed is returned by sessions after Close.
	ErrClosed = errors.New("binder: session closed")
)
