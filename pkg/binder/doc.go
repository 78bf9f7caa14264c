// Package binder turns a form model into a live template-driven form: a root
// form directive, model groups for nested objects and one control directive
// per field, each wired to the accessor its widget resolves to.
//
// A Session owns the deferred task queue. Hosts feed view events into the
// accessors, then call Drain on the same goroutine to let registrations,
// deferred value writes and configuration reloads run.
package binder
