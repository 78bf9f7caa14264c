package binding

import "github.com/goliatone/go-formbind/pkg/control"

// EventKind names a pipeline transition.
type EventKind string

const (
	EventSetUp       EventKind = "setup"
	EventSetUpFailed EventKind = "setup_failed"
	EventViewChange  EventKind = "view_change"
	EventCommit      EventKind = "commit"
	EventTouched     EventKind = "touched"
	EventModelToView EventKind = "model_to_view"
	EventSyncPending EventKind = "sync_pending"
	EventCleanUp     EventKind = "cleanup"
	EventDetached    EventKind = "detached"
)

// Event describes one pipeline transition for a control.
type Event struct {
	Kind   EventKind
	Path   []string
	Policy control.UpdateOn
}

// Observer receives pipeline events synchronously.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
