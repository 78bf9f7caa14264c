// Package binding wires a control to the value accessor chosen for it.
//
// SetUpControl installs three pipelines: view to model (accessor change
// callback stages a pending value and commits it according to the control's
// UpdateOn policy), blur to touched, and model to view (control change
// listeners write into the accessor and, when asked to, notify the
// directive). None of them re-enters the accessor a change came from.
// CleanUpControl replaces the accessor callbacks with stubs that report a
// detached control, and SyncPendingControls publishes the last buffered
// edit of submit-policy controls.
package binding
