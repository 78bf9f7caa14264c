// Package directive hosts template-driven bindings: Model binds one external
// value to a control and accessor, Form is the root container that registers
// Models and submits them, and ModelGroup nests controls under a name.
//
// The host drives a Model by calling OnChanges once per change-detection
// pass with the inputs that changed, and by draining the scheduler between
// passes. Value and disabled assignments triggered by input changes, as well
// as form registrations, run on the scheduler rather than inside the pass.
package directive
