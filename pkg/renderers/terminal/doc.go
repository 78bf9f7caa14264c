// Package terminal hosts a bound session in a tcell screen. View is the
// element store the accessors write to, TextField translates key and paste
// events into accessor input and composition calls, and App ties both to a
// binder.Session and an event loop.
package terminal
