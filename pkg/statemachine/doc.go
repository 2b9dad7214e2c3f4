// Package statemachine provides a small generic finite state machine.
//
// A Machine is a read-only transition table keyed by state and event. It does
// not hold a current state, so one Machine can validate transitions for any
// number of entities whose state is persisted elsewhere:
//
//	type Status string
//	type Event string
//
//	lifecycle := statemachine.New(
//	    statemachine.Transition[Status, Event]{From: "provisioning", Event: "activate", To: "active"},
//	    statemachine.Transition[Status, Event]{From: "active", Event: "suspend", To: "suspended"},
//	)
//
//	next, err := lifecycle.Next(ctx, row.Status, "suspend")
//
// Instance wraps a Machine with a mutex-protected current state for
// in-process flows such as a single provisioning run.
//
// Guards veto a transition at runtime. When several transitions share a
// state and event, the first one whose guards pass is taken. Errors are typed
// (ErrNoTransitionAvailable, ErrTransitionRejected) so callers can tell an
// undefined transition from a guarded one.
package statemachine
