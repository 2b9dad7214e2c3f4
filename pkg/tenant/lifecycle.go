package tenant

import (
	"context"

	"github.com/dmitrymomot/storekit/pkg/statemachine"
)

// Event moves a tenant between statuses.
type Event string

const (
	EventActivate  Event = "activate"
	EventFail      Event = "fail"
	EventSuspend   Event = "suspend"
	EventReinstate Event = "reinstate"
)

// Lifecycle is the tenant status transition table.
var Lifecycle = statemachine.New(
	statemachine.Transition[Status, Event]{From: StatusProvisioning, Event: EventActivate, To: StatusActive},
	statemachine.Transition[Status, Event]{From: StatusProvisioning, Event: EventFail, To: StatusFailed},
	statemachine.Transition[Status, Event]{From: StatusActive, Event: EventSuspend, To: StatusSuspended},
	statemachine.Transition[Status, Event]{From: StatusSuspended, Event: EventReinstate, To: StatusActive},
)

// NextStatus returns the status reached by firing event on a tenant in from.
func NextStatus(ctx context.Context, from Status, event Event) (Status, error) {
	return Lifecycle.Next(ctx, from, event)
}
