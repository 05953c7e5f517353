package plugin

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"
)

// ErrAttemptNotInFlight is returned when response data arrives for an
// attempt that is not in flight.
var ErrAttemptNotInFlight = errors.New("attempt is not in flight")

// Attempt lifecycle states.
const (
	AttemptPending   = "pending"
	AttemptInFlight  = "in_flight"
	AttemptCompleted = "completed"
	AttemptFailed    = "failed"
)

// Attempt lifecycle triggers.
const (
	triggerDispatch = "dispatch"
	triggerComplete = "complete"
	triggerFail     = "fail"
)

// Attempt tracks the lifecycle of one verification attempt: pending until
// the request is dispatched, in-flight while response data may arrive,
// then completed or failed for good. The collector consults the state
// machine so that response data can only be recorded while the attempt is
// in flight.
type Attempt struct {
	// ID correlates all log lines and the final verdict of this attempt.
	ID string

	machine *stateless.StateMachine
}

// NewAttempt returns a pending attempt with a fresh ID.
func NewAttempt() *Attempt {
	machine := stateless.NewStateMachine(AttemptPending)
	machine.Configure(AttemptPending).
		Permit(triggerDispatch, AttemptInFlight)
	machine.Configure(AttemptInFlight).
		Permit(triggerComplete, AttemptCompleted).
		Permit(triggerFail, AttemptFailed)

	return &Attempt{
		ID:      uuid.New().String(),
		machine: machine,
	}
}

// Dispatch marks the request as sent; response data may now arrive.
func (a *Attempt) Dispatch() error {
	return a.machine.Fire(triggerDispatch)
}

// Complete marks the attempt finished. The collected response is frozen
// from here on.
func (a *Attempt) Complete() error {
	return a.machine.Fire(triggerComplete)
}

// Fail marks the attempt as unable to finish. Like Complete, it is
// terminal.
func (a *Attempt) Fail() error {
	return a.machine.Fire(triggerFail)
}

// State returns the current lifecycle state name.
func (a *Attempt) State() string {
	return fmt.Sprintf("%v", a.machine.MustState())
}

// ensureInFlight is the collector's write guard. It returns
// ErrAttemptNotInFlight outside the dispatch-to-completion window.
func (a *Attempt) ensureInFlight() error {
	if state := a.State(); state != AttemptInFlight {
		return fmt.Errorf("attempt %s is %s: %w", a.ID, state, ErrAttemptNotInFlight)
	}
	return nil
}
