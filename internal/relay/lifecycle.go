package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/m3rciful/hallbot/internal/questions"
)

// Question lifecycle states. Answered and closed records are deleted right
// away, so those states are only ever observed mid-transition.
const (
	StateNone     = "none"
	StateOpen     = "open"
	StateArmed    = "armed"
	StateAnswered = "answered"
	StateClosed   = "closed"
)

// Lifecycle events, one per relay transition.
const (
	EventSubmit  = "submit"
	EventArm     = "arm"
	EventDeliver = "deliver"
	EventClose   = "close"
)

var lifecycleEvents = fsm.Events{
	{Name: EventSubmit, Src: []string{StateNone, StateOpen, StateArmed, StateAnswered}, Dst: StateOpen},
	{Name: EventArm, Src: []string{StateOpen, StateArmed}, Dst: StateArmed},
	{Name: EventDeliver, Src: []string{StateArmed}, Dst: StateAnswered},
	{Name: EventClose, Src: []string{StateOpen, StateArmed}, Dst: StateClosed},
}

// StateOf derives the lifecycle state of a stored record.
func StateOf(rec questions.Record, found bool) string {
	switch {
	case !found:
		return StateNone
	case rec.Answered:
		return StateAnswered
	case rec.ReadyForReply:
		return StateArmed
	default:
		return StateOpen
	}
}

// checkTransition reports whether event may fire from the record's state.
// Re-entering the same state (a second submit or a second arm) is allowed.
func checkTransition(ctx context.Context, rec questions.Record, found bool, event string) error {
	from := StateOf(rec, found)
	machine := fsm.NewFSM(from, lifecycleEvents, fsm.Callbacks{})
	err := machine.Event(ctx, event)
	if err == nil {
		return nil
	}
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return nil
	}
	return fmt.Errorf("relay: %s not allowed from %s: %w", event, from, err)
}

// isInvalidTransition reports whether err came from checkTransition rejecting an event.
func isInvalidTransition(err error) bool {
	var invalid fsm.InvalidEventError
	return errors.As(err, &invalid)
}
