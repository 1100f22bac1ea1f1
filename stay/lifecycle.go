package stay

import (
	"fmt"

	"github.com/warp/stay-engine/generic"
)

// =============================================================================
// LIFECYCLE - confirmed -> checked_in -> checked_out, cancel from non-terminal
// =============================================================================

var transitions = map[LifecycleState][]LifecycleState{
	StateConfirmed:  {StateCheckedIn, StateCancelled},
	StateCheckedIn:  {StateCheckedOut, StateCancelled},
	StateCheckedOut: {},
	StateCancelled:  {},
}

// CanTransition checks if the lifecycle allows from -> to.
func CanTransition(from, to LifecycleState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the state.
func IsTerminal(s LifecycleState) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Transition returns a copy of b in state `to`, or ErrInvalidTransition.
func Transition(b Booking, to LifecycleState) (Booking, error) {
	if !CanTransition(b.State, to) {
		return b, fmt.Errorf("booking %s: %s -> %s: %w", b.ID, b.State, to, generic.ErrInvalidTransition)
	}
	b.State = to
	return b, nil
}

func CheckIn(b Booking) (Booking, error)  { return Transition(b, StateCheckedIn) }
func CheckOut(b Booking) (Booking, error) { return Transition(b, StateCheckedOut) }
func Cancel(b Booking) (Booking, error)   { return Transition(b, StateCancelled) }
