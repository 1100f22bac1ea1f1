package stay_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/stay"
)

func TestLifecycle_HappyPath(t *testing.T) {
	b := booking("b1", "101", "2024-03-10", "2024-03-12")

	b, err := stay.CheckIn(b)
	require.NoError(t, err)
	assert.Equal(t, stay.StateCheckedIn, b.State)

	b, err = stay.CheckOut(b)
	require.NoError(t, err)
	assert.Equal(t, stay.StateCheckedOut, b.State)
	assert.True(t, stay.IsTerminal(b.State))
}

func TestLifecycle_RejectedTransitions(t *testing.T) {
	tests := []struct {
		from stay.LifecycleState
		to   stay.LifecycleState
	}{
		{stay.StateConfirmed, stay.StateCheckedOut},
		{stay.StateCheckedOut, stay.StateCancelled},
		{stay.StateCancelled, stay.StateCheckedIn},
		{stay.StateCheckedIn, stay.StateConfirmed},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			b := booking("b1", "101", "2024-03-10", "2024-03-12")
			b.State = tt.from

			got, err := stay.Transition(b, tt.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generic.ErrInvalidTransition))
			assert.Equal(t, tt.from, got.State, "booking is unchanged")
		})
	}
}

func TestLifecycle_CancelFromNonTerminal(t *testing.T) {
	for _, from := range []stay.LifecycleState{stay.StateConfirmed, stay.StateCheckedIn} {
		b := booking("b1", "101", "2024-03-10", "2024-03-12")
		b.State = from
		cancelled, err := stay.Cancel(b)
		require.NoError(t, err)
		assert.True(t, cancelled.IsCancelled())
	}
}

func TestActive_DropsCancelled(t *testing.T) {
	a := booking("a", "101", "2024-03-10", "2024-03-12")
	c := booking("c", "101", "2024-03-10", "2024-03-12")
	c.State = stay.StateCancelled

	active := stay.Active([]stay.Booking{c, a})
	require.Len(t, active, 1)
	assert.Equal(t, generic.BookingID("a"), active[0].ID)
}
