package shift_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
)

func cell(staff, date string) shift.Cell {
	return shift.Cell{StaffID: generic.StaffID(staff), Date: generic.MustParseDate(date)}
}

func TestAdvance_FourStepsReturnToEmpty(t *testing.T) {
	// GIVEN: Cells on every day of a week
	// WHEN: Advancing each four times from Empty
	// THEN: The sequence is M08, M09, E16, Empty

	week := generic.WeekOf(generic.MustParseDate("2024-03-11"))
	for _, day := range week.Days() {
		c := shift.Cell{StaffID: "anna", Date: day}

		var current *shift.Assignment
		var seen []string
		for i := 0; i < 4; i++ {
			next, err := shift.Advance(c, current)
			require.NoError(t, err)
			state, err := shift.StateOf(next)
			require.NoError(t, err)
			seen = append(seen, state.String())
			current = next
		}

		assert.Nil(t, current, "back to Empty on %s", day)
		assert.Equal(t, []string{"morning@08:00", "morning@09:00", "evening@16:00", "empty"}, seen)
	}
}

func TestAdvance_SlotTimes(t *testing.T) {
	c := cell("anna", "2024-03-11")

	m8, err := shift.Advance(c, nil)
	require.NoError(t, err)
	assert.Equal(t, shift.TypeMorning, m8.Type)
	assert.Equal(t, "08:00", m8.StartTime)
	assert.Equal(t, "16:00", m8.EndTime)

	m9, err := shift.Advance(c, m8)
	require.NoError(t, err)
	assert.Equal(t, "09:00", m9.StartTime)
	assert.Equal(t, "17:00", m9.EndTime)

	ev, err := shift.Advance(c, m9)
	require.NoError(t, err)
	assert.Equal(t, shift.TypeEvening, ev.Type)
	assert.Equal(t, "16:00", ev.StartTime)
	assert.Equal(t, "24:00", ev.EndTime)
}

func TestAdvance_KeepsStoredID(t *testing.T) {
	stored := &shift.Assignment{
		ID: "a-1", StaffID: "anna", Date: generic.MustParseDate("2024-03-11"),
		Type: shift.TypeMorning, StartTime: "08:00", EndTime: "16:00",
	}
	next, err := shift.Advance(stored.Cell(), stored)
	require.NoError(t, err)
	assert.Equal(t, generic.AssignmentID("a-1"), next.ID)
	assert.Equal(t, "09:00", next.StartTime)
}

func TestState_NextIsTheOnlyStep(t *testing.T) {
	assert.Equal(t, shift.StateMorningEight, shift.StateEmpty.Next())
	assert.Equal(t, shift.StateMorningNine, shift.StateMorningEight.Next())
	assert.Equal(t, shift.StateEvening, shift.StateMorningNine.Next())
	assert.Equal(t, shift.StateEmpty, shift.StateEvening.Next())
}

func TestStateOf_UnknownStoredShift(t *testing.T) {
	// GIVEN: A stored shift that matches no rotation slot (e.g. legacy 07:00)
	odd := &shift.Assignment{
		StaffID: "anna", Date: generic.MustParseDate("2024-03-11"),
		Type: shift.TypeMorning, StartTime: "07:00", EndTime: "15:00",
	}

	// THEN: It is reported, never silently mapped
	_, err := shift.StateOf(odd)
	assert.True(t, errors.Is(err, generic.ErrUnknownShiftState))

	_, err = shift.Advance(odd.Cell(), odd)
	assert.True(t, errors.Is(err, generic.ErrUnknownShiftState))
}
