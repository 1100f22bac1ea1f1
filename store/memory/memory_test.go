package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
	"github.com/warp/stay-engine/store/memory"
)

func TestMemory_CreateBookingsAllOrNothing(t *testing.T) {
	m := memory.New()
	ctx := context.Background()
	ok := stay.Booking{ID: "b1", ResourceID: "101", Interval: generic.StayInterval{
		Start: generic.MustParseDate("2024-03-10"), End: generic.MustParseDate("2024-03-12"),
	}}
	bad := ok
	bad.ID = "b2"
	bad.Interval.End = bad.Interval.Start

	require.Error(t, m.CreateBookings(ctx, []stay.Booking{ok, bad}))

	all, err := m.ListBookings(ctx, generic.StayInterval{
		Start: generic.MustParseDate("2024-01-01"), End: generic.MustParseDate("2025-01-01"),
	})
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, m.CreateBookings(ctx, []stay.Booking{ok}))
	assert.Error(t, m.CreateBookings(ctx, []stay.Booking{ok}), "duplicate ID")
}

func TestMemory_AssignmentUniqueness(t *testing.T) {
	m := memory.New()
	ctx := context.Background()
	a := shift.Assignment{StaffID: "anna", Date: generic.MustParseDate("2024-03-11"),
		Type: shift.TypeMorning, StartTime: "08:00", EndTime: "16:00"}

	saved, err := m.UpsertAssignment(ctx, a)
	require.NoError(t, err)
	_, err = m.UpsertAssignment(ctx, a)
	assert.ErrorIs(t, err, generic.ErrDuplicateShift)

	// Updating the stored record itself is fine
	saved.StartTime = "09:00"
	_, err = m.UpsertAssignment(ctx, saved)
	assert.NoError(t, err)
}

func TestMemory_Reset(t *testing.T) {
	m := memory.New()
	ctx := context.Background()
	week := generic.WeekOf(generic.MustParseDate("2024-03-11"))

	require.NoError(t, m.SaveResource(ctx, stay.Resource{ID: "101"}))
	_, err := m.ClaimWeekVersion(ctx, week, 0)
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))

	rooms, err := m.ListResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	_, version, err := m.LoadWeek(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}
