package stay_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/stay"
)

func rooms(ids ...string) []stay.Resource {
	out := make([]stay.Resource, len(ids))
	for i, id := range ids {
		out[i] = stay.Resource{ID: generic.ResourceID(id), Label: "Room " + id}
	}
	return out
}

// week of 2024-03-10 .. 2024-03-16, window [03-10, 03-17)
func testWindow() stay.TimelineWindow {
	return stay.NewTimelineWindow(rooms("101", "102"), d("2024-03-10"), 7)
}

func TestLayoutTimeline_InsideWindow(t *testing.T) {
	blocks, err := stay.LayoutTimeline([]stay.Booking{booking("b1", "102", "2024-03-12", "2024-03-14")}, testWindow())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 1, b.RowIndex)
	assert.Equal(t, 2, b.DayIndex)
	assert.Equal(t, 2, b.WidthInDays)
	assert.False(t, b.ClippedStart)
	assert.False(t, b.ClippedEnd)
	assert.Equal(t, 0, b.Layer)
}

func TestLayoutTimeline_StayStartedBeforeWindow(t *testing.T) {
	// GIVEN: A stay that began 3 days before the window and ends inside it
	// WHEN: Laying out
	// THEN: It renders at the first visible day with only the visible nights

	blocks, err := stay.LayoutTimeline([]stay.Booking{booking("b1", "101", "2024-03-07", "2024-03-12")}, testWindow())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 0, b.DayIndex)
	assert.Equal(t, 2, b.WidthInDays)
	assert.True(t, b.ClippedStart)
	assert.False(t, b.ClippedEnd)
	assert.Equal(t, "2024-03-10", b.Span.Start.String())
}

func TestLayoutTimeline_ClippedAtBothEdges(t *testing.T) {
	blocks, err := stay.LayoutTimeline([]stay.Booking{booking("b1", "101", "2024-03-01", "2024-03-31")}, testWindow())
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 0, b.DayIndex)
	assert.Equal(t, 7, b.WidthInDays)
	assert.True(t, b.ClippedStart)
	assert.True(t, b.ClippedEnd)
	assert.Equal(t, 30, b.Booking.Nights(), "the booking itself is untouched")
}

func TestLayoutTimeline_OutsideWindowAndCancelledSkipped(t *testing.T) {
	cancelled := booking("c", "101", "2024-03-11", "2024-03-13")
	cancelled.State = stay.StateCancelled

	blocks, err := stay.LayoutTimeline([]stay.Booking{
		booking("before", "101", "2024-03-01", "2024-03-10"), // checks out on the first visible day
		booking("after", "101", "2024-03-17", "2024-03-20"),
		cancelled,
	}, testWindow())
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestLayoutTimeline_OverlapsStackByListOrder(t *testing.T) {
	// GIVEN: Three bookings on room 101; the first two overlap, the third
	//        overlaps the second only
	// WHEN: Laying out
	// THEN: Later bookings in the list sit on higher layers

	blocks, err := stay.LayoutTimeline([]stay.Booking{
		booking("first", "101", "2024-03-10", "2024-03-13"),
		booking("second", "101", "2024-03-12", "2024-03-15"),
		booking("third", "101", "2024-03-14", "2024-03-16"),
	}, testWindow())
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	layers := map[string]int{}
	for _, b := range blocks {
		layers[string(b.Booking.ID)] = b.Layer
	}
	assert.Equal(t, 0, layers["first"])
	assert.Equal(t, 1, layers["second"])
	assert.Equal(t, 1, layers["third"])
}

func TestLayoutTimeline_Idempotent(t *testing.T) {
	bookings := []stay.Booking{
		booking("a", "101", "2024-03-07", "2024-03-12"),
		booking("b", "101", "2024-03-11", "2024-03-20"),
		booking("c", "102", "2024-03-16", "2024-03-18"),
	}
	window := testWindow()

	first, err := stay.LayoutTimeline(bookings, window)
	require.NoError(t, err)
	second, err := stay.LayoutTimeline(bookings, window)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLayoutTimeline_EmptyWindow(t *testing.T) {
	window := stay.NewTimelineWindow(rooms("101"), d("2024-03-10"), 0)
	blocks, err := stay.LayoutTimeline([]stay.Booking{booking("a", "101", "2024-03-10", "2024-03-12")}, window)
	require.NoError(t, err)
	assert.NotNil(t, blocks)
	assert.Empty(t, blocks)
}

func TestLayoutTimeline_InvalidIntervalAborts(t *testing.T) {
	_, err := stay.LayoutTimeline([]stay.Booking{booking("bad", "101", "2024-03-12", "2024-03-11")}, testWindow())
	assert.True(t, errors.Is(err, generic.ErrInvalidInterval))
}

func TestUnknownResourceRefs(t *testing.T) {
	// GIVEN: A booking on a room that is not in the window
	orphan := booking("orphan", "999", "2024-03-11", "2024-03-12")
	far := booking("far", "999", "2024-05-01", "2024-05-02")
	known := booking("known", "101", "2024-03-11", "2024-03-12")
	bookings := []stay.Booking{orphan, far, known}

	// WHEN: Laying out
	blocks, err := stay.LayoutTimeline(bookings, testWindow())
	require.NoError(t, err)

	// THEN: It is left out of the layout and reported separately
	require.Len(t, blocks, 1)
	assert.Equal(t, generic.BookingID("known"), blocks[0].Booking.ID)

	refs := stay.UnknownResourceRefs(bookings, testWindow())
	require.Len(t, refs, 1)
	assert.Equal(t, generic.BookingID("orphan"), refs[0].BookingID)
	assert.True(t, errors.Is(refs[0], generic.ErrUnknownResourceReference))
}

func TestDeriveDisplayState(t *testing.T) {
	today := d("2024-03-12")

	base := booking("b", "101", "2024-03-10", "2024-03-12")
	checkedIn := base
	checkedIn.State = stay.StateCheckedIn
	staying := checkedIn
	staying.Interval.End = d("2024-03-15")
	arriving := booking("b", "101", "2024-03-12", "2024-03-14")
	deposit := booking("b", "101", "2024-03-13", "2024-03-14")
	deposit.PaymentStatus = stay.PaymentDepositPaid
	paid := deposit
	paid.PaymentStatus = stay.PaymentFullyPaid
	maintenance := staying
	maintenance.Kind = stay.KindMaintenance
	out := base
	out.State = stay.StateCheckedOut

	tests := []struct {
		name string
		b    stay.Booking
		want stay.DisplayState
	}{
		{"checked in, leaving today", checkedIn, stay.DisplayDueOut},
		{"checked in, staying", staying, stay.DisplayCheckedIn},
		{"arriving today", arriving, stay.DisplayArriving},
		{"deposit paid", deposit, stay.DisplayConfirmedDeposit},
		{"fully paid", paid, stay.DisplayConfirmedPaid},
		{"unpaid", booking("b", "101", "2024-03-13", "2024-03-14"), stay.DisplayConfirmedUnpaid},
		{"maintenance wins", maintenance, stay.DisplayMaintenance},
		{"checked out", out, stay.DisplayCheckedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stay.DeriveDisplayState(tt.b, today))
		})
	}
}

func TestOccupancyGrid_MarksDoubleBookings(t *testing.T) {
	bookings := []stay.Booking{
		booking("a", "101", "2024-03-10", "2024-03-13"),
		booking("b", "101", "2024-03-12", "2024-03-14"),
		booking("c", "102", "2024-03-16", "2024-03-20"),
	}
	window := testWindow()
	blocks, err := stay.LayoutTimeline(bookings, window)
	require.NoError(t, err)

	grid := stay.OccupancyGrid(blocks, window)
	require.Len(t, grid, 2)
	assert.Equal(t, []int{1, 1, 2, 1, 0, 0, 0}, grid[0])
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1}, grid[1])
}

func TestLayoutTimeline_StartOnMissingDay(t *testing.T) {
	// GIVEN: A window showing only 03-10 and 03-12, and a stay 03-11 -> 03-14
	window := stay.TimelineWindow{
		Resources: rooms("101"),
		Days:      []generic.Date{d("2024-03-10"), d("2024-03-12")},
	}
	bookings := []stay.Booking{booking("b1", "101", "2024-03-11", "2024-03-14")}

	// WHEN: Laying out
	blocks, err := stay.LayoutTimeline(bookings, window)
	require.NoError(t, err)

	// THEN: It renders on 03-12, the first visible day it covers
	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].DayIndex)
	assert.Equal(t, "2024-03-11", blocks[0].Span.Start.String())
	assert.Equal(t, [][]int{{0, 1}}, stay.OccupancyGrid(blocks, window))
}

func TestLayoutTimeline_StayInsideGapRendersNothing(t *testing.T) {
	window := stay.TimelineWindow{
		Resources: rooms("101"),
		Days:      []generic.Date{d("2024-03-10"), d("2024-03-14")},
	}
	blocks, err := stay.LayoutTimeline([]stay.Booking{booking("b1", "101", "2024-03-11", "2024-03-13")}, window)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}
