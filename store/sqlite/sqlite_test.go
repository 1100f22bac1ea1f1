package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
	"github.com/warp/stay-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) generic.Date { return generic.MustParseDate(s) }

func booking(id, room, start, end string) stay.Booking {
	return stay.Booking{
		ID:            generic.BookingID(id),
		ResourceID:    generic.ResourceID(room),
		Interval:      generic.StayInterval{Start: d(start), End: d(end)},
		State:         stay.StateConfirmed,
		PaymentStatus: stay.PaymentDepositPaid,
		Kind:          stay.KindGuest,
		TotalAmount:   generic.NewMoney(333_334, "EUR"),
		DepositPaid:   generic.NewMoney(10_000, "EUR"),
		GuestName:     "Ada",
		GroupID:       "g-1",
	}
}

// =============================================================================
// RESOURCES
// =============================================================================

func TestResources_KeepInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"201", "101", "102"} {
		require.NoError(t, store.SaveResource(ctx, stay.Resource{ID: generic.ResourceID(id), Label: "Room " + id}))
	}
	// Updating keeps the position
	require.NoError(t, store.SaveResource(ctx, stay.Resource{ID: "201", Label: "Suite 201", Kind: "suite"}))

	resources, err := store.ListResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 3)
	assert.Equal(t, generic.ResourceID("201"), resources[0].ID)
	assert.Equal(t, "Suite 201", resources[0].Label)
	assert.Equal(t, "suite", resources[0].Kind)
	assert.Equal(t, generic.ResourceID("102"), resources[2].ID)
}

// =============================================================================
// BOOKINGS
// =============================================================================

func TestCreateBookings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBookings(ctx, []stay.Booking{booking("b1", "101", "2024-03-28", "2024-04-03")}))

	got, err := store.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-28", got.Interval.Start.String())
	assert.Equal(t, "2024-04-03", got.Interval.End.String())
	assert.Equal(t, stay.PaymentDepositPaid, got.PaymentStatus)
	assert.Equal(t, int64(333_334), got.TotalAmount.Minor)
	assert.Equal(t, "EUR", got.DepositPaid.Currency)
	assert.Equal(t, "g-1", got.GroupID)
}

func TestCreateBookings_AllOrNothing(t *testing.T) {
	// GIVEN: A three-room allocation whose last row is invalid
	store := newTestStore(t)
	ctx := context.Background()

	err := store.CreateBookings(ctx, []stay.Booking{
		booking("b1", "101", "2024-03-10", "2024-03-12"),
		booking("b2", "102", "2024-03-10", "2024-03-12"),
		booking("b3", "103", "2024-03-12", "2024-03-10"),
	})

	// THEN: Nothing was written
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidInterval))

	all, err := store.ListBookings(ctx, generic.StayInterval{Start: d("2024-01-01"), End: d("2025-01-01")})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateBookings_DuplicateIDRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateBookings(ctx, []stay.Booking{booking("b1", "101", "2024-03-10", "2024-03-12")}))

	err := store.CreateBookings(ctx, []stay.Booking{
		booking("b2", "102", "2024-03-10", "2024-03-12"),
		booking("b1", "103", "2024-03-10", "2024-03-12"),
	})
	require.Error(t, err)

	_, err = store.GetBooking(ctx, "b2")
	assert.True(t, generic.IsNotFound(err))
}

func TestListBookings_OverlapWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBookings(ctx, []stay.Booking{
		booking("before", "101", "2024-02-20", "2024-03-01"), // leaves on the 1st
		booking("across", "101", "2024-02-27", "2024-03-03"),
		booking("inside", "102", "2024-03-10", "2024-03-12"),
		booking("after", "102", "2024-04-01", "2024-04-02"),
	}))

	march := generic.ReportingPeriod{Year: 2024, Month: 3}.Interval()
	got, err := store.ListBookings(ctx, march)
	require.NoError(t, err)

	ids := make([]generic.BookingID, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	assert.Equal(t, []generic.BookingID{"across", "inside"}, ids)
}

func TestUpdateBooking(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateBookings(ctx, []stay.Booking{booking("b1", "101", "2024-03-10", "2024-03-12")}))

	b, err := store.GetBooking(ctx, "b1")
	require.NoError(t, err)
	checkedIn, err := stay.CheckIn(*b)
	require.NoError(t, err)
	require.NoError(t, store.UpdateBooking(ctx, checkedIn))

	got, err := store.GetBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, stay.StateCheckedIn, got.State)

	err = store.UpdateBooking(ctx, booking("missing", "101", "2024-03-10", "2024-03-12"))
	assert.True(t, generic.IsNotFound(err))
}

func TestListGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	other := booking("b3", "103", "2024-03-10", "2024-03-12")
	other.GroupID = ""

	require.NoError(t, store.CreateBookings(ctx, []stay.Booking{
		booking("b1", "101", "2024-03-10", "2024-03-12"),
		booking("b2", "102", "2024-03-10", "2024-03-12"),
		other,
	}))

	group, err := store.ListGroup(ctx, "g-1")
	require.NoError(t, err)
	assert.Len(t, group, 2)
}

// =============================================================================
// SHIFTS
// =============================================================================

var week = generic.WeekOf(generic.MustParseDate("2024-03-11"))

func morning(staff, date string) shift.Assignment {
	return shift.Assignment{
		StaffID: generic.StaffID(staff), Date: d(date),
		Type: shift.TypeMorning, StartTime: "08:00", EndTime: "16:00",
	}
}

func TestShifts_UpsertAndLoadWeek(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.UpsertAssignment(ctx, morning("anna", "2024-03-11"))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	_, err = store.UpsertAssignment(ctx, morning("anna", "2024-03-18")) // next week
	require.NoError(t, err)

	a.StartTime, a.EndTime = "09:00", "17:00"
	_, err = store.UpsertAssignment(ctx, a)
	require.NoError(t, err)

	got, version, err := store.LoadWeek(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.True(t, got[0].Date.Equal(d("2024-03-11")))
}

func TestShifts_OnePerStaffPerDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertAssignment(ctx, morning("anna", "2024-03-11"))
	require.NoError(t, err)
	_, err = store.UpsertAssignment(ctx, morning("anna", "2024-03-11"))
	assert.True(t, errors.Is(err, generic.ErrDuplicateShift))
	assert.True(t, generic.IsRetryable(err))
}

func TestShifts_DeleteAssignment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.UpsertAssignment(ctx, morning("anna", "2024-03-11"))
	require.NoError(t, err)
	require.NoError(t, store.DeleteAssignment(ctx, a.ID))
	assert.True(t, generic.IsNotFound(store.DeleteAssignment(ctx, a.ID)))
}

func TestShifts_ClaimWeekVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v, err := store.ClaimWeekVersion(ctx, week, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// A stale session still holding version 0
	_, err = store.ClaimWeekVersion(ctx, week, 0)
	assert.True(t, errors.Is(err, generic.ErrConcurrentModification))

	v, err = store.ClaimWeekVersion(ctx, week, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, version, err := store.LoadWeek(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestShifts_PublishThroughSQLite(t *testing.T) {
	// GIVEN: A stored evening shift cycled to Empty and back to Morning@08
	store := newTestStore(t)
	ctx := context.Background()
	evening := morning("anna", "2024-03-12")
	evening.Type, evening.StartTime, evening.EndTime = shift.TypeEvening, "16:00", "24:00"
	_, err := store.UpsertAssignment(ctx, evening)
	require.NoError(t, err)

	w, err := shift.Load(ctx, store, week)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = w.Toggle("anna", d("2024-03-12"))
		require.NoError(t, err)
	}

	// WHEN: Publishing
	result, err := (&shift.Publisher{Store: store}).Publish(ctx, w)

	// THEN: The delete frees the (staff, date) slot before the insert
	require.NoError(t, err)
	assert.Len(t, result.Deleted, 1)
	assert.Len(t, result.Upserted, 1)

	got, _, err := store.LoadWeek(ctx, week)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "08:00", got[0].StartTime)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveResource(ctx, stay.Resource{ID: "101", Label: "101"}))
	require.NoError(t, store.Reset(ctx))

	resources, err := store.ListResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, resources)
}
