package stay_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/stay"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func d(s string) generic.Date { return generic.MustParseDate(s) }

func eur(minor int64) generic.Money { return generic.NewMoney(minor, "EUR") }

func booking(id, room, start, end string) stay.Booking {
	return stay.Booking{
		ID:            generic.BookingID(id),
		ResourceID:    generic.ResourceID(room),
		Interval:      generic.StayInterval{Start: d(start), End: d(end)},
		State:         stay.StateConfirmed,
		PaymentStatus: stay.PaymentUnpaid,
		Kind:          stay.KindGuest,
		TotalAmount:   eur(0),
		DepositPaid:   eur(0),
	}
}

func withTotal(b stay.Booking, minor int64) stay.Booking {
	b.TotalAmount = eur(minor)
	return b
}

func period(year int, month time.Month) generic.ReportingPeriod {
	return generic.ReportingPeriod{Year: year, Month: month}
}

// =============================================================================
// OCCUPANCY
// =============================================================================

func TestComputeOccupancy_StayAcrossMonthBoundary(t *testing.T) {
	// GIVEN: 10 rooms and one stay 2024-03-28 -> 2024-04-03 (6 nights)
	// WHEN: Computing March and April
	// THEN: March has 310 potential nights and 3 occupied; April 300 and 3;
	//       the clipped nights add up to the stay length

	bookings := []stay.Booking{withTotal(booking("b1", "101", "2024-03-28", "2024-04-03"), 60_000)}

	march, err := stay.ComputeOccupancy(bookings, period(2024, time.March), 10)
	require.NoError(t, err)
	assert.Equal(t, 310, march.PotentialRoomNights)
	assert.Equal(t, 3, march.OccupiedNights)

	april, err := stay.ComputeOccupancy(bookings, period(2024, time.April), 10)
	require.NoError(t, err)
	assert.Equal(t, 300, april.PotentialRoomNights)
	assert.Equal(t, 3, april.OccupiedNights)

	assert.Equal(t, bookings[0].Nights(), march.OccupiedNights+april.OccupiedNights)

	// Revenue and check-ins follow the check-in date, unclipped
	assert.Equal(t, 1, march.CheckIns)
	assert.Equal(t, int64(60_000), march.Revenue.Minor)
	assert.True(t, march.AvgStayNights.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 0, april.CheckIns)
	assert.True(t, april.Revenue.IsZero())
	assert.True(t, april.AvgStayNights.IsZero())
}

func TestComputeOccupancy_Rate(t *testing.T) {
	// GIVEN: 2 rooms in February 2024 (29 nights), one fully booked
	bookings := []stay.Booking{booking("b1", "101", "2024-02-01", "2024-03-01")}

	occ, err := stay.ComputeOccupancy(bookings, period(2024, time.February), 2)
	require.NoError(t, err)

	// THEN: 29 / 58 = 50%
	assert.Equal(t, 58, occ.PotentialRoomNights)
	assert.Equal(t, "0.5", occ.OccupancyRate.String())
	assert.Equal(t, "50", occ.OccupancyPercent().String())
}

func TestComputeOccupancy_ExcludesCancelledAndMaintenance(t *testing.T) {
	cancelled := withTotal(booking("b1", "101", "2024-03-01", "2024-03-05"), 10_000)
	cancelled.State = stay.StateCancelled
	maintenance := booking("b2", "102", "2024-03-01", "2024-03-10")
	maintenance.Kind = stay.KindMaintenance
	guest := withTotal(booking("b3", "103", "2024-03-02", "2024-03-04"), 20_000)

	occ, err := stay.ComputeOccupancy([]stay.Booking{cancelled, maintenance, guest}, period(2024, time.March), 3)
	require.NoError(t, err)

	assert.Equal(t, 2, occ.OccupiedNights)
	assert.Equal(t, 1, occ.CheckIns)
	assert.Equal(t, int64(20_000), occ.Revenue.Minor)
}

func TestComputeOccupancy_ZeroResources(t *testing.T) {
	// GIVEN: No rooms at all
	// THEN: Rate is zero, never a division error
	occ, err := stay.ComputeOccupancy(nil, period(2024, time.March), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, occ.PotentialRoomNights)
	assert.True(t, occ.OccupancyRate.IsZero())
}

func TestComputeOccupancy_InvalidInput(t *testing.T) {
	_, err := stay.ComputeOccupancy(nil, period(2024, time.March), -1)
	assert.True(t, errors.Is(err, generic.ErrInvalidResourceCount))

	_, err = stay.ComputeOccupancy(nil, period(2024, 13), 1)
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))

	inverted := booking("bad", "101", "2024-03-05", "2024-03-05")
	_, err = stay.ComputeOccupancy([]stay.Booking{inverted}, period(2024, time.March), 1)
	assert.True(t, errors.Is(err, generic.ErrInvalidInterval))
}

func TestComputeOccupancy_DoubleBookingCanExceedFull(t *testing.T) {
	// GIVEN: Two bookings on the single room for the whole month
	a := booking("a", "101", "2024-04-01", "2024-05-01")
	b := booking("b", "101", "2024-04-01", "2024-05-01")

	occ, err := stay.ComputeOccupancy([]stay.Booking{a, b}, period(2024, time.April), 1)
	require.NoError(t, err)

	// THEN: Tolerated and reported as-is
	assert.Equal(t, 60, occ.OccupiedNights)
	assert.Equal(t, "2", occ.OccupancyRate.String())
}

func TestComputeYear_PartitionsEveryStay(t *testing.T) {
	// GIVEN: Stays of varying length through 2024, some crossing months
	var bookings []stay.Booking
	total := 0
	start := d("2024-01-03")
	for i := 0; i < 30; i++ {
		nights := 1 + (i*7)%19
		b := booking(fmt.Sprintf("b%d", i), "101", start.String(), start.AddDays(nights).String())
		bookings = append(bookings, b)
		total += nights
		start = start.AddDays(nights)
	}
	require.True(t, start.Before(d("2025-01-01")), "fixture must stay in 2024")

	months, err := stay.ComputeYear(bookings, 2024, 1)
	require.NoError(t, err)
	require.Len(t, months, 12)

	// THEN: The monthly clipped nights sum to the total booked nights
	sum, checkIns := 0, 0
	for _, m := range months {
		sum += m.OccupiedNights
		checkIns += m.CheckIns
		assert.LessOrEqual(t, m.OccupiedNights, m.PotentialRoomNights)
	}
	assert.Equal(t, total, sum)
	assert.Equal(t, len(bookings), checkIns)
}
