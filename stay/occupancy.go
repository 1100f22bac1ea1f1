/*
occupancy.go - Occupancy, revenue and average stay for a reporting period

PURPOSE:
  Produces the monthly figures of the dashboard: how many room-nights were
  sold out of how many were available, what the month earned, and how long
  the month's guests stayed.

TWO PREDICATES, ON PURPOSE:
  Occupancy is counted by NIGHT: each booking contributes the nights of its
  interval clipped to the month.

  Revenue and average stay are counted by CHECK-IN: a booking contributes
  its full TotalAmount and its full length to the month its Start falls in.

  A stay from Mar 28 to Apr 3 therefore adds 3 occupied nights to March,
  3 to April, and 100% of its revenue to March.

EXCLUSIONS:
  - Cancelled bookings contribute to nothing.
  - Maintenance blocks are not sales and contribute to nothing.
  - Overlapping bookings on one room are both counted ("room-nights sold").

EXAMPLE:
  occ, err := stay.ComputeOccupancy(bookings, generic.ReportingPeriod{Year: 2024, Month: time.March}, 10)
  // occ.PotentialRoomNights == 310

SEE ALSO:
  - generic/interval.go: Intersect / ClippedNights
  - report/excel.go: Exports ComputeYear results
*/
package stay

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/stay-engine/generic"
)

// Occupancy is the aggregate for one period.
type Occupancy struct {
	Period              generic.ReportingPeriod `json:"period"`
	ResourceCount       int                     `json:"resource_count"`
	PotentialRoomNights int                     `json:"potential_room_nights"`
	OccupiedNights      int                     `json:"occupied_nights"`
	OccupancyRate       decimal.Decimal         `json:"occupancy_rate"` // 0..1, may exceed 1 on double-booking
	Revenue             generic.Money           `json:"revenue"`
	CheckIns            int                     `json:"check_ins"`
	AvgStayNights       decimal.Decimal         `json:"avg_stay_nights"`
}

// OccupancyPercent returns the rate as a percentage rounded to 2 decimals.
func (o Occupancy) OccupancyPercent() decimal.Decimal {
	return o.OccupancyRate.Mul(decimal.NewFromInt(100)).Round(2)
}

// countsTowardMetrics excludes cancellations and maintenance blocks.
func countsTowardMetrics(b Booking) bool {
	return !b.IsCancelled() && !b.IsMaintenance()
}

// ComputeOccupancy aggregates bookings over one reporting period.
func ComputeOccupancy(bookings []Booking, period generic.ReportingPeriod, resourceCount int) (Occupancy, error) {
	if resourceCount < 0 {
		return Occupancy{}, fmt.Errorf("resource count %d: %w", resourceCount, generic.ErrInvalidResourceCount)
	}
	if period.Month < 1 || period.Month > 12 {
		return Occupancy{}, fmt.Errorf("period %s: %w", period, generic.ErrInvalidPeriod)
	}

	p := period.Interval()
	result := Occupancy{
		Period:              period,
		ResourceCount:       resourceCount,
		PotentialRoomNights: resourceCount * p.Nights(),
		OccupancyRate:       decimal.Zero,
		AvgStayNights:       decimal.Zero,
	}

	checkInNights := 0
	for _, b := range bookings {
		if !countsTowardMetrics(b) {
			continue
		}
		if err := b.Interval.Validate(); err != nil {
			return Occupancy{}, fmt.Errorf("booking %s: %w", b.ID, err)
		}

		// Occupancy: clipped nights only
		result.OccupiedNights += generic.ClippedNights(b.Interval, p)

		// Revenue and stay length: by check-in date, unclipped
		if p.Contains(b.Interval.Start) {
			if result.CheckIns == 0 {
				result.Revenue.Currency = b.TotalAmount.Currency
			}
			result.Revenue = result.Revenue.Add(b.TotalAmount)
			result.CheckIns++
			checkInNights += b.Nights()
		}
	}

	if result.PotentialRoomNights > 0 {
		result.OccupancyRate = decimal.NewFromInt(int64(result.OccupiedNights)).
			Div(decimal.NewFromInt(int64(result.PotentialRoomNights)))
	}
	if result.CheckIns > 0 {
		result.AvgStayNights = decimal.NewFromInt(int64(checkInNights)).
			Div(decimal.NewFromInt(int64(result.CheckIns)))
	}
	return result, nil
}

// ComputeYear returns the twelve monthly aggregates of a year.
func ComputeYear(bookings []Booking, year int, resourceCount int) ([]Occupancy, error) {
	months := make([]Occupancy, 0, 12)
	for _, period := range generic.YearPeriods(year) {
		occ, err := ComputeOccupancy(bookings, period, resourceCount)
		if err != nil {
			return nil, err
		}
		months = append(months, occ)
	}
	return months, nil
}
