/*
interval.go - Half-open stay intervals and their arithmetic

PURPOSE:
  A stay is the half-open range of nights [Start, End): a guest arriving on
  March 28 and leaving on April 3 sleeps the nights of 28, 29, 30, 31, 1
  and 2. Every occupancy count and every timeline block is derived from
  these intervals, always AFTER clipping them to the window of interest.

CRITICAL INVARIANTS:
  1. End > Start. Zero- or negative-night stays are rejected, never clamped.
  2. Nights are counted on clipped intervals only. A stay spanning three
     months never contributes more than its clipped nights to one month.

SEE ALSO:
  - period.go: ReportingPeriod and Week expand to StayIntervals
  - stay/occupancy.go: Clips bookings against a reporting period
  - stay/timeline.go: Clips bookings against the visible window
*/
package generic

// =============================================================================
// STAY INTERVAL
// =============================================================================

// StayInterval is a half-open [Start, End) range of calendar dates.
type StayInterval struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// NewStayInterval validates End > Start.
func NewStayInterval(start, end Date) (StayInterval, error) {
	iv := StayInterval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return StayInterval{}, err
	}
	return iv, nil
}

// Validate returns an *IntervalError when End <= Start.
func (iv StayInterval) Validate() error {
	if !iv.End.After(iv.Start) {
		return &IntervalError{Start: iv.Start, End: iv.End}
	}
	return nil
}

// Nights is the number of nights in the interval.
func (iv StayInterval) Nights() int {
	n := DaysBetween(iv.Start, iv.End)
	if n < 0 {
		return 0
	}
	return n
}

// Contains returns true if d is one of the interval's nights.
func (iv StayInterval) Contains(d Date) bool {
	return d.AfterOrEqual(iv.Start) && d.Before(iv.End)
}

// Days returns the date of every night in the interval.
func (iv StayInterval) Days() []Date {
	days := make([]Date, 0, iv.Nights())
	for d := iv.Start; d.Before(iv.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Overlaps reports whether the two intervals share at least one night.
func (iv StayInterval) Overlaps(other StayInterval) bool {
	_, ok := Intersect(iv, other)
	return ok
}

func (iv StayInterval) String() string {
	return "[" + iv.Start.String() + ", " + iv.End.String() + ")"
}

// =============================================================================
// INTERSECTION / CLIPPING
// =============================================================================

// Intersect returns the overlap of a and b. The bool is false when
// max(a.Start, b.Start) >= min(a.End, b.End).
func Intersect(a, b StayInterval) (StayInterval, bool) {
	start := MaxDate(a.Start, b.Start)
	end := MinDate(a.End, b.End)
	if !start.Before(end) {
		return StayInterval{}, false
	}
	return StayInterval{Start: start, End: end}, true
}

// ClipToWindow is Intersect with the window as second operand.
func ClipToWindow(iv, window StayInterval) (StayInterval, bool) {
	return Intersect(iv, window)
}

// ClippedNights returns nights(intersect(iv, window)), 0 when disjoint.
func ClippedNights(iv, window StayInterval) int {
	clipped, ok := Intersect(iv, window)
	if !ok {
		return 0
	}
	return clipped.Nights()
}
