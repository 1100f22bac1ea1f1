package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// REPORTING PERIOD - A calendar month, expanded to a StayInterval
// =============================================================================

// ReportingPeriod is a calendar month. Metrics are ALWAYS computed for a
// period by intersecting stays with Interval().
type ReportingPeriod struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewReportingPeriod validates the month.
func NewReportingPeriod(year int, month time.Month) (ReportingPeriod, error) {
	if month < time.January || month > time.December {
		return ReportingPeriod{}, fmt.Errorf("month %d: %w", month, ErrInvalidPeriod)
	}
	return ReportingPeriod{Year: year, Month: month}, nil
}

// PeriodOf returns the month containing d.
func PeriodOf(d Date) ReportingPeriod {
	return ReportingPeriod{Year: d.Year(), Month: d.Month()}
}

// Interval expands the month to [first of month, first of next month).
func (p ReportingPeriod) Interval() StayInterval {
	start := StartOfMonth(p.Year, p.Month)
	return StayInterval{Start: start, End: start.AddMonths(1)}
}

// Nights is the number of nights in the month.
func (p ReportingPeriod) Nights() int { return p.Interval().Nights() }

// Contains returns true if d falls inside the month.
func (p ReportingPeriod) Contains(d Date) bool { return p.Interval().Contains(d) }

// NextPeriod returns the following month.
func (p ReportingPeriod) NextPeriod() ReportingPeriod {
	return PeriodOf(StartOfMonth(p.Year, p.Month).AddMonths(1))
}

// PreviousPeriod returns the preceding month.
func (p ReportingPeriod) PreviousPeriod() ReportingPeriod {
	return PeriodOf(StartOfMonth(p.Year, p.Month).AddMonths(-1))
}

func (p ReportingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// YearPeriods returns the twelve months of a year in order.
func YearPeriods(year int) []ReportingPeriod {
	periods := make([]ReportingPeriod, 0, 12)
	for m := time.January; m <= time.December; m++ {
		periods = append(periods, ReportingPeriod{Year: year, Month: m})
	}
	return periods
}

// =============================================================================
// WEEK - Monday..Sunday, used by the shift planner
// =============================================================================

// Week is the seven days starting on Start (always a Monday).
type Week struct {
	Start Date `json:"start"`
}

// WeekOf returns the week containing d.
func WeekOf(d Date) Week { return Week{Start: StartOfWeek(d)} }

// Interval expands the week to [Monday, next Monday).
func (w Week) Interval() StayInterval {
	return StayInterval{Start: w.Start, End: w.Start.AddDays(7)}
}

// Days returns Monday..Sunday.
func (w Week) Days() []Date { return w.Interval().Days() }

// Contains returns true if d falls inside the week.
func (w Week) Contains(d Date) bool { return w.Interval().Contains(d) }

// Next returns the following week.
func (w Week) Next() Week { return Week{Start: w.Start.AddDays(7)} }

// Previous returns the preceding week.
func (w Week) Previous() Week { return Week{Start: w.Start.AddDays(-7)} }

func (w Week) String() string { return "week of " + w.Start.String() }
