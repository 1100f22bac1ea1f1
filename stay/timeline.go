/*
timeline.go - Day-by-room layout of stays

PURPOSE:
  Places bookings on the front-desk grid: one row per room, one column per
  visible day. The layout is SPARSE: a stay renders as one block at its
  start column spanning forward, not as one cell per night.

PLACEMENT RULES:
  1. A block is emitted on day d for booking b only if d == b.Start.
  2. A stay that began before the window gets a virtual start on the
     window's first day, so it still renders. Likewise a stay starting on
     a day left out of a non-contiguous window renders on the first
     visible day it covers.
  3. Width = nights(intersect(b, window)). Stays spilling over either edge
     are clipped and flagged (ClippedStart / ClippedEnd).
  4. Overlapping bookings on one room (double-booking is not rejected
     upstream) all render. Layer grows with list order: last wins on top.
  5. A booking on a room absent from the window renders nothing. The
     engine does not log; callers use UnknownResourceRefs to report them.

WINDOW:
  Days are caller-ordered and rendered in array order, never re-sorted.
  The clipping window is [min(Days), max(Days)+1).

SEE ALSO:
  - generic/interval.go: Intersect
  - report/excel.go: Renders OccupancyGrid into a sheet
*/
package stay

import (
	"fmt"

	"github.com/warp/stay-engine/generic"
)

// =============================================================================
// WINDOW
// =============================================================================

// TimelineWindow is the visible part of the grid.
type TimelineWindow struct {
	Resources []Resource
	Days      []generic.Date

	// Today drives date-relative display states (arriving, due out).
	// Zero disables them.
	Today generic.Date
}

// NewTimelineWindow builds a window of `days` consecutive days from start.
func NewTimelineWindow(resources []Resource, start generic.Date, days int) TimelineWindow {
	w := TimelineWindow{Resources: resources, Days: make([]generic.Date, 0, days)}
	for i := 0; i < days; i++ {
		w.Days = append(w.Days, start.AddDays(i))
	}
	return w
}

// Interval returns [min(Days), max(Days)+1). False when Days is empty.
func (w TimelineWindow) Interval() (generic.StayInterval, bool) {
	if len(w.Days) == 0 {
		return generic.StayInterval{}, false
	}
	lo, hi := w.Days[0], w.Days[0]
	for _, d := range w.Days[1:] {
		lo = generic.MinDate(lo, d)
		hi = generic.MaxDate(hi, d)
	}
	return generic.StayInterval{Start: lo, End: hi.AddDays(1)}, true
}

func (w TimelineWindow) hasResource(id generic.ResourceID) bool {
	for _, r := range w.Resources {
		if r.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// DISPLAY STATE - styling only, never used by layout math
// =============================================================================

type DisplayState string

const (
	DisplayMaintenance      DisplayState = "maintenance"
	DisplayCheckedIn        DisplayState = "checked_in"
	DisplayDueOut           DisplayState = "due_out"
	DisplayCheckedOut       DisplayState = "checked_out"
	DisplayCancelled        DisplayState = "cancelled"
	DisplayArriving         DisplayState = "arriving"
	DisplayConfirmedUnpaid  DisplayState = "confirmed_unpaid"
	DisplayConfirmedDeposit DisplayState = "confirmed_deposit"
	DisplayConfirmedPaid    DisplayState = "confirmed_paid"
)

// DeriveDisplayState maps lifecycle, payment and kind to a block style.
func DeriveDisplayState(b Booking, today generic.Date) DisplayState {
	if b.IsMaintenance() {
		return DisplayMaintenance
	}
	switch b.State {
	case StateCheckedIn:
		if !today.IsZero() && !b.Interval.End.After(today) {
			return DisplayDueOut
		}
		return DisplayCheckedIn
	case StateCheckedOut:
		return DisplayCheckedOut
	case StateCancelled:
		return DisplayCancelled
	}

	if !today.IsZero() && b.Interval.Start.Equal(today) {
		return DisplayArriving
	}
	switch b.PaymentStatus {
	case PaymentFullyPaid:
		return DisplayConfirmedPaid
	case PaymentDepositPaid:
		return DisplayConfirmedDeposit
	default:
		return DisplayConfirmedUnpaid
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// PlacedBlock is one rendered stay.
type PlacedBlock struct {
	ResourceID   generic.ResourceID   `json:"resource_id"`
	RowIndex     int                  `json:"row_index"`
	DayIndex     int                  `json:"day_index"`
	WidthInDays  int                  `json:"width_in_days"`
	Span         generic.StayInterval `json:"span"` // clipped interval
	ClippedStart bool                 `json:"clipped_start"`
	ClippedEnd   bool                 `json:"clipped_end"`
	Layer        int                  `json:"layer"`
	DisplayState DisplayState         `json:"display_state"`
	Booking      Booking              `json:"booking"`

	order int // position of the booking in the input list
}

// LayoutTimeline places bookings on the window. Cancelled bookings are
// skipped. An invalid interval on any placed booking aborts the layout.
func LayoutTimeline(bookings []Booking, window TimelineWindow) ([]PlacedBlock, error) {
	windowIv, ok := window.Interval()
	if !ok {
		return []PlacedBlock{}, nil
	}

	// Index bookings by resource, keeping list order
	byResource := make(map[generic.ResourceID][]int)
	for i, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if err := b.Interval.Validate(); err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		byResource[b.ResourceID] = append(byResource[b.ResourceID], i)
	}

	blocks := []PlacedBlock{}
	for row, r := range window.Resources {
		var rowBlocks []PlacedBlock
		anchors := make(map[int]int)
		spans := make(map[int]generic.StayInterval)
		for _, i := range byResource[r.ID] {
			span, overlaps := generic.Intersect(bookings[i].Interval, windowIv)
			if !overlaps {
				continue
			}
			if dayIdx, ok := anchorDay(window.Days, span); ok {
				anchors[i] = dayIdx
				spans[i] = span
			}
		}

		for dayIdx := range window.Days {
			for _, i := range byResource[r.ID] {
				if at, ok := anchors[i]; !ok || at != dayIdx {
					continue
				}
				b := bookings[i]
				span := spans[i]
				rowBlocks = append(rowBlocks, PlacedBlock{
					ResourceID:   r.ID,
					RowIndex:     row,
					DayIndex:     dayIdx,
					WidthInDays:  span.Nights(),
					Span:         span,
					ClippedStart: b.Interval.Start.Before(windowIv.Start),
					ClippedEnd:   b.Interval.End.After(windowIv.End),
					DisplayState: DeriveDisplayState(b, window.Today),
					Booking:      b,
					order:        i,
				})
			}
		}

		assignLayers(rowBlocks)
		blocks = append(blocks, rowBlocks...)
	}
	return blocks, nil
}

// anchorDay picks the column a clipped span renders in: the day it starts
// on, or else the first visible day it covers (a start on a day missing
// from a non-contiguous window). False when no visible day is covered.
func anchorDay(days []generic.Date, span generic.StayInterval) (int, bool) {
	for i, day := range days {
		if day.Equal(span.Start) {
			return i, true
		}
	}
	for i, day := range days {
		if span.Contains(day) {
			return i, true
		}
	}
	return 0, false
}

// assignLayers stacks overlapping blocks of one row by input order.
func assignLayers(row []PlacedBlock) {
	for i := range row {
		layer := 0
		for j := range row {
			if row[j].order < row[i].order && row[j].Span.Overlaps(row[i].Span) {
				layer++
			}
		}
		row[i].Layer = layer
	}
}

// =============================================================================
// STALE REFERENCES
// =============================================================================

// UnknownResourceError describes a booking whose room is not in the window.
type UnknownResourceError struct {
	BookingID  generic.BookingID
	ResourceID generic.ResourceID
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("booking %s references resource %s absent from the window", e.BookingID, e.ResourceID)
}

func (e *UnknownResourceError) Unwrap() error {
	return generic.ErrUnknownResourceReference
}

// UnknownResourceRefs lists the non-cancelled bookings overlapping the window
// whose resource is not part of it, i.e. the bookings LayoutTimeline dropped.
func UnknownResourceRefs(bookings []Booking, window TimelineWindow) []*UnknownResourceError {
	windowIv, ok := window.Interval()
	if !ok {
		return nil
	}
	var refs []*UnknownResourceError
	for _, b := range bookings {
		if b.IsCancelled() || window.hasResource(b.ResourceID) {
			continue
		}
		if _, overlaps := generic.Intersect(b.Interval, windowIv); !overlaps {
			continue
		}
		refs = append(refs, &UnknownResourceError{BookingID: b.ID, ResourceID: b.ResourceID})
	}
	return refs
}

// =============================================================================
// GRID - dense per-night view of the sparse layout
// =============================================================================

// OccupancyGrid counts, per row and visible day, how many placed blocks
// cover that night. Values above 1 mark double-bookings.
func OccupancyGrid(blocks []PlacedBlock, window TimelineWindow) [][]int {
	columns := make(map[generic.Date][]int)
	for i, d := range window.Days {
		columns[d] = append(columns[d], i)
	}

	grid := make([][]int, len(window.Resources))
	for i := range grid {
		grid[i] = make([]int, len(window.Days))
	}
	for _, b := range blocks {
		if b.RowIndex < 0 || b.RowIndex >= len(grid) {
			continue
		}
		for _, night := range b.Span.Days() {
			for _, col := range columns[night] {
				grid[b.RowIndex][col]++
			}
		}
	}
	return grid
}
