package shift

import (
	"fmt"
	"sort"

	"github.com/warp/stay-engine/generic"
)

// =============================================================================
// WEEK - Snapshot from storage + locally edited working set
// =============================================================================

// Week holds one scheduler session's view of a week. Not safe for
// concurrent use; one session edits one Week.
type Week struct {
	period   generic.Week
	version  int64
	snapshot []Assignment
	working  map[Cell]Assignment
}

// NewWeek starts a session from what storage returned for the week.
func NewWeek(period generic.Week, snapshot []Assignment, version int64) (*Week, error) {
	w := &Week{
		period:   period,
		version:  version,
		snapshot: make([]Assignment, 0, len(snapshot)),
		working:  make(map[Cell]Assignment, len(snapshot)),
	}
	for _, a := range snapshot {
		if !period.Contains(a.Date) {
			return nil, fmt.Errorf("assignment %s on %s: %w", a.ID, a.Date, generic.ErrOutsideWeek)
		}
		if _, dup := w.working[a.Cell()]; dup {
			return nil, fmt.Errorf("two assignments for %s on %s", a.StaffID, a.Date)
		}
		w.snapshot = append(w.snapshot, a)
		w.working[a.Cell()] = a
	}
	return w, nil
}

func (w *Week) Period() generic.Week { return w.period }
func (w *Week) Version() int64       { return w.version }

// Get returns the working assignment of a cell, nil when Empty.
func (w *Week) Get(staffID generic.StaffID, date generic.Date) *Assignment {
	a, ok := w.working[Cell{StaffID: staffID, Date: date}]
	if !ok {
		return nil
	}
	return &a
}

// Toggle advances one cell by one rotation step and returns its new value.
func (w *Week) Toggle(staffID generic.StaffID, date generic.Date) (*Assignment, error) {
	if !w.period.Contains(date) {
		return nil, fmt.Errorf("%s not in %s: %w", date, w.period, generic.ErrOutsideWeek)
	}
	cell := Cell{StaffID: staffID, Date: date}
	next, err := Advance(cell, w.Get(staffID, date))
	if err != nil {
		return nil, err
	}
	if next == nil {
		delete(w.working, cell)
		return nil, nil
	}
	w.working[cell] = *next
	return next, nil
}

// Restore replaces the working set, e.g. with edits a client kept between
// requests. Every entry must lie in the week and be a rotation state.
func (w *Week) Restore(working []Assignment) error {
	cells := make(map[Cell]Assignment, len(working))
	for _, a := range working {
		if !w.period.Contains(a.Date) {
			return fmt.Errorf("assignment for %s on %s: %w", a.StaffID, a.Date, generic.ErrOutsideWeek)
		}
		if _, err := StateOf(&a); err != nil {
			return err
		}
		if _, dup := cells[a.Cell()]; dup {
			return fmt.Errorf("two assignments for %s on %s: %w", a.StaffID, a.Date, generic.ErrInvalidSelection)
		}
		cells[a.Cell()] = a
	}
	w.working = cells
	return nil
}

// Snapshot returns the assignments as last fetched from storage.
func (w *Week) Snapshot() []Assignment {
	out := make([]Assignment, len(w.snapshot))
	copy(out, w.snapshot)
	return out
}

// Working returns the edited assignments ordered by date, then staff.
func (w *Week) Working() []Assignment {
	out := make([]Assignment, 0, len(w.working))
	for _, a := range w.working {
		out = append(out, a)
	}
	sortAssignments(out)
	return out
}

// Diff is what Publish would write.
func (w *Week) Diff() Diff { return DiffWeek(w.snapshot, w.Working()) }

// Dirty reports whether the working set differs from the snapshot.
func (w *Week) Dirty() bool {
	if len(w.working) != len(w.snapshot) {
		return true
	}
	for _, a := range w.snapshot {
		if cur, ok := w.working[a.Cell()]; !ok || !cur.Equal(a) {
			return true
		}
	}
	return false
}

// =============================================================================
// DIFF
// =============================================================================

// Diff splits a publish into removals and writes.
type Diff struct {
	ToDelete []Assignment `json:"to_delete"`
	ToUpsert []Assignment `json:"to_upsert"`
}

// DiffWeek computes ToDelete = snapshot assignments whose ID is absent from
// working, and ToUpsert = every working assignment (update when it has an
// ID, insert otherwise).
func DiffWeek(snapshot, working []Assignment) Diff {
	kept := make(map[generic.AssignmentID]bool, len(working))
	for _, a := range working {
		if a.ID != "" {
			kept[a.ID] = true
		}
	}

	diff := Diff{ToDelete: []Assignment{}, ToUpsert: make([]Assignment, len(working))}
	for _, a := range snapshot {
		if a.ID != "" && !kept[a.ID] {
			diff.ToDelete = append(diff.ToDelete, a)
		}
	}
	copy(diff.ToUpsert, working)
	return diff
}

func sortAssignments(as []Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].Date.Equal(as[j].Date) {
			return as[i].Date.Before(as[j].Date)
		}
		return as[i].StaffID < as[j].StaffID
	})
}
