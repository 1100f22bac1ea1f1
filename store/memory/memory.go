// Package memory provides in-memory Store implementations (for tests/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
)

// =============================================================================
// MEMORY STORE - implements stay.BookingStore and shift.Store
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	resources   []stay.Resource
	bookings    []stay.Booking
	assignments map[generic.AssignmentID]shift.Assignment
	versions    map[generic.Date]int64

	// Fault injection for publish tests. Returning non-nil fails the item.
	FailDelete func(id generic.AssignmentID) error
	FailUpsert func(a shift.Assignment) error
}

var (
	_ stay.BookingStore = (*Memory)(nil)
	_ shift.Store       = (*Memory)(nil)
)

func New() *Memory {
	return &Memory{
		assignments: make(map[generic.AssignmentID]shift.Assignment),
		versions:    make(map[generic.Date]int64),
	}
}

// =============================================================================
// RESOURCES / BOOKINGS
// =============================================================================

func (m *Memory) ListResources(_ context.Context) ([]stay.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]stay.Resource, len(m.resources))
	copy(out, m.resources)
	return out, nil
}

func (m *Memory) SaveResource(_ context.Context, r stay.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.resources {
		if m.resources[i].ID == r.ID {
			m.resources[i] = r
			return nil
		}
	}
	m.resources = append(m.resources, r)
	return nil
}

// CreateBookings appends all bookings or none: every ID is checked before
// anything is written.
func (m *Memory) CreateBookings(_ context.Context, bookings []stay.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[generic.BookingID]bool, len(m.bookings)+len(bookings))
	for _, b := range m.bookings {
		seen[b.ID] = true
	}
	for _, b := range bookings {
		if err := b.Interval.Validate(); err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		if seen[b.ID] {
			return fmt.Errorf("booking %s already exists", b.ID)
		}
		seen[b.ID] = true
	}
	m.bookings = append(m.bookings, bookings...)
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id generic.BookingID) (*stay.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", id, generic.ErrNotFound)
}

func (m *Memory) UpdateBooking(_ context.Context, b stay.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == b.ID {
			m.bookings[i] = b
			return nil
		}
	}
	return fmt.Errorf("booking %s: %w", b.ID, generic.ErrNotFound)
}

func (m *Memory) ListBookings(_ context.Context, window generic.StayInterval) ([]stay.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []stay.Booking
	for _, b := range m.bookings {
		if b.Interval.Overlaps(window) {
			out = append(out, b)
		}
	}
	return out, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) LoadWeek(_ context.Context, week generic.Week) ([]shift.Assignment, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []shift.Assignment
	for _, a := range m.assignments {
		if week.Contains(a.Date) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out, m.versions[week.Start], nil
}

func (m *Memory) ClaimWeekVersion(_ context.Context, week generic.Week, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[week.Start] != expected {
		return 0, fmt.Errorf("%s at version %d, expected %d: %w",
			week, m.versions[week.Start], expected, generic.ErrConcurrentModification)
	}
	m.versions[week.Start] = expected + 1
	return expected + 1, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id generic.AssignmentID) error {
	if m.FailDelete != nil {
		if err := m.FailDelete(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return fmt.Errorf("assignment %s: %w", id, generic.ErrNotFound)
	}
	delete(m.assignments, id)
	return nil
}

func (m *Memory) UpsertAssignment(_ context.Context, a shift.Assignment) (shift.Assignment, error) {
	if m.FailUpsert != nil {
		if err := m.FailUpsert(a); err != nil {
			return shift.Assignment{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// (staff, date) is unique
	for id, existing := range m.assignments {
		if id != a.ID && existing.StaffID == a.StaffID && existing.Date.Equal(a.Date) {
			return shift.Assignment{}, fmt.Errorf("%s on %s: %w", a.StaffID, a.Date, generic.ErrDuplicateShift)
		}
	}
	if a.ID == "" {
		a.ID = generic.AssignmentID(uuid.NewString())
	} else if _, ok := m.assignments[a.ID]; !ok {
		return shift.Assignment{}, fmt.Errorf("assignment %s: %w", a.ID, generic.ErrNotFound)
	}
	m.assignments[a.ID] = a
	return a, nil
}

// Reset clears all data. Fault hooks are kept.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = nil
	m.bookings = nil
	m.assignments = make(map[generic.AssignmentID]shift.Assignment)
	m.versions = make(map[generic.Date]int64)
	return nil
}
