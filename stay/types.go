// Package stay implements rooms, reservations and the engines that work on
// them: occupancy aggregation, timeline layout and multi-room charge
// allocation. It builds on the generic interval vocabulary.
package stay

import (
	"context"

	"github.com/warp/stay-engine/generic"
)

// =============================================================================
// RESOURCE - A bookable room
// =============================================================================

// Resource is a room. Capacity is always one booking-night per night.
type Resource struct {
	ID    generic.ResourceID `json:"id"`
	Label string             `json:"label"`
	Floor int                `json:"floor,omitempty"`
	Kind  string             `json:"kind,omitempty"` // e.g. "double", "suite"
}

// =============================================================================
// BOOKING - A reservation of one resource over one stay interval
// =============================================================================

type LifecycleState string

const (
	StateConfirmed  LifecycleState = "confirmed"
	StateCheckedIn  LifecycleState = "checked_in"
	StateCheckedOut LifecycleState = "checked_out"
	StateCancelled  LifecycleState = "cancelled"
)

// PaymentStatus is supplied by the caller; it is never inferred from amounts,
// because DepositPaid == TotalAmount is a valid deposit-paid state too.
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentDepositPaid, PaymentFullyPaid:
		return true
	}
	return false
}

type BookingKind string

const (
	KindGuest       BookingKind = "guest"
	KindMaintenance BookingKind = "maintenance" // room out of order, not a sale
)

// Booking owns its interval and references exactly one Resource by ID.
type Booking struct {
	ID            generic.BookingID    `json:"id"`
	ResourceID    generic.ResourceID   `json:"resource_id"`
	Interval      generic.StayInterval `json:"interval"`
	State         LifecycleState       `json:"state"`
	PaymentStatus PaymentStatus        `json:"payment_status"`
	Kind          BookingKind          `json:"kind"`
	TotalAmount   generic.Money        `json:"total_amount"`
	DepositPaid   generic.Money        `json:"deposit_paid"`
	GuestName     string               `json:"guest_name,omitempty"`

	// GroupID ties together the per-room bookings created from one
	// multi-room allocation.
	GroupID string `json:"group_id,omitempty"`
}

// IsCancelled reports whether the booking is excluded from computations.
func (b Booking) IsCancelled() bool { return b.State == StateCancelled }

// IsMaintenance reports whether the booking blocks a room without selling it.
func (b Booking) IsMaintenance() bool { return b.Kind == KindMaintenance }

// Nights is the full, unclipped length of the stay.
func (b Booking) Nights() int { return b.Interval.Nights() }

// Active filters out cancelled bookings, preserving order.
func Active(bookings []Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsCancelled() {
			out = append(out, b)
		}
	}
	return out
}

// =============================================================================
// STORE - Persistence boundary (implemented by store/sqlite, store/memory)
// =============================================================================

// BookingStore persists resources and bookings.
type BookingStore interface {
	ListResources(ctx context.Context) ([]Resource, error)
	SaveResource(ctx context.Context, r Resource) error

	// CreateBookings persists every booking or none of them.
	CreateBookings(ctx context.Context, bookings []Booking) error

	GetBooking(ctx context.Context, id generic.BookingID) (*Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error

	// ListBookings returns bookings (cancelled included) overlapping [from, to).
	ListBookings(ctx context.Context, window generic.StayInterval) ([]Booking, error)
}
