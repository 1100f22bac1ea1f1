/*
allocation.go - Splitting one guest charge across several booked rooms

PURPOSE:
  A family books three rooms for one stay and pays one bill. The bill is
  recorded as one booking per room, so the charge (and the deposit) must
  be split across the rooms in a way an auditor can reproduce.

ALGORITHM (minor currency units):
  1. base = floor(total / N), remainder r = total - base*N
  2. every room gets base; the first r rooms in selection order get +1
  3. deposit:
       deposit_paid -> split DepositPaid the same way
       fully_paid   -> each room's deposit share = its own share of total
       unpaid       -> zero

GUARANTEES:
  - sum(ShareOfTotal)   == TotalCharge exactly
  - sum(ShareOfDeposit) == DepositPaid exactly (TotalCharge when fully paid)
  - max(ShareOfTotal) - min(ShareOfTotal) <= 1
  - same input, same output; never random

EXAMPLE:
  charges, _ := stay.AllocateCharge(stay.AllocationRequest{
      TotalCharge: generic.NewMoney(1_000_001, "EUR"),
      Resources:   []generic.ResourceID{"101", "102", "103"},
  })
  // 333334, 333334, 333333

SEE ALSO:
  - ExpandAllocation: Turns charges into per-room bookings
  - BookingStore.CreateBookings: Persists them in one transaction
*/
package stay

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/warp/stay-engine/generic"
)

// AllocationRequest is transient; it is never persisted as-is.
type AllocationRequest struct {
	TotalCharge   generic.Money
	DepositPaid   generic.Money
	PaymentStatus PaymentStatus
	Resources     []generic.ResourceID
}

// AllocatedCharge is one room's share of the request.
type AllocatedCharge struct {
	ResourceID     generic.ResourceID `json:"resource_id"`
	ShareOfTotal   generic.Money      `json:"share_of_total"`
	ShareOfDeposit generic.Money      `json:"share_of_deposit"`
}

// AllocateCharge splits the request across its resources.
func AllocateCharge(req AllocationRequest) ([]AllocatedCharge, error) {
	n := len(req.Resources)
	if n == 0 {
		return nil, fmt.Errorf("no resource selected: %w", generic.ErrInvalidSelection)
	}
	seen := make(map[generic.ResourceID]bool, n)
	for _, id := range req.Resources {
		if seen[id] {
			return nil, fmt.Errorf("resource %s selected twice: %w", id, generic.ErrInvalidSelection)
		}
		seen[id] = true
	}

	status := req.PaymentStatus
	if status == "" {
		status = PaymentUnpaid
	}
	if !status.Valid() {
		return nil, fmt.Errorf("payment status %q: %w", status, generic.ErrInvalidAmount)
	}
	if req.TotalCharge.IsNegative() || req.DepositPaid.IsNegative() {
		return nil, fmt.Errorf("negative charge: %w", generic.ErrInvalidAmount)
	}
	if status == PaymentDepositPaid && req.DepositPaid.GreaterThan(req.TotalCharge) {
		return nil, fmt.Errorf("deposit %s exceeds total %s: %w", req.DepositPaid, req.TotalCharge, generic.ErrInvalidAmount)
	}

	totals := splitEven(req.TotalCharge, n)

	var deposits []generic.Money
	switch status {
	case PaymentDepositPaid:
		deposits = splitEven(req.DepositPaid, n)
	case PaymentFullyPaid:
		deposits = totals
	default:
		deposits = splitEven(req.TotalCharge.Zero(), n)
	}

	charges := make([]AllocatedCharge, n)
	for i, id := range req.Resources {
		charges[i] = AllocatedCharge{
			ResourceID:     id,
			ShareOfTotal:   totals[i],
			ShareOfDeposit: deposits[i],
		}
	}
	return charges, nil
}

// splitEven gives floor(amount/n) to everyone and one extra minor unit to
// the first amount%n entries. amount must be non-negative.
func splitEven(amount generic.Money, n int) []generic.Money {
	base := amount.Minor / int64(n)
	remainder := amount.Minor - base*int64(n)

	shares := make([]generic.Money, n)
	for i := range shares {
		share := base
		if int64(i) < remainder {
			share++
		}
		shares[i] = generic.Money{Minor: share, Currency: amount.Currency}
	}
	return shares
}

// =============================================================================
// EXPANSION - one booking per allocated room
// =============================================================================

// ExpandAllocation builds the per-room bookings for a multi-room stay.
// The template supplies interval, guest and payment status; each booking
// gets a fresh ID, the room's shares and a common GroupID. The caller
// persists the result with BookingStore.CreateBookings (all or nothing).
func ExpandAllocation(template Booking, charges []AllocatedCharge) ([]Booking, error) {
	if err := template.Interval.Validate(); err != nil {
		return nil, err
	}
	if len(charges) == 0 {
		return nil, fmt.Errorf("no charges to expand: %w", generic.ErrInvalidSelection)
	}

	groupID := template.GroupID
	if groupID == "" && len(charges) > 1 {
		groupID = uuid.NewString()
	}
	if template.State == "" {
		template.State = StateConfirmed
	}
	if template.Kind == "" {
		template.Kind = KindGuest
	}

	bookings := make([]Booking, len(charges))
	for i, c := range charges {
		b := template
		b.ID = generic.BookingID(uuid.NewString())
		b.ResourceID = c.ResourceID
		b.TotalAmount = c.ShareOfTotal
		b.DepositPaid = c.ShareOfDeposit
		b.GroupID = groupID
		bookings[i] = b
	}
	return bookings, nil
}
