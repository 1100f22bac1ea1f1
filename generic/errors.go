/*
errors.go - Centralized error types for the stay engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages (stay, shift) wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input errors - Invariant violations by the caller (bad interval,
     empty selection). Returned synchronously; they abort the operation.
  2. Reference errors - Stale data (booking on a removed room). Reported,
     never fatal, because the timeline must render with stale references.
  3. Store errors - Partial publish, concurrent modification, not found.

USAGE:
  if errors.Is(err, generic.ErrInvalidSelection) {
      // 400
  }

  var pubErr *shift.PublishError
  if errors.As(err, &pubErr) {
      // retry pubErr.FailedDeletes / pubErr.FailedUpserts
  }

SEE ALSO:
  - interval.go: IntervalError
  - stay/timeline.go: UnknownResourceError
  - shift/publish.go: PublishError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when a stay has End <= Start.
	ErrInvalidInterval = errors.New("invalid interval: end must be after start")

	// ErrInvalidPeriod is returned when a reporting period is malformed.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidSelection is returned when a charge is allocated across zero
	// resources, or the selection names a resource twice.
	ErrInvalidSelection = errors.New("invalid resource selection")

	// ErrInvalidAmount is returned for negative charges or a deposit above the total.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidResourceCount is returned for a negative resource count.
	ErrInvalidResourceCount = errors.New("invalid resource count")

	// ErrUnknownResourceReference marks a booking whose resource is not in
	// the current window. Logged by the caller, never returned by layout.
	ErrUnknownResourceReference = errors.New("unknown resource reference")

	// ErrInvalidTransition is returned for a lifecycle move the booking
	// state machine does not allow (e.g. CheckedOut -> CheckedIn).
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrUnknownShiftState is returned when a stored assignment matches no
	// slot of the rotation.
	ErrUnknownShiftState = errors.New("assignment matches no rotation state")

	// ErrOutsideWeek is returned when a shift cell is outside the loaded week.
	ErrOutsideWeek = errors.New("date outside the loaded week")

	// ErrNonAtomicPublish is returned when some items of a shift publish failed.
	// Storage is in a mixed state; the caller must re-fetch.
	ErrNonAtomicPublish = errors.New("shift publish partially failed")

	// ErrConcurrentModification is returned when optimistic locking detects a conflict.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrDuplicateShift is returned when a staff member already has a stored
	// shift on the date being written.
	ErrDuplicateShift = errors.New("staff member already has a shift that day")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IntervalError provides the offending bounds.
type IntervalError struct {
	Start Date
	End   Date
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid interval [%s, %s): end must be after start", e.Start, e.End)
}

func (e *IntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry after a re-fetch.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrNonAtomicPublish) ||
		errors.Is(err, ErrDuplicateShift)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidResourceCount) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrUnknownShiftState) ||
		errors.Is(err, ErrOutsideWeek)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
