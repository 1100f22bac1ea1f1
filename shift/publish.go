/*
publish.go - Writing an edited week back to storage

PURPOSE:
  A scheduler edits a week locally (Week.Toggle) and publishes it in one go.
  Publishing is a diff against the snapshot the week was loaded from:
  deletes for assignments that disappeared, upserts for everything else.

NOT TRANSACTIONAL:
  Items are written one by one. A failing item is recorded and the batch
  carries on; the call returns a *PublishError listing what did not make
  it. Storage may then be in a mixed state, so the caller must reload the
  week (Load) instead of trusting its local working set.

ORDERING:
  All deletes are issued before any upsert, so a cell cycled
  Evening -> Empty -> Morning frees its (staff, date) slot before the new
  record is inserted.

CONCURRENT EDITORS:
  Every week carries a version. Publish first claims version+1 with the
  version read alongside the snapshot; if another session published in
  between, the claim fails with ErrConcurrentModification and nothing is
  written. SkipVersionCheck restores last-publish-wins.

SEE ALSO:
  - week.go: DiffWeek
  - store/sqlite/sqlite.go, store/memory/memory.go: Store implementations
*/
package shift

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/stay-engine/generic"
)

// Store persists assignments week by week.
type Store interface {
	// LoadWeek returns the week's assignments and its current version.
	LoadWeek(ctx context.Context, week generic.Week) ([]Assignment, int64, error)

	// ClaimWeekVersion moves the week from `expected` to expected+1, or
	// returns ErrConcurrentModification when the stored version differs.
	ClaimWeekVersion(ctx context.Context, week generic.Week, expected int64) (int64, error)

	DeleteAssignment(ctx context.Context, id generic.AssignmentID) error

	// UpsertAssignment updates by ID, or inserts and assigns an ID.
	UpsertAssignment(ctx context.Context, a Assignment) (Assignment, error)
}

// Load starts an editing session from storage.
func Load(ctx context.Context, store Store, week generic.Week) (*Week, error) {
	snapshot, version, err := store.LoadWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", week, err)
	}
	return NewWeek(week, snapshot, version)
}

// =============================================================================
// PUBLISHER
// =============================================================================

type Publisher struct {
	Store            Store
	SkipVersionCheck bool
}

// PublishResult lists what was written.
type PublishResult struct {
	Deleted  []Assignment `json:"deleted"`
	Upserted []Assignment `json:"upserted"`
	Version  int64        `json:"version"`
}

// PublishError carries the items that failed so the caller can retry them.
type PublishError struct {
	FailedDeletes []Assignment
	FailedUpserts []Assignment
	Cause         error // errors.Join of every item failure
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("shift publish: %d delete(s) and %d upsert(s) failed: %v",
		len(e.FailedDeletes), len(e.FailedUpserts), e.Cause)
}

func (e *PublishError) Unwrap() []error {
	return []error{generic.ErrNonAtomicPublish, e.Cause}
}

// Publish writes the week's diff. The result is always returned when the
// version claim succeeded, even alongside a *PublishError.
func (p *Publisher) Publish(ctx context.Context, w *Week) (*PublishResult, error) {
	diff := w.Diff()
	result := &PublishResult{Version: w.Version()}

	if !p.SkipVersionCheck {
		version, err := p.Store.ClaimWeekVersion(ctx, w.Period(), w.Version())
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", w.Period(), err)
		}
		result.Version = version
	}

	var (
		failures []error
		pubErr   PublishError
	)
	for _, a := range diff.ToDelete {
		if err := p.Store.DeleteAssignment(ctx, a.ID); err != nil {
			pubErr.FailedDeletes = append(pubErr.FailedDeletes, a)
			failures = append(failures, fmt.Errorf("delete %s: %w", a.ID, err))
			continue
		}
		result.Deleted = append(result.Deleted, a)
	}
	for _, a := range diff.ToUpsert {
		saved, err := p.Store.UpsertAssignment(ctx, a)
		if err != nil {
			pubErr.FailedUpserts = append(pubErr.FailedUpserts, a)
			failures = append(failures, fmt.Errorf("upsert %s/%s: %w", a.StaffID, a.Date, err))
			continue
		}
		result.Upserted = append(result.Upserted, saved)
	}

	if len(failures) > 0 {
		pubErr.Cause = errors.Join(failures...)
		return result, &pubErr
	}
	return result, nil
}
