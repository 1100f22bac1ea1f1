/*
scheduler.go - Periodic occupancy refresh

PURPOSE:
  Periodically recomputes the occupancy of the current reporting period
  and publishes it as a Prometheus gauge, so dashboards track the month
  without anyone calling the API. Also surfaces bookings whose room has
  been removed, which the timeline silently skips.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Errors are logged, never fatal; the next tick retries

CONFIGURATION:
  - CheckInterval: How often to refresh (default: 15 minutes)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewOccupancyScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetOccupancy endpoint (same computation on demand)
  - metrics/metrics.go: occupancy_rate and orphaned_bookings gauges
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/metrics"
	"github.com/warp/stay-engine/stay"
)

// OccupancyScheduler refreshes the current period's occupancy gauge.
type OccupancyScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewOccupancyScheduler creates a new scheduler.
func NewOccupancyScheduler(handler *Handler) *OccupancyScheduler {
	return &OccupancyScheduler{
		Handler:       handler,
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *OccupancyScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.Handler.Log
	if !s.Enabled {
		log.Info().Msg("occupancy scheduler disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Info().Dur("interval", s.CheckInterval).Msg("occupancy scheduler started")
}

// Stop stops the scheduler and waits for an in-flight refresh.
func (s *OccupancyScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Handler.Log.Info().Msg("occupancy scheduler stopped")
	}
}

func (s *OccupancyScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.Refresh(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.Refresh(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RefreshResult is what one refresh computed.
type RefreshResult struct {
	Occupancy stay.Occupancy
	Orphaned  int // bookings of the period whose room no longer exists
}

// Refresh computes the current period and updates the gauges. It returns
// the result for callers that want it (tests, admin tooling).
func (s *OccupancyScheduler) Refresh(ctx context.Context) (RefreshResult, error) {
	h := s.Handler
	period := generic.PeriodOf(h.today())

	occ, err := h.occupancy(ctx, period)
	if err != nil {
		h.Log.Error().Err(err).Str("period", period.String()).Msg("occupancy refresh failed")
		return RefreshResult{}, err
	}
	metrics.SetOccupancyRate(period.String(), occ.OccupancyRate.InexactFloat64())
	result := RefreshResult{Occupancy: occ}

	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		h.Log.Error().Err(err).Str("period", period.String()).Msg("orphan check: listing rooms failed")
		return result, err
	}
	bookings, err := h.Store.ListBookings(ctx, period.Interval())
	if err != nil {
		h.Log.Error().Err(err).Str("period", period.String()).Msg("orphan check: listing bookings failed")
		return result, err
	}
	window := stay.TimelineWindow{Resources: resources, Days: period.Interval().Days()}
	result.Orphaned = len(stay.UnknownResourceRefs(bookings, window))
	metrics.SetOrphanedBookings(result.Orphaned)
	if result.Orphaned > 0 {
		h.Log.Warn().
			Int("count", result.Orphaned).
			Str("period", period.String()).
			Msg("bookings reference rooms that no longer exist")
	}

	h.Log.Debug().
		Str("period", period.String()).
		Str("occupancy", percent(occ.OccupancyRate)).
		Int("check_ins", occ.CheckIns).
		Msg("occupancy refreshed")
	return result, nil
}
