// Package metrics holds the Prometheus instruments of the stay engine.
// Call Register once at startup; the helpers are safe to call before that.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stay_engine"

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings persisted, by payment status.",
		},
		[]string{"payment_status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Lifecycle transitions applied to bookings.",
		},
		[]string{"to"},
	)

	allocations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allocation_rooms",
			Help:      "Rooms per multi-room charge allocation.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)

	orphanedBookings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphaned_bookings",
			Help:      "Bookings of the current reporting period whose room no longer exists.",
		},
	)

	occupancyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "occupancy_compute_seconds",
			Help:      "Time spent computing occupancy for a request.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	occupancyRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupancy_rate",
			Help:      "Occupancy rate (0..1) of the current reporting period.",
		},
		[]string{"period"},
	)

	shiftItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_publish_items_total",
			Help:      "Shift assignments written by publish, by operation and result.",
		},
		[]string{"op", "result"},
	)

	shiftConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_publish_conflicts_total",
			Help:      "Publishes rejected because another session published the week first.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			bookingTransitions,
			allocations,
			orphanedBookings,
			occupancyDuration,
			occupancyRate,
			shiftItems,
			shiftConflicts,
		)
	})
}

func IncBookingsCreated(paymentStatus string, n int) {
	bookingsCreated.WithLabelValues(paymentStatus).Add(float64(n))
}

func IncBookingTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

func ObserveAllocation(rooms int) {
	allocations.Observe(float64(rooms))
}

// SetOrphanedBookings publishes the latest count found by the scheduler.
func SetOrphanedBookings(n int) {
	orphanedBookings.Set(float64(n))
}

// ObserveOccupancy records the time elapsed since start.
func ObserveOccupancy(start time.Time) {
	occupancyDuration.Observe(time.Since(start).Seconds())
}

// SetOccupancyRate publishes the latest rate of a period ("2024-03").
func SetOccupancyRate(period string, rate float64) {
	occupancyRate.WithLabelValues(period).Set(rate)
}

// AddShiftItems counts published deletes/upserts; result is "ok" or "failed".
func AddShiftItems(op, result string, n int) {
	if n == 0 {
		return
	}
	shiftItems.WithLabelValues(op, result).Add(float64(n))
}

func IncShiftConflict() {
	shiftConflicts.Inc()
}
