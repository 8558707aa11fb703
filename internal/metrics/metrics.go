// Package metrics exposes the booking engine's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "barbershop"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	// BookingsTotal counts booking attempts by outcome.
	BookingsTotal *prometheus.CounterVec

	// AllocationConflicts counts bookings lost to a concurrent writer.
	AllocationConflicts prometheus.Counter

	// HoldsExpired counts payment holds moved to EXPIRADA.
	HoldsExpired prometheus.Counter

	// AvailabilityQueries counts availability computations by barber mode.
	AvailabilityQueries *prometheus.CounterVec

	// LockWaitSeconds is the time spent acquiring booking locks.
	LockWaitSeconds prometheus.Histogram

	// EventsDropped counts events discarded because the queue was full.
	EventsDropped prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		BookingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_total",
				Help:      "Total number of booking attempts",
			},
			[]string{"outcome"},
		),

		AllocationConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocation_conflicts_total",
				Help:      "Total number of bookings rejected because the slot was taken",
			},
		),

		HoldsExpired: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "holds_expired_total",
				Help:      "Total number of payment holds expired",
			},
		),

		AvailabilityQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "availability_queries_total",
				Help:      "Total number of availability computations",
			},
			[]string{"mode"},
		),

		LockWaitSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "booking_lock_wait_seconds",
				Help:      "Time spent waiting for booking locks",
				Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
		),

		EventsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Total number of events dropped on a full queue",
			},
		),
	}
}

func (m *Metrics) IncBooking(outcome string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncConflict() {
	if m == nil {
		return
	}
	m.AllocationConflicts.Inc()
}

func (m *Metrics) AddHoldsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.HoldsExpired.Add(float64(n))
}

func (m *Metrics) IncAvailability(mode string) {
	if m == nil {
		return
	}
	m.AvailabilityQueries.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveLockWait(seconds float64) {
	if m == nil {
		return
	}
	m.LockWaitSeconds.Observe(seconds)
}

func (m *Metrics) IncEventsDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}
