package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher fans events out to its sinks on a background worker. When the
// queue is full events are dropped; publishing never blocks or fails an API
// call.
type Dispatcher struct {
	sinks  []Sink
	queue  chan Event
	log    *zerolog.Logger
	wg     sync.WaitGroup
	once   sync.Once
	onDrop func()
}

func NewDispatcher(log *zerolog.Logger, size int, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sinks: sinks,
		queue: make(chan Event, size),
		log:   log,
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

// OnDrop registers a callback run for every dropped event.
func (d *Dispatcher) OnDrop(f func()) {
	d.onDrop = f
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for ev := range d.queue {
		for _, s := range d.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Publish(ctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("event", ev.Type).
					Uint("barbershop_id", ev.BarbershopID).
					Msg("event sink failed")
			}
			cancel()
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("event", ev.Type).Msg("event queue full, dropping event")
		if d.onDrop != nil {
			d.onDrop()
		}
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
