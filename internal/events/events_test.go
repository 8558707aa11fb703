package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Publish(context.Context, Event) error {
	<-s.release
	return nil
}

func TestDispatcherFansOutToEverySink(t *testing.T) {
	logger := zerolog.New(io.Discard)
	failing := &recordingSink{err: errors.New("down")}
	ok := &recordingSink{}

	d := NewDispatcher(&logger, 10, failing, ok)
	d.Dispatch(Event{Type: TypeAppointmentCreated, BarbershopID: 1})
	d.Dispatch(Event{Type: TypeAppointmentStatusChanged, BarbershopID: 1})
	d.Close()

	require.Len(t, ok.events, 2)
	assert.Len(t, failing.events, 2, "a failing sink does not stop the others")
	assert.False(t, ok.events[0].OccurredAt.IsZero())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sink := &blockingSink{release: make(chan struct{})}

	d := NewDispatcher(&logger, 1, sink)
	var dropped atomic.Int32
	d.OnDrop(func() { dropped.Add(1) })

	for range 5 {
		d.Dispatch(Event{Type: TypeAppointmentCreated})
	}
	close(sink.release)
	d.Close()

	assert.GreaterOrEqual(t, dropped.Load(), int32(3))
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaSinkKeysByBarbershop(t *testing.T) {
	w := &fakeWriter{}
	sink := &KafkaSink{writer: w}

	require.NoError(t, sink.Publish(context.Background(), Event{
		Type:         TypeAppointmentCreated,
		BarbershopID: 42,
		EntityIDs:    []uint{7, 8},
	}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.Equal(t, TypeAppointmentCreated, string(w.msgs[0].Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, []uint{7, 8}, got.EntityIDs)
}
