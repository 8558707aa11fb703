// Package events carries appointment lifecycle events from the use cases
// to whoever listens: the audit trail, kafka, and anything added later.
package events

import (
	"context"
	"time"
)

const (
	TypeAppointmentCreated       = "appointment.created"
	TypeAppointmentStatusChanged = "appointment.status_changed"
	TypeScheduleChanged          = "schedule.changed"
)

type Event struct {
	Type         string    `json:"type"`
	BarbershopID uint      `json:"barbershop_id"`
	ActorID      *uint     `json:"actor_id,omitempty"`
	Entity       string    `json:"entity"`
	EntityIDs    []uint    `json:"entity_ids"`
	GroupID      *string   `json:"group_id,omitempty"`
	FromStatus   string    `json:"from_status,omitempty"`
	ToStatus     string    `json:"to_status,omitempty"`
	Metadata     any       `json:"metadata,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Publisher is what use cases hold: fire and forget.
type Publisher interface {
	Dispatch(ev Event)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Dispatch(Event) {}
