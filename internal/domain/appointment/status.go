package appointment

import (
	"slices"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending         Status = "PENDIENTE"
	StatusConfirmed       Status = "CONFIRMADA"
	StatusAwaitingPayment Status = "ESPERANDO_PAGO"
	StatusCompleted       Status = "COMPLETADA"
	StatusCancelled       Status = "CANCELADA"
	StatusExpired         Status = "EXPIRADA"
	StatusNoShow          Status = "NO_ASISTIO"
)

// ReleasedStatuses never occupy their slot.
var ReleasedStatuses = []string{
	string(StatusCancelled),
	string(StatusExpired),
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAwaitingPayment,
		StatusCompleted, StatusCancelled, StatusExpired, StatusNoShow:
		return true
	}
	return false
}

// Released reports whether the status gave its slot back.
func (s Status) Released() bool {
	return s == StatusCancelled || s == StatusExpired
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

var transitions = map[Status][]Status{
	StatusPending:         {StatusAwaitingPayment, StatusConfirmed, StatusCancelled},
	StatusAwaitingPayment: {StatusConfirmed, StatusExpired, StatusCancelled},
	StatusConfirmed:       {StatusCompleted, StatusNoShow, StatusCancelled},
}

// ===============================
// Validations
// ===============================

// CanTransition rejects any move the lifecycle does not allow.
func CanTransition(from, to Status) error {
	if !slices.Contains(transitions[from], to) {
		return httperr.ErrBusinessf(httperr.CodeInvalidState, string(from)+" -> "+string(to))
	}
	return nil
}

// InitialStatus is the status a fresh booking lands in.
func InitialStatus(autoConfirm bool) Status {
	if autoConfirm {
		return StatusConfirmed
	}
	return StatusPending
}
