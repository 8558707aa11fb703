package appointment

import (
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// ===============================
// Read predicates
// ===============================

// HoldLapsed reports whether ap is a payment hold past its deadline.
func HoldLapsed(ap *models.Appointment, now time.Time) bool {
	return Status(ap.Status) == StatusAwaitingPayment &&
		ap.HoldExpiresAt != nil &&
		ap.HoldExpiresAt.Before(now)
}

// BlocksSlot reports whether ap occupies its interval at now. A lapsed hold
// stops blocking the moment its deadline passes, whether or not anything
// has written EXPIRADA yet.
func BlocksSlot(ap *models.Appointment, now time.Time) bool {
	if Status(ap.Status).Released() {
		return false
	}
	return !HoldLapsed(ap, now)
}

// StartsAt is the instant the appointment begins in loc.
func StartsAt(ap *models.Appointment, loc *time.Location) (time.Time, error) {
	d, err := schedule.ParseDate(ap.Date)
	if err != nil {
		return time.Time{}, err
	}
	return d.At(ap.StartMin, loc), nil
}

// ===============================
// Domain Actions
// ===============================

func transition(ap *models.Appointment, to Status) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}
	ap.Status = string(to)
	return nil
}

func Approve(ap *models.Appointment, now time.Time) error {
	if Status(ap.Status) != StatusPending {
		return httperr.ErrBusinessf(httperr.CodeInvalidState, "only pending appointments can be approved")
	}
	if err := transition(ap, StatusConfirmed); err != nil {
		return err
	}
	ap.ConfirmedAt = &now
	return nil
}

func RequestPayment(ap *models.Appointment, now time.Time, holdFor time.Duration) error {
	if err := transition(ap, StatusAwaitingPayment); err != nil {
		return err
	}
	deadline := now.Add(holdFor).UTC()
	ap.HoldExpiresAt = &deadline
	return nil
}

// ConfirmPayment settles a hold. A lapsed hold cannot be confirmed; the
// caller is expected to Expire it.
func ConfirmPayment(ap *models.Appointment, now time.Time, reference string) error {
	if Status(ap.Status) != StatusAwaitingPayment {
		return httperr.ErrBusinessf(httperr.CodeInvalidState, "appointment is not awaiting payment")
	}
	if HoldLapsed(ap, now) {
		return httperr.ErrHoldExpired
	}
	if err := transition(ap, StatusConfirmed); err != nil {
		return err
	}
	ap.ConfirmedAt = &now
	ap.PaymentReference = reference
	return nil
}

func Expire(ap *models.Appointment, now time.Time) error {
	if err := transition(ap, StatusExpired); err != nil {
		return err
	}
	ap.ExpiredAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time, reason string) error {
	if err := transition(ap, StatusCancelled); err != nil {
		return err
	}
	ap.CancelledAt = &now
	ap.CancelReason = reason
	return nil
}

// Complete and MarkNoShow close a confirmed appointment once it has started.
func Complete(ap *models.Appointment, now, startsAt time.Time) error {
	if now.Before(startsAt) {
		return httperr.ErrBusinessf(httperr.CodeInvalidState, "appointment has not started yet")
	}
	if err := transition(ap, StatusCompleted); err != nil {
		return err
	}
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now, startsAt time.Time) error {
	if now.Before(startsAt) {
		return httperr.ErrBusinessf(httperr.CodeInvalidState, "appointment has not started yet")
	}
	if err := transition(ap, StatusNoShow); err != nil {
		return err
	}
	ap.CompletedAt = &now
	return nil
}
