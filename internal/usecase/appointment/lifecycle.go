package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// transitionRequest moves one booking, and every sibling of its group,
// through the state machine.
type transitionRequest struct {
	BarbershopID  uint
	AppointmentID uint
	ActorID       *uint

	// check runs on the appointment before any lock is taken.
	check func(ap *models.Appointment) error

	// apply runs on every group member inside the transaction. Returning
	// an error rolls the whole group back.
	apply func(ap *models.Appointment, shop *models.Barbershop, now time.Time) error
}

// transitionGroup serialises with the allocator on the group's day cell, so
// a status change never races a booking for the same minutes.
func (d Deps) transitionGroup(
	ctx context.Context,
	req transitionRequest,
) ([]models.Appointment, error) {

	shop, err := d.Repo.GetBarbershopByID(ctx, req.BarbershopID)
	if err != nil {
		return nil, err
	}

	ap, err := d.Repo.GetAppointment(ctx, shop.ID, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if req.check != nil {
		if err := req.check(ap); err != nil {
			return nil, err
		}
	}

	release, keys, err := d.lockDays(ctx, shop.ID, []uint{ap.BarberID}, ap.Date)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		group []models.Appointment
		from  string
	)
	err = d.Repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDays(ctx, keys); err != nil {
			return err
		}

		current, err := tx.GetAppointment(ctx, shop.ID, ap.ID)
		if err != nil {
			return err
		}
		if group, err = tx.GetAppointmentGroup(ctx, current); err != nil {
			return err
		}

		from = current.Status
		now := d.Clock.In(shop.Timezone)
		for i := range group {
			if err := req.apply(&group[i], shop, now); err != nil {
				return err
			}
		}
		return tx.UpdateAppointments(ctx, group)
	})
	if err != nil {
		return nil, err
	}

	d.Events.Dispatch(events.Event{
		Type:         events.TypeAppointmentStatusChanged,
		BarbershopID: shop.ID,
		ActorID:      req.ActorID,
		Entity:       "appointment",
		EntityIDs:    appointmentIDs(group),
		GroupID:      group[0].GroupID,
		FromStatus:   from,
		ToStatus:     group[0].Status,
	})

	d.Log.Info().
		Uint("barbershop_id", shop.ID).
		Uint("appointment_id", ap.ID).
		Str("from", from).
		Str("to", group[0].Status).
		Msg("appointment status changed")

	return group, nil
}
