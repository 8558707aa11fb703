package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// RespondAppointment is the owner's answer to a pending booking: confirm
// it outright or ask for payment first.
type RespondAppointment struct {
	Deps
}

func NewRespondAppointment(d Deps) *RespondAppointment {
	return &RespondAppointment{Deps: d.withDefaults()}
}

func (uc *RespondAppointment) Approve(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
) ([]models.Appointment, error) {

	return uc.transitionGroup(ctx, transitionRequest{
		BarbershopID:  barbershopID,
		AppointmentID: appointmentID,
		ActorID:       &actorID,
		apply: func(ap *models.Appointment, _ *models.Barbershop, now time.Time) error {
			return domain.Approve(ap, now)
		},
	})
}

// RequestPayment opens a payment hold lasting the salon's hold duration.
func (uc *RespondAppointment) RequestPayment(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
) ([]models.Appointment, error) {

	return uc.transitionGroup(ctx, transitionRequest{
		BarbershopID:  barbershopID,
		AppointmentID: appointmentID,
		ActorID:       &actorID,
		apply: func(ap *models.Appointment, shop *models.Barbershop, now time.Time) error {
			return domain.RequestPayment(ap, now, shop.HoldDuration())
		},
	})
}
