package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// CompleteAppointment closes a confirmed booking once its start has passed,
// either as attended or as a no-show.
type CompleteAppointment struct {
	Deps
}

func NewCompleteAppointment(d Deps) *CompleteAppointment {
	return &CompleteAppointment{Deps: d.withDefaults()}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
) ([]models.Appointment, error) {
	return uc.close(ctx, barbershopID, actorID, appointmentID, domain.Complete)
}

func (uc *CompleteAppointment) MarkNoShow(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
) ([]models.Appointment, error) {
	return uc.close(ctx, barbershopID, actorID, appointmentID, domain.MarkNoShow)
}

func (uc *CompleteAppointment) close(
	ctx context.Context,
	barbershopID uint,
	actorID uint,
	appointmentID uint,
	action func(ap *models.Appointment, now, startsAt time.Time) error,
) ([]models.Appointment, error) {

	return uc.transitionGroup(ctx, transitionRequest{
		BarbershopID:  barbershopID,
		AppointmentID: appointmentID,
		ActorID:       &actorID,
		apply: func(ap *models.Appointment, shop *models.Barbershop, now time.Time) error {
			startsAt, err := domain.StartsAt(ap, timezone.Location(shop.Timezone))
			if err != nil {
				return err
			}
			return action(ap, now, startsAt)
		},
	})
}
