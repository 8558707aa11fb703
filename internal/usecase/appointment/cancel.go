package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type CancelInput struct {
	BarbershopID  uint
	AppointmentID uint

	// ActorID is the owner cancelling from the back office. Without it the
	// request comes from the client, who must prove the booking phone.
	ActorID     *uint
	ClientPhone string
	Reason      string
}

type CancelAppointment struct {
	Deps
}

func NewCancelAppointment(d Deps) *CancelAppointment {
	return &CancelAppointment{Deps: d.withDefaults()}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelInput,
) ([]models.Appointment, error) {

	var check func(ap *models.Appointment) error
	if in.ActorID == nil {
		phone := strings.TrimSpace(in.ClientPhone)
		if phone == "" {
			return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "phone is required")
		}
		check = func(ap *models.Appointment) error {
			return uc.checkClientPhone(ctx, ap, phone)
		}
	}

	return uc.transitionGroup(ctx, transitionRequest{
		BarbershopID:  in.BarbershopID,
		AppointmentID: in.AppointmentID,
		ActorID:       in.ActorID,
		check:         check,
		apply: func(ap *models.Appointment, _ *models.Barbershop, now time.Time) error {
			return domain.Cancel(ap, now, in.Reason)
		},
	})
}

// checkClientPhone hides the appointment from anyone who does not know the
// phone it was booked with.
func (uc *CancelAppointment) checkClientPhone(ctx context.Context, ap *models.Appointment, phone string) error {
	client, err := uc.Repo.FindClientByPhone(ctx, ap.BarbershopID, phone)
	if errors.Is(err, httperr.ErrClientNotFound) {
		return httperr.ErrAppointmentNotFound
	}
	if err != nil {
		return err
	}
	if client.ID != ap.ClientID {
		return httperr.ErrAppointmentNotFound
	}
	return nil
}
