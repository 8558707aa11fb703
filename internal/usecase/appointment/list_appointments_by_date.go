package appointment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

// ListAppointmentsByDate is the owner's day view, optionally narrowed to
// one barber.
type ListAppointmentsByDate struct {
	Deps
}

func NewListAppointmentsByDate(d Deps) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{Deps: d.withDefaults()}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	barbershopID uint,
	barberID *uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	d, err := schedule.ParseDate(date)
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "invalid date")
	}

	appointments, err := uc.Repo.ListAppointmentsForPeriod(
		ctx,
		barbershopID,
		barberID,
		d.String(),
		d.String(),
	)
	if err != nil {
		return nil, err
	}

	return dto.AppointmentList(asSeenAt(appointments, uc.Clock()), timewindow.FormatClock), nil
}
