package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

type ListAppointmentsByMonth struct {
	Deps
}

func NewListAppointmentsByMonth(d Deps) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{Deps: d.withDefaults()}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	barbershopID uint,
	barberID *uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 2000 {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "invalid month")
	}

	start := schedule.NewDate(year, time.Month(month), 1)
	end := schedule.NewDate(year, time.Month(month)+1, 1).AddDays(-1)

	appointments, err := uc.Repo.ListAppointmentsForPeriod(
		ctx,
		barbershopID,
		barberID,
		start.String(),
		end.String(),
	)
	if err != nil {
		return nil, err
	}

	return dto.AppointmentList(asSeenAt(appointments, uc.Clock()), timewindow.FormatClock), nil
}
