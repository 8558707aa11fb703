package appointment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

// MaxDayStatusRange bounds one calendar query.
const MaxDayStatusRange = 62

type DayStatusInput struct {
	BarbershopID uint
	From         string
	To           string
	BarberID     *uint
}

// ResolveDayStatus reports, per date, whether the salon (or one barber)
// works and with which window. It feeds the booking calendar.
type ResolveDayStatus struct {
	Deps
	calendars schedule.CalendarSource
}

func NewResolveDayStatus(d Deps, calendars schedule.CalendarSource) *ResolveDayStatus {
	if calendars == nil {
		calendars = d.Repo
	}
	return &ResolveDayStatus{Deps: d.withDefaults(), calendars: calendars}
}

func (uc *ResolveDayStatus) Execute(
	ctx context.Context,
	in DayStatusInput,
) ([]dto.DayStatusDTO, error) {

	from, err := schedule.ParseDate(in.From)
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "invalid from date")
	}
	to := from
	if in.To != "" {
		if to, err = schedule.ParseDate(in.To); err != nil {
			return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "invalid to date")
		}
	}
	if to.Before(from) {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "to is before from")
	}
	if from.DaysUntil(to) >= MaxDayStatusRange {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "range too long")
	}

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}
	if in.BarberID != nil {
		if _, err := uc.Repo.GetBarber(ctx, shop.ID, *in.BarberID); err != nil {
			return nil, err
		}
	}

	cal, err := uc.calendars.LoadCalendar(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	days := schedule.ResolveRange(from, to, cal, in.BarberID)
	out := make([]dto.DayStatusDTO, 0, len(days))
	for _, d := range days {
		item := dto.DayStatusDTO{
			Date:      d.Date.String(),
			Weekday:   int(d.Date.Weekday()),
			Available: d.Available,
			DayType:   string(d.Type),
			Reason:    d.Reason,
			IsSpecial: d.IsSpecial,
			Breaks:    timewindow.Clocks(d.Blocked),
		}
		if d.Available {
			w := d.Window.Clock()
			item.Window = &w
		}
		out = append(out, item)
	}
	return out, nil
}
