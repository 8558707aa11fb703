package appointment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AvailabilityInput struct {
	BarbershopID uint
	Date         string

	// BarberID nil asks for every active barber.
	BarberID   *uint
	ServiceIDs []uint
}

// GetAvailability answers read-only slot queries. It may read the calendar
// from a cache; the allocator re-checks everything before writing.
type GetAvailability struct {
	Deps
	calendars schedule.CalendarSource
}

func NewGetAvailability(d Deps, calendars schedule.CalendarSource) *GetAvailability {
	if calendars == nil {
		calendars = d.Repo
	}
	return &GetAvailability{Deps: d.withDefaults(), calendars: calendars}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*dto.AvailabilityDTO, error) {

	date, err := schedule.ParseDate(in.Date)
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidInput, "invalid date")
	}

	shop, err := uc.Repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	_, duration, amount, err := loadServices(ctx, uc.Repo, shop.ID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}

	var roster []models.Barber
	mode := "any"
	if in.BarberID != nil {
		mode = "barber"
		barber, err := uc.Repo.GetBarber(ctx, shop.ID, *in.BarberID)
		if err != nil {
			return nil, err
		}
		if barber.Active {
			roster = []models.Barber{*barber}
		}
	} else {
		if roster, err = uc.Repo.ListActiveBarbers(ctx, shop.ID); err != nil {
			return nil, err
		}
	}
	uc.Metrics.IncAvailability(mode)

	cal, err := uc.calendars.LoadCalendar(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	day := schedule.Resolve(date, cal, in.BarberID)
	out := dayAvailability(day)
	out.DurationMin = duration
	out.TotalAmount = amount
	out.Slots = []string{}

	if !day.Available || len(roster) == 0 {
		return out, nil
	}

	nowLocal, now := uc.now(shop)
	step, buffer := shop.SlotStep(), shop.Buffer()

	apps, err := uc.Repo.ListDayAppointments(ctx, shop.ID, barberIDs(roster), date.String())
	if err != nil {
		return nil, err
	}
	busy, _ := busyByBarber(apps, nowLocal)

	if in.BarberID != nil {
		ref := barberRef(roster[0])
		out.Barber = &ref
		free := availability.FilterFree(availability.Candidates(day, step, duration, now, buffer), duration, busy[ref.ID])
		out.Slots = clockList(free)
		return out, nil
	}

	perBarber := make([]availability.BarberSlots, 0, len(roster))
	for _, b := range roster {
		barberDay := schedule.Resolve(date, cal, &b.ID)
		if !barberDay.Available {
			continue
		}
		candidates := availability.Candidates(barberDay, step, duration, now, buffer)
		perBarber = append(perBarber, availability.BarberSlots{
			Barber: barberRef(b),
			Slots:  availability.FilterFree(candidates, duration, busy[b.ID]),
		})
	}

	out.AllSlots = availability.BuildGrid(perBarber)
	for _, g := range out.AllSlots {
		out.Slots = append(out.Slots, g.Time)
	}
	return out, nil
}

func dayAvailability(day schedule.DayStatus) *dto.AvailabilityDTO {
	out := &dto.AvailabilityDTO{
		Date:      day.Date.String(),
		Available: day.Available,
		DayType:   string(day.Type),
		Reason:    day.Reason,
		IsSpecial: day.IsSpecial,
		Breaks:    timewindow.Clocks(day.Blocked),
	}
	if day.Available {
		w := day.Window.Clock()
		out.Window = &w
	}
	return out
}

func clockList(starts []int) []string {
	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, timewindow.FormatClock(s))
	}
	return out
}
