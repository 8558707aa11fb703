package schedule

import (
	"slices"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
)

type DayType string

const (
	DayRegular      DayType = "regular"
	DaySpecialHours DayType = "special_hours"
	DayOff          DayType = "day_off"
	DayVacation     DayType = "vacation"
	DayHoliday      DayType = "holiday"
	DayClosed       DayType = "closed"
)

const ReasonNotBusinessDay = "not a business day"

// DayStatus is the effective schedule of one date.
type DayStatus struct {
	Date      Date
	Available bool
	Type      DayType
	Reason    string
	Window    timewindow.Interval
	IsSpecial bool
	Blocked   []timewindow.Interval
}

func closed(date Date, t DayType, reason string) DayStatus {
	return DayStatus{Date: date, Type: t, Reason: reason}
}

// Resolve computes the effective schedule of date for the salon, or for one
// barber when barberID is set. It is pure: the same calendar and date always
// give the same status.
//
// Closing exceptions win over special hours, special hours win over the
// weekly business hours, and breaks are clipped to whatever window results.
func Resolve(date Date, cal *Calendar, barberID *uint) DayStatus {
	if cal == nil {
		return closed(date, DayClosed, ReasonNotBusinessDay)
	}

	var special *Exception
	for i := range cal.Exceptions {
		ex := cal.Exceptions[i]
		if !ex.AppliesTo(barberID) || !ex.Covers(date) {
			continue
		}
		if ex.Type.Closes() {
			return closed(date, DayType(ex.Type), reasonFor(ex))
		}
		if ex.Type == ExceptionSpecialHours && special == nil && ex.Special.Valid() {
			special = &ex
		}
	}

	wd := int(date.Weekday())

	status := DayStatus{Date: date, Available: true, Type: DayRegular}
	switch {
	case special != nil:
		status.Type = DaySpecialHours
		status.IsSpecial = true
		status.Window = special.Special
		status.Reason = special.Reason
	default:
		day, ok := cal.day(wd)
		if !ok || !day.IsActive || !day.Hours.Valid() {
			return closed(date, DayClosed, ReasonNotBusinessDay)
		}
		status.Window = day.Hours
	}

	for _, br := range cal.Breaks {
		if !br.AppliesOn(wd) {
			continue
		}
		if iv, ok := br.Hours.Clip(status.Window); ok {
			status.Blocked = append(status.Blocked, iv)
		}
	}
	slices.SortFunc(status.Blocked, func(a, b timewindow.Interval) int {
		return a.Start - b.Start
	})

	return status
}

func reasonFor(ex Exception) string {
	if ex.Reason != "" {
		return ex.Reason
	}
	return string(ex.Type)
}

// ResolveRange resolves every date in [from, to].
func ResolveRange(from, to Date, cal *Calendar, barberID *uint) []DayStatus {
	if to.Before(from) {
		return nil
	}

	out := make([]DayStatus, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		out = append(out, Resolve(d, cal, barberID))
	}
	return out
}
