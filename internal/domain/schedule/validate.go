package schedule

import (
	"fmt"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

func invalid(format string, args ...any) error {
	return httperr.ErrBusinessf(httperr.CodeInvalidScheduleConfig, fmt.Sprintf(format, args...))
}

func validWeekday(wd int) bool {
	return wd >= 0 && wd <= 6
}

func ValidateBusinessDay(d BusinessDay) error {
	if !validWeekday(d.Weekday) {
		return invalid("weekday %d out of range", d.Weekday)
	}
	if d.IsActive && !d.Hours.Valid() {
		return invalid("business hours on weekday %d must start before they end", d.Weekday)
	}
	return nil
}

// ValidateBreak checks a recurring break. Weekly breaks name exactly one
// weekday; specific_days breaks name at least one.
func ValidateBreak(b Break) error {
	if !b.Hours.Valid() {
		return invalid("break %q must start before it ends", b.Name)
	}

	for _, wd := range b.DaysOfWeek {
		if !validWeekday(wd) {
			return invalid("break %q has weekday %d out of range", b.Name, wd)
		}
	}

	switch b.Recurrence {
	case RecurrenceDaily:
	case RecurrenceWeekly:
		if len(b.DaysOfWeek) != 1 {
			return invalid("weekly break %q must name exactly one weekday", b.Name)
		}
	case RecurrenceSpecificDays:
		if len(b.DaysOfWeek) == 0 {
			return invalid("break %q must name at least one weekday", b.Name)
		}
	default:
		return invalid("unknown recurrence type %q", b.Recurrence)
	}
	return nil
}

func ValidateException(e Exception) error {
	switch e.Type {
	case ExceptionDayOff, ExceptionVacation, ExceptionHoliday:
	case ExceptionSpecialHours:
		if !e.Special.Valid() {
			return invalid("special hours must start before they end")
		}
	default:
		return invalid("unknown exception type %q", e.Type)
	}

	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return invalid("exception dates are required")
	}
	if e.EndDate.Before(e.StartDate) {
		return invalid("exception end date %s is before start date %s", e.EndDate, e.StartDate)
	}
	if e.RecurringAnnually && e.StartDate.DaysUntil(e.EndDate) >= 365 {
		return invalid("an annually recurring exception must span less than a year")
	}
	return nil
}
