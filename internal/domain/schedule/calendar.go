package schedule

import (
	"context"
	"slices"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
)

type RecurrenceType string

const (
	RecurrenceDaily        RecurrenceType = "daily"
	RecurrenceWeekly       RecurrenceType = "weekly"
	RecurrenceSpecificDays RecurrenceType = "specific_days"
)

type ExceptionType string

const (
	ExceptionDayOff       ExceptionType = "day_off"
	ExceptionSpecialHours ExceptionType = "special_hours"
	ExceptionVacation     ExceptionType = "vacation"
	ExceptionHoliday      ExceptionType = "holiday"
)

// Closes reports whether the exception type shuts the day entirely.
func (t ExceptionType) Closes() bool {
	switch t {
	case ExceptionDayOff, ExceptionVacation, ExceptionHoliday:
		return true
	}
	return false
}

// BusinessDay is the weekly opening record for one weekday (0 = Sunday).
type BusinessDay struct {
	Weekday  int                 `json:"weekday"`
	IsActive bool                `json:"is_active"`
	Hours    timewindow.Interval `json:"hours"`
}

type Break struct {
	ID         uint                `json:"id"`
	Name       string              `json:"name"`
	Hours      timewindow.Interval `json:"hours"`
	Recurrence RecurrenceType      `json:"recurrence"`
	DaysOfWeek []int               `json:"days_of_week"`
}

// AppliesOn reports whether the break recurs on the given weekday.
func (b Break) AppliesOn(wd int) bool {
	switch b.Recurrence {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return len(b.DaysOfWeek) == 1 && b.DaysOfWeek[0] == wd
	case RecurrenceSpecificDays:
		return slices.Contains(b.DaysOfWeek, wd)
	}
	return false
}

type Exception struct {
	ID                uint                `json:"id"`
	BarberID          *uint               `json:"barber_id,omitempty"`
	Type              ExceptionType       `json:"type"`
	StartDate         Date                `json:"start_date"`
	EndDate           Date                `json:"end_date"`
	Special           timewindow.Interval `json:"special"`
	RecurringAnnually bool                `json:"recurring_annually"`
	Reason            string              `json:"reason"`
}

// Covers reports whether the exception applies to date. Annually recurring
// exceptions compare month and day only; a range such as Dec 24 - Jan 2
// wraps across the year end.
func (e Exception) Covers(date Date) bool {
	if !e.RecurringAnnually {
		return !date.Before(e.StartDate) && !date.After(e.EndDate)
	}

	from, to, d := e.StartDate.monthDay(), e.EndDate.monthDay(), date.monthDay()
	if e.EndDate.Year > e.StartDate.Year && to < from {
		return d >= from || d <= to
	}
	return d >= from && d <= to
}

// AppliesTo reports whether the exception is relevant for barberID. Salon
// wide exceptions apply to everyone; a nil barberID only sees salon wide ones.
func (e Exception) AppliesTo(barberID *uint) bool {
	if e.BarberID == nil {
		return true
	}
	return barberID != nil && *e.BarberID == *barberID
}

// Calendar is every schedule record of one salon.
type Calendar struct {
	Days       []BusinessDay `json:"days"`
	Breaks     []Break       `json:"breaks"`
	Exceptions []Exception   `json:"exceptions"`
}

func (c *Calendar) day(wd int) (BusinessDay, bool) {
	for _, d := range c.Days {
		if d.Weekday == wd {
			return d, true
		}
	}
	return BusinessDay{}, false
}

// CalendarSource loads the schedule records of a salon.
type CalendarSource interface {
	LoadCalendar(ctx context.Context, barbershopID uint) (*Calendar, error)
}
