package repository

import (
	"fmt"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

func invalidRow(kind string, id uint, err error) error {
	return httperr.ErrBusinessf(httperr.CodeInvalidScheduleConfig, fmt.Sprintf("%s %d: %v", kind, id, err))
}

func BusinessDayFromModel(m models.BusinessHours) (schedule.BusinessDay, error) {
	day := schedule.BusinessDay{Weekday: m.Weekday, IsActive: m.IsActive}
	if m.IsActive {
		hours, err := timewindow.ParseInterval(m.StartTime, m.EndTime)
		if err != nil {
			return day, invalidRow("business hours", m.ID, err)
		}
		day.Hours = hours
	}
	return day, schedule.ValidateBusinessDay(day)
}

func BreakFromModel(m models.RecurringBreak) (schedule.Break, error) {
	hours, err := timewindow.ParseInterval(m.StartTime, m.EndTime)
	if err != nil {
		return schedule.Break{}, invalidRow("break", m.ID, err)
	}
	b := schedule.Break{
		ID:         m.ID,
		Name:       m.Name,
		Hours:      hours,
		Recurrence: schedule.RecurrenceType(m.RecurrenceType),
		DaysOfWeek: []int(m.DaysOfWeek),
	}
	return b, schedule.ValidateBreak(b)
}

func ExceptionFromModel(m models.ScheduleException) (schedule.Exception, error) {
	start, err := schedule.ParseDate(m.StartDate)
	if err != nil {
		return schedule.Exception{}, invalidRow("exception", m.ID, err)
	}
	end, err := schedule.ParseDate(m.EndDate)
	if err != nil {
		return schedule.Exception{}, invalidRow("exception", m.ID, err)
	}

	ex := schedule.Exception{
		ID:                m.ID,
		BarberID:          m.BarberID,
		Type:              schedule.ExceptionType(m.ExceptionType),
		StartDate:         start,
		EndDate:           end,
		RecurringAnnually: m.IsRecurringAnnually,
		Reason:            m.Reason,
	}
	if ex.Type == schedule.ExceptionSpecialHours {
		special, err := timewindow.ParseInterval(m.SpecialStartTime, m.SpecialEndTime)
		if err != nil {
			return ex, invalidRow("exception", m.ID, err)
		}
		ex.Special = special
	}
	return ex, schedule.ValidateException(ex)
}

// BuildCalendar converts stored rows into a calendar. A row that fails
// validation fails the whole load; writes validate first, so this only
// trips on rows edited outside the API.
func BuildCalendar(
	hours []models.BusinessHours,
	breaks []models.RecurringBreak,
	exceptions []models.ScheduleException,
) (*schedule.Calendar, error) {

	cal := &schedule.Calendar{}
	for _, h := range hours {
		day, err := BusinessDayFromModel(h)
		if err != nil {
			return nil, err
		}
		cal.Days = append(cal.Days, day)
	}
	for _, b := range breaks {
		br, err := BreakFromModel(b)
		if err != nil {
			return nil, err
		}
		cal.Breaks = append(cal.Breaks, br)
	}
	for _, e := range exceptions {
		ex, err := ExceptionFromModel(e)
		if err != nil {
			return nil, err
		}
		cal.Exceptions = append(cal.Exceptions, ex)
	}
	return cal, nil
}
