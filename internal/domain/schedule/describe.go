package schedule

import (
	"slices"
	"strings"
)

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// BreakDuration is the length of a break in minutes.
func BreakDuration(b Break) int {
	return b.Hours.Duration()
}

// DescribeRecurrence renders a break's recurrence for display.
func DescribeRecurrence(b Break) string {
	switch b.Recurrence {
	case RecurrenceDaily:
		return "Every day"
	case RecurrenceWeekly:
		if len(b.DaysOfWeek) == 1 && validWeekday(b.DaysOfWeek[0]) {
			return "Every " + weekdayNames[b.DaysOfWeek[0]]
		}
	case RecurrenceSpecificDays:
		days := slices.Clone(b.DaysOfWeek)
		slices.Sort(days)
		days = slices.Compact(days)

		names := make([]string, 0, len(days))
		for _, wd := range days {
			if validWeekday(wd) {
				names = append(names, weekdayNames[wd][:3])
			}
		}
		if len(names) > 0 {
			return strings.Join(names, ", ")
		}
	}
	return ""
}

// ExceptionDays is the number of calendar days an exception covers,
// counting both ends.
func ExceptionDays(e Exception) int {
	if e.EndDate.Before(e.StartDate) {
		return 0
	}
	return e.StartDate.DaysUntil(e.EndDate) + 1
}
