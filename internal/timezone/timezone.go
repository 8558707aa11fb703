// Package timezone resolves salon timezones. Dates and "today" are always
// taken in the salon's zone, never the server's.
package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location loads tz, falling back to DefaultTimezone and then UTC.
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// Clock returns the current instant. Use cases hold one so tests can pin
// "now".
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// In returns the clock's current instant in tz.
func (c Clock) In(tz string) time.Time {
	if c == nil {
		c = SystemClock
	}
	return c().In(Location(tz))
}
