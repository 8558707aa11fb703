// Package timewindow holds the minute arithmetic shared by the schedule
// resolver and the slot generator. Clock values are minute offsets from
// local midnight of a calendar date; intervals are half-open [Start, End).
package timewindow

import (
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted so a window may close at end of day.
func ParseClock(hm string) (int, error) {
	hm = strings.TrimSpace(hm)

	h, m, ok := strings.Cut(hm, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}

	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", hm, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", hm, err)
	}

	if hour < 0 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", hm)
	}

	total := hour*60 + minute
	if total > MinutesPerDay {
		return 0, fmt.Errorf("clock value %q past end of day", hm)
	}

	return total, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ===============================
// Interval
// ===============================

type Interval struct {
	Start int
	End   int
}

// Block returns the interval a booking of duration minutes occupies when it
// starts at start.
func Block(start, duration int) Interval {
	return Interval{Start: start, End: start + duration}
}

// ParseInterval parses a pair of clock values into an interval.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

func (iv Interval) Valid() bool {
	return iv.Start >= 0 && iv.Start < iv.End && iv.End <= MinutesPerDay
}

func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Overlaps reports whether two half-open intervals share at least one
// minute. Touching endpoints do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Contains reports whether o lies entirely inside iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.End <= iv.End
}

// Clip intersects iv with bounds. The second result is false when nothing
// of iv is left.
func (iv Interval) Clip(bounds Interval) (Interval, bool) {
	out := Interval{
		Start: max(iv.Start, bounds.Start),
		End:   min(iv.End, bounds.End),
	}
	if out.Start >= out.End {
		return Interval{}, false
	}
	return out, true
}

func (iv Interval) String() string {
	return FormatClock(iv.Start) + "-" + FormatClock(iv.End)
}

// OverlapsAny reports whether iv overlaps any interval in set.
func OverlapsAny(iv Interval, set []Interval) bool {
	for _, o := range set {
		if iv.Overlaps(o) {
			return true
		}
	}
	return false
}

// Grid returns every start point in window spaced by step, beginning at
// window.Start. The last point may leave less than step minutes in window.
func Grid(window Interval, step int) []int {
	if step <= 0 || !window.Valid() {
		return nil
	}

	points := make([]int, 0, window.Duration()/step+1)
	for t := window.Start; t < window.End; t += step {
		points = append(points, t)
	}
	return points
}

// ClockRange is the wire form of an interval.
type ClockRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv Interval) Clock() ClockRange {
	return ClockRange{Start: FormatClock(iv.Start), End: FormatClock(iv.End)}
}

// Clocks converts a list of intervals to their wire form.
func Clocks(set []Interval) []ClockRange {
	out := make([]ClockRange, 0, len(set))
	for _, iv := range set {
		out = append(out, iv.Clock())
	}
	return out
}
