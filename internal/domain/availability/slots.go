// Package availability turns a resolved day into bookable start times and
// decides which barber takes a booking.
package availability

import (
	"iter"
	"slices"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
)

// Slots yields every start minute in window, stepping by step, at which a
// block of duration minutes fits inside the window, misses every blocked
// interval and does not begin before notBefore. The sequence is lazy and can
// be ranged over any number of times.
func Slots(window timewindow.Interval, blocked []timewindow.Interval, step, duration, notBefore int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if step <= 0 || duration <= 0 || !window.Valid() {
			return
		}
		for start := window.Start; start+duration <= window.End; start += step {
			if start < notBefore {
				continue
			}
			if timewindow.OverlapsAny(timewindow.Block(start, duration), blocked) {
				continue
			}
			if !yield(start) {
				return
			}
		}
	}
}

func CollectSlots(window timewindow.Interval, blocked []timewindow.Interval, step, duration, notBefore int) []int {
	return slices.Collect(Slots(window, blocked, step, duration, notBefore))
}

// Now is the salon's local wall clock reduced to a civil date and a minute
// of that day.
type Now struct {
	Today  schedule.Date
	Minute int
}

// NowAt reduces a local instant to a Now.
func NowAt(local time.Time) Now {
	return Now{
		Today:  schedule.DateOf(local),
		Minute: local.Hour()*60 + local.Minute(),
	}
}

// Candidates returns the start times schedule-wise available on a resolved
// day. Past dates give nothing; today only offers starts at least buffer
// minutes after now.
func Candidates(day schedule.DayStatus, step, duration int, now Now, buffer int) []int {
	if !day.Available || day.Date.Before(now.Today) {
		return nil
	}

	notBefore := 0
	if day.Date == now.Today {
		notBefore = now.Minute + buffer
	}
	return CollectSlots(day.Window, day.Blocked, step, duration, notBefore)
}
