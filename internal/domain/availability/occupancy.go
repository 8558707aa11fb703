package availability

import (
	"cmp"
	"slices"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
)

// BarberRef is the only shape in which barbers travel through the engine.
type BarberRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// IsFree reports whether a block starting at start misses every busy interval.
func IsFree(start, duration int, busy []timewindow.Interval) bool {
	return !timewindow.OverlapsAny(timewindow.Block(start, duration), busy)
}

// FilterFree keeps the candidates whose block misses every busy interval.
func FilterFree(candidates []int, duration int, busy []timewindow.Interval) []int {
	out := make([]int, 0, len(candidates))
	for _, start := range candidates {
		if IsFree(start, duration, busy) {
			out = append(out, start)
		}
	}
	return out
}

// BarberSlots is the free start times of one barber.
type BarberSlots struct {
	Barber BarberRef
	Slots  []int
}

type GridSlot struct {
	Start            int         `json:"-"`
	Time             string      `json:"time"`
	AvailableBarbers []BarberRef `json:"available_barbers"`
}

// BuildGrid merges per-barber results into one list of start times, each
// carrying the barbers free at that time. Barbers keep the order they
// arrive in, which callers pass in roster order.
func BuildGrid(perBarber []BarberSlots) []GridSlot {
	byStart := map[int]*GridSlot{}
	for _, bs := range perBarber {
		for _, start := range bs.Slots {
			gs, ok := byStart[start]
			if !ok {
				gs = &GridSlot{Start: start, Time: timewindow.FormatClock(start)}
				byStart[start] = gs
			}
			gs.AvailableBarbers = append(gs.AvailableBarbers, bs.Barber)
		}
	}

	out := make([]GridSlot, 0, len(byStart))
	for _, gs := range byStart {
		out = append(out, *gs)
	}
	slices.SortFunc(out, func(a, b GridSlot) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return out
}
