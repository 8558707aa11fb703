package availability

import (
	"cmp"
	"slices"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

// Candidate is a barber free for the requested block.
type Candidate struct {
	Barber    BarberRef
	SortOrder int
}

// PickLeastBusy returns the candidate with the fewest active appointments
// that day. Ties go to roster order, then to the lower ID.
func PickLeastBusy(candidates []Candidate, load map[uint]int) (BarberRef, error) {
	if len(candidates) == 0 {
		return BarberRef{}, httperr.ErrNoBarberAvailable
	}

	best := slices.MinFunc(candidates, func(a, b Candidate) int {
		return cmp.Or(
			cmp.Compare(load[a.Barber.ID], load[b.Barber.ID]),
			cmp.Compare(a.SortOrder, b.SortOrder),
			cmp.Compare(a.Barber.ID, b.Barber.ID),
		)
	})
	return best.Barber, nil
}
