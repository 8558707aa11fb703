package handlers

import (
	"strconv"
	"strings"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// --------------------------------------------------
// Datas no fuso da barbearia
// --------------------------------------------------

func todayInShop(shop *models.Barbershop, clock timezone.Clock) schedule.Date {
	return schedule.DateOf(clock.In(shop.Timezone))
}

// --------------------------------------------------
// Query params
// --------------------------------------------------

// parseBarberQuery reads barber_id: empty or "any" means any barber.
func parseBarberQuery(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "any") {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// parseIDList reads "1,2,3".
func parseIDList(raw string) ([]uint, bool) {
	var out []uint
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, false
		}
		out = append(out, uint(id))
	}
	return out, len(out) > 0
}

func parseIDParam(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
