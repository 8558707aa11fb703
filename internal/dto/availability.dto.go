package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/timewindow"
)

// AvailabilityDTO is the answer to "what can I book on this date".
// Slots lists start times; AllSlots is only filled when any barber will do
// and says who is free at each time.
type AvailabilityDTO struct {
	Date        string                  `json:"date"`
	Available   bool                    `json:"available"`
	DayType     string                  `json:"day_type"`
	Reason      string                  `json:"reason,omitempty"`
	IsSpecial   bool                    `json:"is_special"`
	Window      *timewindow.ClockRange  `json:"window,omitempty"`
	Breaks      []timewindow.ClockRange `json:"breaks"`
	DurationMin int                     `json:"duration_min"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
	Barber      *availability.BarberRef `json:"barber,omitempty"`
	Slots       []string                `json:"slots"`
	AllSlots    []availability.GridSlot `json:"all_slots,omitempty"`
}

type DayStatusDTO struct {
	Date      string                  `json:"date"`
	Weekday   int                     `json:"weekday"`
	Available bool                    `json:"available"`
	DayType   string                  `json:"day_type"`
	Reason    string                  `json:"reason,omitempty"`
	IsSpecial bool                    `json:"is_special"`
	Window    *timewindow.ClockRange  `json:"window,omitempty"`
	Breaks    []timewindow.ClockRange `json:"breaks"`
}
