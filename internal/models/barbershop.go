package models

import "time"

type Barbershop struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Slug     string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string `gorm:"size:20" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:64;default:'America/Sao_Paulo'" json:"timezone"`

	// Booking engine settings
	SlotGranularityMin int  `gorm:"default:30" json:"slot_granularity_min"`
	BookingBufferMin   int  `gorm:"default:30" json:"booking_buffer_min"`
	HoldDurationMin    int  `gorm:"default:15" json:"hold_duration_min"`
	AutoConfirm        bool `gorm:"default:false" json:"auto_confirm"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	DefaultSlotGranularityMin = 30
	DefaultBookingBufferMin   = 30
	DefaultHoldDurationMin    = 15
)

// SlotStep returns the slot granularity, falling back to the default when
// the row predates the setting.
func (b *Barbershop) SlotStep() int {
	if b.SlotGranularityMin <= 0 {
		return DefaultSlotGranularityMin
	}
	return b.SlotGranularityMin
}

func (b *Barbershop) Buffer() int {
	if b.BookingBufferMin < 0 {
		return DefaultBookingBufferMin
	}
	return b.BookingBufferMin
}

func (b *Barbershop) HoldDuration() time.Duration {
	minutes := b.HoldDurationMin
	if minutes <= 0 {
		minutes = DefaultHoldDurationMin
	}
	return time.Duration(minutes) * time.Minute
}
