package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment occupies [StartMin, EndMin) minutes of Date in the salon's
// local time. Rows are never deleted; cancelled and expired ones stay for
// history.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint `gorm:"index:idx_appointment_day,priority:1;not null" json:"barbershop_id"`

	BarberID uint    `gorm:"index:idx_appointment_day,priority:2;not null" json:"barber_id"`
	Barber   *Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"barber,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	ServiceID uint     `gorm:"not null" json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	Date     string `gorm:"size:10;index:idx_appointment_day,priority:3;not null" json:"date"`
	Time     string `gorm:"size:5;not null" json:"time"`
	StartMin int    `gorm:"not null" json:"start_min"`
	EndMin   int    `gorm:"not null" json:"end_min"`

	Price  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Status string          `gorm:"size:20;index;not null" json:"status"`

	GroupID          *string    `gorm:"size:36;index" json:"group_id,omitempty"`
	HoldExpiresAt    *time.Time `gorm:"index" json:"hold_expires_at,omitempty"`
	PaymentReference string     `gorm:"size:64" json:"payment_reference,omitempty"`

	Notes        string `gorm:"size:255" json:"notes"`
	CancelReason string `gorm:"size:255" json:"cancel_reason,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
