package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type BookingDTO struct {
	GroupID          *string                `json:"group_id,omitempty"`
	Status           string                 `json:"status"`
	Date             string                 `json:"date"`
	Start            string                 `json:"start"`
	End              string                 `json:"end"`
	DurationMin      int                    `json:"duration_min"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	Barber           availability.BarberRef `json:"barber"`
	PaymentReference string                 `json:"payment_reference,omitempty"`
	Appointments     []models.Appointment   `json:"appointments"`
}
