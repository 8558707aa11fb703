package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AppointmentListDTO struct {
	ID          uint            `json:"id"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	EndTime     string          `json:"end_time"`
	Status      string          `json:"status"`
	GroupID     *string         `json:"group_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	BarberID    uint            `json:"barber_id"`
	BarberName  string          `json:"barber_name"`
	ClientName  string          `json:"client_name"`
	ClientPhone string          `json:"client_phone"`
	ServiceName string          `json:"service_name"`
}

// AppointmentList flattens appointments loaded with their associations.
func AppointmentList(aps []models.Appointment, formatClock func(int) string) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		item := AppointmentListDTO{
			ID:       ap.ID,
			Date:     ap.Date,
			Time:     ap.Time,
			EndTime:  formatClock(ap.EndMin),
			Status:   ap.Status,
			GroupID:  ap.GroupID,
			Price:    ap.Price,
			BarberID: ap.BarberID,
		}
		if ap.Barber != nil {
			item.BarberName = ap.Barber.Name
		}
		if ap.Client != nil {
			item.ClientName = ap.Client.Name
			item.ClientPhone = ap.Client.Phone
		}
		if ap.Service != nil {
			item.ServiceName = ap.Service.Name
		}
		out = append(out, item)
	}
	return out
}
