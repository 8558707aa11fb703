package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db *gorm.DB

	dayStatus    *ucAppointment.ResolveDayStatus
	availability *ucAppointment.GetAvailability
	book         *ucAppointment.BookAppointment
	confirm      *ucAppointment.ConfirmPayment
	cancel       *ucAppointment.CancelAppointment
}

func NewPublicHandler(
	db *gorm.DB,
	dayStatus *ucAppointment.ResolveDayStatus,
	availability *ucAppointment.GetAvailability,
	book *ucAppointment.BookAppointment,
	confirm *ucAppointment.ConfirmPayment,
	cancel *ucAppointment.CancelAppointment,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		dayStatus:    dayStatus,
		availability: availability,
		book:         book,
		confirm:      confirm,
		cancel:       cancel,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	BarberID    *uint  `json:"barber_id"`
	ServiceIDs  []uint `json:"service_ids" binding:"required,min=1"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

type ConfirmPaymentRequest struct {
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	PaymentID     string `json:"payment_id" binding:"required"`
}

type PublicCancelRequest struct {
	ClientPhone string `json:"client_phone" binding:"required"`
	Reason      string `json:"reason"`
}

func (h *PublicHandler) shopBySlug(c *gin.Context) (*models.Barbershop, bool) {
	var shop models.Barbershop
	err := h.db.WithContext(c.Request.Context()).
		Where("slug = ?", c.Param("slug")).
		First(&shop).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httperr.NotFound(c, httperr.CodeBarbershopNotFound, "Barbearia não encontrada.")
		return nil, false
	case err != nil:
		writeEngineError(c, httperr.ErrStorage("get barbershop", err))
		return nil, false
	}
	return &shop, true
}

////////////////////////////////////////////////////////
// CATALOGUE
////////////////////////////////////////////////////////

// GetBarbershop returns what a client needs to start booking: the salon,
// its active barbers and its active services.
func (h *PublicHandler) GetBarbershop(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var barbers []models.Barber
	if err := db.
		Where("barbershop_id = ? AND active = ?", shop.ID, true).
		Order("sort_order ASC, id ASC").
		Find(&barbers).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list barbers", err))
		return
	}

	q := db.Where("barbershop_id = ? AND active = ?", shop.ID, true)
	if category := strings.TrimSpace(strings.ToLower(c.Query("category"))); category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list services", err))
		return
	}

	roster := make([]gin.H, 0, len(barbers))
	for _, b := range barbers {
		roster = append(roster, gin.H{"id": b.ID, "name": b.Name})
	}

	c.JSON(http.StatusOK, gin.H{
		"barbershop": gin.H{
			"id":       shop.ID,
			"name":     shop.Name,
			"slug":     shop.Slug,
			"phone":    shop.Phone,
			"address":  shop.Address,
			"timezone": shop.Timezone,
		},
		"barbers":  roster,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// CALENDAR
////////////////////////////////////////////////////////

func (h *PublicHandler) DayStatus(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	barberID, ok := parseBarberQuery(c.Query("barber_id"))
	if !ok {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Barbeiro inválido.")
		return
	}
	if c.Query("from") == "" {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Data inicial obrigatória.")
		return
	}

	days, err := h.dayStatus.Execute(c.Request.Context(), ucAppointment.DayStatusInput{
		BarbershopID: shop.ID,
		From:         c.Query("from"),
		To:           c.Query("to"),
		BarberID:     barberID,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	date := c.Query("date")
	serviceIDs, ok := parseIDList(c.Query("service_ids"))
	if date == "" || !ok {
		httperr.BadRequest(c, "missing_params", "Data e serviços obrigatórios.")
		return
	}

	barberID, ok := parseBarberQuery(c.Query("barber_id"))
	if !ok {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Barbeiro inválido.")
		return
	}

	res, err := h.availability.Execute(c.Request.Context(), ucAppointment.AvailabilityInput{
		BarbershopID: shop.ID,
		Date:         date,
		BarberID:     barberID,
		ServiceIDs:   serviceIDs,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

////////////////////////////////////////////////////////
// BOOKING
////////////////////////////////////////////////////////

// normalizeContact validates the client's phone and email and returns the
// phone in its stored form.
func normalizeContact(c *gin.Context, phone, email string) (string, bool) {
	normalized, ok := validators.NormalizePhone(phone)
	if !ok {
		httperr.BadRequest(c, "invalid_phone", "Telefone inválido.")
		return "", false
	}
	if email = strings.TrimSpace(email); email != "" && !validators.IsEmail(email) {
		httperr.BadRequest(c, "invalid_email", "E-mail inválido.")
		return "", false
	}
	return normalized, true
}

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	phone, ok := normalizeContact(c, req.ClientPhone, req.ClientEmail)
	if !ok {
		return
	}

	res, err := h.book.Execute(c.Request.Context(), ucAppointment.BookInput{
		BarbershopID: shop.ID,
		BarberID:     req.BarberID,
		ServiceIDs:   req.ServiceIDs,
		Date:         req.Date,
		Time:         req.Time,
		ClientName:   req.ClientName,
		ClientPhone:  phone,
		ClientEmail:  strings.TrimSpace(req.ClientEmail),
		Notes:        req.Notes,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PublicHandler) ConfirmPayment(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	group, err := h.confirm.Execute(c.Request.Context(), ucAppointment.ConfirmPaymentInput{
		BarbershopID:  shop.ID,
		AppointmentID: req.AppointmentID,
		PaymentID:     req.PaymentID,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": group})
}

func (h *PublicHandler) CancelAppointment(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	var req PublicCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	phone, ok := validators.NormalizePhone(req.ClientPhone)
	if !ok {
		httperr.NotFound(c, httperr.CodeAppointmentNotFound, "Agendamento não encontrado.")
		return
	}

	group, err := h.cancel.Execute(c.Request.Context(), ucAppointment.CancelInput{
		BarbershopID:  shop.ID,
		AppointmentID: id,
		ClientPhone:   phone,
		Reason:        req.Reason,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": group})
}
