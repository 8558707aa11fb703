package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barbershop-booking/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	shops shopLoader
	clock timezone.Clock

	book     *ucAppointment.BookAppointment
	respond  *ucAppointment.RespondAppointment
	cancel   *ucAppointment.CancelAppointment
	complete *ucAppointment.CompleteAppointment
	byDate   *ucAppointment.ListAppointmentsByDate
	byMonth  *ucAppointment.ListAppointmentsByMonth
}

type shopLoader interface {
	GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error)
}

type AppointmentUseCases struct {
	Book     *ucAppointment.BookAppointment
	Respond  *ucAppointment.RespondAppointment
	Cancel   *ucAppointment.CancelAppointment
	Complete *ucAppointment.CompleteAppointment
	ByDate   *ucAppointment.ListAppointmentsByDate
	ByMonth  *ucAppointment.ListAppointmentsByMonth
}

func NewAppointmentHandler(shops shopLoader, clock timezone.Clock, uc AppointmentUseCases) *AppointmentHandler {
	return &AppointmentHandler{
		shops:    shops,
		clock:    clock,
		book:     uc.Book,
		respond:  uc.Respond,
		cancel:   uc.Cancel,
		complete: uc.Complete,
		byDate:   uc.ByDate,
		byMonth:  uc.ByMonth,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	BarberID    *uint  `json:"barber_id"`
	ServiceIDs  []uint `json:"service_ids" binding:"required,min=1"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Notes       string `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

// Create books on behalf of a client. Owner bookings start confirmed.
func (h *AppointmentHandler) Create(c *gin.Context) {
	actorID := middleware.ActorID(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	phone, ok := normalizeContact(c, req.ClientPhone, req.ClientEmail)
	if !ok {
		return
	}

	res, err := h.book.Execute(c.Request.Context(), ucAppointment.BookInput{
		BarbershopID: middleware.BarbershopID(c),
		BarberID:     req.BarberID,
		ServiceIDs:   req.ServiceIDs,
		Date:         req.Date,
		Time:         req.Time,
		ClientName:   req.ClientName,
		ClientPhone:  phone,
		ClientEmail:  strings.TrimSpace(req.ClientEmail),
		Notes:        req.Notes,
		ActorID:      &actorID,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	barberID, ok := parseBarberQuery(c.Query("barber_id"))
	if !ok {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Barbeiro inválido.")
		return
	}

	date := c.Query("date")
	if date == "" {
		shop, err := h.shops.GetBarbershopByID(c.Request.Context(), barbershopID)
		if err != nil {
			writeEngineError(c, err)
			return
		}
		date = todayInShop(shop, h.clock).String()
	}

	list, err := h.byDate.Execute(c.Request.Context(), barbershopID, barberID, date)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         date,
		"appointments": list,
	})
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	barberID, ok := parseBarberQuery(c.Query("barber_id"))
	if !ok {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Barbeiro inválido.")
		return
	}

	yearStr, monthStr := c.Query("year"), c.Query("month")
	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Ano e mês são obrigatórios.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	list, err := h.byMonth.Execute(c.Request.Context(), barbershopID, barberID, year, month)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": list,
	})
}

// ======================================================
// LIFECYCLE
// ======================================================

type transitionFunc func(ctx context.Context, barbershopID, actorID, appointmentID uint) ([]models.Appointment, error)

func (h *AppointmentHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Agendamento inválido.")
		return
	}

	group, err := fn(c.Request.Context(), middleware.BarbershopID(c), middleware.ActorID(c), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": group})
}

func (h *AppointmentHandler) Approve(c *gin.Context) {
	h.transition(c, h.respond.Approve)
}

func (h *AppointmentHandler) RequestPayment(c *gin.Context) {
	h.transition(c, h.respond.RequestPayment)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	h.transition(c, h.complete.MarkNoShow)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelAppointmentRequest
	// the body is optional
	_ = c.ShouldBindJSON(&req)

	h.transition(c, func(ctx context.Context, barbershopID, actorID, appointmentID uint) ([]models.Appointment, error) {
		return h.cancel.Execute(ctx, ucAppointment.CancelInput{
			BarbershopID:  barbershopID,
			AppointmentID: appointmentID,
			ActorID:       &actorID,
			Reason:        req.Reason,
		})
	})
}
