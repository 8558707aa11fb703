package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// calendarInvalidator drops a salon's cached calendar after a write.
type calendarInvalidator interface {
	Invalidate(ctx context.Context, barbershopID uint)
}

// ScheduleHandler edits the salon calendar: weekly business hours,
// recurring breaks and dated exceptions. Every row is validated with the
// same mapping the engine reads it with.
type ScheduleHandler struct {
	db     *gorm.DB
	cache  calendarInvalidator
	events events.Publisher
}

func NewScheduleHandler(db *gorm.DB, cache calendarInvalidator, pub events.Publisher) *ScheduleHandler {
	return &ScheduleHandler{db: db, cache: cache, events: pub}
}

// ======================================================
// REQUESTS
// ======================================================

type BusinessDayConfig struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	IsActive  bool   `json:"is_active"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BusinessHoursUpdateRequest struct {
	Days []BusinessDayConfig `json:"days" binding:"required,dive"`
}

type BreakRequest struct {
	Name           string `json:"name" binding:"required"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time" binding:"required"`
	RecurrenceType string `json:"recurrence_type" binding:"required"`
	DaysOfWeek     []int  `json:"days_of_week"`
}

type ExceptionRequest struct {
	BarberID            *uint  `json:"barber_id"`
	StartDate           string `json:"start_date" binding:"required"`
	EndDate             string `json:"end_date"`
	ExceptionType       string `json:"exception_type" binding:"required"`
	SpecialStartTime    string `json:"special_start_time"`
	SpecialEndTime      string `json:"special_end_time"`
	IsRecurringAnnually bool   `json:"is_recurring_annually"`
	Reason              string `json:"reason"`
}

// ======================================================
// RESPONSES
// ======================================================

type breakView struct {
	models.RecurringBreak
	DurationMin int    `json:"duration_min"`
	Recurrence  string `json:"recurrence_label"`
}

type exceptionView struct {
	models.ScheduleException
	Days int `json:"days"`
}

// ======================================================
// READ
// ======================================================

func (h *ScheduleHandler) Get(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)
	db := h.db.WithContext(c.Request.Context())

	var (
		hours      []models.BusinessHours
		breaks     []models.RecurringBreak
		exceptions []models.ScheduleException
	)
	if err := db.Where("barbershop_id = ?", barbershopID).Order("weekday ASC").Find(&hours).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("load business hours", err))
		return
	}
	if err := db.Where("barbershop_id = ?", barbershopID).Order("start_time ASC").Find(&breaks).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("load breaks", err))
		return
	}
	if err := db.Where("barbershop_id = ?", barbershopID).Order("start_date ASC").Find(&exceptions).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("load exceptions", err))
		return
	}

	breakViews := make([]breakView, 0, len(breaks))
	for _, b := range breaks {
		v := breakView{RecurringBreak: b}
		if br, err := repository.BreakFromModel(b); err == nil {
			v.DurationMin = schedule.BreakDuration(br)
			v.Recurrence = schedule.DescribeRecurrence(br)
		}
		breakViews = append(breakViews, v)
	}

	exceptionViews := make([]exceptionView, 0, len(exceptions))
	for _, e := range exceptions {
		v := exceptionView{ScheduleException: e}
		if ex, err := repository.ExceptionFromModel(e); err == nil {
			v.Days = schedule.ExceptionDays(ex)
		}
		exceptionViews = append(exceptionViews, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"business_hours": hours,
		"breaks":         breakViews,
		"exceptions":     exceptionViews,
	})
}

// ======================================================
// BUSINESS HOURS (replace all)
// ======================================================

func (h *ScheduleHandler) UpdateBusinessHours(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var req BusinessHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	seen := map[int]bool{}
	toCreate := make([]models.BusinessHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, httperr.CodeInvalidScheduleConfig, "Dia da semana repetido.")
			return
		}
		seen[d.Weekday] = true

		row := models.BusinessHours{
			BarbershopID: barbershopID,
			Weekday:      d.Weekday,
			IsActive:     d.IsActive,
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
		}
		if _, err := repository.BusinessDayFromModel(row); err != nil {
			writeEngineError(c, err)
			return
		}
		toCreate = append(toCreate, row)
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barbershop_id = ?", barbershopID).Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		writeEngineError(c, httperr.ErrStorage("save business hours", err))
		return
	}

	h.changed(c, barbershopID, "business_hours", nil)
	c.JSON(http.StatusOK, toCreate)
}

// ======================================================
// BREAKS
// ======================================================

func (req BreakRequest) apply(row *models.RecurringBreak) {
	row.Name = req.Name
	row.StartTime = req.StartTime
	row.EndTime = req.EndTime
	row.RecurrenceType = req.RecurrenceType
	row.DaysOfWeek = models.Weekdays(req.DaysOfWeek)
}

func (h *ScheduleHandler) CreateBreak(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var req BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	row := models.RecurringBreak{BarbershopID: barbershopID}
	req.apply(&row)
	if _, err := repository.BreakFromModel(row); err != nil {
		writeEngineError(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("create break", err))
		return
	}

	h.changed(c, barbershopID, "recurring_break", &row.ID)
	c.JSON(http.StatusCreated, row)
}

func (h *ScheduleHandler) UpdateBreak(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var row models.RecurringBreak
	if !h.findOwned(c, &row, "break_not_found", "Intervalo não encontrado.") {
		return
	}

	var req BreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	req.apply(&row)
	if _, err := repository.BreakFromModel(row); err != nil {
		writeEngineError(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&row).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("update break", err))
		return
	}

	h.changed(c, barbershopID, "recurring_break", &row.ID)
	c.JSON(http.StatusOK, row)
}

func (h *ScheduleHandler) DeleteBreak(c *gin.Context) {
	h.deleteOwned(c, &models.RecurringBreak{}, "recurring_break", "break_not_found", "Intervalo não encontrado.")
}

// ======================================================
// EXCEPTIONS
// ======================================================

func (h *ScheduleHandler) applyException(c *gin.Context, req ExceptionRequest, row *models.ScheduleException) bool {
	if req.BarberID != nil {
		var barber models.Barber
		err := h.db.WithContext(c.Request.Context()).
			Where("id = ? AND barbershop_id = ?", *req.BarberID, row.BarbershopID).
			First(&barber).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeEngineError(c, httperr.ErrBarberNotFound)
			} else {
				writeEngineError(c, httperr.ErrStorage("get barber", err))
			}
			return false
		}
	}

	row.BarberID = req.BarberID
	row.StartDate = req.StartDate
	row.EndDate = req.EndDate
	if row.EndDate == "" {
		row.EndDate = req.StartDate
	}
	row.ExceptionType = req.ExceptionType
	row.SpecialStartTime = req.SpecialStartTime
	row.SpecialEndTime = req.SpecialEndTime
	row.IsRecurringAnnually = req.IsRecurringAnnually
	row.Reason = req.Reason

	if _, err := repository.ExceptionFromModel(*row); err != nil {
		writeEngineError(c, err)
		return false
	}
	return true
}

func (h *ScheduleHandler) CreateException(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	row := models.ScheduleException{BarbershopID: barbershopID}
	if !h.applyException(c, req, &row) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("create exception", err))
		return
	}

	h.changed(c, barbershopID, "schedule_exception", &row.ID)
	c.JSON(http.StatusCreated, row)
}

func (h *ScheduleHandler) UpdateException(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var row models.ScheduleException
	if !h.findOwned(c, &row, "exception_not_found", "Exceção não encontrada.") {
		return
	}

	var req ExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if !h.applyException(c, req, &row) {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&row).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("update exception", err))
		return
	}

	h.changed(c, barbershopID, "schedule_exception", &row.ID)
	c.JSON(http.StatusOK, row)
}

func (h *ScheduleHandler) DeleteException(c *gin.Context) {
	h.deleteOwned(c, &models.ScheduleException{}, "schedule_exception", "exception_not_found", "Exceção não encontrada.")
}

// ======================================================
// HELPERS
// ======================================================

// findOwned loads the row named by :id inside the caller's salon.
func (h *ScheduleHandler) findOwned(c *gin.Context, dest any, notFoundCode, notFoundMsg string) bool {
	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return false
	}

	err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND barbershop_id = ?", id, middleware.BarbershopID(c)).
		First(dest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httperr.NotFound(c, notFoundCode, notFoundMsg)
		return false
	case err != nil:
		writeEngineError(c, httperr.ErrStorage("find schedule row", err))
		return false
	}
	return true
}

func (h *ScheduleHandler) deleteOwned(c *gin.Context, model any, entity, notFoundCode, notFoundMsg string) {
	barbershopID := middleware.BarbershopID(c)

	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		Delete(model)
	if res.Error != nil {
		writeEngineError(c, httperr.ErrStorage("delete "+entity, res.Error))
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, notFoundCode, notFoundMsg)
		return
	}

	h.changed(c, barbershopID, entity, &id)
	c.Status(http.StatusNoContent)
}

// changed drops the cached calendar and records who changed it.
func (h *ScheduleHandler) changed(c *gin.Context, barbershopID uint, entity string, id *uint) {
	h.cache.Invalidate(c.Request.Context(), barbershopID)

	actor := middleware.ActorID(c)
	ev := events.Event{
		Type:         events.TypeScheduleChanged,
		BarbershopID: barbershopID,
		ActorID:      &actor,
		Entity:       entity,
	}
	if id != nil {
		ev.EntityIDs = []uint{*id}
	}
	h.events.Dispatch(ev)
}
