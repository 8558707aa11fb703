package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/schedule"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

type auditQuery struct {
	Action   string `form:"action"`
	Entity   string `form:"entity"`
	EntityID uint   `form:"entity_id"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type auditEntry struct {
	models.AuditLog
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// scope turns the query into gorm conditions. Dates are salon days in UTC
// bounds, inclusive on both ends.
func (q auditQuery) scope(barbershopID uint) (func(*gorm.DB) *gorm.DB, error) {
	var from, to *schedule.Date
	if q.From != "" {
		d, err := schedule.ParseDate(q.From)
		if err != nil {
			return nil, err
		}
		from = &d
	}
	if q.To != "" {
		d, err := schedule.ParseDate(q.To)
		if err != nil {
			return nil, err
		}
		to = &d
	}

	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("barbershop_id = ?", barbershopID)
		if q.Action != "" {
			db = db.Where("action = ?", q.Action)
		}
		if q.Entity != "" {
			db = db.Where("entity = ?", q.Entity)
		}
		if q.EntityID > 0 {
			db = db.Where("entity_id = ?", q.EntityID)
		}
		if from != nil {
			db = db.Where("created_at >= ?", from.At(0, time.UTC))
		}
		if to != nil {
			db = db.Where("created_at < ?", to.AddDays(1).At(0, time.UTC))
		}
		return db
	}, nil
}

// List pages through the salon's audit trail, newest first.
func (h *AuditLogsHandler) List(c *gin.Context) {
	var q auditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, "invalid_request", "Filtros inválidos.")
		return
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > auditMaxLimit {
		q.Limit = auditDefaultLimit
	}

	scope, err := q.scope(middleware.BarbershopID(c))
	if err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidInput, "Data inválida.")
		return
	}

	db := scope(h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{}))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("count audit logs", err))
		return
	}

	var logs []models.AuditLog
	if err := db.
		Order("created_at DESC, id DESC").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&logs).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list audit logs", err))
		return
	}

	entries := make([]auditEntry, 0, len(logs))
	for _, l := range logs {
		e := auditEntry{AuditLog: l}
		if l.Metadata != "" && json.Valid([]byte(l.Metadata)) {
			e.Metadata = json.RawMessage(l.Metadata)
		}
		entries = append(entries, e)
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  q.Page,
		"limit": q.Limit,
		"total": total,
		"logs":  entries,
	})
}
