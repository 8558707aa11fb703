package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

const maxServiceDurationMin = 8 * 60

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	DurationMin int             `json:"duration_min" binding:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	DurationMin *int             `json:"duration_min,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

func validDuration(min int) bool {
	return min > 0 && min <= maxServiceDurationMin
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).Where("barbershop_id = ?", barbershopID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list services", err))
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}
	if !validDuration(req.DurationMin) {
		httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
		return
	}
	if req.Price.IsNegative() {
		httperr.BadRequest(c, "invalid_price", "Preço inválido.")
		return
	}

	service := models.Service{
		BarbershopID: barbershopID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		DurationMin:  req.DurationMin,
		Price:        req.Price.Round(2),
		Active:       true,
		Category:     strings.ToLower(req.Category),
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("create service", err))
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Serviço inválido.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var service models.Service
	if err := db.
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeEngineError(c, httperr.ErrServiceNotFound)
			return
		}
		writeEngineError(c, httperr.ErrStorage("get service", err))
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DurationMin != nil {
		if !validDuration(*req.DurationMin) {
			httperr.BadRequest(c, "invalid_duration", "Duração inválida.")
			return
		}
		updates["duration_min"] = *req.DurationMin
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			httperr.BadRequest(c, "invalid_price", "Preço inválido.")
			return
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Category != nil {
		updates["category"] = strings.ToLower(*req.Category)
	}

	if len(updates) > 0 {
		if err := db.Model(&service).Updates(updates).Error; err != nil {
			writeEngineError(c, httperr.ErrStorage("update service", err))
			return
		}
		if err := db.First(&service, service.ID).Error; err != nil {
			writeEngineError(c, httperr.ErrStorage("reload service", err))
			return
		}
	}

	c.JSON(http.StatusOK, service)
}
