package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// BarberHandler manages the salon roster. Barbers are deactivated rather
// than deleted so their past appointments stay intact.
type BarberHandler struct {
	db *gorm.DB
}

func NewBarberHandler(db *gorm.DB) *BarberHandler {
	return &BarberHandler{db: db}
}

// --------- Requests ---------

type CreateBarberRequest struct {
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	SortOrder int    `json:"sort_order"`
}

type UpdateBarberRequest struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

// --------- Handlers ---------

func (h *BarberHandler) List(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	q := h.db.WithContext(c.Request.Context()).Where("barbershop_id = ?", barbershopID)

	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var barbers []models.Barber
	if err := q.Order("sort_order ASC, id ASC").Find(&barbers).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list barbers", err))
		return
	}

	httpresp.List(c, barbers)
}

func (h *BarberHandler) Create(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	var req CreateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	barber := models.Barber{
		BarbershopID: barbershopID,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Active:       true,
		SortOrder:    req.SortOrder,
	}
	if barber.Name == "" {
		httperr.BadRequest(c, "invalid_name", "Nome obrigatório.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&barber).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("create barber", err))
		return
	}

	c.JSON(http.StatusCreated, barber)
}

func (h *BarberHandler) Update(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)

	id, ok := parseIDParam(c.Param("id"))
	if !ok {
		httperr.BadRequest(c, "invalid_id", "Barbeiro inválido.")
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var barber models.Barber
	if err := db.
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&barber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeEngineError(c, httperr.ErrBarberNotFound)
			return
		}
		writeEngineError(c, httperr.ErrStorage("get barber", err))
		return
	}

	var req UpdateBarberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Nome obrigatório.")
			return
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}

	if len(updates) > 0 {
		if err := db.Model(&barber).Updates(updates).Error; err != nil {
			writeEngineError(c, httperr.ErrStorage("update barber", err))
			return
		}
		if err := db.First(&barber, barber.ID).Error; err != nil {
			writeEngineError(c, httperr.ErrStorage("reload barber", err))
			return
		}
	}

	c.JSON(http.StatusOK, barber)
}
