package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// allowedGranularities divide an hour evenly so grids line up across days.
var allowedGranularities = []int{5, 10, 15, 20, 30, 60}

const maxSettingMinutes = 24 * 60

type BarbershopHandler struct {
	db *gorm.DB
}

func NewBarbershopHandler(db *gorm.DB) *BarbershopHandler {
	return &BarbershopHandler{db: db}
}

type UpdateBarbershopConfigRequest struct {
	Name               *string `json:"name"`
	Phone              *string `json:"phone"`
	Address            *string `json:"address"`
	Timezone           *string `json:"timezone"`
	SlotGranularityMin *int    `json:"slot_granularity_min"`
	BookingBufferMin   *int    `json:"booking_buffer_min"`
	HoldDurationMin    *int    `json:"hold_duration_min"`
	AutoConfirm        *bool   `json:"auto_confirm"`
}

func (h *BarbershopHandler) load(c *gin.Context) (*models.Barbershop, bool) {
	var shop models.Barbershop
	if err := h.db.WithContext(c.Request.Context()).First(&shop, middleware.BarbershopID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, httperr.CodeBarbershopNotFound, "Barbearia não encontrada.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
		return nil, false
	}
	return &shop, true
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

// settingsUpdates validates req and returns the columns to write. Zero is a
// meaningful value for the buffer, so updates go through a map.
func settingsUpdates(req UpdateBarbershopConfigRequest) (map[string]any, string) {
	updates := map[string]any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, "Nome obrigatório."
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			return nil, "Fuso horário inválido."
		}
		updates["timezone"] = *req.Timezone
	}
	if req.SlotGranularityMin != nil {
		if !slices.Contains(allowedGranularities, *req.SlotGranularityMin) {
			return nil, "Intervalo entre horários deve ser 5, 10, 15, 20, 30 ou 60 minutos."
		}
		updates["slot_granularity_min"] = *req.SlotGranularityMin
	}
	if req.BookingBufferMin != nil {
		if *req.BookingBufferMin < 0 || *req.BookingBufferMin > maxSettingMinutes {
			return nil, "Antecedência mínima deve ser entre 0 e 1440 minutos."
		}
		updates["booking_buffer_min"] = *req.BookingBufferMin
	}
	if req.HoldDurationMin != nil {
		if *req.HoldDurationMin <= 0 || *req.HoldDurationMin > maxSettingMinutes {
			return nil, "Prazo de pagamento deve ser entre 1 e 1440 minutos."
		}
		updates["hold_duration_min"] = *req.HoldDurationMin
	}
	if req.AutoConfirm != nil {
		updates["auto_confirm"] = *req.AutoConfirm
	}

	return updates, ""
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	shop, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	updates, problem := settingsUpdates(req)
	if problem != "" {
		httperr.BadRequest(c, "invalid_settings", problem)
		return
	}

	if len(updates) > 0 {
		db := h.db.WithContext(c.Request.Context())
		if err := db.Model(shop).Updates(updates).Error; err != nil {
			httperr.Internal(c, "failed_to_update_barbershop", "Erro ao salvar as configurações da barbearia.")
			return
		}
		if err := db.First(shop, shop.ID).Error; err != nil {
			httperr.Internal(c, "failed_to_get_barbershop", "Erro ao buscar dados da barbearia.")
			return
		}
	}

	c.JSON(http.StatusOK, shop)
}
