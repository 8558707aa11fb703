package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
)

// MeHandler tells the back office who the token belongs to. Accounts live
// with the token issuer; this API only knows the claims.
type MeHandler struct {
	shops shopLoader
}

func NewMeHandler(shops shopLoader) *MeHandler {
	return &MeHandler{shops: shops}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	shop, err := h.shops.GetBarbershopByID(c.Request.Context(), middleware.BarbershopID(c))
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            middleware.ActorID(c),
			"role":          c.GetString(middleware.ContextUserRole),
			"barbershop_id": shop.ID,
		},
		"barbershop": gin.H{
			"id":       shop.ID,
			"name":     shop.Name,
			"slug":     shop.Slug,
			"phone":    shop.Phone,
			"address":  shop.Address,
			"timezone": shop.Timezone,
		},
	})
}
