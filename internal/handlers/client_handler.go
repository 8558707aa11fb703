package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

type clientView struct {
	models.Client
	Appointments int64  `json:"appointments"`
	LastVisit    string `json:"last_visit,omitempty"`
}

// ======================================================
// LIST CLIENTS
// ======================================================

// List searches the salon's clients by name, phone or email and adds how
// many bookings each one has.
func (h *ClientHandler) List(c *gin.Context) {
	barbershopID := middleware.BarbershopID(c)
	db := h.db.WithContext(c.Request.Context())

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := db.Where("barbershop_id = ?", barbershopID)
	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.Order("created_at DESC").Find(&clients).Error; err != nil {
		writeEngineError(c, httperr.ErrStorage("list clients", err))
		return
	}

	type stat struct {
		ClientID  uint
		Total     int64
		LastVisit string
	}
	var stats []stat
	if len(clients) > 0 {
		ids := make([]uint, 0, len(clients))
		for _, cl := range clients {
			ids = append(ids, cl.ID)
		}
		if err := db.Model(&models.Appointment{}).
			Select("client_id, COUNT(*) AS total, MAX(date) AS last_visit").
			Where("barbershop_id = ? AND client_id IN ?", barbershopID, ids).
			Group("client_id").
			Scan(&stats).Error; err != nil {
			writeEngineError(c, httperr.ErrStorage("client stats", err))
			return
		}
	}

	byClient := make(map[uint]stat, len(stats))
	for _, s := range stats {
		byClient[s.ClientID] = s
	}

	out := make([]clientView, 0, len(clients))
	for _, cl := range clients {
		s := byClient[cl.ID]
		out = append(out, clientView{Client: cl, Appointments: s.Total, LastVisit: s.LastVisit})
	}

	httpresp.List(c, out)
}
