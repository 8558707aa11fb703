package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Logger writes the audit trail. It is an events.Sink: every lifecycle
// event becomes one AuditLog row per affected entity.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

type metadata struct {
	GroupID    *string `json:"group_id,omitempty"`
	FromStatus string  `json:"from_status,omitempty"`
	ToStatus   string  `json:"to_status,omitempty"`
	Extra      any     `json:"extra,omitempty"`
}

func (l *Logger) Publish(ctx context.Context, ev events.Event) error {
	meta := metadata{
		GroupID:    ev.GroupID,
		FromStatus: ev.FromStatus,
		ToStatus:   ev.ToStatus,
		Extra:      ev.Metadata,
	}

	var metaJSON string
	if b, err := json.Marshal(meta); err == nil && string(b) != "{}" {
		metaJSON = string(b)
	}

	rows := make([]models.AuditLog, 0, max(len(ev.EntityIDs), 1))
	for _, id := range ev.EntityIDs {
		rows = append(rows, models.AuditLog{
			BarbershopID: ev.BarbershopID,
			ActorID:      ev.ActorID,
			Action:       ev.Type,
			Entity:       ev.Entity,
			EntityID:     &id,
			Metadata:     metaJSON,
			CreatedAt:    ev.OccurredAt,
		})
	}
	if len(rows) == 0 {
		rows = append(rows, models.AuditLog{
			BarbershopID: ev.BarbershopID,
			ActorID:      ev.ActorID,
			Action:       ev.Type,
			Entity:       ev.Entity,
			Metadata:     metaJSON,
			CreatedAt:    ev.OccurredAt,
		})
	}

	return l.db.WithContext(ctx).Create(&rows).Error
}

var _ events.Sink = (*Logger)(nil)
