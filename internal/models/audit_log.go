package models

import "time"

// AuditLog is one entry of the salon's activity trail. ActorID is empty
// for actions taken by clients or by the hold sweeper.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BarbershopID uint   `gorm:"index:idx_audit_shop_time,priority:1;not null" json:"barbershop_id"`
	ActorID      *uint  `json:"actor_id,omitempty"`
	Action       string `gorm:"size:50;index;not null" json:"action"`

	Entity   string `gorm:"size:50;index:idx_audit_entity,priority:1" json:"entity"`
	EntityID *uint  `gorm:"index:idx_audit_entity,priority:2" json:"entity_id,omitempty"`
	Metadata string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"index:idx_audit_shop_time,priority:2" json:"created_at"`
}
