package models

import "time"

// AuditLog is append-only; nothing in the application updates or deletes rows.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 0 for system actions such as the scheduled recalculation
	ActorID uint `gorm:"index" json:"actor_id"`

	Action      string `gorm:"size:50;not null" json:"action"`         // CREATE, UPDATE, APPROVE ...
	Resource    string `gorm:"size:50;not null;index" json:"resource"` // UNITS, PROPOSALS ...
	ResourceID  uint   `json:"resource_id"`
	Description string `gorm:"type:text" json:"description"`
}
