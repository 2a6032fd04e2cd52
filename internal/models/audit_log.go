package models

import (
	"time"
)

// AuditLog records a role mutation performed through the bot
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	GuildID     string    `gorm:"not null;index" json:"guild_id"`
	ActorID     string    `gorm:"not null;index" json:"actor_id"`
	Action      string    `gorm:"not null" json:"action"`        // e.g., "create_role", "assign_role"
	Resource    string    `gorm:"not null" json:"resource"`      // e.g., "role:123"
	DetailsJSON string    `gorm:"type:text" json:"details_json"` // Additional context in JSON
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
