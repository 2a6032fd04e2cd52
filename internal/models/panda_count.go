package models

import "time"

// PandaCount is the number of pandas a member has collected in a guild
type PandaCount struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	GuildID   string    `gorm:"not null;uniqueIndex:idx_panda_guild_user;index" json:"guild_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_panda_guild_user" json:"user_id"`
	Username  string    `json:"username"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
