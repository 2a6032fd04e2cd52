package models

import (
	"strings"
	"time"
)

// ColorRole is one ledger entry: a custom color role and its current owner.
// Empty SecondaryColor means a standard (single color) role; empty OwnerID means unowned.
type ColorRole struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	GuildID        string    `gorm:"not null;uniqueIndex:idx_color_roles_guild_role;index" json:"-"`
	RoleID         string    `gorm:"not null;uniqueIndex:idx_color_roles_guild_role" json:"role_id"`
	Seq            int       `gorm:"not null" json:"-"` // insertion order within the guild
	Name           string    `gorm:"not null" json:"name"`
	PrimaryColor   string    `gorm:"not null" json:"color"`
	SecondaryColor string    `json:"color2,omitempty"`
	OwnerID        string    `gorm:"index" json:"owner_id,omitempty"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// IsGradient reports whether the role carries two colors.
func (r ColorRole) IsGradient() bool {
	return r.SecondaryColor != ""
}

// IsOwned reports whether a member currently claims the role.
func (r ColorRole) IsOwned() bool {
	return r.OwnerID != ""
}

// SameColors reports whether two colors are equal ignoring case.
func SameColors(a, b string) bool {
	return strings.EqualFold(a, b)
}
