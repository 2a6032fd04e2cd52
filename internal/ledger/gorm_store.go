package ledger

import (
	"context"
	"fmt"

	"github.com/rooclub/roobot/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps each guild's snapshot as color_roles rows ordered by seq.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store. The color_roles table must be migrated.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ReadStore loads every row of the guild in insertion order.
func (s *GormStore) ReadStore(ctx context.Context, guildID string) (Snapshot, error) {
	var rows []models.ColorRole
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("seq ASC").Find(&rows).Error; err != nil {
		return Snapshot{}, fmt.Errorf("read color roles: %w", err)
	}
	for i := range rows {
		rows[i].ID = 0
	}
	return Snapshot{Roles: rows}, nil
}

// WriteStore replaces the guild's rows with snap inside one transaction.
func (s *GormStore) WriteStore(ctx context.Context, guildID string, snap Snapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("guild_id = ?", guildID).Delete(&models.ColorRole{}).Error; err != nil {
			return fmt.Errorf("clear color roles: %w", err)
		}
		if len(snap.Roles) == 0 {
			return nil
		}

		rows := make([]models.ColorRole, len(snap.Roles))
		for i, r := range snap.Roles {
			r.ID = 0
			r.GuildID = guildID
			r.Seq = i
			rows[i] = r
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("write color roles: %w", err)
		}
		return nil
	})
}
