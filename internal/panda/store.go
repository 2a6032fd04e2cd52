package panda

import (
	"context"
	"errors"
	"fmt"

	"github.com/rooclub/roobot/internal/models"
	"gorm.io/gorm"
)

// Store persists panda counts per guild member.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Add gives userID one panda, refreshing the stored username, and returns the new count.
func (s *Store) Add(ctx context.Context, guildID, userID, username string) (int, error) {
	var pc models.PandaCount
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("guild_id = ? AND user_id = ?", guildID, userID).First(&pc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pc = models.PandaCount{GuildID: guildID, UserID: userID}
		} else if err != nil {
			return err
		}
		pc.Count++
		pc.Username = username
		return tx.Save(&pc).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add panda: %w", err)
	}
	return pc.Count, nil
}

// Count returns userID's pandas, zero when none were awarded.
func (s *Store) Count(ctx context.Context, guildID, userID string) (int, error) {
	var pc models.PandaCount
	err := s.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).First(&pc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read panda count: %w", err)
	}
	return pc.Count, nil
}

// Leaderboard returns the top limit members by count.
func (s *Store) Leaderboard(ctx context.Context, guildID string, limit int) ([]models.PandaCount, error) {
	var entries []models.PandaCount
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND count > 0", guildID).
		Order("count DESC, id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	return entries, nil
}

// Total sums every panda awarded in the guild.
func (s *Store) Total(ctx context.Context, guildID string) (int, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.PandaCount{}).
		Where("guild_id = ?", guildID).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum pandas: %w", err)
	}
	return int(total), nil
}
