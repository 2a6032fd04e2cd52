package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rooclub/roobot/internal/models"
	"gorm.io/gorm"
)

// LogAction records an audit log entry
func LogAction(db *gorm.DB, guildID, actorID, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		GuildID:     guildID,
		ActorID:     actorID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&log).Error
}

// RoleResource formats the resource column for a role.
func RoleResource(roleID string) string {
	return "role:" + roleID
}

// Recorder writes audit entries through a shared database handle.
type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record stores one entry for a role mutation.
func (r *Recorder) Record(ctx context.Context, guildID, actorID, action, roleID string, details map[string]any) error {
	return LogAction(r.db.WithContext(ctx), guildID, actorID, action, RoleResource(roleID), details)
}

// Recent returns the newest entries of a guild, newest first.
func (r *Recorder) Recent(ctx context.Context, guildID string, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return logs, nil
}

// Audit actions constants
const (
	ActionCreateRole   = "create_role"
	ActionAssignRole   = "assign_role"
	ActionUnassignRole = "unassign_role"
	ActionDeleteRole   = "delete_role"
	ActionRenameRole   = "rename_role"
	ActionRecolorRole  = "recolor_role"
)
