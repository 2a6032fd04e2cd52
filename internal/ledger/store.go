package ledger

import (
	"context"

	"github.com/rooclub/roobot/internal/models"
)

// Store persists whole per-guild snapshots. Implementations must preserve the
// order of Snapshot.Roles between a write and the following read.
type Store interface {
	ReadStore(ctx context.Context, guildID string) (Snapshot, error)
	WriteStore(ctx context.Context, guildID string, snap Snapshot) error
}

// Snapshot is the full ledger of one guild, in insertion order.
type Snapshot struct {
	Roles []models.ColorRole
}

// index returns the position of roleID, or -1.
func (s *Snapshot) index(roleID string) int {
	for i := range s.Roles {
		if s.Roles[i].RoleID == roleID {
			return i
		}
	}
	return -1
}

// Get returns the entry for roleID.
func (s *Snapshot) Get(roleID string) (models.ColorRole, bool) {
	if i := s.index(roleID); i >= 0 {
		return s.Roles[i], true
	}
	return models.ColorRole{}, false
}

// Put replaces the entry with the same RoleID in place, or appends it.
func (s *Snapshot) Put(role models.ColorRole) {
	if i := s.index(role.RoleID); i >= 0 {
		s.Roles[i] = role
		return
	}
	s.Roles = append(s.Roles, role)
}

// Delete drops roleID and reports whether it was present.
func (s *Snapshot) Delete(roleID string) bool {
	i := s.index(roleID)
	if i < 0 {
		return false
	}
	s.Roles = append(s.Roles[:i], s.Roles[i+1:]...)
	return true
}
