// Package ledger is the bot's own record of color roles and who owns them,
// partitioned per guild. It is a best-effort mirror of the platform's roles:
// callers write to it only after the platform confirmed a change.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rooclub/roobot/internal/models"
	"golang.org/x/text/cases"
)

var (
	// ErrStorage wraps every failure of the underlying Store.
	ErrStorage = errors.New("ledger storage failure")

	// ErrInvalidEntry is returned when a write would break an entry invariant.
	ErrInvalidEntry = errors.New("invalid ledger entry")
)

// Patch is a field-level update. Nil pointers leave a field untouched;
// the Clear flags remove the optional fields.
type Patch struct {
	Name           *string
	PrimaryColor   *string
	SecondaryColor *string
	OwnerID        *string

	ClearSecondary bool
	ClearOwner     bool
}

// Ledger implements the ownership operations on top of a Store.
type Ledger struct {
	store Store
}

// New creates a Ledger over store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Value returns a pointer to s, for building a Patch.
func Value(s string) *string {
	return &s
}

// foldName normalizes a role name for case-insensitive comparison.
// A Caser is stateful, so one is built per call.
func foldName(name string) string {
	return cases.Fold().String(name)
}

func (l *Ledger) read(ctx context.Context, guildID string) (Snapshot, error) {
	snap, err := l.store.ReadStore(ctx, guildID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return snap, nil
}

func (l *Ledger) write(ctx context.Context, guildID string, snap Snapshot) error {
	if err := l.store.WriteStore(ctx, guildID, snap); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// List returns all entries of the guild in insertion order.
func (l *Ledger) List(ctx context.Context, guildID string) ([]models.ColorRole, error) {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return snap.Roles, nil
}

// Get returns the entry with roleID.
func (l *Ledger) Get(ctx context.Context, guildID, roleID string) (models.ColorRole, bool, error) {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return models.ColorRole{}, false, err
	}
	role, ok := snap.Get(roleID)
	return role, ok, nil
}

// RolesOwnedBy returns the entries owned by userID in insertion order.
// Historical data may hold more than one.
func (l *Ledger) RolesOwnedBy(ctx context.Context, guildID, userID string) ([]models.ColorRole, error) {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return nil, err
	}
	var owned []models.ColorRole
	for _, r := range snap.Roles {
		if r.OwnerID != "" && r.OwnerID == userID {
			owned = append(owned, r)
		}
	}
	return owned, nil
}

// FindByName returns the first entry whose name matches case-insensitively.
func (l *Ledger) FindByName(ctx context.Context, guildID, name string) (models.ColorRole, bool, error) {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return models.ColorRole{}, false, err
	}
	want := foldName(name)
	for _, r := range snap.Roles {
		if foldName(r.Name) == want {
			return r, true, nil
		}
	}
	return models.ColorRole{}, false, nil
}

// Upsert inserts roleID or merges p into the existing entry.
// Inserting requires Name and PrimaryColor.
func (l *Ledger) Upsert(ctx context.Context, guildID, roleID string, p Patch) error {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return err
	}

	role, exists := snap.Get(roleID)
	if !exists {
		role = models.ColorRole{GuildID: guildID, RoleID: roleID}
	}
	applyPatch(&role, p)

	if err := validate(role); err != nil {
		return err
	}

	snap.Put(role)
	return l.write(ctx, guildID, snap)
}

// Remove deletes roleID. Removing an absent entry is a no-op.
func (l *Ledger) Remove(ctx context.Context, guildID, roleID string) error {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return err
	}
	if !snap.Delete(roleID) {
		return nil
	}
	return l.write(ctx, guildID, snap)
}

// Import appends entries unknown to the guild, skipping role ids already present.
// It returns how many entries were added.
func (l *Ledger) Import(ctx context.Context, guildID string, roles []models.ColorRole) (int, error) {
	snap, err := l.read(ctx, guildID)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, r := range roles {
		if _, ok := snap.Get(r.RoleID); ok {
			continue
		}
		r.GuildID = guildID
		if r.IsGradient() && models.SameColors(r.PrimaryColor, r.SecondaryColor) {
			r.SecondaryColor = ""
		}
		if err := validate(r); err != nil {
			return added, err
		}
		snap.Put(r)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, l.write(ctx, guildID, snap)
}

func applyPatch(role *models.ColorRole, p Patch) {
	if p.Name != nil {
		role.Name = *p.Name
	}
	if p.PrimaryColor != nil {
		role.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil {
		role.SecondaryColor = *p.SecondaryColor
	}
	if p.ClearSecondary {
		role.SecondaryColor = ""
	}
	if p.OwnerID != nil {
		role.OwnerID = *p.OwnerID
	}
	if p.ClearOwner {
		role.OwnerID = ""
	}
}

func validate(role models.ColorRole) error {
	switch {
	case role.RoleID == "":
		return fmt.Errorf("%w: missing role id", ErrInvalidEntry)
	case role.Name == "":
		return fmt.Errorf("%w: role %s has no name", ErrInvalidEntry, role.RoleID)
	case role.PrimaryColor == "":
		return fmt.Errorf("%w: role %s has no color", ErrInvalidEntry, role.RoleID)
	case role.IsGradient() && models.SameColors(role.PrimaryColor, role.SecondaryColor):
		return fmt.Errorf("%w: role %s gradient colors are equal", ErrInvalidEntry, role.RoleID)
	}
	return nil
}
