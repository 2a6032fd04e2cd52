package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rooclub/roobot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const guild = "g1"

// stores returns one ledger per backend so every test runs against both.
func stores(t *testing.T) map[string]*Ledger {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ColorRole{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return map[string]*Ledger{
		"gorm": New(NewGormStore(db)),
		"file": New(NewFileStore(filepath.Join(t.TempDir(), "data", "roles.json"))),
	}
}

func mustUpsert(t *testing.T, l *Ledger, roleID string, p Patch) {
	t.Helper()
	if err := l.Upsert(context.Background(), guild, roleID, p); err != nil {
		t.Fatalf("upsert %s: %v", roleID, err)
	}
}

// ignoreBookkeeping drops columns the stores manage themselves.
var ignoreBookkeeping = cmpopts.IgnoreFields(models.ColorRole{}, "ID", "GuildID", "Seq", "CreatedAt", "UpdatedAt")

func TestUpsert_InsertAndMerge(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r1", Patch{
				Name:           Value("Sunset"),
				PrimaryColor:   Value("#FF5733"),
				SecondaryColor: Value("#00FFFF"),
				OwnerID:        Value("u1"),
			})
			mustUpsert(t, l, "r1", Patch{PrimaryColor: Value("#FF0000"), ClearSecondary: true})

			got, ok, err := l.Get(ctx, guild, "r1")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			want := models.ColorRole{RoleID: "r1", Name: "Sunset", PrimaryColor: "#FF0000", OwnerID: "u1"}
			if diff := cmp.Diff(want, got, ignoreBookkeeping); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpsert_ClearOwnerKeepsEntry(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r1", Patch{Name: Value("Elder"), PrimaryColor: Value("#FFD700"), OwnerID: Value("u1")})
			mustUpsert(t, l, "r1", Patch{ClearOwner: true})

			got, ok, _ := l.Get(ctx, guild, "r1")
			if !ok {
				t.Fatal("entry should survive owner removal")
			}
			if got.IsOwned() {
				t.Errorf("expected unowned, got owner %q", got.OwnerID)
			}
			owned, _ := l.RolesOwnedBy(ctx, guild, "u1")
			if len(owned) != 0 {
				t.Errorf("expected no owned roles, got %d", len(owned))
			}
		})
	}
}

func TestUpsert_RejectsInvalidEntries(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := l.Upsert(ctx, guild, "r1", Patch{Name: Value("No Color")})
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("expected ErrInvalidEntry for missing color, got %v", err)
			}
			err = l.Upsert(ctx, guild, "r2", Patch{
				Name:           Value("Flat"),
				PrimaryColor:   Value("#ff0000"),
				SecondaryColor: Value("#FF0000"),
			})
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("expected ErrInvalidEntry for equal gradient colors, got %v", err)
			}
			roles, _ := l.List(ctx, guild)
			if len(roles) != 0 {
				t.Errorf("invalid writes must not persist, got %d entries", len(roles))
			}
		})
	}
}

func TestFindByName_CaseInsensitive(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r1", Patch{Name: Value("Crimson Wave"), PrimaryColor: Value("#FF0000")})

			got, ok, err := l.FindByName(ctx, guild, "crimson WAVE")
			if err != nil || !ok {
				t.Fatalf("expected match, ok=%v err=%v", ok, err)
			}
			if got.RoleID != "r1" {
				t.Errorf("expected r1, got %s", got.RoleID)
			}
			if _, ok, _ := l.FindByName(ctx, guild, "Crimson"); ok {
				t.Error("partial names must not match")
			}
			if _, ok, _ := l.FindByName(ctx, "other-guild", "Crimson Wave"); ok {
				t.Error("lookups must be scoped per guild")
			}
		})
	}
}

func TestRolesOwnedBy_InsertionOrder(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r9", Patch{Name: Value("First"), PrimaryColor: Value("#000000"), OwnerID: Value("u1")})
			mustUpsert(t, l, "r2", Patch{Name: Value("Other"), PrimaryColor: Value("#000000"), OwnerID: Value("u2")})
			mustUpsert(t, l, "r5", Patch{Name: Value("Second"), PrimaryColor: Value("#000000"), OwnerID: Value("u1")})
			// an update must not move the entry
			mustUpsert(t, l, "r9", Patch{Name: Value("First Renamed")})

			owned, err := l.RolesOwnedBy(ctx, guild, "u1")
			if err != nil {
				t.Fatalf("owned: %v", err)
			}
			var ids []string
			for _, r := range owned {
				ids = append(ids, r.RoleID)
			}
			if diff := cmp.Diff([]string{"r9", "r5"}, ids); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemove_Idempotent(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r1", Patch{Name: Value("Gone"), PrimaryColor: Value("#123456")})

			if err := l.Remove(ctx, guild, "r1"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if err := l.Remove(ctx, guild, "r1"); err != nil {
				t.Fatalf("second remove should be a no-op, got %v", err)
			}
			if err := l.Remove(ctx, "unknown", "nope"); err != nil {
				t.Fatalf("remove in empty guild should be a no-op, got %v", err)
			}
			if _, ok, _ := l.Get(ctx, guild, "r1"); ok {
				t.Error("entry should be gone")
			}
		})
	}
}

func TestImport_SkipsKnownRoles(t *testing.T) {
	for name, l := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustUpsert(t, l, "r1", Patch{Name: Value("Kept"), PrimaryColor: Value("#111111")})

			added, err := l.Import(ctx, guild, []models.ColorRole{
				{RoleID: "r1", Name: "Overwritten?", PrimaryColor: "#222222"},
				{RoleID: "r2", Name: "Fresh", PrimaryColor: "#333333", SecondaryColor: "#333333", OwnerID: "u7"},
			})
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if added != 1 {
				t.Errorf("expected 1 added, got %d", added)
			}

			r1, _, _ := l.Get(ctx, guild, "r1")
			if r1.Name != "Kept" {
				t.Errorf("existing entry must not be replaced, got %q", r1.Name)
			}
			r2, _, _ := l.Get(ctx, guild, "r2")
			if r2.IsGradient() {
				t.Error("equal imported gradient colors should collapse to a standard role")
			}
		})
	}
}

func TestStorageFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	l := New(NewFileStore(filepath.Join(blocker, "roles.json")))

	_, _, err := l.FindByName(context.Background(), guild, "anything")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage on read, got %v", err)
	}
	err = l.Upsert(context.Background(), guild, "r1", Patch{Name: Value("x"), PrimaryColor: Value("#000000")})
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage on write, got %v", err)
	}
}

func TestSnapshot_PutReplacesInPlace(t *testing.T) {
	snap := Snapshot{}
	snap.Put(models.ColorRole{RoleID: "a", Name: "A"})
	snap.Put(models.ColorRole{RoleID: "b", Name: "B"})
	snap.Put(models.ColorRole{RoleID: "a", Name: "A2"})

	if len(snap.Roles) != 2 || snap.Roles[0].Name != "A2" {
		t.Errorf("unexpected snapshot: %+v", snap.Roles)
	}
	if !snap.Delete("a") || snap.Delete("a") {
		t.Error("delete should report presence exactly once")
	}
}
