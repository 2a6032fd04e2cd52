package rbac

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rooclub/roobot/internal/models"
	"github.com/rooclub/roobot/internal/platform"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func member(id string, pos int, manage bool) platform.Member {
	return platform.Member{ID: id, Tag: id, HighestPosition: pos, CanManageRoles: manage}
}

func TestActorOutranks_StrictlyGreater(t *testing.T) {
	tests := []struct {
		actor, target int
		want          bool
	}{
		{5, 4, true},
		{5, 5, false},
		{4, 5, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		got := ActorOutranks(member("a", tt.actor, true), member("b", tt.target, false))
		if got != tt.want {
			t.Errorf("ActorOutranks(%d, %d) = %v, want %v", tt.actor, tt.target, got, tt.want)
		}
	}
}

func TestRoleRelation(t *testing.T) {
	actor := member("a", 5, true)
	higher := member("b", 9, false)
	lower := member("c", 1, false)

	tests := []struct {
		name  string
		role  models.ColorRole
		owner *platform.Member
		want  Relation
	}{
		{"unowned", models.ColorRole{RoleID: "r"}, nil, RelUnowned},
		{"own", models.ColorRole{RoleID: "r", OwnerID: "a"}, &actor, RelOwn},
		{"owner left", models.ColorRole{RoleID: "r", OwnerID: "gone"}, nil, RelOutranked},
		{"lower owner", models.ColorRole{RoleID: "r", OwnerID: "c"}, &lower, RelOutranked},
		{"higher owner", models.ColorRole{RoleID: "r", OwnerID: "b"}, &higher, RelPeer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleRelation(actor, tt.role, tt.owner); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAuthorize_DefaultRules(t *testing.T) {
	p, err := NewDefaultPolicy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	regular := member("m", 1, false)
	admin := member("x", 10, true)

	tests := []struct {
		name  string
		actor platform.Member
		rel   Relation
		act   Action
		want  Decision
	}{
		{"member creates own role", regular, RelSelf, ActCreate, Allow},
		{"member edits own role", regular, RelOwn, ActEdit, Allow},
		{"member deletes own role", regular, RelOwn, ActDelete, Allow},
		{"member edits unowned role", regular, RelUnowned, ActEdit, DenyActor},
		{"member edits lower member role", regular, RelOutranked, ActEdit, DenyActor},
		{"member assigns to peer", regular, RelPeer, ActAssign, DenyActor},
		{"member creates unowned role", regular, RelGuild, ActCreate, DenyActor},
		{"manager inherits own edit", admin, RelOwn, ActEdit, Allow},
		{"manager deletes unowned", admin, RelUnowned, ActDelete, Allow},
		{"manager edits outranked", admin, RelOutranked, ActEdit, Allow},
		{"manager assigns outranked", admin, RelOutranked, ActAssign, Allow},
		{"manager creates unowned", admin, RelGuild, ActCreate, Allow},
		{"manager edits peer", admin, RelPeer, ActEdit, DenyHierarchy},
		{"manager assigns peer", admin, RelPeer, ActAssign, DenyHierarchy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Authorize(tt.actor, tt.rel, tt.act)
			if err != nil {
				t.Fatalf("authorize: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanActOnOwnedRole_HierarchyGate(t *testing.T) {
	p, err := NewDefaultPolicy()
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	admin := member("a", 5, true)
	owner := member("b", 5, false)
	role := models.ColorRole{RoleID: "r", OwnerID: "b"}

	got, err := p.CanActOnOwnedRole(admin, role, &owner, ActEdit)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if got != DenyHierarchy {
		t.Errorf("equal rank must be denied on hierarchy, got %v", got)
	}

	got, _ = p.CanActOnOwnedRole(admin, role, nil, ActDelete)
	if got != Allow {
		t.Errorf("departed owner should count as outranked, got %v", got)
	}
}

func TestNewPolicy_SeedsOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	p, err := NewPolicy(db, slog.Default())
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	rules, err := p.Rules()
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	want := len(DefaultRules) + len(DefaultGrouping)
	if len(rules) != want {
		t.Fatalf("expected %d rules, got %d", want, len(rules))
	}

	// A second start must load the stored rules instead of seeding again.
	p2, err := NewPolicy(db, slog.Default())
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	rules2, _ := p2.Rules()
	if len(rules2) != want {
		t.Errorf("expected %d rules after reload, got %d", want, len(rules2))
	}
	if d, _ := p2.Authorize(member("x", 3, true), RelGuild, ActCreate); d != Allow {
		t.Errorf("reloaded policy should allow manager guild create, got %v", d)
	}
}
