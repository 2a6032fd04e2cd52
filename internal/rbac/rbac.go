// Package rbac decides whether a member may create, assign, edit or delete a color role.
//
// Rank and permission facts come from the platform; which (subject, relation, action)
// combinations are allowed is a casbin policy, seeded with defaults and stored in the
// casbin_rule table so operators can adjust it.
package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/rooclub/roobot/internal/models"
	"github.com/rooclub/roobot/internal/platform"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

// Subject is the actor class.
type Subject string

const (
	SubjectMember  Subject = "member"
	SubjectManager Subject = "manager" // holds Manage Roles; inherits member rules
)

// Relation is how the actor stands to the thing being acted on.
type Relation string

const (
	RelSelf      Relation = "self"      // self-service on no existing role
	RelOwn       Relation = "own"       // role owned by the actor
	RelUnowned   Relation = "unowned"   // role with no owner
	RelOutranked Relation = "outranked" // target ranks below the actor, or has left the guild
	RelPeer      Relation = "peer"      // target ranks equal to or above the actor
	RelGuild     Relation = "guild"     // guild-wide, no member involved
)

// Action is the role operation being attempted.
type Action string

const (
	ActCreate Action = "create"
	ActAssign Action = "assign"
	ActEdit   Action = "edit"
	ActDelete Action = "delete"
)

// Decision is the outcome of Authorize.
type Decision int

const (
	Allow Decision = iota
	DenyActor
	DenyHierarchy
)

// DefaultRules are seeded when the policy table is empty.
var DefaultRules = [][]string{
	{"member", "self", "create"},
	{"member", "own", "edit"},
	{"member", "own", "delete"},
	{"manager", "unowned", "edit"},
	{"manager", "unowned", "delete"},
	{"manager", "outranked", "edit"},
	{"manager", "outranked", "delete"},
	{"manager", "outranked", "assign"},
	{"manager", "guild", "create"},
}

// DefaultGrouping makes managers inherit member rules.
var DefaultGrouping = [][]string{
	{"manager", "member"},
}

// Policy evaluates role rules. Decisions are made in memory.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy loads rules from the database, seeding DefaultRules on first use.
func NewPolicy(db *gorm.DB, logger *slog.Logger) (*Policy, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	p := &Policy{enforcer: e}
	seeded, err := p.seed()
	if err != nil {
		return nil, err
	}
	logger.Info("Role policy initialized", "seeded_defaults", seeded)
	return p, nil
}

// NewDefaultPolicy builds an in-memory policy holding only the defaults.
func NewDefaultPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	p := &Policy{enforcer: e}
	if _, err := p.seed(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Policy) seed() (bool, error) {
	existing, err := p.enforcer.GetPolicy()
	if err != nil {
		return false, fmt.Errorf("failed to read policies: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := p.enforcer.AddPolicies(DefaultRules); err != nil {
		return false, fmt.Errorf("failed to seed policies: %w", err)
	}
	if _, err := p.enforcer.AddGroupingPolicies(DefaultGrouping); err != nil {
		return false, fmt.Errorf("failed to seed role inheritance: %w", err)
	}
	return true, nil
}

// Rules returns the policy lines followed by the grouping lines (prefixed "g").
func (p *Policy) Rules() ([][]string, error) {
	rules, err := p.enforcer.GetPolicy()
	if err != nil {
		return nil, err
	}
	groups, err := p.enforcer.GetGroupingPolicy()
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(rules)+len(groups))
	for _, r := range rules {
		out = append(out, append([]string{"p"}, r...))
	}
	for _, g := range groups {
		out = append(out, append([]string{"g"}, g...))
	}
	return out, nil
}

// Authorize decides whether actor may perform act on something related to it by rel.
func (p *Policy) Authorize(actor platform.Member, rel Relation, act Action) (Decision, error) {
	sub := SubjectOf(actor)
	ok, err := p.enforcer.Enforce(string(sub), string(rel), string(act))
	if err != nil {
		return DenyActor, fmt.Errorf("enforce %s/%s/%s: %w", sub, rel, act, err)
	}
	if ok {
		return Allow, nil
	}
	if rel == RelPeer && sub == SubjectManager {
		return DenyHierarchy, nil
	}
	return DenyActor, nil
}

// CanActOnOwnedRole applies Authorize to role. owner is the freshly fetched owning
// member, or nil when the role is unowned or its owner left the guild.
func (p *Policy) CanActOnOwnedRole(actor platform.Member, role models.ColorRole, owner *platform.Member, act Action) (Decision, error) {
	return p.Authorize(actor, RoleRelation(actor, role, owner), act)
}

// SubjectOf classifies actor by its Manage Roles permission.
func SubjectOf(actor platform.Member) Subject {
	if ActorHasManagePermission(actor) {
		return SubjectManager
	}
	return SubjectMember
}

// ActorHasManagePermission reports whether actor holds Manage Roles.
func ActorHasManagePermission(actor platform.Member) bool {
	return actor.CanManageRoles
}

// BotHasManagePermission reports whether the bot may mutate roles at all.
func BotHasManagePermission(bot platform.Member) bool {
	return bot.CanManageRoles
}

// ActorOutranks requires a strictly higher top role; equal rank is not enough.
func ActorOutranks(actor, target platform.Member) bool {
	return actor.HighestPosition > target.HighestPosition
}

// MemberRelation classifies a member the actor wants to act on.
func MemberRelation(actor, target platform.Member) Relation {
	if ActorOutranks(actor, target) {
		return RelOutranked
	}
	return RelPeer
}

// RoleRelation classifies role from the actor's point of view.
func RoleRelation(actor platform.Member, role models.ColorRole, owner *platform.Member) Relation {
	switch {
	case !role.IsOwned():
		return RelUnowned
	case role.OwnerID == actor.ID:
		return RelOwn
	case owner == nil:
		return RelOutranked
	default:
		return MemberRelation(actor, *owner)
	}
}
