// Package roles runs the color role commands: it resolves what the user asked for,
// checks it against the role policy, applies it on the platform and then records
// the outcome in the ledger.
package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rooclub/roobot/internal/audit"
	"github.com/rooclub/roobot/internal/ledger"
	"github.com/rooclub/roobot/internal/models"
	"github.com/rooclub/roobot/internal/platform"
	"github.com/rooclub/roobot/internal/rbac"
)

// Auditor records completed role mutations.
type Auditor interface {
	Record(ctx context.Context, guildID, actorID, action, roleID string, details map[string]any) error
}

// Service executes role commands.
type Service struct {
	ledger  *ledger.Ledger
	dir     platform.Directory
	policy  *rbac.Policy
	auditor Auditor
	logger  *slog.Logger
}

// NewService wires a Service. auditor may be nil.
func NewService(l *ledger.Ledger, dir platform.Directory, policy *rbac.Policy, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		ledger:  l,
		dir:     dir,
		policy:  policy,
		auditor: auditor,
		logger:  logger,
	}
}

// Invocation is one role command as typed by a guild member.
type Invocation struct {
	GuildID string
	Actor   platform.User
	Args    []string // tokens after the command name
}

type call struct {
	guildID string
	actor   platform.User
	log     *slog.Logger
}

// Execute runs inv and returns the confirmation to reply with.
// Failures are *Error values whose UserMessage is safe to show.
func (s *Service) Execute(ctx context.Context, inv Invocation) (string, error) {
	sub, rest, err := ParseSubcommand(inv.Args)
	if err != nil {
		return "", err
	}
	if sub == SubHelp {
		return HelpText, nil
	}

	c := call{
		guildID: inv.GuildID,
		actor:   inv.Actor,
		log:     s.logger.With("guild_id", inv.GuildID, "actor_id", inv.Actor.ID, "subcommand", sub.String()),
	}
	in, payloadErr := Disambiguate(sub, rest)

	reply, err := s.dispatch(ctx, c, sub, in, payloadErr)
	if Is(err, KindRemoteFailure, "") || Is(err, KindStorageFailure, "") {
		c.log.Error("Role command failed", "error", err)
	}
	return reply, err
}

func (s *Service) dispatch(ctx context.Context, c call, sub Subcommand, in Intent, payloadErr error) (string, error) {
	if sub == SubInfo {
		return s.info(ctx, c, in)
	}
	if err := s.gate(ctx, c); err != nil {
		return "", err
	}

	switch sub {
	case SubSet:
		if in.TargetUserID != "" {
			return s.setTargeted(ctx, c, in, payloadErr)
		}
		return s.setSelf(ctx, c, in, payloadErr)
	case SubCreate:
		return s.create(ctx, c, in, payloadErr)
	case SubDelete:
		return s.delete(ctx, c, in)
	case SubEditName:
		return s.editName(ctx, c, in, payloadErr)
	case SubEditColor:
		return s.editColor(ctx, c, in, payloadErr)
	case SubEdit:
		return "", payloadErr
	}
	return "", fmt.Errorf("unhandled role subcommand %s", sub)
}

// gate refuses every mutation while the bot itself cannot manage roles.
func (s *Service) gate(ctx context.Context, c call) error {
	bot, err := s.dir.BotMember(ctx, c.guildID)
	if err != nil {
		return remoteFailure(err, msgBotCheckFailed)
	}
	if !rbac.BotHasManagePermission(bot) {
		return denied(ReasonBot, msgBotLacksPermission)
	}
	return nil
}

func (s *Service) setSelf(ctx context.Context, c call, in Intent, payloadErr error) (string, error) {
	owned, err := s.ledger.RolesOwnedBy(ctx, c.guildID, c.actor.ID)
	if err != nil {
		return "", storageFailure(err)
	}
	if len(owned) > 0 {
		return "", conflict(ReasonAlreadyOwns, msgAlreadyOwnSelf)
	}

	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	d, err := s.policy.Authorize(actor, rbac.RelSelf, rbac.ActCreate)
	if err := decide(d, err, msgNeedManage, msgNeedManage); err != nil {
		return "", err
	}

	if payloadErr != nil {
		return "", payloadErr
	}
	if err := s.ensureNameFree(ctx, c, in.Name, ""); err != nil {
		return "", err
	}

	handle, err := s.createRole(ctx, c, in.Name, in.Colors, "Custom role for "+actor.Tag)
	if err != nil {
		return "", err
	}
	if err := s.dir.GrantRoleToMember(ctx, c.guildID, actor.ID, handle.ID); err != nil {
		c.log.Warn("Created role could not be granted", "role_id", handle.ID, "error", err)
		return "", remoteFailure(err, msgCreateFailed)
	}

	patch := patchFor(in.Colors)
	patch.Name = ledger.Value(in.Name)
	patch.OwnerID = ledger.Value(actor.ID)
	if err := s.commit(ctx, c, handle.ID, patch); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionCreateRole, handle.ID, map[string]any{
		"name": in.Name, "owner_id": actor.ID, "colors": in.Colors.Colors(),
	})
	c.log.Info("Color role created", "role_id", handle.ID, "name", in.Name)
	return createdMessage(in.Name, in.Colors, "", false), nil
}

func (s *Service) setTargeted(ctx context.Context, c call, in Intent, payloadErr error) (string, error) {
	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	target, err := s.dir.FetchMember(ctx, c.guildID, in.TargetUserID)
	switch {
	case errors.Is(err, platform.ErrMemberNotFound):
		return "", notFound(ReasonUser, msgUserNotFound)
	case err != nil:
		return "", remoteFailure(err, msgMemberFailed)
	}

	d, err := s.policy.Authorize(actor, rbac.MemberRelation(actor, target), rbac.ActAssign)
	if err := decide(d, err, msgNeedManageAssign, msgHierarchyAssign); err != nil {
		return "", err
	}

	if in.Unassign {
		return s.unassign(ctx, c, target)
	}

	owned, err := s.ledger.RolesOwnedBy(ctx, c.guildID, target.ID)
	if err != nil {
		return "", storageFailure(err)
	}
	if len(owned) > 0 {
		return "", conflict(ReasonAlreadyOwns, "❌ %s already has a custom role.", target.Tag)
	}

	if payloadErr != nil {
		return "", payloadErr
	}

	existing, found, err := s.ledger.FindByName(ctx, c.guildID, in.Name)
	if err != nil {
		return "", storageFailure(err)
	}
	if found {
		if existing.IsOwned() {
			return "", conflict(ReasonOwnedByOther, "❌ Role \"%s\" already belongs to another user.", existing.Name)
		}
		return s.assignExisting(ctx, c, existing, target, in.Colors)
	}
	if in.Colors.Kind == NoColor {
		return "", notFound(ReasonRole, msgRoleNeedsColor)
	}

	reason := fmt.Sprintf("Custom role for %s (created by %s)", target.Tag, actor.Tag)
	handle, err := s.createRole(ctx, c, in.Name, in.Colors, reason)
	if err != nil {
		return "", err
	}
	if err := s.dir.GrantRoleToMember(ctx, c.guildID, target.ID, handle.ID); err != nil {
		c.log.Warn("Created role could not be granted", "role_id", handle.ID, "target_id", target.ID, "error", err)
		return "", remoteFailure(err, msgCreateFailed)
	}

	patch := patchFor(in.Colors)
	patch.Name = ledger.Value(in.Name)
	patch.OwnerID = ledger.Value(target.ID)
	if err := s.commit(ctx, c, handle.ID, patch); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionCreateRole, handle.ID, map[string]any{
		"name": in.Name, "owner_id": target.ID, "colors": in.Colors.Colors(),
	})
	c.log.Info("Color role created for member", "role_id", handle.ID, "name", in.Name, "target_id", target.ID)
	return createdMessage(in.Name, in.Colors, target.Tag, false), nil
}

// assignExisting hands an unowned role to target, recoloring it first when colors were given.
func (s *Service) assignExisting(ctx context.Context, c call, role models.ColorRole, target platform.Member, spec ColorSpec) (string, error) {
	if spec.Kind != NoColor {
		if err := s.dir.SetRoleColors(ctx, c.guildID, role.RoleID, spec.Colors()); err != nil {
			return "", roleCallFailed(err, msgRoleNotInServer, msgAssignFailed)
		}
	}
	if err := s.dir.GrantRoleToMember(ctx, c.guildID, target.ID, role.RoleID); err != nil {
		return "", roleCallFailed(err, msgRoleNotInServer, msgAssignFailed)
	}

	patch := ledger.Patch{}
	if spec.Kind != NoColor {
		patch = patchFor(spec)
	}
	patch.OwnerID = ledger.Value(target.ID)
	if err := s.commit(ctx, c, role.RoleID, patch); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionAssignRole, role.RoleID, map[string]any{"owner_id": target.ID})
	c.log.Info("Color role assigned", "role_id", role.RoleID, "target_id", target.ID)
	return fmt.Sprintf("✅ Assigned role **%s** to %s", role.Name, target.Tag), nil
}

// unassign takes target's most recent role away but keeps it as an unowned role.
func (s *Service) unassign(ctx context.Context, c call, target platform.Member) (string, error) {
	owned, err := s.ledger.RolesOwnedBy(ctx, c.guildID, target.ID)
	if err != nil {
		return "", storageFailure(err)
	}
	if len(owned) == 0 {
		return "", notFound(ReasonRole, "❌ %s doesn't have a custom role.", target.Tag)
	}
	role := owned[len(owned)-1]

	err = s.dir.RevokeRoleFromMember(ctx, c.guildID, target.ID, role.RoleID)
	switch {
	case errors.Is(err, platform.ErrRoleNotFound):
		c.log.Warn("Unassigned role no longer exists on the platform", "role_id", role.RoleID)
	case err != nil:
		return "", remoteFailure(err, msgUnassignFailed)
	}

	if err := s.commit(ctx, c, role.RoleID, ledger.Patch{ClearOwner: true}); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionUnassignRole, role.RoleID, map[string]any{"previous_owner_id": target.ID})
	c.log.Info("Color role unassigned", "role_id", role.RoleID, "target_id", target.ID)
	return fmt.Sprintf("✅ Unassigned role **%s** from %s. Role is now unowned.", role.Name, target.Tag), nil
}

func (s *Service) create(ctx context.Context, c call, in Intent, payloadErr error) (string, error) {
	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	d, err := s.policy.Authorize(actor, rbac.RelGuild, rbac.ActCreate)
	if err := decide(d, err, msgNeedManage, msgNeedManage); err != nil {
		return "", err
	}

	if payloadErr != nil {
		return "", payloadErr
	}
	if err := s.ensureNameFree(ctx, c, in.Name, ""); err != nil {
		return "", err
	}

	handle, err := s.createRole(ctx, c, in.Name, in.Colors, "Unowned role created by "+actor.Tag)
	if err != nil {
		return "", err
	}

	patch := patchFor(in.Colors)
	patch.Name = ledger.Value(in.Name)
	if err := s.commit(ctx, c, handle.ID, patch); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionCreateRole, handle.ID, map[string]any{
		"name": in.Name, "colors": in.Colors.Colors(),
	})
	c.log.Info("Unowned color role created", "role_id", handle.ID, "name", in.Name)
	return createdMessage(in.Name, in.Colors, "", true), nil
}

func (s *Service) delete(ctx context.Context, c call, in Intent) (string, error) {
	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	role, err := s.resolveRole(ctx, c, in, msgNoRoleToDelete)
	if err != nil {
		return "", err
	}
	if err := s.authorizeRole(ctx, c, actor, role, rbac.ActDelete, "delete"); err != nil {
		return "", err
	}

	err = s.dir.DeleteRole(ctx, c.guildID, role.RoleID, "Deleted by "+actor.Tag)
	switch {
	case errors.Is(err, platform.ErrRoleNotFound):
		c.log.Warn("Deleted role was already gone from the platform", "role_id", role.RoleID)
	case err != nil:
		return "", remoteFailure(err, msgDeleteFailed)
	}

	if err := s.ledger.Remove(ctx, c.guildID, role.RoleID); err != nil {
		c.log.Error("Ledger diverged from platform", "role_id", role.RoleID, "error", err)
		return "", storageFailure(err)
	}

	s.record(ctx, c, audit.ActionDeleteRole, role.RoleID, map[string]any{"name": role.Name, "owner_id": role.OwnerID})
	c.log.Info("Color role deleted", "role_id", role.RoleID, "name", role.Name)
	return fmt.Sprintf("✅ Deleted role **%s**", role.Name), nil
}

func (s *Service) editName(ctx context.Context, c call, in Intent, payloadErr error) (string, error) {
	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	// the role to edit is part of the payload, so it has to parse first
	if payloadErr != nil {
		return "", payloadErr
	}
	role, err := s.resolveRole(ctx, c, in, msgNoRoleToEdit)
	if err != nil {
		return "", err
	}
	if err := s.authorizeRole(ctx, c, actor, role, rbac.ActEdit, "edit"); err != nil {
		return "", err
	}
	if err := s.ensureNameFree(ctx, c, in.NewName, role.RoleID); err != nil {
		return "", err
	}

	if err := s.dir.SetRoleName(ctx, c.guildID, role.RoleID, in.NewName); err != nil {
		return "", roleCallFailed(err, msgRoleGone, msgRenameFailed)
	}
	if err := s.commit(ctx, c, role.RoleID, ledger.Patch{Name: ledger.Value(in.NewName)}); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionRenameRole, role.RoleID, map[string]any{"from": role.Name, "to": in.NewName})
	c.log.Info("Color role renamed", "role_id", role.RoleID, "from", role.Name, "to", in.NewName)
	return fmt.Sprintf("✅ Role renamed to **%s**", in.NewName), nil
}

func (s *Service) editColor(ctx context.Context, c call, in Intent, payloadErr error) (string, error) {
	actor, err := s.fetchActor(ctx, c)
	if err != nil {
		return "", err
	}
	if payloadErr != nil {
		return "", payloadErr
	}
	role, err := s.resolveRole(ctx, c, in, msgNoRoleToEdit)
	if err != nil {
		return "", err
	}
	if err := s.authorizeRole(ctx, c, actor, role, rbac.ActEdit, "edit"); err != nil {
		return "", err
	}

	if err := s.dir.SetRoleColors(ctx, c.guildID, role.RoleID, in.Colors.Colors()); err != nil {
		return "", roleCallFailed(err, msgRoleGone, msgRecolorFailed)
	}
	if err := s.commit(ctx, c, role.RoleID, patchFor(in.Colors)); err != nil {
		return "", err
	}

	s.record(ctx, c, audit.ActionRecolorRole, role.RoleID, map[string]any{
		"from": specOf(role).Colors(), "to": in.Colors.Colors(),
	})
	c.log.Info("Color role recolored", "role_id", role.RoleID, "primary", in.Colors.Primary, "secondary", in.Colors.Secondary)
	if in.Colors.Kind == Gradient {
		return fmt.Sprintf("✅ Role color changed to gradient %s", describeColors(in.Colors)), nil
	}
	return fmt.Sprintf("✅ Role color changed to %s", describeColors(in.Colors)), nil
}

// info never mutates anything, so it skips the bot permission gate.
func (s *Service) info(ctx context.Context, c call, in Intent) (string, error) {
	var role models.ColorRole
	if in.Self {
		owned, err := s.ledger.RolesOwnedBy(ctx, c.guildID, c.actor.ID)
		if err != nil {
			return "", storageFailure(err)
		}
		if len(owned) == 0 {
			return "", notFound(ReasonRole, msgNoRoleInfo)
		}
		role = owned[len(owned)-1]
	} else {
		found, ok, err := s.ledger.FindByName(ctx, c.guildID, in.Name)
		if err != nil {
			return "", storageFailure(err)
		}
		if !ok {
			return "", notFound(ReasonRole, msgRoleNotFound)
		}
		role = found
	}

	members, err := s.dir.RoleMemberCount(ctx, c.guildID, role.RoleID)
	if err != nil {
		c.log.Debug("Role member count unavailable", "role_id", role.RoleID, "error", err)
		members = 0
	}

	owner := "Unassigned"
	if role.IsOwned() {
		m, err := s.dir.FetchMember(ctx, c.guildID, role.OwnerID)
		switch {
		case err == nil:
			owner = m.Tag
		case !errors.Is(err, platform.ErrMemberNotFound):
			c.log.Debug("Role owner lookup failed", "role_id", role.RoleID, "error", err)
		}
	}
	return infoMessage(role.Name, specOf(role), members, owner), nil
}

func (s *Service) fetchActor(ctx context.Context, c call) (platform.Member, error) {
	actor, err := s.dir.FetchMember(ctx, c.guildID, c.actor.ID)
	if err != nil {
		return platform.Member{}, remoteFailure(err, msgMemberFailed)
	}
	return actor, nil
}

// resolveRole finds the role an edit or delete acts on: the actor's most
// recent role, or the role named in the command.
func (s *Service) resolveRole(ctx context.Context, c call, in Intent, noneMsg string) (models.ColorRole, error) {
	if in.Self {
		owned, err := s.ledger.RolesOwnedBy(ctx, c.guildID, c.actor.ID)
		if err != nil {
			return models.ColorRole{}, storageFailure(err)
		}
		if len(owned) == 0 {
			return models.ColorRole{}, notFound(ReasonRole, "%s", noneMsg)
		}
		return owned[len(owned)-1], nil
	}
	role, ok, err := s.ledger.FindByName(ctx, c.guildID, in.Name)
	if err != nil {
		return models.ColorRole{}, storageFailure(err)
	}
	if !ok {
		return models.ColorRole{}, notFound(ReasonRole, "%s", msgNamedRoleNotFound(in.Name))
	}
	return role, nil
}

// authorizeRole checks act on role against the policy. The owner is fetched
// fresh so rank comparisons use current positions.
func (s *Service) authorizeRole(ctx context.Context, c call, actor platform.Member, role models.ColorRole, act rbac.Action, verb string) error {
	var owner *platform.Member
	if role.IsOwned() && role.OwnerID != actor.ID {
		m, err := s.dir.FetchMember(ctx, c.guildID, role.OwnerID)
		switch {
		case err == nil:
			owner = &m
		case errors.Is(err, platform.ErrMemberNotFound):
		default:
			return remoteFailure(err, msgMemberFailed)
		}
	}
	d, err := s.policy.CanActOnOwnedRole(actor, role, owner, act)
	return decide(d, err, msgNeedManageFor(verb), msgHierarchyFor(verb))
}

func (s *Service) ensureNameFree(ctx context.Context, c call, name, exceptRoleID string) error {
	existing, ok, err := s.ledger.FindByName(ctx, c.guildID, name)
	if err != nil {
		return storageFailure(err)
	}
	if ok && existing.RoleID != exceptRoleID {
		return conflict(ReasonNameTaken, "%s", msgNameTaken(name))
	}
	return nil
}

// createRole creates the platform role and pins it below the separator role.
func (s *Service) createRole(ctx context.Context, c call, name string, spec ColorSpec, reason string) (platform.RoleHandle, error) {
	handle, err := s.dir.CreateRole(ctx, c.guildID, platform.RoleSpec{
		Name:   name,
		Colors: spec.Colors(),
		Reason: reason,
	})
	if err != nil {
		return platform.RoleHandle{}, remoteFailure(err, msgCreateFailed)
	}

	pos, ok, err := s.dir.FindRoleReference(ctx, c.guildID)
	switch {
	case err != nil:
		c.log.Warn("Separator role lookup failed", "role_id", handle.ID, "error", err)
	case ok:
		target := max(pos-1, 1)
		if err := s.dir.SetRolePosition(ctx, c.guildID, handle.ID, target); err != nil {
			c.log.Warn("Failed to position role", "role_id", handle.ID, "position", target, "error", err)
		}
	}
	return handle, nil
}

// commit records a change the platform already accepted. A failure here
// leaves the ledger behind the platform.
func (s *Service) commit(ctx context.Context, c call, roleID string, p ledger.Patch) error {
	if err := s.ledger.Upsert(ctx, c.guildID, roleID, p); err != nil {
		c.log.Error("Ledger diverged from platform", "role_id", roleID, "error", err)
		return storageFailure(err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, c call, action, roleID string, details map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, c.guildID, c.actor.ID, action, roleID, details); err != nil {
		c.log.Warn("Failed to write audit entry", "action", action, "role_id", roleID, "error", err)
	}
}

func decide(d rbac.Decision, err error, actorMsg, hierarchyMsg string) error {
	if err != nil {
		return storageFailure(err)
	}
	switch d {
	case rbac.Allow:
		return nil
	case rbac.DenyHierarchy:
		return denied(ReasonHierarchy, "%s", hierarchyMsg)
	default:
		return denied(ReasonActor, "%s", actorMsg)
	}
}

func roleCallFailed(err error, goneMsg, failMsg string) error {
	if errors.Is(err, platform.ErrRoleNotFound) {
		return &Error{Kind: KindNotFound, Reason: ReasonRole, Message: goneMsg, Err: err}
	}
	return remoteFailure(err, "%s", failMsg)
}

// patchFor sets both colors, clearing the secondary for standard specs.
func patchFor(spec ColorSpec) ledger.Patch {
	p := ledger.Patch{PrimaryColor: ledger.Value(spec.Primary)}
	if spec.Kind == Gradient {
		p.SecondaryColor = ledger.Value(spec.Secondary)
	} else {
		p.ClearSecondary = true
	}
	return p
}

func specOf(role models.ColorRole) ColorSpec {
	if role.IsGradient() {
		return ColorSpec{Kind: Gradient, Primary: role.PrimaryColor, Secondary: role.SecondaryColor}
	}
	return ColorSpec{Kind: Standard, Primary: role.PrimaryColor}
}
