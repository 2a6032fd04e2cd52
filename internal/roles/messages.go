package roles

import "fmt"

const (
	usageSet              = "Usage: `!role set \"name\" color` or `!role set \"name\" color1 color2` for gradient"
	usageSetTargeted      = "Usage: `!role set @user {name} {color}`, `!role set @user {existing role}` or `!role set @user none`"
	usageCreate           = "Usage: `!role create \"name\" color` or `!role create \"name\" color1 color2` for gradient"
	usageEdit             = "Usage: `!role edit name \"new name\"` or `!role edit color newcolor` or `!role edit color color1 color2`"
	usageEditName         = "Usage: `!role edit name \"new name\"`"
	usageEditNameTargeted = "Usage: `!role edit name RoleName to NewName`"
	usageEditColor        = "Usage: `!role edit color newcolor` or `!role edit color color1 color2`"

	msgUnknownSubcommand = "Unknown subcommand. Use `!role help` for commands."
	msgInvalidColor      = "❌ Invalid color. Use hex (#FF5733) or name (red, blue, etc.)."
	msgInvalidColors     = "❌ Invalid color(s). Use hex (#FF5733) or name (red, blue, etc.)."
	msgGradientSame      = "❌ Gradient colors must be different."

	msgBotLacksPermission = "❌ Bot lacks ManageRoles permission."
	msgBotCheckFailed     = "❌ Could not check the bot's permissions."
	msgNeedManage         = "❌ You need the Manage Roles permission to use this command."
	msgNeedManageAssign   = "❌ You need the Manage Roles permission to assign roles to others."
	msgHierarchyAssign    = "❌ You cannot modify roles for someone with equal or higher rank than you."

	msgAlreadyOwnSelf  = "❌ You already have a custom role. Delete it first with `!role delete`"
	msgUserNotFound    = "❌ User not found."
	msgRoleNeedsColor  = "❌ Role doesn't exist. Provide a color to create it: `!role set @user {name} {color}`"
	msgRoleNotInServer = "❌ Role exists in storage but not in server."
	msgRoleGone        = "❌ Role not found in server."
	msgRoleNotFound    = "❌ Role not found."
	msgNoRoleToDelete  = "❌ You have no custom roles to delete."
	msgNoRoleToEdit    = "❌ You have no custom roles to edit."
	msgNoRoleInfo      = "❌ You have no custom role. Use `!role info \"name\"` to look up other roles."

	msgCreateFailed   = "❌ Failed to create role. The server may not support gradient colors."
	msgAssignFailed   = "❌ Failed to assign role."
	msgUnassignFailed = "❌ Failed to unassign role."
	msgDeleteFailed   = "❌ Failed to delete role."
	msgRenameFailed   = "❌ Failed to edit role."
	msgRecolorFailed  = "❌ Failed to edit role. The server may not support gradient colors."
	msgMemberFailed   = "❌ Could not look up that member."
)

// HelpText lists the self-service role commands.
const HelpText = "**Role Commands:**\n" +
	"`!role set {name} {color}` - Create a standard role\n" +
	"`!role set {name} {color1} {color2}` - Create a gradient role\n" +
	"`!role delete` - Delete your custom role\n" +
	"`!role edit name {new name}` - Rename your role\n" +
	"`!role edit color {color}` - Change to standard color\n" +
	"`!role edit color {color1} {color2}` - Change to gradient\n" +
	"`!role info` - Show your role details\n" +
	"`!role info {name}` - Show a specific role's details\n" +
	"**Colors:** Hex (#FF5733 or FF5733) or names (red, blue, purple, etc.)\n" +
	"**Note:** Gradient colors must be different."

// AdminHelpText lists the role commands that need Manage Roles.
const AdminHelpText = "**Admin Commands** (Manage Roles permission):\n\n" +
	"**Role Management:**\n" +
	"`!role create {name} {color}` - Create unowned role\n" +
	"`!role create {name} {color1} {color2}` - Create unowned gradient role\n" +
	"`!role set @user {name} {color}` - Create/assign role to user\n" +
	"`!role set @user {name} {color1} {color2}` - Gradient for user\n" +
	"`!role set @user {existing role}` - Assign existing unowned role\n" +
	"`!role set @user none` - Unassign role from user (keeps role)\n" +
	"`!role delete {role}` - Delete any role\n" +
	"`!role edit name {role} to {new name}` - Rename any role\n" +
	"`!role edit color {role} {color}` - Change any role's color\n" +
	"`!role edit color {role} {color1} {color2}` - Gradient for any role\n\n" +
	"**Note:** Admins cannot modify roles belonging to higher-ranked users."

func msgNameTaken(name string) string {
	return fmt.Sprintf("❌ Role \"%s\" already exists.", name)
}

func msgNamedRoleNotFound(name string) string {
	return fmt.Sprintf("❌ Role \"%s\" not found.", name)
}

func msgNeedManageFor(verb string) string {
	return fmt.Sprintf("❌ You need the Manage Roles permission to %s other users' roles.", verb)
}

func msgHierarchyFor(verb string) string {
	return fmt.Sprintf("❌ You cannot %s roles belonging to someone with equal or higher rank than you.", verb)
}

// describeColors renders a spec as `#AAAAAA` or `#AAAAAA` → `#BBBBBB`.
func describeColors(spec ColorSpec) string {
	if spec.Kind == Gradient {
		return fmt.Sprintf("`%s` → `%s`", spec.Primary, spec.Secondary)
	}
	return fmt.Sprintf("`%s`", spec.Primary)
}

// createdMessage confirms a new role. forTag is empty for self-service, and
// unowned marks roles made by the create subcommand.
func createdMessage(name string, spec ColorSpec, forTag string, unowned bool) string {
	kind := "role"
	if spec.Kind == Gradient {
		kind = "gradient role"
	}
	if unowned {
		kind = "unowned " + kind
	}
	noun := "color"
	if spec.Kind == Gradient {
		noun = "colors"
	}
	if forTag != "" {
		return fmt.Sprintf("✅ Created %s **%s** for %s with %s %s", kind, name, forTag, noun, describeColors(spec))
	}
	return fmt.Sprintf("✅ Created %s **%s** with %s %s", kind, name, noun, describeColors(spec))
}

func infoMessage(name string, spec ColorSpec, members int, owner string) string {
	display := describeColors(spec)
	if spec.Kind == Gradient {
		display += " (gradient)"
	}
	return fmt.Sprintf("**Role Info: %s**\nColor: %s\nMembers: %d\nOwner: %s", name, display, members, owner)
}
