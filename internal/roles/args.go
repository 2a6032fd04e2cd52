package roles

import (
	"regexp"
	"strings"

	"github.com/rooclub/roobot/internal/colors"
	"github.com/rooclub/roobot/internal/models"
	"github.com/rooclub/roobot/internal/platform"
)

// Subcommand is the first word after the role command.
type Subcommand int

const (
	SubHelp Subcommand = iota
	SubSet
	SubCreate
	SubDelete
	SubEditName
	SubEditColor
	SubInfo
	// SubEdit is "edit" without a known mode; it only reports usage.
	SubEdit
)

func (s Subcommand) String() string {
	switch s {
	case SubSet:
		return "set"
	case SubCreate:
		return "create"
	case SubDelete:
		return "delete"
	case SubEditName:
		return "edit name"
	case SubEditColor:
		return "edit color"
	case SubInfo:
		return "info"
	case SubEdit:
		return "edit"
	default:
		return "help"
	}
}

// ParseSubcommand splits the subcommand words off args. No args means help.
func ParseSubcommand(args []string) (Subcommand, []string, error) {
	if len(args) == 0 {
		return SubHelp, nil, nil
	}
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "help":
		return SubHelp, rest, nil
	case "set":
		return SubSet, rest, nil
	case "create":
		return SubCreate, rest, nil
	case "delete":
		return SubDelete, rest, nil
	case "info":
		return SubInfo, rest, nil
	case "edit":
		if len(rest) > 0 {
			switch strings.ToLower(rest[0]) {
			case "name":
				return SubEditName, rest[1:], nil
			case "color":
				return SubEditColor, rest[1:], nil
			}
		}
		return SubEdit, rest, nil
	}
	return SubHelp, nil, invalid(ReasonUsage, msgUnknownSubcommand)
}

// ColorKind tells standard and gradient specs apart.
type ColorKind int

const (
	NoColor ColorKind = iota
	Standard
	Gradient
)

// ColorSpec is the color payload of a command. Colors are canonical.
type ColorSpec struct {
	Kind      ColorKind
	Primary   string
	Secondary string
}

// Colors converts the spec to the platform form.
func (c ColorSpec) Colors() platform.Colors {
	if c.Kind == Gradient {
		return platform.Colors{Primary: c.Primary, Secondary: c.Secondary}
	}
	return platform.Colors{Primary: c.Primary}
}

// Intent is a disambiguated role command.
type Intent struct {
	Sub Subcommand

	// TargetUserID is set for "set @user ...".
	TargetUserID string
	// Unassign is "set @user none".
	Unassign bool
	// Self is true when the command acts on the actor's own role.
	Self bool

	Name    string // role to create or assign, or role to look up
	NewName string // edit name
	Colors  ColorSpec
}

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseMention extracts the user id from a "<@id>" or "<@!id>" token.
func ParseMention(token string) (string, bool) {
	m := mentionPattern.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// TrailingColors takes one or two colors off the end of tokens. Two colors
// are read only when at least reserve tokens remain in front of them.
// A trailing non-color yields NoColor and leaves tokens untouched.
func TrailingColors(tokens []string, reserve int) (ColorSpec, []string) {
	n := len(tokens)
	if n == 0 {
		return ColorSpec{}, tokens
	}
	last, ok := colors.Parse(tokens[n-1])
	if !ok {
		return ColorSpec{}, tokens
	}
	if n >= 2+reserve {
		if first, ok := colors.Parse(tokens[n-2]); ok {
			return ColorSpec{Kind: Gradient, Primary: first, Secondary: last}, tokens[:n-2]
		}
	}
	return ColorSpec{Kind: Standard, Primary: last}, tokens[:n-1]
}

// Disambiguate resolves which mode sub runs in and parses its payload.
// The mode is always resolved; a non-nil error reports a bad payload and is
// surfaced by the caller at the payload stage.
func Disambiguate(sub Subcommand, tokens []string) (Intent, error) {
	in := Intent{Sub: sub}
	switch sub {
	case SubSet:
		if len(tokens) > 0 {
			if id, ok := ParseMention(tokens[0]); ok {
				in.TargetUserID = id
				return in, in.parseTargetedSet(tokens[1:])
			}
		}
		in.Self = true
		return in, in.parseNamedColor(tokens, usageSet)
	case SubCreate:
		return in, in.parseNamedColor(tokens, usageCreate)
	case SubDelete, SubInfo:
		in.Name = strings.Join(tokens, " ")
		in.Self = in.Name == ""
		return in, nil
	case SubEditName:
		return in, in.parseEditName(tokens)
	case SubEditColor:
		return in, in.parseEditColor(tokens)
	case SubEdit:
		return in, invalid(ReasonUsage, usageEdit)
	}
	return in, nil
}

// parseNamedColor reads "{name...} {color} [color]" with a name of at least one token.
func (in *Intent) parseNamedColor(tokens []string, usage string) error {
	if len(tokens) < 2 {
		return invalid(ReasonMissingName, "%s", usage)
	}
	spec, rest := TrailingColors(tokens, 1)
	if spec.Kind == NoColor {
		return invalid(ReasonColor, msgInvalidColor)
	}
	if err := checkGradient(spec); err != nil {
		return err
	}
	in.Colors = spec
	in.Name = strings.Join(rest, " ")
	if in.Name == "" {
		return invalid(ReasonMissingName, "%s", usage)
	}
	return nil
}

func (in *Intent) parseTargetedSet(tokens []string) error {
	if len(tokens) == 0 {
		return invalid(ReasonMissingName, usageSetTargeted)
	}
	if len(tokens) == 1 && strings.EqualFold(tokens[0], "none") {
		in.Unassign = true
		return nil
	}
	spec, rest := TrailingColors(tokens, 0)
	if err := checkGradient(spec); err != nil {
		return err
	}
	in.Colors = spec
	in.Name = strings.Join(rest, " ")
	if in.Name == "" {
		return invalid(ReasonMissingName, usageSetTargeted)
	}
	return nil
}

// parseEditName splits "{role} to {new name}" on the first "to" word,
// case-insensitively. Without the separator the whole text renames the actor's role.
func (in *Intent) parseEditName(tokens []string) error {
	sep := -1
	for i := 1; i < len(tokens)-1; i++ {
		if strings.EqualFold(tokens[i], "to") {
			sep = i
			break
		}
	}
	if sep < 0 {
		in.Self = true
		in.NewName = strings.TrimSpace(strings.Join(tokens, " "))
		if in.NewName == "" {
			return invalid(ReasonMissingName, usageEditName)
		}
		return nil
	}
	in.Name = strings.TrimSpace(strings.Join(tokens[:sep], " "))
	in.NewName = strings.TrimSpace(strings.Join(tokens[sep+1:], " "))
	if in.Name == "" || in.NewName == "" {
		return invalid(ReasonMissingName, usageEditNameTargeted)
	}
	return nil
}

// parseEditColor acts on the actor's role when every token is a color
// (one or two of them); otherwise the tokens before the trailing colors name the role.
func (in *Intent) parseEditColor(tokens []string) error {
	spec, rest := TrailingColors(tokens, 0)
	in.Self = len(rest) == 0
	in.Name = strings.Join(rest, " ")
	if len(tokens) == 0 {
		return invalid(ReasonColor, usageEditColor)
	}
	if spec.Kind == NoColor {
		return invalid(ReasonColor, msgInvalidColors)
	}
	if err := checkGradient(spec); err != nil {
		return err
	}
	in.Colors = spec
	return nil
}

func checkGradient(spec ColorSpec) error {
	if spec.Kind == Gradient && models.SameColors(spec.Primary, spec.Secondary) {
		return invalid(ReasonGradientSameColor, msgGradientSame)
	}
	return nil
}
