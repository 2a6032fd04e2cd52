package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rooclub/roobot/internal/platform"
)

func TestColorValue(t *testing.T) {
	got, err := colorValue("#FF5733")
	if err != nil {
		t.Fatalf("colorValue: %v", err)
	}
	if got != 0xFF5733 {
		t.Errorf("got %#x, want 0xff5733", got)
	}
	if _, err := colorValue("#nothex"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func restError(code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{Status: "404 Not Found", StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "unknown"},
	}
}

func TestMapErr(t *testing.T) {
	if !errors.Is(mapErr(restError(discordgo.ErrCodeUnknownRole)), platform.ErrRoleNotFound) {
		t.Error("unknown role should map to ErrRoleNotFound")
	}
	if !errors.Is(mapErr(restError(discordgo.ErrCodeUnknownMember)), platform.ErrMemberNotFound) {
		t.Error("unknown member should map to ErrMemberNotFound")
	}
	other := errors.New("boom")
	if mapErr(other) != other {
		t.Error("other errors pass through")
	}
	if mapErr(nil) != nil {
		t.Error("nil stays nil")
	}
}

func TestToMember(t *testing.T) {
	const guild = "g"
	roles := []*discordgo.Role{
		{ID: guild, Position: 0, Permissions: discordgo.PermissionSendMessages},
		{ID: "mod", Position: 7, Permissions: discordgo.PermissionManageRoles},
		{ID: "fan", Position: 3},
		{ID: "admin", Position: 9, Permissions: discordgo.PermissionAdministrator},
	}

	tests := []struct {
		name       string
		member     *discordgo.Member
		owner      string
		wantPos    int
		wantManage bool
		wantName   string
	}{
		{
			name:     "everyone only",
			member:   &discordgo.Member{User: &discordgo.User{ID: "u", Username: "roo"}},
			wantName: "roo",
		},
		{
			name:       "manage roles via role",
			member:     &discordgo.Member{User: &discordgo.User{ID: "u", Username: "roo", GlobalName: "Roo"}, Roles: []string{"fan", "mod"}},
			wantPos:    7,
			wantManage: true,
			wantName:   "Roo",
		},
		{
			name:       "administrator",
			member:     &discordgo.Member{User: &discordgo.User{ID: "u", Username: "roo"}, Nick: "Boss", Roles: []string{"admin"}},
			wantPos:    9,
			wantManage: true,
			wantName:   "Boss",
		},
		{
			name:       "guild owner",
			member:     &discordgo.Member{User: &discordgo.User{ID: "own", Username: "owner"}, Roles: []string{"fan", "deleted"}},
			owner:      "own",
			wantPos:    3,
			wantManage: true,
			wantName:   "owner",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toMember(tt.member, roles, tt.owner, guild)
			if got.HighestPosition != tt.wantPos {
				t.Errorf("position = %d, want %d", got.HighestPosition, tt.wantPos)
			}
			if got.CanManageRoles != tt.wantManage {
				t.Errorf("manage = %v, want %v", got.CanManageRoles, tt.wantManage)
			}
			if got.DisplayName != tt.wantName {
				t.Errorf("display name = %q, want %q", got.DisplayName, tt.wantName)
			}
		})
	}
}
