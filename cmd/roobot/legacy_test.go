package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rooclub/roobot/internal/models"
)

func TestParseLegacyLedger(t *testing.T) {
	input := `{
		"g2": {"r1": {"name": "Late", "color": "#000000"}},
		"g1": {
			"r9": {"name": "Sunset", "color": "#ff5733", "color2": "#00ffff", "creatorId": "u1"},
			"r3": {"name": "Plain", "color": "#123ABC"}
		}
	}`

	got, err := parseLegacyLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []legacyGuild{
		{GuildID: "g1", Roles: []models.ColorRole{
			{RoleID: "r3", Name: "Plain", PrimaryColor: "#123ABC"},
			{RoleID: "r9", Name: "Sunset", PrimaryColor: "#FF5733", SecondaryColor: "#00FFFF", OwnerID: "u1"},
		}},
		{GuildID: "g2", Roles: []models.ColorRole{
			{RoleID: "r1", Name: "Late", PrimaryColor: "#000000"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("legacy ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLegacyLedger_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `roles`},
		{"bad color", `{"g": {"r": {"name": "x", "color": "bluish"}}}`},
		{"bad color2", `{"g": {"r": {"name": "x", "color": "#000000", "color2": "#zzzzzz"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseLegacyLedger(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
