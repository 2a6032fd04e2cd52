package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rooclub/roobot/internal/colors"
	"github.com/rooclub/roobot/internal/models"
)

type legacyRole struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Color2    string `json:"color2"`
	CreatorID string `json:"creatorId"`
}

type legacyGuild struct {
	GuildID string
	Roles   []models.ColorRole
}

// parseLegacyLedger reads {guildId: {roleId: role}}. JSON objects carry no
// order, so guilds and roles come back sorted by id.
func parseLegacyLedger(r io.Reader) ([]legacyGuild, error) {
	var raw map[string]map[string]legacyRole
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding legacy ledger: %w", err)
	}

	guildIDs := make([]string, 0, len(raw))
	for id := range raw {
		guildIDs = append(guildIDs, id)
	}
	sort.Strings(guildIDs)

	out := make([]legacyGuild, 0, len(raw))
	for _, guildID := range guildIDs {
		entries := raw[guildID]
		roleIDs := make([]string, 0, len(entries))
		for id := range entries {
			roleIDs = append(roleIDs, id)
		}
		sort.Strings(roleIDs)

		g := legacyGuild{GuildID: guildID}
		for _, roleID := range roleIDs {
			e := entries[roleID]
			primary, ok := colors.Parse(e.Color)
			if !ok {
				return nil, fmt.Errorf("guild %s role %s: invalid color %q", guildID, roleID, e.Color)
			}
			role := models.ColorRole{RoleID: roleID, Name: e.Name, PrimaryColor: primary, OwnerID: e.CreatorID}
			if e.Color2 != "" {
				secondary, ok := colors.Parse(e.Color2)
				if !ok {
					return nil, fmt.Errorf("guild %s role %s: invalid color2 %q", guildID, roleID, e.Color2)
				}
				role.SecondaryColor = secondary
			}
			g.Roles = append(g.Roles, role)
		}
		out = append(out, g)
	}
	return out, nil
}
