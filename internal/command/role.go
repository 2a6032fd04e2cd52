package command

import (
	"context"

	"github.com/rooclub/roobot/internal/roles"
)

// RoleCommand exposes the color role service as "role".
type RoleCommand struct {
	svc *roles.Service
}

func NewRoleCommand(svc *roles.Service) *RoleCommand {
	return &RoleCommand{svc: svc}
}

func (c *RoleCommand) Execute(ctx context.Context, req Request) (string, error) {
	if req.Message.IsDirect() {
		return "", nil
	}
	return c.svc.Execute(ctx, roles.Invocation{
		GuildID: req.Message.GuildID,
		Actor:   req.Message.Author,
		Args:    req.Args,
	})
}
