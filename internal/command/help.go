package command

import (
	"context"
	"strings"

	"github.com/rooclub/roobot/internal/roles"
)

const generalHelp = "**Available Commands:**\n\n" +
	"**!ping** - Check bot responsiveness\n" +
	"**!role** - Manage custom color roles\n" +
	"  • `!role help` - See all role commands\n\n" +
	"**!panda** - Panda collection system\n" +
	"  • `!panda help` - See all panda commands\n\n" +
	"**!imitate** @user {message} - Send a message as another user\n\n" +
	"**!help admin** - See admin-only commands\n"

// Help lists the commands; "help admin" lists the role commands that need Manage Roles.
var Help = HandlerFunc(func(_ context.Context, req Request) (string, error) {
	if len(req.Args) > 0 && strings.EqualFold(req.Args[0], "admin") {
		return roles.AdminHelpText, nil
	}
	return generalHelp, nil
})

// Ping answers so users can check the bot is alive.
var Ping = HandlerFunc(func(context.Context, Request) (string, error) {
	return "🏓 Pong!", nil
})
