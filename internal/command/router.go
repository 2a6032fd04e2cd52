// Package command turns prefixed chat messages into handler calls.
package command

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rooclub/roobot/internal/platform"
)

// GenericError is the reply for failures that carry no user-facing message.
const GenericError = "❌ Command error."

// Request is one invocation of a command.
type Request struct {
	Message platform.Message
	Args    []string // tokens after the command name
}

// Handler runs a command. A non-empty reply is sent back to the invoking message.
type Handler interface {
	Execute(ctx context.Context, req Request) (string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

func (f HandlerFunc) Execute(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// userError is implemented by errors whose message may be shown in chat.
type userError interface {
	UserMessage() string
}

// ReplyFor picks the reply for a failed command.
func ReplyFor(err error) string {
	var ue userError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return GenericError
}

var tokenPattern = regexp.MustCompile(`"([^"]+)"|(\S+)`)

// Tokenize splits content on whitespace. A double-quoted span is one token
// without its quotes.
func Tokenize(content string) []string {
	var tokens []string
	for _, m := range tokenPattern.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			tokens = append(tokens, m[1])
		} else {
			tokens = append(tokens, m[2])
		}
	}
	return tokens
}

// Router dispatches prefixed messages to registered handlers.
type Router struct {
	prefix    string
	handlers  map[string]Handler
	messenger platform.Messenger
	logger    *slog.Logger
}

// NewRouter creates a router for prefix. Replies go out through messenger.
func NewRouter(prefix string, messenger platform.Messenger, logger *slog.Logger) *Router {
	return &Router{
		prefix:    prefix,
		handlers:  make(map[string]Handler),
		messenger: messenger,
		logger:    logger,
	}
}

// Register binds name (case-insensitive) to h. Registration happens before
// the router starts handling messages.
func (r *Router) Register(name string, h Handler) {
	r.handlers[strings.ToLower(name)] = h
}

// Names returns the registered command names, sorted.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle runs the command in msg, if any, and reports whether one ran.
func (r *Router) Handle(ctx context.Context, msg platform.Message) bool {
	if !strings.HasPrefix(msg.Content, r.prefix) {
		return false
	}
	args := Tokenize(msg.Content[len(r.prefix):])
	if len(args) == 0 {
		return false
	}
	name := strings.ToLower(args[0])
	h, ok := r.handlers[name]
	if !ok {
		return false
	}

	reply := r.run(ctx, name, h, Request{Message: msg, Args: args[1:]})
	if reply == "" {
		return true
	}
	if err := r.messenger.Reply(ctx, msg, reply); err != nil {
		r.logger.Warn("Failed to send command reply", "command", name, "channel_id", msg.ChannelID, "error", err)
	}
	return true
}

func (r *Router) run(ctx context.Context, name string, h Handler, req Request) (reply string) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Panic recovered in command", "command", name, "panic", p, "stack", string(debug.Stack()))
			reply = GenericError
		}
	}()

	out, err := h.Execute(ctx, req)
	if err == nil {
		return out
	}

	var ue userError
	if errors.As(err, &ue) {
		r.logger.Debug("Command rejected", "command", name, "user_id", req.Message.Author.ID, "error", err)
	} else {
		r.logger.Error("Command failed", "command", name, "user_id", req.Message.Author.ID, "error", err)
	}
	return ReplyFor(err)
}
