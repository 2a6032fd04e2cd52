// Package bot routes every inbound chat message to the feature that owns it.
package bot

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/rooclub/roobot/internal/platform"
)

// Handler consumes a message and reports whether it did.
// The command router and the broadcast relay both satisfy it.
type Handler interface {
	Handle(ctx context.Context, msg platform.Message) bool
}

// Rewarder is the panda awarder: Observe runs in arrival order, Award may block.
type Rewarder interface {
	Observe(msg platform.Message) bool
	Award(ctx context.Context, msg platform.Message) bool
}

// Dispatcher fans messages out to handlers, each message on its own goroutine.
type Dispatcher struct {
	commands  Handler
	direct    Handler  // may be nil
	rewards   Rewarder // may be nil
	logger    *slog.Logger
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// NewDispatcher handles at most maxInFlight messages at a time.
func NewDispatcher(commands, direct Handler, rewards Rewarder, maxInFlight int, logger *slog.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 16
	}
	return &Dispatcher{
		commands:  commands,
		direct:    direct,
		rewards:   rewards,
		logger:    logger,
		semaphore: make(chan struct{}, maxInFlight),
	}
}

// OnMessage must be called in message arrival order. Messages from bots are dropped.
// It blocks while maxInFlight messages are still being handled.
func (d *Dispatcher) OnMessage(ctx context.Context, msg platform.Message) {
	if msg.Author.Bot {
		return
	}
	award := !msg.IsDirect() && d.rewards != nil && d.rewards.Observe(msg)

	// Acquire slot (blocks if max in flight reached)
	d.semaphore <- struct{}{}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() { <-d.semaphore }()

		d.handle(ctx, msg, award)
	}()
}

func (d *Dispatcher) handle(ctx context.Context, msg platform.Message, award bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Panic recovered in message handler",
				"message_id", msg.ID, "channel_id", msg.ChannelID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if msg.IsDirect() {
		if d.direct != nil {
			d.direct.Handle(ctx, msg)
		}
		return
	}
	if award {
		d.rewards.Award(ctx, msg)
	}
	d.commands.Handle(ctx, msg)
}

// Wait blocks until every message handed to OnMessage has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
