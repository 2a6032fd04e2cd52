// Package broadcast relays direct messages from one authorized user to a fixed
// set of partner channels.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rooclub/roobot/internal/platform"
	"golang.org/x/sync/errgroup"
)

const maxParallelSends = 4

// Partner is one destination channel.
type Partner struct {
	Name      string
	ChannelID string
}

// Result is the outcome for one partner.
type Result struct {
	Partner   Partner
	MessageID string
	Deleted   int
	Err       error
}

// Relay broadcasts an authorized user's DMs and can take back recent broadcasts.
type Relay struct {
	authorizedUserID string
	partners         []Partner
	messenger        platform.Messenger
	history          History
	logger           *slog.Logger
}

func NewRelay(authorizedUserID string, partners []Partner, messenger platform.Messenger, history History, logger *slog.Logger) *Relay {
	return &Relay{
		authorizedUserID: authorizedUserID,
		partners:         partners,
		messenger:        messenger,
		history:          history,
		logger:           logger,
	}
}

// Handle processes a direct message and reports whether it was consumed.
// Messages from anyone but the authorized user are left alone.
func (r *Relay) Handle(ctx context.Context, msg platform.Message) bool {
	if !msg.IsDirect() || msg.Author.Bot {
		return false
	}
	if r.authorizedUserID == "" || msg.Author.ID != r.authorizedUserID {
		return false
	}

	var reply string
	switch {
	case strings.TrimSpace(msg.Content) == "":
		reply = "❌ Cannot broadcast an empty message."
	case strings.EqualFold(msg.Content, "delete last"):
		total := 0
		for _, res := range r.DeleteLast(ctx) {
			total += res.Deleted
		}
		reply = fmt.Sprintf("Deleted last messages (%d total)", total)
	default:
		reply = FormatResults(r.Broadcast(ctx, msg.Content))
	}

	if err := r.messenger.Reply(ctx, msg, reply); err != nil {
		r.logger.Warn("Failed to confirm broadcast", "error", err)
	}
	return true
}

// Broadcast sends content verbatim to every partner. Results keep partner order.
func (r *Relay) Broadcast(ctx context.Context, content string) []Result {
	batchID := uuid.NewString()
	log := r.logger.With("batch_id", batchID)
	results := make([]Result, len(r.partners))

	var g errgroup.Group
	g.SetLimit(maxParallelSends)
	for i, p := range r.partners {
		g.Go(func() error {
			results[i] = Result{Partner: p}
			id, err := r.messenger.Send(ctx, p.ChannelID, content)
			if err != nil {
				log.Warn("Broadcast to partner failed", "partner", p.Name, "channel_id", p.ChannelID, "error", err)
				results[i].Err = err
				return nil
			}
			results[i].MessageID = id
			if err := r.history.Remember(ctx, p.ChannelID, id); err != nil {
				log.Warn("Failed to remember broadcast message", "channel_id", p.ChannelID, "message_id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, res := range results {
		if res.Err == nil {
			sent++
		}
	}
	log.Info("Broadcast finished", "sent", sent, "partners", len(results))
	return results
}

// DeleteLast deletes every remembered broadcast and clears the history.
// Messages that can no longer be deleted are skipped.
func (r *Relay) DeleteLast(ctx context.Context) []Result {
	results := make([]Result, len(r.partners))

	var g errgroup.Group
	g.SetLimit(maxParallelSends)
	for i, p := range r.partners {
		g.Go(func() error {
			results[i] = Result{Partner: p}
			ids, err := r.history.Take(ctx, p.ChannelID)
			if err != nil {
				results[i].Err = err
				r.logger.Warn("Failed to read broadcast history", "channel_id", p.ChannelID, "error", err)
				return nil
			}
			for _, id := range ids {
				if err := r.messenger.DeleteMessage(ctx, p.ChannelID, id); err != nil {
					r.logger.Info("Could not delete message", "channel_id", p.ChannelID, "message_id", id, "error", err)
					continue
				}
				results[i].Deleted++
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FormatResults renders the confirmation sent back to the broadcaster.
func FormatResults(results []Result) string {
	var b strings.Builder
	b.WriteString("**Partnership Broadcast Results:**\n\n")
	sent := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(&b, "❌ **%s** - Failed: %v\n", res.Partner.Name, res.Err)
			continue
		}
		sent++
		fmt.Fprintf(&b, "✅ **%s** - Sent successfully\n", res.Partner.Name)
	}
	fmt.Fprintf(&b, "\n**Total:** %d/%d channels", sent, len(results))
	return b.String()
}
