package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyHistory keeps history in Valkey lists so it survives restarts.
type ValkeyHistory struct {
	client valkey.Client
	keep   int64
	prefix string // Key prefix: "roobot:broadcast:"
}

// NewValkeyHistory connects to addr and remembers up to keep ids per channel.
func NewValkeyHistory(addr string, keep int) (*ValkeyHistory, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pingCmd := client.B().Ping().Build()
	if err := client.Do(ctx, pingCmd).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	h := NewValkeyHistoryWithClient(client, keep)
	slog.Info("Initialized Valkey broadcast history", "address", addr, "keep", h.keep)
	return h, nil
}

// NewValkeyHistoryWithClient uses an existing client.
func NewValkeyHistoryWithClient(client valkey.Client, keep int) *ValkeyHistory {
	if keep <= 0 {
		keep = 3
	}
	return &ValkeyHistory{
		client: client,
		keep:   int64(keep),
		prefix: "roobot:broadcast:",
	}
}

func (h *ValkeyHistory) key(channelID string) string {
	return h.prefix + channelID
}

func (h *ValkeyHistory) Remember(ctx context.Context, channelID, messageID string) error {
	key := h.key(channelID)
	cmds := valkey.Commands{
		h.client.B().Rpush().Key(key).Element(messageID).Build(),
		h.client.B().Ltrim().Key(key).Start(-h.keep).Stop(-1).Build(),
	}
	for _, resp := range h.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to remember message %s: %w", messageID, err)
		}
	}
	return nil
}

func (h *ValkeyHistory) Take(ctx context.Context, channelID string) ([]string, error) {
	key := h.key(channelID)
	resps := h.client.DoMulti(ctx,
		h.client.B().Lrange().Key(key).Start(0).Stop(-1).Build(),
		h.client.B().Del().Key(key).Build(),
	)
	ids, err := resps[0].AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", channelID, err)
	}
	if err := resps[1].Error(); err != nil {
		return nil, fmt.Errorf("failed to clear history for %s: %w", channelID, err)
	}
	return ids, nil
}

func (h *ValkeyHistory) Close() error {
	h.client.Close()
	return nil
}
