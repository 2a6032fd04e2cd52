package broadcast

import (
	"context"
	"log/slog"
	"sync"
)

// History remembers the most recent messages sent to each partner channel.
type History interface {
	// Remember appends messageID to channelID's history, dropping the oldest
	// ids beyond the configured limit.
	Remember(ctx context.Context, channelID, messageID string) error

	// Take returns channelID's remembered ids, oldest first, and forgets them.
	Take(ctx context.Context, channelID string) ([]string, error)

	// Close releases resources
	Close() error
}

// MemoryHistory keeps history in process memory; it is lost on restart.
type MemoryHistory struct {
	keep int
	ids  map[string][]string
	mu   sync.Mutex
}

// NewMemoryHistory remembers up to keep ids per channel.
func NewMemoryHistory(keep int) *MemoryHistory {
	if keep <= 0 {
		keep = 3
	}
	slog.Info("Initialized in-memory broadcast history", "keep", keep)
	return &MemoryHistory{
		keep: keep,
		ids:  make(map[string][]string),
	}
}

func (h *MemoryHistory) Remember(_ context.Context, channelID, messageID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := append(h.ids[channelID], messageID)
	if len(ids) > h.keep {
		ids = ids[len(ids)-h.keep:]
	}
	h.ids[channelID] = ids
	return nil
}

func (h *MemoryHistory) Take(_ context.Context, channelID string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := h.ids[channelID]
	delete(h.ids, channelID)
	return ids, nil
}

func (h *MemoryHistory) Close() error {
	return nil
}
