package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rooclub/roobot/internal/platform"
)

type fakeMessenger struct {
	mu      sync.Mutex
	failing map[string]bool
	next    int
	sent    map[string][]string // channel -> message ids
	deleted []string
	replies []string
}

func newFakeMessenger(failing ...string) *fakeMessenger {
	f := &fakeMessenger{failing: map[string]bool{}, sent: map[string][]string{}}
	for _, c := range failing {
		f.failing[c] = true
	}
	return f
}

func (f *fakeMessenger) Reply(_ context.Context, _ platform.Message, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeMessenger) Send(_ context.Context, channelID, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[channelID] {
		return "", errors.New("Unknown Channel")
	}
	f.next++
	id := fmt.Sprintf("%s-%d", channelID, f.next)
	f.sent[channelID] = append(f.sent[channelID], id)
	return id, nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) React(context.Context, string, string, string) error { return nil }

func (f *fakeMessenger) FindEmoji(context.Context, string, string) (platform.Emoji, bool, error) {
	return platform.Emoji{}, false, nil
}

func (f *fakeMessenger) SendAs(context.Context, string, platform.Member, string) error { return nil }

func (f *fakeMessenger) lastReply(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		t.Fatal("expected a reply")
	}
	return f.replies[len(f.replies)-1]
}

var partners = []Partner{
	{Name: "Alpha", ChannelID: "c1"},
	{Name: "Beta", ChannelID: "c2"},
	{Name: "Gamma", ChannelID: "c3"},
}

func dm(from, content string) platform.Message {
	return platform.Message{ID: "dm", ChannelID: "dmchan", Author: platform.User{ID: from}, Content: content}
}

func TestHandle_IgnoresOthers(t *testing.T) {
	m := newFakeMessenger()
	r := NewRelay("boss", partners, m, NewMemoryHistory(3), slog.Default())

	if r.Handle(context.Background(), dm("stranger", "hi")) {
		t.Error("DMs from other users must not be consumed")
	}
	guildMsg := dm("boss", "hi")
	guildMsg.GuildID = "g1"
	if r.Handle(context.Background(), guildMsg) {
		t.Error("guild messages must not be consumed")
	}
	if len(m.replies) != 0 || len(m.sent) != 0 {
		t.Error("nothing should have been sent")
	}
}

func TestHandle_EmptyMessage(t *testing.T) {
	m := newFakeMessenger()
	r := NewRelay("boss", partners, m, NewMemoryHistory(3), slog.Default())

	if !r.Handle(context.Background(), dm("boss", "   ")) {
		t.Fatal("expected the DM to be consumed")
	}
	if got := m.lastReply(t); got != "❌ Cannot broadcast an empty message." {
		t.Errorf("unexpected reply %q", got)
	}
}

func TestBroadcast_PartialFailure(t *testing.T) {
	m := newFakeMessenger("c2")
	r := NewRelay("boss", partners, m, NewMemoryHistory(3), slog.Default())

	r.Handle(context.Background(), dm("boss", "**Big news**"))

	want := "**Partnership Broadcast Results:**\n\n" +
		"✅ **Alpha** - Sent successfully\n" +
		"❌ **Beta** - Failed: Unknown Channel\n" +
		"✅ **Gamma** - Sent successfully\n" +
		"\n**Total:** 2/3 channels"
	if diff := cmp.Diff(want, m.lastReply(t)); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteLast_KeepsOnlyRecent(t *testing.T) {
	m := newFakeMessenger()
	r := NewRelay("boss", partners[:1], m, NewMemoryHistory(3), slog.Default())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.Handle(ctx, dm("boss", fmt.Sprintf("post %d", i)))
	}
	r.Handle(ctx, dm("boss", "Delete LAST"))

	if got := m.lastReply(t); got != "Deleted last messages (3 total)" {
		t.Errorf("unexpected reply %q", got)
	}
	if diff := cmp.Diff([]string{"c1-3", "c1-4", "c1-5"}, m.deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}

	// history was cleared
	r.Handle(ctx, dm("boss", "delete last"))
	if got := m.lastReply(t); !strings.Contains(got, "(0 total)") {
		t.Errorf("expected nothing left to delete, got %q", got)
	}
}

func TestMemoryHistory_DefaultKeep(t *testing.T) {
	h := NewMemoryHistory(0)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := h.Remember(ctx, "c1", id); err != nil {
			t.Fatalf("remember: %v", err)
		}
	}
	ids, _ := h.Take(ctx, "c1")
	if diff := cmp.Diff([]string{"b", "c", "d"}, ids); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if ids, _ := h.Take(ctx, "c1"); len(ids) != 0 {
		t.Errorf("take must clear history, got %v", ids)
	}
}

func TestNewValkeyHistoryWithClient_DefaultKeep(t *testing.T) {
	h := NewValkeyHistoryWithClient(nil, 0)
	if h.keep != 3 {
		t.Errorf("expected default keep 3, got %d", h.keep)
	}
	if got := h.key("c1"); got != "roobot:broadcast:c1" {
		t.Errorf("unexpected key %q", got)
	}
}
