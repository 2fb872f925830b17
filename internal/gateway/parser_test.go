package gateway

import (
	"strings"
	"testing"

	"github.com/orchestrated-app/hub/internal/store"
)

func TestParseChat(t *testing.T) {
	raw := RawChat{
		ID:          "1",
		AccountType: "LINKEDIN",
		Name:        "Sarah Jenkins",
		LastMessage: &RawLastMessage{Text: "hi"},
		UnreadCount: 1,
	}

	got := ParseChat(raw)
	if got.ID != "1" {
		t.Errorf("ID = %q, want 1", got.ID)
	}
	if got.Platform != "linkedin" {
		t.Errorf("Platform = %q, want linkedin", got.Platform)
	}
	if got.ContactName != "Sarah Jenkins" {
		t.Errorf("ContactName = %q, want Sarah Jenkins", got.ContactName)
	}
	if got.LastMessage != "hi" {
		t.Errorf("LastMessage = %q, want hi", got.LastMessage)
	}
	if got.UnreadCount != 1 {
		t.Errorf("UnreadCount = %d, want 1", got.UnreadCount)
	}
}

func TestParseChatDefaults(t *testing.T) {
	got := ParseChat(RawChat{ID: "2"})

	if got.Platform != store.PlatformUnknown {
		t.Errorf("Platform = %q, want unknown", got.Platform)
	}
	if got.ContactName != "Unknown Contact" {
		t.Errorf("ContactName = %q, want Unknown Contact", got.ContactName)
	}
	if got.LastMessage != "No messages yet" {
		t.Errorf("LastMessage = %q, want 'No messages yet'", got.LastMessage)
	}
	if got.LastMessageAt != "" {
		t.Errorf("LastMessageAt = %q, want empty for missing timestamp", got.LastMessageAt)
	}
	if !strings.HasPrefix(got.ContactAvatar, avatarPlaceholderBase) {
		t.Errorf("ContactAvatar = %q, want generated placeholder", got.ContactAvatar)
	}
	if !strings.Contains(got.ContactAvatar, "Unknown+Contact") {
		t.Errorf("ContactAvatar = %q, want seed derived from contact name", got.ContactAvatar)
	}
}

func TestParseChatNegativeUnreadClamped(t *testing.T) {
	got := ParseChat(RawChat{ID: "3", UnreadCount: -2})
	if got.UnreadCount != 0 {
		t.Errorf("UnreadCount = %d, want 0", got.UnreadCount)
	}
}

func TestParseChatsCount(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		raws := make([]RawChat, n)
		for i := range raws {
			raws[i] = RawChat{ID: string(rune('a' + i))}
		}
		got := ParseChats(raws)
		if len(got) != n {
			t.Errorf("ParseChats of %d items yielded %d", n, len(got))
		}
		for _, c := range got {
			if c.Platform == "" {
				t.Errorf("conversation %s has empty platform tag", c.ID)
			}
		}
	}
}

// TestParseMessagesReversesOrder verifies the newest-first gateway order
// is flipped to the oldest-first display order.
func TestParseMessagesReversesOrder(t *testing.T) {
	raws := []RawMessage{
		{ID: "m3", SenderType: "USER", Text: "newest"},
		{ID: "m2", SenderType: "ATTENDEE", Text: "middle"},
		{ID: "m1", SenderType: "ATTENDEE", Text: "oldest"},
	}

	got := ParseMessages("c1", raws)
	if len(got) != 3 {
		t.Fatalf("got %d messages, want 3", len(got))
	}
	for i, want := range []string{"oldest", "middle", "newest"} {
		if got[i].Body != want {
			t.Errorf("message[%d].Body = %q, want %q", i, got[i].Body, want)
		}
		if got[i].Seq != i {
			t.Errorf("message[%d].Seq = %d, want %d", i, got[i].Seq, i)
		}
		if got[i].ConversationID != "c1" {
			t.Errorf("message[%d].ConversationID = %q, want c1", i, got[i].ConversationID)
		}
	}
}

func TestParseMessagesSenderRoles(t *testing.T) {
	got := ParseMessages("c1", []RawMessage{
		{ID: "m2", SenderType: "ATTENDEE", Text: "them"},
		{ID: "m1", SenderType: "USER", Text: "me"},
	})

	if got[0].Sender != store.SenderSelf {
		t.Errorf("USER sender = %q, want self", got[0].Sender)
	}
	if got[1].Sender != store.SenderCounterparty {
		t.Errorf("non-USER sender = %q, want counterparty", got[1].Sender)
	}
}

func TestParseMessagesEmpty(t *testing.T) {
	got := ParseMessages("c1", nil)
	if len(got) != 0 {
		t.Errorf("got %d messages, want 0", len(got))
	}
}

func TestParseEvents(t *testing.T) {
	got := ParseEvents([]RawEvent{
		{Summary: "Standup", Start: RawEventTime{DateTime: "2026-09-01T09:00:00Z"}, Location: "Zoom", Status: "confirmed"},
		{},
	})
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Summary != "Standup" || got[0].StartsAt != "2026-09-01T09:00:00Z" {
		t.Errorf("event = %+v", got[0])
	}
	// Empty raw event maps to zero-value display fields, not an error.
	if got[1].Summary != "" || got[1].Status != "" {
		t.Errorf("empty event = %+v, want defaults", got[1])
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock("not-a-time"); got != "" {
		t.Errorf("formatClock(garbage) = %q, want empty", got)
	}
	if got := formatClock(""); got != "" {
		t.Errorf("formatClock(empty) = %q, want empty", got)
	}
	if got := formatClock("2026-09-01T09:15:00Z"); len(got) != 5 || got[2] != ':' {
		t.Errorf("formatClock(valid) = %q, want HH:MM", got)
	}
}
