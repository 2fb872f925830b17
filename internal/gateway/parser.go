package gateway

import (
	"net/url"
	"time"

	"github.com/orchestrated-app/hub/internal/store"
)

// Pure translation from raw gateway payloads to the cached view models.
// Missing optional fields map to defaults; nothing here performs IO.

const avatarPlaceholderBase = "https://api.dicebear.com/7.x/initials/svg?seed="

var knownPlatforms = map[string]string{
	"WHATSAPP":  store.PlatformWhatsApp,
	"LINKEDIN":  store.PlatformLinkedIn,
	"GMAIL":     store.PlatformGmail,
	"INSTAGRAM": store.PlatformInstagram,
	"TELEGRAM":  store.PlatformTelegram,
}

// ParseChat normalizes one chat summary.
func ParseChat(raw RawChat) store.Conversation {
	name := raw.Name
	if name == "" {
		name = "Unknown Contact"
	}

	avatar := raw.Image
	if avatar == "" {
		avatar = avatarPlaceholderBase + url.QueryEscape(name)
	}

	preview := "No messages yet"
	if raw.LastMessage != nil && raw.LastMessage.Text != "" {
		preview = raw.LastMessage.Text
	}

	unread := raw.UnreadCount
	if unread < 0 {
		unread = 0
	}

	return store.Conversation{
		ID:            raw.ID,
		Platform:      parsePlatform(raw.AccountType),
		ContactName:   name,
		ContactAvatar: avatar,
		LastMessage:   preview,
		LastMessageAt: formatClock(raw.Timestamp),
		UnreadCount:   unread,
	}
}

// ParseChats normalizes a polled chat list, preserving gateway order.
func ParseChats(raws []RawChat) []store.Conversation {
	convs := make([]store.Conversation, 0, len(raws))
	for _, raw := range raws {
		convs = append(convs, ParseChat(raw))
	}
	return convs
}

// ParseMessages normalizes a polled message batch for one conversation.
// The gateway returns newest first; the result is oldest first.
func ParseMessages(conversationID string, raws []RawMessage) []store.Message {
	msgs := make([]store.Message, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		raw := raws[i]
		sender := store.SenderCounterparty
		if raw.SenderType == "USER" {
			sender = store.SenderSelf
		}
		msgs = append(msgs, store.Message{
			MsgID:          raw.ID,
			ConversationID: conversationID,
			Sender:         sender,
			Body:           raw.Text,
			SentAt:         formatClock(raw.Timestamp),
			Seq:            len(raws) - 1 - i,
		})
	}
	return msgs
}

// ParseEvents normalizes a polled calendar event list.
func ParseEvents(raws []RawEvent) []store.CalendarEvent {
	events := make([]store.CalendarEvent, 0, len(raws))
	for _, raw := range raws {
		events = append(events, store.CalendarEvent{
			Summary:  raw.Summary,
			StartsAt: raw.Start.DateTime,
			Location: raw.Location,
			Status:   raw.Status,
		})
	}
	return events
}

func parsePlatform(accountType string) string {
	if p, ok := knownPlatforms[accountType]; ok {
		return p
	}
	return store.PlatformUnknown
}

// formatClock renders an RFC3339 timestamp as a HH:MM display time.
// Unparseable or absent timestamps render empty.
func formatClock(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ""
	}
	return t.Local().Format("15:04")
}
