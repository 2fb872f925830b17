package store

// Sender roles for a message.
const (
	SenderSelf         = "self"
	SenderCounterparty = "counterparty"
)

// Known platform tags. Chats from an unrecognized account type carry
// PlatformUnknown rather than being dropped.
const (
	PlatformWhatsApp  = "whatsapp"
	PlatformLinkedIn  = "linkedin"
	PlatformGmail     = "gmail"
	PlatformInstagram = "instagram"
	PlatformTelegram  = "telegram"
	PlatformUnknown   = "unknown"
)

// Conversation is a synced chat thread summary. The collection is replaced
// wholesale on every poll; id is stable per remote thread across polls.
type Conversation struct {
	ID            string
	Platform      string
	ContactName   string
	ContactAvatar string
	LastMessage   string
	LastMessageAt string
	UnreadCount   int
}

// Message is a synced message within a conversation. Seq preserves the
// oldest-first ordering of the poll batch; SentAt is a formatted display
// time and is not orderable.
type Message struct {
	ID             int64
	MsgID          string
	ConversationID string
	Sender         string
	Body           string
	SentAt         string
	Seq            int
}

// CalendarEvent is a read-only pass-through of a remote calendar entry.
type CalendarEvent struct {
	ID       int64
	Summary  string
	StartsAt string
	Location string
	Status   string
}

// SentEntry is an audit record of an outgoing send attempt.
type SentEntry struct {
	ID             int64
	ClientMsgID    string
	ConversationID string
	Body           string
	Status         string // sent, failed
	ErrorMessage   string
	CreatedAt      int64
}
