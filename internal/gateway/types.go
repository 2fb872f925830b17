package gateway

// Raw payload shapes returned by the aggregation gateway. Every field is
// optional on the wire; zero values are tolerated and mapped to defaults by
// the parser, never trusted as fully-typed past it.

type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

// RawAccount is a connected platform account.
type RawAccount struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// RawChat is a chat thread summary as returned by GET /chats.
type RawChat struct {
	ID          string          `json:"id"`
	AccountType string          `json:"account_type"`
	Name        string          `json:"name"`
	Image       string          `json:"image"`
	LastMessage *RawLastMessage `json:"last_message"`
	Timestamp   string          `json:"timestamp"`
	UnreadCount int             `json:"unread_count"`
}

// RawLastMessage is the nested preview inside a chat summary.
type RawLastMessage struct {
	Text string `json:"text"`
}

// RawMessage is a single message as returned by GET /chats/{id}/messages,
// newest first.
type RawMessage struct {
	ID         string `json:"id"`
	SenderType string `json:"sender_type"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
}

// RawEvent is a calendar entry as returned by GET /events.
type RawEvent struct {
	Summary  string       `json:"summary"`
	Start    RawEventTime `json:"start"`
	Location string       `json:"location"`
	Status   string       `json:"status"`
}

// RawEventTime is the nested start object of a calendar entry.
type RawEventTime struct {
	DateTime string `json:"dateTime"`
}

// HostedLink is the response of POST /hosted/accounts/link.
type HostedLink struct {
	URL string `json:"url"`
}

type hostedLinkRequest struct {
	Type       string   `json:"type"`
	SuccessURL string   `json:"success_url"`
	FailureURL string   `json:"failure_url"`
	Providers  []string `json:"providers,omitempty"`
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}
