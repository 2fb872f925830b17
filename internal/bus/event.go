package bus

import "time"

// Event is a domain event published on the bus. Kind uses dotted
// namespaces: "sync.conversations", "sync.failed", "message.sent",
// "suggestion.updated", "daemon.status_changed".
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
