package views

import (
	"fmt"

	"github.com/orchestrated-app/hub/internal/tui/client"
	"github.com/rivo/tview"
)

// MessageView displays the messages of the active conversation.
type MessageView struct {
	*tview.TextView
}

// NewMessageView creates the message pane.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	return &MessageView{TextView: tv}
}

// SetContactName updates the title with the contact name.
func (mv *MessageView) SetContactName(name string) {
	if name == "" {
		mv.SetTitle(" Messages ")
		return
	}
	mv.SetTitle(fmt.Sprintf(" %s ", name))
}

// Update refreshes the pane; messages arrive oldest first.
func (mv *MessageView) Update(msgs []client.Message) {
	mv.Clear()

	for _, m := range msgs {
		sender := "Them"
		if m.Sender == "self" {
			sender = "You"
		}
		line := fmt.Sprintf("[::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n", sender, m.Timestamp, m.Content)
		_, _ = fmt.Fprint(mv, line)
	}

	mv.ScrollToEnd()
}
