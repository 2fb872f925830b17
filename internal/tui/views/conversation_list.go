package views

import (
	"fmt"

	"github.com/orchestrated-app/hub/internal/tui/client"
	"github.com/rivo/tview"
)

// ConversationList is the unified inbox table across all connected
// platforms.
type ConversationList struct {
	*tview.Table
	conversations []client.Conversation
	selectedFn    func() (int, int)
}

// NewConversationList creates the inbox table.
func NewConversationList() *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Inbox ")

	cl := &ConversationList{Table: table}
	cl.selectedFn = table.GetSelection
	return cl
}

// Update refreshes the table with new data, keeping the cursor on the same
// conversation when it survives the refresh.
func (cl *ConversationList) Update(convs []client.Conversation) {
	keep := cl.SelectedConversation()
	cl.conversations = convs
	cl.Clear()

	cl.SetCell(0, 0, tview.NewTableCell(" Platform").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Contact").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 3, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	cursor := 1
	for i, conv := range convs {
		row := i + 1
		name := conv.ContactName
		if conv.UnreadCount > 0 {
			name = fmt.Sprintf("* %s (%d)", name, conv.UnreadCount)
		}
		if conv.ID == keep {
			cursor = row
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+conv.Platform).SetMaxWidth(10))
		cl.SetCell(row, 1, tview.NewTableCell(" "+name).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 2, tview.NewTableCell(" "+conv.LastMessage).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 3, tview.NewTableCell(" "+conv.LastMessageTime).SetMaxWidth(8))
	}
	if len(convs) > 0 {
		cl.Select(cursor, 0)
	}
}

// SelectedConversation returns the ID of the conversation under the cursor.
func (cl *ConversationList) SelectedConversation() string {
	row, _ := cl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.conversations) {
		return cl.conversations[idx].ID
	}
	return ""
}
