package views

import (
	"fmt"

	"github.com/orchestrated-app/hub/internal/tui/client"
	"github.com/rivo/tview"
)

// SuggestionBar shows the AI-drafted replies for the active conversation.
// Each suggestion is numbered so a keystroke can pick it up into the
// composer.
type SuggestionBar struct {
	*tview.TextView
	suggestions []client.Suggestion
}

// NewSuggestionBar creates the suggestion pane.
func NewSuggestionBar() *SuggestionBar {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Suggested Replies (1-3 insert, r regenerate) ")

	return &SuggestionBar{TextView: tv}
}

// Update refreshes the pane with the current suggestion state.
func (sb *SuggestionBar) Update(s *client.Suggestions) {
	sb.Clear()
	if s == nil {
		return
	}
	sb.suggestions = s.Suggestions

	if s.Generating {
		_, _ = fmt.Fprint(sb, " [::d]Generating...[-:-:-]")
		return
	}
	if len(s.Suggestions) == 0 {
		_, _ = fmt.Fprint(sb, " [::d]No suggestions[-:-:-]")
		return
	}
	for i, sugg := range s.Suggestions {
		_, _ = fmt.Fprintf(sb, " [::b]%d[-:-:-] [yellow]%s[-]: %s\n", i+1, sugg.Tone, sugg.Text)
	}
}

// Pick returns the text of suggestion n (1-based), or empty.
func (sb *SuggestionBar) Pick(n int) string {
	idx := n - 1
	if idx >= 0 && idx < len(sb.suggestions) {
		return sb.suggestions[idx].Text
	}
	return ""
}
