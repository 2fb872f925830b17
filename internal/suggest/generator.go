package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/orchestrated-app/hub/internal/store"
)

// Tone labels the generator is asked for. The generator is not trusted to
// return exactly these, or exactly three; whatever well-formed set comes
// back is displayed as-is.
const (
	ToneProfessional = "Professional"
	ToneFriendly     = "Friendly"
	ToneCasual       = "Casual"
)

// contextWindow is how many trailing messages feed the prompt.
const contextWindow = 3

// Suggestion is one tone-labeled reply draft.
type Suggestion struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// Generator produces raw model output for a reply-suggestion prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the generation prompt from a conversation's messages.
// Only the last three messages are included, in chronological order, each
// tagged by sender role.
func BuildPrompt(msgs []store.Message) string {
	window := msgs
	if len(window) > contextWindow {
		window = window[len(window)-contextWindow:]
	}

	var lines []string
	for _, m := range window {
		speaker := "Them"
		if m.Sender == store.SenderSelf {
			speaker = "Me"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Body))
	}

	return fmt.Sprintf(`Generate 3 distinct reply suggestions based on this conversation history.
Provide exactly one for each tone: %s, %s, and %s.

Respond with only a JSON array of objects, each with a "tone" field and a "text" field. No other output.

Conversation:
%s`, ToneProfessional, ToneFriendly, ToneCasual, strings.Join(lines, "\n"))
}
