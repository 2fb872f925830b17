package suggest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/orchestrated-app/hub/internal/bus"
	"github.com/orchestrated-app/hub/internal/store"
	"go.uber.org/zap"
)

// Orchestrator owns the suggestion set for the selected conversation.
// Each generation request fully replaces the prior set. A request started
// while another is in flight supersedes it: the superseded result is
// discarded, never interleaved into the displayed set.
type Orchestrator struct {
	gen     Generator
	bus     *bus.Bus
	logger  *zap.Logger
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
	current    []Suggestion
	generating bool
}

// NewOrchestrator creates a suggestion orchestrator.
func NewOrchestrator(gen Generator, b *bus.Bus, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gen:     gen,
		bus:     b,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// Current returns the displayed suggestion set.
func (o *Orchestrator) Current() []Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Suggestion, len(o.current))
	copy(out, o.current)
	return out
}

// Generating reports whether a request is in flight.
func (o *Orchestrator) Generating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generating
}

// Clear discards the displayed set and invalidates any in-flight request.
// Called when the selected conversation changes.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.generation++
	o.current = nil
	o.generating = false
	o.mu.Unlock()
}

// Request generates a fresh suggestion set from the given messages and
// replaces the current one. An empty message list is a no-op: no generator
// call is made. A malformed generator response yields an empty set; the
// error never reaches the caller's display path.
func (o *Orchestrator) Request(ctx context.Context, msgs []store.Message) []Suggestion {
	if len(msgs) == 0 {
		return nil
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.generating = true
	o.mu.Unlock()

	prompt := BuildPrompt(msgs)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw, err := o.gen.Generate(ctx, prompt)

	var set []Suggestion
	if err != nil {
		o.logger.Error("suggestion generation failed", zap.Error(err))
	} else {
		set, err = parseSuggestions(raw)
		if err != nil {
			o.logger.Error("malformed suggestion output", zap.Error(err), zap.String("raw", raw))
			set = nil
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		// Superseded by a newer request or a selection change.
		return nil
	}
	o.current = set
	o.generating = false

	if o.bus != nil {
		o.bus.Publish(bus.Event{
			Kind:      "suggestion.updated",
			Timestamp: time.Now(),
			Payload:   len(set),
		})
	}
	out := make([]Suggestion, len(set))
	copy(out, set)
	return out
}

// parseSuggestions decodes the generator's raw text into a suggestion set.
// Markdown code fences around the JSON are tolerated.
func parseSuggestions(raw string) ([]Suggestion, error) {
	text := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	var set []Suggestion
	if err := json.Unmarshal([]byte(text), &set); err != nil {
		return nil, err
	}
	return set, nil
}
