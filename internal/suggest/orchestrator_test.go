package suggest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/orchestrated-app/hub/internal/store"
	"go.uber.org/zap"
)

// fakeGenerator records prompts and returns configurable output.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	output  string
	err     error
	delay   time.Duration
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.output, f.err
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// switchingGenerator answers the first call slowly with one payload and
// later calls immediately with another.
type switchingGenerator struct {
	mu         sync.Mutex
	calls      int
	first      string
	rest       string
	firstDelay time.Duration
}

func (s *switchingGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if n == 1 {
		time.Sleep(s.firstDelay)
		return s.first, nil
	}
	return s.rest, nil
}

func msgs(bodies ...string) []store.Message {
	var out []store.Message
	for i, b := range bodies {
		sender := store.SenderCounterparty
		if i%2 == 1 {
			sender = store.SenderSelf
		}
		out = append(out, store.Message{MsgID: b, ConversationID: "c1", Sender: sender, Body: b, Seq: i})
	}
	return out
}

func TestRequestReplacesSet(t *testing.T) {
	fake := &fakeGenerator{output: `[{"tone":"Professional","text":"Certainly."},{"tone":"Friendly","text":"Sure thing!"},{"tone":"Casual","text":"yep"}]`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	got := o.Request(context.Background(), msgs("hello", "hi", "how are you?"))
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	if got[0].Tone != ToneProfessional || got[0].Text != "Certainly." {
		t.Errorf("first suggestion = %+v", got[0])
	}
	if cur := o.Current(); len(cur) != 3 {
		t.Errorf("Current() has %d entries, want 3", len(cur))
	}
}

// TestEmptyMessagesNoCall verifies no model call is made for an empty thread.
func TestEmptyMessagesNoCall(t *testing.T) {
	fake := &fakeGenerator{output: `[]`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	got := o.Request(context.Background(), nil)
	if got != nil {
		t.Errorf("Request(empty) = %v, want nil", got)
	}
	if fake.callCount() != 0 {
		t.Errorf("generator called %d times, want 0", fake.callCount())
	}
}

// TestPromptUsesLastThreeMessages verifies only the last three messages reach the prompt.
func TestPromptUsesLastThreeMessages(t *testing.T) {
	fake := &fakeGenerator{output: `[]`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	o.Request(context.Background(), msgs("one", "two", "three", "four", "five"))

	if fake.callCount() != 1 {
		t.Fatalf("generator called %d times, want 1", fake.callCount())
	}
	prompt := fake.prompts[0]
	for _, absent := range []string{"one", "two"} {
		if strings.Contains(prompt, absent) {
			t.Errorf("prompt contains %q, want only last 3 messages", absent)
		}
	}
	for _, present := range []string{"three", "four", "five"} {
		if !strings.Contains(prompt, present) {
			t.Errorf("prompt missing %q", present)
		}
	}
	// Chronological order, each line tagged by role.
	if strings.Index(prompt, "three") > strings.Index(prompt, "five") {
		t.Error("prompt messages not in chronological order")
	}
	if !strings.Contains(prompt, "Them: three") || !strings.Contains(prompt, "Me: four") {
		t.Errorf("prompt missing role tags:\n%s", prompt)
	}
}

// TestMalformedOutputYieldsEmptySet verifies generation errors degrade to
// an empty displayed set instead of propagating.
func TestMalformedOutputYieldsEmptySet(t *testing.T) {
	fake := &fakeGenerator{output: `I'm sorry, I can't produce JSON today.`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	got := o.Request(context.Background(), msgs("hello"))
	if len(got) != 0 {
		t.Errorf("got %d suggestions, want 0 for malformed output", len(got))
	}
	if len(o.Current()) != 0 {
		t.Errorf("Current() not empty after malformed output")
	}
}

func TestFencedOutputTolerated(t *testing.T) {
	fake := &fakeGenerator{output: "```json\n[{\"tone\":\"Friendly\",\"text\":\"hey!\"}]\n```"}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	got := o.Request(context.Background(), msgs("hello"))
	if len(got) != 1 || got[0].Text != "hey!" {
		t.Errorf("got %+v, want the fenced suggestion", got)
	}
}

// TestPartialToneSetAccepted verifies the orchestrator does not assert
// count or tone identity on the returned set.
func TestPartialToneSetAccepted(t *testing.T) {
	fake := &fakeGenerator{output: `[{"tone":"Sarcastic","text":"oh great"},{"tone":"Friendly","text":"nice"}]`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	got := o.Request(context.Background(), msgs("hello"))
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2 as returned", len(got))
	}
	if got[0].Tone != "Sarcastic" {
		t.Errorf("tone = %q, want Sarcastic passed through", got[0].Tone)
	}
}

func TestRegenerateReplacesWholesale(t *testing.T) {
	fake := &fakeGenerator{output: `[{"tone":"Casual","text":"first"}]`}
	o := NewOrchestrator(fake, nil, zap.NewNop())

	o.Request(context.Background(), msgs("hello"))
	fake.output = `[{"tone":"Casual","text":"second"},{"tone":"Friendly","text":"extra"}]`
	got := o.Request(context.Background(), msgs("hello"))

	if len(got) != 2 || got[0].Text != "second" {
		t.Errorf("regenerated set = %+v, want full replacement", got)
	}
}

// TestSupersededRequestDiscarded verifies a slow in-flight request cannot
// overwrite the result of a newer one.
func TestSupersededRequestDiscarded(t *testing.T) {
	gen := &switchingGenerator{
		first:      `[{"tone":"Casual","text":"stale"}]`,
		rest:       `[{"tone":"Casual","text":"fresh"}]`,
		firstDelay: 150 * time.Millisecond,
	}
	o := NewOrchestrator(gen, nil, zap.NewNop())

	done := make(chan []Suggestion, 1)
	go func() { done <- o.Request(context.Background(), msgs("old conversation")) }()

	time.Sleep(30 * time.Millisecond)
	got := o.Request(context.Background(), msgs("new conversation"))

	if len(got) != 1 || got[0].Text != "fresh" {
		t.Fatalf("newer request result = %+v", got)
	}

	stale := <-done
	if stale != nil {
		t.Errorf("superseded request returned %+v, want nil", stale)
	}
	if cur := o.Current(); len(cur) != 1 || cur[0].Text != "fresh" {
		t.Errorf("Current() = %+v, want the fresh set preserved", cur)
	}
}

func TestClearInvalidatesInFlight(t *testing.T) {
	slow := &fakeGenerator{output: `[{"tone":"Casual","text":"late"}]`, delay: 100 * time.Millisecond}
	o := NewOrchestrator(slow, nil, zap.NewNop())

	done := make(chan []Suggestion, 1)
	go func() { done <- o.Request(context.Background(), msgs("hello")) }()

	time.Sleep(20 * time.Millisecond)
	o.Clear()

	<-done
	if cur := o.Current(); len(cur) != 0 {
		t.Errorf("Current() = %+v after Clear, want empty", cur)
	}
	if o.Generating() {
		t.Error("Generating() = true after Clear")
	}
}
