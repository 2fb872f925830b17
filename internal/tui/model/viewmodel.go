package model

import (
	"context"
	"sync"
	"time"

	"github.com/orchestrated-app/hub/internal/tui/client"
)

// ViewModel caches daemon state between polls and hands the UI snapshots.
type ViewModel struct {
	mu sync.RWMutex

	client        *client.Client
	Status        *client.Status
	Conversations []client.Conversation
	Messages      []client.Message
	Suggestions   *client.Suggestions
	Events        []client.Event
	ActiveID      string
	Flash         Flash
}

// NewViewModel creates a view model connected to the daemon client.
func NewViewModel(c *client.Client) *ViewModel {
	return &ViewModel{client: c}
}

// LoadStatus fetches the daemon state.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	s, err := vm.client.GetStatus(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Status = s
	vm.mu.Unlock()
	return nil
}

// LoadConversations fetches the conversation list and tracks the daemon's
// active selection.
func (vm *ViewModel) LoadConversations(ctx context.Context) error {
	convs, err := vm.client.ListConversations(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Conversations = convs
	if vm.ActiveID == "" {
		for _, c := range convs {
			if c.Selected {
				vm.ActiveID = c.ID
				break
			}
		}
	}
	vm.mu.Unlock()
	return nil
}

// SelectConversation marks a conversation active on the daemon and loads its
// messages.
func (vm *ViewModel) SelectConversation(ctx context.Context, id string) error {
	if err := vm.client.SelectConversation(ctx, id); err != nil {
		return err
	}
	vm.mu.Lock()
	vm.ActiveID = id
	vm.mu.Unlock()
	return vm.LoadMessages(ctx)
}

// LoadMessages fetches the active conversation's messages.
func (vm *ViewModel) LoadMessages(ctx context.Context) error {
	vm.mu.RLock()
	id := vm.ActiveID
	vm.mu.RUnlock()
	if id == "" {
		return nil
	}

	msgs, err := vm.client.ListMessages(ctx, id)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Messages = msgs
	vm.mu.Unlock()
	return nil
}

// LoadSuggestions fetches the current suggestion set.
func (vm *ViewModel) LoadSuggestions(ctx context.Context) error {
	s, err := vm.client.GetSuggestions(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Suggestions = s
	vm.mu.Unlock()
	return nil
}

// Regenerate requests a fresh suggestion set.
func (vm *ViewModel) Regenerate(ctx context.Context) error {
	s, err := vm.client.Regenerate(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Suggestions = s
	vm.mu.Unlock()
	return nil
}

// LoadEvents fetches the cached calendar events.
func (vm *ViewModel) LoadEvents(ctx context.Context) error {
	events, err := vm.client.ListEvents(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.Events = events
	vm.mu.Unlock()
	return nil
}

// Send sends text to the active conversation and reloads its messages so the
// optimistic echo shows up immediately.
func (vm *ViewModel) Send(ctx context.Context, text string) error {
	vm.mu.RLock()
	id := vm.ActiveID
	vm.mu.RUnlock()
	if id == "" {
		return nil
	}

	if err := vm.client.SendMessage(ctx, id, text); err != nil {
		return err
	}
	vm.Flash.Set("Message sent", 3*time.Second)
	return vm.LoadMessages(ctx)
}

// SetView switches the daemon's active sync view.
func (vm *ViewModel) SetView(ctx context.Context, view string) error {
	return vm.client.SetView(ctx, view)
}

// GetConversations returns a snapshot of the conversation list.
func (vm *ViewModel) GetConversations() []client.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.Conversations
}

// GetMessages returns a snapshot of the active conversation's messages.
func (vm *ViewModel) GetMessages() []client.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.Messages
}

// GetSuggestions returns a snapshot of the suggestion state.
func (vm *ViewModel) GetSuggestions() *client.Suggestions {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.Suggestions
}

// GetEvents returns a snapshot of the calendar events.
func (vm *ViewModel) GetEvents() []client.Event {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.Events
}

// GetStatus returns a snapshot of the daemon state.
func (vm *ViewModel) GetStatus() *client.Status {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.Status
}

// ActiveConversation returns the active conversation, or nil.
func (vm *ViewModel) ActiveConversation() *client.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for i := range vm.Conversations {
		if vm.Conversations[i].ID == vm.ActiveID {
			return &vm.Conversations[i]
		}
	}
	return nil
}
