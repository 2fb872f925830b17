package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Conversation is a chat thread as served by the daemon API.
type Conversation struct {
	ID              string `json:"id"`
	Platform        string `json:"platform"`
	ContactName     string `json:"contactName"`
	ContactAvatar   string `json:"contactAvatar"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
	UnreadCount     int    `json:"unreadCount"`
	Selected        bool   `json:"selected"`
}

// Message is a single message of a conversation, oldest first.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// Suggestion is one AI-drafted reply.
type Suggestion struct {
	Tone string `json:"tone"`
	Text string `json:"text"`
}

// Suggestions is the current suggestion state for the selected conversation.
type Suggestions struct {
	Generating  bool         `json:"generating"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Event is a calendar entry.
type Event struct {
	Summary   string `json:"summary"`
	StartTime string `json:"startTime"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

// Status is the daemon's current state.
type Status struct {
	State     string `json:"state"`
	LastError string `json:"last_error"`
	View      string `json:"view"`
	Selected  string `json:"selected"`
}

// Client wraps HTTP calls to the daemon API.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the daemon listening at addr.
func New(addr string) *Client {
	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Health reports whether the daemon answers on its health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	var out map[string]string
	return c.get(ctx, "/health", &out) == nil
}

// GetStatus fetches the daemon state.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.get(ctx, "/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConversations fetches the conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var out struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.get(ctx, "/api/v1/conversations", &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// SelectConversation tells the daemon which conversation is active.
func (c *Client) SelectConversation(ctx context.Context, id string) error {
	return c.post(ctx, "/api/v1/conversations/"+url.PathEscape(id)+"/select", nil, nil)
}

// ListMessages fetches the cached messages of one conversation.
func (c *Client) ListMessages(ctx context.Context, id string) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	if err := c.get(ctx, "/api/v1/conversations/"+url.PathEscape(id)+"/messages", &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage sends text to a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) error {
	body := map[string]string{"conversation_id": conversationID, "text": text}
	return c.post(ctx, "/api/v1/messages", body, nil)
}

// GetSuggestions fetches the current reply suggestions.
func (c *Client) GetSuggestions(ctx context.Context) (*Suggestions, error) {
	var out Suggestions
	if err := c.get(ctx, "/api/v1/suggestions", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Regenerate requests a fresh suggestion set for the selected conversation.
func (c *Client) Regenerate(ctx context.Context) (*Suggestions, error) {
	var out Suggestions
	if err := c.post(ctx, "/api/v1/suggestions/regenerate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEvents fetches the cached calendar events.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	if err := c.get(ctx, "/api/v1/events", &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// SetView switches the daemon's active sync view.
func (c *Client) SetView(ctx context.Context, view string) error {
	return c.post(ctx, "/api/v1/view", map[string]string{"view": view}, nil)
}

// CreateLink creates a hosted connection link for a platform.
func (c *Client) CreateLink(ctx context.Context, platform string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/api/v1/accounts/link", map[string]string{"platform": platform}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
