package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/orchestrated-app/hub/internal/config"
	"go.uber.org/zap"
)

// providerCodes maps platform names to the gateway's hosted-auth codes.
// Google Calendar connects through the GOOGLE provider scoped to calendar.
var providerCodes = map[string]string{
	"GOOGLE_CALENDAR": "GOOGLE",
	"GMAIL":           "GMAIL",
	"INSTAGRAM":       "INSTAGRAM",
	"TELEGRAM":        "TELEGRAM",
	"WHATSAPP":        "WHATSAPP",
	"LINKEDIN":        "LINKEDIN",
}

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway %s: status %d", e.Op, e.Code)
}

// Client is a REST client for the messaging-aggregation gateway. List
// operations degrade to an empty collection on failure (the error is still
// returned so the sync loop can keep stale data and mark itself degraded);
// mutating operations propagate their failure. No operation retries.
type Client struct {
	baseURL    string
	apiKey     string
	successURL string
	failureURL string
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client. Every call is bounded by the
// configured timeout.
func NewClient(cfg config.Gateway, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		successURL: cfg.SuccessURL,
		failureURL: cfg.FailureURL,
		http:       &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

// ListAccounts returns the connected platform accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]RawAccount, error) {
	return listCall[RawAccount](c, ctx, "list accounts", "/accounts")
}

// ListChats returns the chat thread summaries across all connected accounts.
func (c *Client) ListChats(ctx context.Context) ([]RawChat, error) {
	return listCall[RawChat](c, ctx, "list chats", "/chats")
}

// ListMessages returns the messages of one chat, newest first.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]RawMessage, error) {
	return listCall[RawMessage](c, ctx, "list messages", "/chats/"+url.PathEscape(chatID)+"/messages")
}

// ListEvents returns the calendar events of connected calendar accounts.
func (c *Client) ListEvents(ctx context.Context) ([]RawEvent, error) {
	return listCall[RawEvent](c, ctx, "list events", "/events")
}

// SendMessage sends a text message to a chat and returns the echoed record.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (*RawMessage, error) {
	var echoed RawMessage
	err := c.post(ctx, "send message", "/messages", sendMessageRequest{ChatID: chatID, Text: text}, &echoed)
	if err != nil {
		return nil, err
	}
	return &echoed, nil
}

// CreateHostedLink creates a hosted OAuth connection link for a platform.
func (c *Client) CreateHostedLink(ctx context.Context, platform string) (*HostedLink, error) {
	upper := strings.ToUpper(platform)
	code, ok := providerCodes[upper]
	if !ok {
		code = upper
	}
	req := hostedLinkRequest{
		Type:       code,
		SuccessURL: c.successURL,
		FailureURL: c.failureURL,
	}
	if upper == "GOOGLE_CALENDAR" {
		req.Providers = []string{"calendar"}
	}

	var link HostedLink
	if err := c.post(ctx, "create hosted link", "/hosted/accounts/link", req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func listCall[T any](c *Client, ctx context.Context, op, path string) ([]T, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway list call failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("gateway list call failed", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Op: op, Code: resp.StatusCode}
	}

	var envelope listEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("gateway payload not a collection", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return envelope.Items, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain for connection reuse.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Op: op, Code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode: %w", op, err)
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	return req, nil
}
