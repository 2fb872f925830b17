package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/orchestrated-app/hub/internal/bus"
	"github.com/orchestrated-app/hub/internal/gateway"
	"github.com/orchestrated-app/hub/internal/status"
	"github.com/orchestrated-app/hub/internal/store"
	"github.com/orchestrated-app/hub/internal/suggest"
	"go.uber.org/zap"
)

// Views the refresh loop can serve.
const (
	ViewMessages = "messages"
	ViewCalendar = "calendar"
)

// DefaultInterval is the periodic refresh interval when none is configured.
const DefaultInterval = 60 * time.Second

// ErrEmptyMessage is returned when a send is attempted with blank input.
// No gateway call is made and no state changes.
var ErrEmptyMessage = errors.New("message text is empty")

// ErrUnknownView is returned for a view name other than messages/calendar.
var ErrUnknownView = errors.New("unknown view")

// Gateway is the subset of gateway operations the engine drives.
type Gateway interface {
	ListChats(ctx context.Context) ([]gateway.RawChat, error)
	ListMessages(ctx context.Context, chatID string) ([]gateway.RawMessage, error)
	ListEvents(ctx context.Context) ([]gateway.RawEvent, error)
	SendMessage(ctx context.Context, chatID, text string) (*gateway.RawMessage, error)
}

// Engine drives the inbox refresh cycle. It owns the authoritative cached
// copies of conversations, messages and events: it polls the gateway for
// the active view, replaces collections wholesale in the store, and hands
// fresh message batches to the suggestion orchestrator. On poll failure the
// previous collection stays untouched; stale data beats empty data.
type Engine struct {
	gw       Gateway
	db       *store.DB
	sugg     *suggest.Orchestrator
	bus      *bus.Bus
	machine  *status.Machine
	logger   *zap.Logger
	interval time.Duration

	mu         stdsync.Mutex
	rootCtx    context.Context
	rootCancel context.CancelFunc
	viewCancel context.CancelFunc
	activeView string
	selectedID string
	selGen     uint64
}

// NewEngine creates a sync engine.
func NewEngine(gw Gateway, db *store.DB, sugg *suggest.Orchestrator, b *bus.Bus, machine *status.Machine, logger *zap.Logger, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		gw:       gw,
		db:       db,
		sugg:     sugg,
		bus:      b,
		machine:  machine,
		logger:   logger,
		interval: interval,
	}
}

// Start activates the messages view and begins periodic refresh.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.rootCtx, e.rootCancel = context.WithCancel(ctx)
	e.mu.Unlock()

	_ = e.machine.Transition(status.Syncing)
	_ = e.SetActiveView(ViewMessages)
}

// Stop cancels the refresh loop and any in-flight work.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.viewCancel != nil {
		e.viewCancel()
		e.viewCancel = nil
	}
	if e.rootCancel != nil {
		e.rootCancel()
	}
}

// ActiveView returns the view the refresh loop currently serves.
func (e *Engine) ActiveView() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeView
}

// SelectedConversation returns the selected conversation id, or "".
func (e *Engine) SelectedConversation() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// SetActiveView switches the refresh loop to the given view. The previous
// view's timer is cancelled synchronously before the new loop starts, then
// the new view refreshes immediately and on every interval tick after.
func (e *Engine) SetActiveView(view string) error {
	if view != ViewMessages && view != ViewCalendar {
		return fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	e.mu.Lock()
	if e.rootCtx == nil {
		e.mu.Unlock()
		return errors.New("engine not started")
	}
	if e.viewCancel != nil {
		e.viewCancel()
	}
	vctx, cancel := context.WithCancel(e.rootCtx)
	e.viewCancel = cancel
	e.activeView = view
	e.mu.Unlock()

	go e.viewLoop(vctx, view)
	return nil
}

// RefreshNow forces an immediate refresh of the active view.
func (e *Engine) RefreshNow() {
	e.mu.Lock()
	ctx, view := e.rootCtx, e.activeView
	e.mu.Unlock()
	if ctx == nil || view == "" {
		return
	}
	e.refresh(ctx, view)
}

func (e *Engine) viewLoop(ctx context.Context, view string) {
	e.refresh(ctx, view)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.refresh(ctx, view)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) refresh(ctx context.Context, view string) {
	switch view {
	case ViewMessages:
		e.refreshConversations(ctx)
	case ViewCalendar:
		e.refreshEvents(ctx)
	}
}

func (e *Engine) refreshConversations(ctx context.Context) {
	raws, err := e.gw.ListChats(ctx)
	if err != nil {
		e.degrade("list chats", err)
		return
	}

	convs := gateway.ParseChats(raws)
	if err := e.db.ReplaceConversations(convs); err != nil {
		e.logger.Error("failed to replace conversations", zap.Error(err))
		return
	}

	e.bus.Publish(bus.Event{
		Kind:      "sync.conversations",
		Timestamp: time.Now(),
		Payload:   len(convs),
	})
	e.recover()

	// Preserve the selection if it survived the poll; otherwise clear it.
	// When nothing is selected yet, select the first conversation.
	e.mu.Lock()
	selected := e.selectedID
	e.mu.Unlock()

	if selected != "" && !containsConversation(convs, selected) {
		e.clearSelection()
		return
	}
	if selected == "" && len(convs) > 0 {
		e.SelectConversation(convs[0].ID)
	}
}

func (e *Engine) refreshEvents(ctx context.Context) {
	raws, err := e.gw.ListEvents(ctx)
	if err != nil {
		e.degrade("list events", err)
		return
	}

	events := gateway.ParseEvents(raws)
	if err := e.db.ReplaceEvents(events); err != nil {
		e.logger.Error("failed to replace events", zap.Error(err))
		return
	}

	e.bus.Publish(bus.Event{
		Kind:      "sync.events",
		Timestamp: time.Now(),
		Payload:   len(events),
	})
	e.recover()
}

// SelectConversation switches the selected conversation, clears the
// displayed suggestion set and loads the conversation's messages. Loads for
// a superseded selection are discarded: the displayed messages always
// correspond to the latest selection.
func (e *Engine) SelectConversation(id string) {
	e.mu.Lock()
	if id == e.selectedID {
		e.mu.Unlock()
		return
	}
	e.selectedID = id
	e.selGen++
	gen := e.selGen
	ctx := e.rootCtx
	e.mu.Unlock()

	e.sugg.Clear()
	e.bus.Publish(bus.Event{
		Kind:      "sync.selection",
		Timestamp: time.Now(),
		Payload:   id,
	})

	if ctx != nil {
		go e.loadMessages(ctx, gen, id)
	}
}

func (e *Engine) clearSelection() {
	e.mu.Lock()
	e.selectedID = ""
	e.selGen++
	e.mu.Unlock()

	e.sugg.Clear()
	e.bus.Publish(bus.Event{
		Kind:      "sync.selection",
		Timestamp: time.Now(),
		Payload:   "",
	})
}

func (e *Engine) loadMessages(ctx context.Context, gen uint64, id string) {
	raws, err := e.gw.ListMessages(ctx, id)
	if err != nil {
		// Keep whatever is cached for this conversation.
		e.degrade("list messages", err)
		return
	}

	msgs := gateway.ParseMessages(id, raws)

	e.mu.Lock()
	if gen != e.selGen {
		// A newer selection owns the message collection now.
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if err := e.db.ReplaceMessages(id, msgs); err != nil {
		e.logger.Error("failed to replace messages", zap.Error(err), zap.String("conversation", id))
		return
	}

	e.bus.Publish(bus.Event{
		Kind:      "sync.messages",
		Timestamp: time.Now(),
		Payload:   map[string]any{"conversation_id": id, "count": len(msgs)},
	})

	if len(msgs) > 0 {
		e.sugg.Request(ctx, msgs)
	}
}

// Send sends a message to a conversation. Blank input is a no-op: the
// gateway is never called. On success an optimistic local echo is appended
// ahead of the next poll; on failure the error propagates and the cache is
// left unchanged so the caller can retry with the same text.
func (e *Engine) Send(ctx context.Context, conversationID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if conversationID == "" {
		return errors.New("no conversation selected")
	}

	clientMsgID := uuid.New().String()

	echoed, err := e.gw.SendMessage(ctx, conversationID, text)
	if err != nil {
		_ = e.db.LogSent(store.SentEntry{
			ClientMsgID:    clientMsgID,
			ConversationID: conversationID,
			Body:           text,
			Status:         "failed",
			ErrorMessage:   err.Error(),
		})
		return fmt.Errorf("send message: %w", err)
	}

	msgID := clientMsgID
	if echoed != nil && echoed.ID != "" {
		msgID = echoed.ID
	}
	if err := e.db.AppendLocalEcho(store.Message{
		MsgID:          msgID,
		ConversationID: conversationID,
		Sender:         store.SenderSelf,
		Body:           text,
		SentAt:         "Just now",
	}); err != nil {
		e.logger.Error("failed to append local echo", zap.Error(err))
	}
	_ = e.db.LogSent(store.SentEntry{
		ClientMsgID:    clientMsgID,
		ConversationID: conversationID,
		Body:           text,
		Status:         "sent",
	})

	e.bus.Publish(bus.Event{
		Kind:      "message.sent",
		Timestamp: time.Now(),
		Payload:   map[string]string{"conversation_id": conversationID, "msg_id": msgID},
	})
	return nil
}

func (e *Engine) degrade(op string, err error) {
	e.logger.Warn("gateway poll failed, serving stale data", zap.String("op", op), zap.Error(err))
	_ = e.machine.TransitionWithNote(status.Degraded, fmt.Sprintf("%s: %v", op, err))
	e.bus.Publish(bus.Event{
		Kind:      "sync.failed",
		Timestamp: time.Now(),
		Payload:   op,
	})
}

func (e *Engine) recover() {
	if e.machine.Current() != status.Ready {
		_ = e.machine.TransitionWithNote(status.Ready, "")
	}
}

func containsConversation(convs []store.Conversation, id string) bool {
	for _, c := range convs {
		if c.ID == id {
			return true
		}
	}
	return false
}
