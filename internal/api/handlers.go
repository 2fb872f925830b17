package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/orchestrated-app/hub/internal/bus"
	"github.com/orchestrated-app/hub/internal/gateway"
	"github.com/orchestrated-app/hub/internal/status"
	"github.com/orchestrated-app/hub/internal/store"
	"github.com/orchestrated-app/hub/internal/suggest"
	hubsync "github.com/orchestrated-app/hub/internal/sync"
	"go.uber.org/zap"
)

// Connector is the subset of gateway operations served straight through
// the API rather than via the sync loop.
type Connector interface {
	ListAccounts(ctx context.Context) ([]gateway.RawAccount, error)
	CreateHostedLink(ctx context.Context, platform string) (*gateway.HostedLink, error)
}

// Server holds the HTTP handlers for the daemon API.
type Server struct {
	db        *store.DB
	engine    *hubsync.Engine
	sugg      *suggest.Orchestrator
	connector Connector
	machine   *status.Machine
	bus       *bus.Bus
	logger    *zap.Logger
}

// NewServer creates the API server.
func NewServer(db *store.DB, engine *hubsync.Engine, sugg *suggest.Orchestrator, connector Connector, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *Server {
	return &Server{
		db:        db,
		engine:    engine,
		sugg:      sugg,
		connector: connector,
		machine:   machine,
		bus:       b,
		logger:    logger,
	}
}

// RegisterRoutes attaches all routes to the gin engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.Use(CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "hubd"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", s.getStatus)
		v1.GET("/accounts", s.listAccounts)
		v1.POST("/accounts/link", s.createLink)
		v1.GET("/conversations", s.listConversations)
		v1.POST("/conversations/:id/select", s.selectConversation)
		v1.GET("/conversations/:id/messages", s.listMessages)
		v1.POST("/messages", s.sendMessage)
		v1.GET("/suggestions", s.getSuggestions)
		v1.POST("/suggestions/regenerate", s.regenerateSuggestions)
		v1.GET("/events", s.listEvents)
		v1.POST("/view", s.setView)
		v1.GET("/sent", s.listSent)
		v1.GET("/stream", s.stream)
	}
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":      s.machine.Current(),
		"last_error": s.machine.LastError(),
		"view":       s.engine.ActiveView(),
		"selected":   s.engine.SelectedConversation(),
	})
}

func (s *Server) listAccounts(c *gin.Context) {
	accounts, err := s.connector.ListAccounts(c.Request.Context())
	if err != nil {
		// List failures degrade to an empty collection.
		s.logger.Warn("list accounts failed", zap.Error(err))
		accounts = nil
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) createLink(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Platform == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform is required"})
		return
	}

	link, err := s.connector.CreateHostedLink(c.Request.Context(), req.Platform)
	if err != nil {
		s.logger.Error("create hosted link failed", zap.Error(err), zap.String("platform", req.Platform))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create connection link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link.URL})
}

func (s *Server) listConversations(c *gin.Context) {
	convs, err := s.db.ListConversations()
	if err != nil {
		s.logger.Error("list conversations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	selected := s.engine.SelectedConversation()
	out := make([]conversationDTO, 0, len(convs))
	for _, conv := range convs {
		out = append(out, toConversationDTO(conv, selected))
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

func (s *Server) selectConversation(c *gin.Context) {
	id := c.Param("id")
	conv, err := s.db.GetConversation(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	s.engine.SelectConversation(id)
	c.JSON(http.StatusOK, gin.H{"selected": id})
}

func (s *Server) listMessages(c *gin.Context) {
	id := c.Param("id")
	msgs, err := s.db.ListMessages(id)
	if err != nil {
		s.logger.Error("list messages failed", zap.Error(err), zap.String("conversation", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	out := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageDTO(m))
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = s.engine.SelectedConversation()
	}

	err := s.engine.Send(c.Request.Context(), req.ConversationID, req.Text)
	switch {
	case errors.Is(err, hubsync.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message text is empty"})
	case err != nil:
		// The typed text is preserved client-side for retry.
		s.logger.Error("send failed", zap.Error(err), zap.String("conversation", req.ConversationID))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send message"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	}
}

func (s *Server) getSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, suggestionsDTO{
		Generating:  s.sugg.Generating(),
		Suggestions: s.sugg.Current(),
	})
}

func (s *Server) regenerateSuggestions(c *gin.Context) {
	selected := s.engine.SelectedConversation()
	if selected == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no conversation selected"})
		return
	}

	msgs, err := s.db.ListMessages(selected)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	set := s.sugg.Request(c.Request.Context(), msgs)
	c.JSON(http.StatusOK, suggestionsDTO{Suggestions: set})
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.db.ListEvents()
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (s *Server) setView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.engine.SetActiveView(req.View); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": req.View})
}

func (s *Server) listSent(c *gin.Context) {
	entries, err := s.db.RecentSent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": entries})
}

// stream serves daemon events over SSE so front-ends can refresh reactively
// instead of polling.
func (s *Server) stream(c *gin.Context) {
	ch, unsub := s.bus.Subscribe("", 64)
	defer unsub()

	c.Stream(func(_ io.Writer) bool {
		select {
		case evt := <-ch:
			c.SSEvent(evt.Kind, evt.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
