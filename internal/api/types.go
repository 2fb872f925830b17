package api

import (
	"github.com/orchestrated-app/hub/internal/store"
	"github.com/orchestrated-app/hub/internal/suggest"
)

// Wire shapes served to front-ends.

type conversationDTO struct {
	ID              string `json:"id"`
	Platform        string `json:"platform"`
	ContactName     string `json:"contactName"`
	ContactAvatar   string `json:"contactAvatar"`
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
	UnreadCount     int    `json:"unreadCount"`
	Selected        bool   `json:"selected"`
}

type messageDTO struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

type eventDTO struct {
	Summary   string `json:"summary"`
	StartTime string `json:"startTime"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

type suggestionsDTO struct {
	Generating  bool                 `json:"generating"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

type sendRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type linkRequest struct {
	Platform string `json:"platform"`
}

type viewRequest struct {
	View string `json:"view"`
}

func toConversationDTO(c store.Conversation, selectedID string) conversationDTO {
	return conversationDTO{
		ID:              c.ID,
		Platform:        c.Platform,
		ContactName:     c.ContactName,
		ContactAvatar:   c.ContactAvatar,
		LastMessage:     c.LastMessage,
		LastMessageTime: c.LastMessageAt,
		UnreadCount:     c.UnreadCount,
		Selected:        c.ID == selectedID,
	}
}

func toMessageDTO(m store.Message) messageDTO {
	return messageDTO{
		ID:             m.MsgID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Content:        m.Body,
		Timestamp:      m.SentAt,
	}
}

func toEventDTO(e store.CalendarEvent) eventDTO {
	return eventDTO{
		Summary:   e.Summary,
		StartTime: e.StartsAt,
		Location:  e.Location,
		Status:    e.Status,
	}
}
