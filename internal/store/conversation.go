package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ReplaceConversations atomically replaces the conversation collection with
// the result of a fresh poll. Rows absent from the poll are removed; polling
// an unchanged remote list is idempotent. Messages of removed conversations
// stay cached.
func (db *DB) ReplaceConversations(convs []Conversation) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, c := range convs {
		if _, err := tx.Exec(`
			INSERT INTO conversations (id, platform, contact_name, contact_avatar, last_message, last_message_at, unread_count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Platform, c.ContactName, c.ContactAvatar, c.LastMessage, c.LastMessageAt, c.UnreadCount, now); err != nil {
			return fmt.Errorf("insert conversation %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// ListConversations returns all cached conversations in poll order
// (rowid order, which the gateway already sorts by recency).
func (db *DB) ListConversations() ([]Conversation, error) {
	rows, err := db.Query(`
		SELECT id, platform, contact_name, contact_avatar, last_message, last_message_at, unread_count
		FROM conversations
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Platform, &c.ContactName, &c.ContactAvatar, &c.LastMessage, &c.LastMessageAt, &c.UnreadCount); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// GetConversation returns a single conversation by id, or nil if absent.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	var c Conversation
	err := db.QueryRow(`
		SELECT id, platform, contact_name, contact_avatar, last_message, last_message_at, unread_count
		FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.Platform, &c.ContactName, &c.ContactAvatar, &c.LastMessage, &c.LastMessageAt, &c.UnreadCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
