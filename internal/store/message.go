package store

import "fmt"

// ReplaceMessages atomically replaces the cached message list for one
// conversation with a freshly polled batch, ordered oldest-first.
func (db *DB) ReplaceMessages(conversationID string, msgs []Message) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	for i, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (msg_id, conversation_id, sender, body, sent_at, seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(conversation_id, msg_id) DO UPDATE SET
				body = excluded.body,
				sent_at = excluded.sent_at,
				seq = excluded.seq`,
			m.MsgID, conversationID, m.Sender, m.Body, m.SentAt, i); err != nil {
			return fmt.Errorf("insert message %s: %w", m.MsgID, err)
		}
	}

	return tx.Commit()
}

// AppendLocalEcho appends a single optimistic self message after a
// successful send, before the next poll reconciles it.
func (db *DB) AppendLocalEcho(m Message) error {
	_, err := db.Exec(`
		INSERT INTO messages (msg_id, conversation_id, sender, body, sent_at, seq)
		SELECT ?, ?, ?, ?, ?, COALESCE(MAX(seq), -1) + 1
		FROM messages WHERE conversation_id = ?
		ON CONFLICT(conversation_id, msg_id) DO NOTHING`,
		m.MsgID, m.ConversationID, m.Sender, m.Body, m.SentAt, m.ConversationID)
	return err
}

// ListMessages returns the cached messages for a conversation, oldest first.
func (db *DB) ListMessages(conversationID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT id, msg_id, conversation_id, sender, body, sent_at, seq
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.MsgID, &m.ConversationID, &m.Sender, &m.Body, &m.SentAt, &m.Seq); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
