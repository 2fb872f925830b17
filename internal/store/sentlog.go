package store

import "time"

// LogSent records the outcome of an outgoing send attempt.
func (db *DB) LogSent(e SentEntry) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO sent_log (client_msg_id, conversation_id, body, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ClientMsgID, e.ConversationID, e.Body, e.Status, e.ErrorMessage, now)
	return err
}

// RecentSent returns the most recent send attempts, newest first.
func (db *DB) RecentSent(limit int) ([]SentEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, client_msg_id, conversation_id, body, status, error_message, created_at
		FROM sent_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []SentEntry
	for rows.Next() {
		var e SentEntry
		if err := rows.Scan(&e.ID, &e.ClientMsgID, &e.ConversationID, &e.Body, &e.Status, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
