package store

import "fmt"

// ReplaceEvents atomically replaces the cached calendar events with a
// freshly polled batch. Events carry no remote identity; display order is
// the gateway's order.
func (db *DB) ReplaceEvents(events []CalendarEvent) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	for _, e := range events {
		if _, err := tx.Exec(`
			INSERT INTO events (summary, starts_at, location, status)
			VALUES (?, ?, ?, ?)`,
			e.Summary, e.StartsAt, e.Location, e.Status); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// ListEvents returns all cached calendar events in poll order.
func (db *DB) ListEvents() ([]CalendarEvent, error) {
	rows, err := db.Query(`
		SELECT id, summary, starts_at, location, status
		FROM events
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		if err := rows.Scan(&e.ID, &e.Summary, &e.StartsAt, &e.Location, &e.Status); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
