package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteDeliveryStore is a DeliveryStore backed by SQLite.
type SQLiteDeliveryStore struct {
	db *sql.DB
}

// NewSQLiteDeliveryStore creates a delivery store using the given database.
func NewSQLiteDeliveryStore(db *sql.DB) *SQLiteDeliveryStore {
	return &SQLiteDeliveryStore{db: db}
}

func (s *SQLiteDeliveryStore) Record(ctx context.Context, entry DeliveryLogEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_log (event_id, event_type, listener_id, kind, status, attempts, error_msg, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID,
		entry.EventType,
		entry.ListenerID,
		entry.Kind,
		entry.Status,
		entry.Attempts,
		entry.ErrorMsg,
		entry.DurationMS,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting delivery log entry: %w", err)
	}
	return nil
}

func (s *SQLiteDeliveryStore) List(ctx context.Context, limit int) ([]DeliveryLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, event_type, listener_id, kind, status, attempts, error_msg, duration_ms, created_at
		FROM delivery_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (s *SQLiteDeliveryStore) ListByEvent(ctx context.Context, eventID string) ([]DeliveryLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, event_type, listener_id, kind, status, attempts, error_msg, duration_ms, created_at
		FROM delivery_log
		WHERE event_id = ?
		ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("querying delivery log for event %s: %w", eventID, err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func (s *SQLiteDeliveryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM delivery_log WHERE created_at < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning delivery log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]DeliveryLogEntry, error) {
	var entries []DeliveryLogEntry
	for rows.Next() {
		var e DeliveryLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.EventType,
			&e.ListenerID,
			&e.Kind,
			&e.Status,
			&e.Attempts,
			&e.ErrorMsg,
			&e.DurationMS,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning delivery log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating delivery log rows: %w", err)
	}
	return entries, nil
}
