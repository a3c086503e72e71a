package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/notify"
	"github.com/colonyops/spotcheck/internal/data/db"
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db *db.DB
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store.
func NewNotifyStore(db *db.DB) *NotifyStore {
	return &NotifyStore{db: db}
}

// Save persists a notification and returns its auto-generated ID.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	res, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO notifications (zone_id, level, message, created_at) VALUES (?, ?, ?, ?)`,
		n.ZoneID, string(n.Level), n.Message, n.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// List returns all notifications ordered by newest first.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Notification, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, zone_id, level, message, created_at
		 FROM notifications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []notify.Notification
	for rows.Next() {
		var n notify.Notification
		var level string
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.ZoneID, &level, &n.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Level = notify.Level(level)
		n.CreatedAt = time.Unix(0, createdAt)
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return result, nil
}

// Clear deletes all notifications.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
