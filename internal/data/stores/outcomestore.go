package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/outcome"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// OutcomeStore implements outcome.Store using SQLite.
type OutcomeStore struct {
	db *db.DB
}

var _ outcome.Store = (*OutcomeStore)(nil)

// NewOutcomeStore creates a new SQLite-backed outcome store.
func NewOutcomeStore(db *db.DB) *OutcomeStore {
	return &OutcomeStore{db: db}
}

// Create persists a new outcome record. Generates an ID if not set.
func (s *OutcomeStore) Create(ctx context.Context, r *outcome.Record) error {
	if r.ID == "" {
		r.ID = randid.Generate(8)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO outcomes (id, zone_id, task_id, confidence, reason, reverted, reverted_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ZoneID, r.TaskID, r.Confidence, r.Reason,
		boolToInt(r.Reverted), toNullTimeNs(r.RevertedAt), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("create outcome: %w", err)
	}

	return nil
}

// ListSince returns a zone's outcomes created at or after the cutoff,
// oldest first.
func (s *OutcomeStore) ListSince(ctx context.Context, zoneID string, cutoff time.Time) ([]outcome.Record, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, zone_id, task_id, confidence, reason, reverted, reverted_at, created_at
		 FROM outcomes
		 WHERE zone_id = ? AND created_at >= ?
		 ORDER BY created_at ASC`, zoneID, cutoff.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []outcome.Record
	for rows.Next() {
		r, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return records, nil
}

// MarkReverted flips the reverted flag on the task's latest outcome.
func (s *OutcomeStore) MarkReverted(ctx context.Context, taskID string, at time.Time) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE outcomes SET reverted = 1, reverted_at = ?
		 WHERE id = (
			SELECT id FROM outcomes WHERE task_id = ? ORDER BY created_at DESC LIMIT 1
		 )`, at.UnixNano(), taskID)
	if err != nil {
		return fmt.Errorf("mark outcome reverted: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outcome reverted: %w", err)
	}
	if n == 0 {
		return outcome.ErrNotFound
	}
	return nil
}

func scanOutcome(row rowScanner) (outcome.Record, error) {
	var r outcome.Record
	var reverted int64
	var revertedAt sql.NullInt64
	var createdAt int64

	err := row.Scan(&r.ID, &r.ZoneID, &r.TaskID, &r.Confidence, &r.Reason,
		&reverted, &revertedAt, &createdAt)
	if err != nil {
		return outcome.Record{}, err
	}

	r.Reverted = reverted != 0
	r.RevertedAt = fromNullTimeNs(revertedAt)
	r.CreatedAt = time.Unix(0, createdAt)
	return r, nil
}
