package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/data/db"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskColumns = `id, zone_id, description, status, confidence_score, priority,
	estimated_minutes, detection_count, completion_reason, completion_confidence,
	created_at, last_detected_at, completed_at`

// Create persists a new task. Generates an ID and timestamps if not set.
func (s *TaskStore) Create(ctx context.Context, t *task.Task) error {
	prepareTask(t)

	if err := insertTask(ctx, s.db.Conn(), *t); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Get returns a single task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if IsNotFoundError(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks matching the filter, ordered by created_at DESC.
func (s *TaskStore) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	var where []string

	if filter.ZoneID != "" {
		where = append(where, "zone_id = ?")
		args = append(args, filter.ZoneID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ListOpen returns the zone's pending tasks, oldest first.
func (s *TaskStore) ListOpen(ctx context.Context, zoneID string) ([]task.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE zone_id = ? AND status = ?
		 ORDER BY created_at ASC`, zoneID, string(task.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ApplyCycle applies one cycle's mutations in a single transaction.
// Any reinforcement or resolution that targets a non-pending task rolls
// the whole plan back.
func (s *TaskStore) ApplyCycle(ctx context.Context, plan task.ApplyPlan) error {
	if plan.Empty() {
		return nil
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range plan.Create {
			prepareTask(&plan.Create[i])
			if err := insertTask(ctx, tx, plan.Create[i]); err != nil {
				return fmt.Errorf("create task: %w", err)
			}
		}

		for _, r := range plan.Reinforce {
			res, err := tx.ExecContext(ctx,
				`UPDATE tasks
				 SET confidence_score = ?, detection_count = detection_count + 1, last_detected_at = ?
				 WHERE id = ? AND status = ?`,
				r.NewConfidence, r.DetectedAt.UnixNano(), r.ID, string(task.StatusPending))
			if err != nil {
				return fmt.Errorf("reinforce task: %w", err)
			}
			if err := requirePendingRow(ctx, tx, res, r.ID); err != nil {
				return err
			}
		}

		for _, r := range plan.Resolve {
			res, err := tx.ExecContext(ctx,
				`UPDATE tasks
				 SET status = ?, completion_reason = ?, completion_confidence = ?, completed_at = ?
				 WHERE id = ? AND status = ?`,
				string(task.StatusAutoCompleted), r.Reason, r.Confidence,
				r.ResolvedAt.UnixNano(), r.ID, string(task.StatusPending))
			if err != nil {
				return fmt.Errorf("resolve task: %w", err)
			}
			if err := requirePendingRow(ctx, tx, res, r.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("apply cycle: %w", err)
	}
	return nil
}

// SetStatus applies a user-driven transition out of pending.
func (s *TaskStore) SetStatus(ctx context.Context, id string, status task.Status, at time.Time) error {
	if !status.IsValid() || !status.Terminal() {
		return fmt.Errorf("%w: cannot set status %q", task.ErrInvalidInput, status)
	}

	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), at.UnixNano(), id, string(task.StatusPending))
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set task status: %w", err)
	}
	if n == 0 {
		return s.classifyMiss(ctx, id)
	}
	return nil
}

// Reopen returns an auto_completed task to pending, clearing its
// completion fields.
func (s *TaskStore) Reopen(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE tasks
		 SET status = ?, completion_reason = NULL, completion_confidence = NULL, completed_at = NULL
		 WHERE id = ? AND status = ?`,
		string(task.StatusPending), id, string(task.StatusAutoCompleted))
	if err != nil {
		return fmt.Errorf("reopen task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reopen task: %w", err)
	}
	if n == 0 {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		return task.ErrTerminalStatus
	}
	return nil
}

// CountByStatus returns task counts per status for a zone.
func (s *TaskStore) CountByStatus(ctx context.Context, zoneID string) (map[task.Status]int64, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE zone_id = ? GROUP BY status`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[task.Status]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan task count: %w", err)
		}
		counts[task.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	return counts, nil
}

// OldestPending returns the zone's oldest pending task.
func (s *TaskStore) OldestPending(ctx context.Context, zoneID string) (task.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE zone_id = ? AND status = ?
		 ORDER BY created_at ASC LIMIT 1`, zoneID, string(task.StatusPending))

	t, err := scanTask(row)
	if IsNotFoundError(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("oldest pending task: %w", err)
	}
	return t, nil
}

// classifyMiss distinguishes a missing task from a terminal one after a
// pending-guarded update touched zero rows.
func (s *TaskStore) classifyMiss(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return task.ErrTerminalStatus
}

func prepareTask(t *task.Task) {
	if t.ID == "" {
		t.ID = randid.Generate(8)
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.LastDetectedAt.IsZero() {
		t.LastDetectedAt = t.CreatedAt
	}
	if t.Status == "" {
		t.Status = task.StatusPending
	}
	if t.DetectionCount == 0 {
		t.DetectionCount = 1
	}
}

// execer is the subset of *sql.DB and *sql.Tx the insert helper needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, e execer, t task.Task) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ZoneID, t.Description, string(t.Status), t.ConfidenceScore,
		t.Priority, t.EstimatedMinutes, t.DetectionCount,
		toNullString(t.CompletionReason), toNullFloat(t.CompletionConfidence),
		t.CreatedAt.UnixNano(), t.LastDetectedAt.UnixNano(), toNullTimeNs(t.CompletedAt))
	return err
}

func requirePendingRow(ctx context.Context, tx *sql.Tx, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", id, task.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check task %s: %w", id, err)
	}
	return fmt.Errorf("task %s: %w", id, task.ErrTerminalStatus)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var status string
	var reason sql.NullString
	var completionConf sql.NullFloat64
	var createdAt, lastDetectedAt int64
	var completedAt sql.NullInt64

	err := row.Scan(&t.ID, &t.ZoneID, &t.Description, &status, &t.ConfidenceScore,
		&t.Priority, &t.EstimatedMinutes, &t.DetectionCount,
		&reason, &completionConf, &createdAt, &lastDetectedAt, &completedAt)
	if err != nil {
		return task.Task{}, err
	}

	t.Status = task.Status(status)
	t.CompletionReason = fromNullString(reason)
	t.CompletionConfidence = fromNullFloat(completionConf)
	t.CreatedAt = time.Unix(0, createdAt)
	t.LastDetectedAt = time.Unix(0, lastDetectedAt)
	t.CompletedAt = fromNullTimeNs(completedAt)
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]task.Task, error) {
	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}
