package spotcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/outcome"
	"github.com/colonyops/spotcheck/internal/core/task"
)

// TaskService handles user-driven task operations.
type TaskService struct {
	tasks    task.Store
	outcomes outcome.Store
	bus      *eventbus.EventBus
	log      zerolog.Logger
}

// NewTaskService creates a task service.
func NewTaskService(tasks task.Store, outcomes outcome.Store, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:    tasks,
		outcomes: outcomes,
		bus:      bus,
		log:      logging.Component(log, "tasks"),
	}
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (task.Task, error) {
	return s.tasks.Get(ctx, id)
}

// List returns tasks matching the filter.
func (s *TaskService) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Complete marks a pending task as completed by the user.
func (s *TaskService) Complete(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, task.StatusCompleted)
}

// Ignore marks a pending task as ignored.
func (s *TaskService) Ignore(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, task.StatusIgnored)
}

// Cancel marks a pending task as cancelled.
func (s *TaskService) Cancel(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, task.StatusCancelled)
}

func (s *TaskService) setStatus(ctx context.Context, id string, status task.Status) error {
	if err := s.tasks.SetStatus(ctx, id, status, time.Now()); err != nil {
		return fmt.Errorf("set task %s to %s: %w", id, status, err)
	}

	s.log.Info().Str("task_id", id).Str("status", string(status)).Msg("task status updated")
	return nil
}

// Reopen returns an auto_completed task to pending and marks its
// outcome reverted so the threshold adaptor learns the completion was
// wrong.
func (s *TaskService) Reopen(ctx context.Context, id string) error {
	if err := s.tasks.Reopen(ctx, id); err != nil {
		return fmt.Errorf("reopen task %s: %w", id, err)
	}

	now := time.Now()
	if err := s.outcomes.MarkReverted(ctx, id, now); err != nil {
		// Tasks auto-completed before outcome tracking existed have no
		// record to flip.
		if !errors.Is(err, outcome.ErrNotFound) {
			return fmt.Errorf("mark outcome reverted for task %s: %w", id, err)
		}
		s.log.Warn().Str("task_id", id).Msg("reopened task has no outcome record")
	}

	s.log.Info().Str("task_id", id).Msg("task reopened")

	if s.bus != nil {
		if t, err := s.tasks.Get(ctx, id); err == nil {
			s.bus.PublishTaskReopened(eventbus.TaskReopenedPayload{Task: &t})
		}
	}

	return nil
}
