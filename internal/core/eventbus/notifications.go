package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/notify"
)

// NotificationRouter maps domain events to notification outbox records.
// The external notification collaborator drains the store; spotcheck
// itself never formats user-facing messages beyond these summaries.
type NotificationRouter struct {
	bus   *EventBus
	store notify.Store
	log   zerolog.Logger
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus, store notify.Store, log zerolog.Logger) *NotificationRouter {
	return &NotificationRouter{
		bus:   bus,
		store: store,
		log:   logging.Component(log, "notification-router"),
	}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTaskCreated(func(p TaskCreatedPayload) {
		if p.Task == nil {
			return
		}
		r.notifyf(p.Task.ZoneID, notify.LevelInfo, "new task detected: %s", p.Task.Description)
	})

	r.bus.SubscribeTaskAutoCompleted(func(p TaskAutoCompletedPayload) {
		if p.Task == nil {
			return
		}
		r.notifyf(p.Task.ZoneID, notify.LevelInfo, "task auto-completed (%s): %s", p.Reason, p.Task.Description)
	})

	r.bus.SubscribeTaskReopened(func(p TaskReopenedPayload) {
		if p.Task == nil {
			return
		}
		r.notifyf(p.Task.ZoneID, notify.LevelWarning, "auto-completion reverted: %s", p.Task.Description)
	})

	r.bus.SubscribeAnalysisCompleted(func(p AnalysisCompletedPayload) {
		if p.Result == nil {
			return
		}
		r.notifyf(p.Result.ZoneID, notify.LevelInfo,
			"analysis complete: %d detected, %d new, %d reinforced, %d auto-completed",
			p.Result.Detected, len(p.Result.Created), len(p.Result.ReinforcedIDs), len(p.Result.AutoCompleted))
	})

	r.bus.SubscribeThresholdsAdjusted(func(p ThresholdsAdjustedPayload) {
		r.notifyf(p.Thresholds.ZoneID, notify.LevelInfo,
			"thresholds adjusted: similarity %.2f, resolution floor %.2f",
			p.Thresholds.Similarity, p.Thresholds.ResolutionFloor)
	})
}

func (r *NotificationRouter) notifyf(zoneID string, level notify.Level, format string, args ...any) {
	n := notify.Notification{
		ZoneID:    zoneID,
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: time.Now(),
	}

	if _, err := r.store.Save(context.Background(), n); err != nil {
		r.log.Error().Err(err).Str("zone_id", zoneID).Msg("save notification")
	}
}
