// Package spotcheck is the service layer: it wires the pure engine
// components to the stores, the event bus and the scheduler.
package spotcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/analysis"
	"github.com/colonyops/spotcheck/internal/core/engine"
	"github.com/colonyops/spotcheck/internal/core/eventbus"
	"github.com/colonyops/spotcheck/internal/core/ignore"
	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/outcome"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/threshold"
	"github.com/colonyops/spotcheck/internal/core/zone"
	"github.com/colonyops/spotcheck/pkg/randid"
)

// Reconciler executes one reconciliation pass per zone per cycle:
// preprocess detections, match against open tasks, apply the resulting
// mutations transactionally, record history and publish events.
type Reconciler struct {
	tasks      task.Store
	thresholds threshold.Store
	rules      ignore.Store
	outcomes   outcome.Store
	analyses   analysis.Store
	evaluator  *engine.Evaluator
	bus        *eventbus.EventBus
	log        zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewReconciler creates a reconciler over the given stores and bus.
func NewReconciler(
	tasks task.Store,
	thresholds threshold.Store,
	rules ignore.Store,
	outcomes outcome.Store,
	analyses analysis.Store,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		tasks:      tasks,
		thresholds: thresholds,
		rules:      rules,
		outcomes:   outcomes,
		analyses:   analyses,
		evaluator:  engine.NewEvaluator(),
		bus:        bus,
		log:        logging.Component(log, "reconciler"),
		now:        time.Now,
	}
}

// Run executes one pass for the zone. cleanliness is carried through
// from the vision collaborator (-1 when absent). A failure aborts this
// zone's cycle with no state mutation and is logged exactly once.
func (r *Reconciler) Run(ctx context.Context, z zone.Zone, detections []task.Detection, cleanliness float64) (task.AnalysisResult, error) {
	cycleID := randid.Generate(6)
	ctx = logging.WithZoneID(ctx, z.ID)
	ctx = logging.WithCycleID(ctx, cycleID)

	result, err := r.run(ctx, z, cycleID, detections, cleanliness)
	if err != nil {
		r.log.Error().Ctx(ctx).Err(err).Str("zone", z.Name).Msg("reconciliation cycle failed")
		return task.AnalysisResult{}, err
	}

	return result, nil
}

func (r *Reconciler) run(ctx context.Context, z zone.Zone, cycleID string, detections []task.Detection, cleanliness float64) (task.AnalysisResult, error) {
	start := r.now()

	ths, err := r.zoneThresholds(ctx, z.ID)
	if err != nil {
		return task.AnalysisResult{}, err
	}

	accepted, err := engine.Preprocess(detections, z.MaxTasksPerAnalysis)
	if err != nil {
		return task.AnalysisResult{}, fmt.Errorf("preprocess detections: %w", err)
	}

	accepted, err = r.applyIgnoreRules(ctx, z.ID, accepted)
	if err != nil {
		return task.AnalysisResult{}, err
	}

	open, err := r.tasks.ListOpen(ctx, z.ID)
	if err != nil {
		return task.AnalysisResult{}, fmt.Errorf("list open tasks: %w", err)
	}

	matched := engine.Match(accepted, open, ths.Similarity)

	now := r.now()
	plan, reinforcedTasks := r.buildPlan(z.ID, matched, open, ths.ResolutionFloor, now)

	if err := r.tasks.ApplyCycle(ctx, plan); err != nil {
		return task.AnalysisResult{}, err
	}

	r.recordOutcomes(ctx, z.ID, plan.Resolve)

	result := assembleResult(z.ID, cycleID, len(detections), plan, cleanliness, now, r.now().Sub(start))

	r.recordAnalysis(ctx, result)

	r.publish(plan, reinforcedTasks, matched, &result)

	r.log.Info().Ctx(ctx).
		Int("detected", result.Detected).
		Int("created", len(result.Created)).
		Int("reinforced", len(result.ReinforcedIDs)).
		Int("auto_completed", len(result.AutoCompleted)).
		Dur("duration", result.Duration).
		Msg("reconciliation cycle complete")

	return result, nil
}

// zoneThresholds loads the zone's thresholds, falling back to the base
// defaults when none are persisted.
func (r *Reconciler) zoneThresholds(ctx context.Context, zoneID string) (threshold.Thresholds, error) {
	ths, err := r.thresholds.Get(ctx, zoneID)
	if errors.Is(err, threshold.ErrNotFound) {
		return threshold.Defaults(zoneID), nil
	}
	if err != nil {
		return threshold.Thresholds{}, fmt.Errorf("load thresholds: %w", err)
	}
	return ths, nil
}

// applyIgnoreRules drops detections suppressed by the zone's enabled
// rules and bumps each firing rule's usage counter.
func (r *Reconciler) applyIgnoreRules(ctx context.Context, zoneID string, detections []task.Detection) ([]task.Detection, error) {
	rules, err := r.rules.ListEnabled(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("list ignore rules: %w", err)
	}
	if len(rules) == 0 {
		return detections, nil
	}

	kept := detections[:0]
	for _, d := range detections {
		suppressed := false
		for _, rule := range rules {
			if !rule.Matches(d.Description) {
				continue
			}
			suppressed = true
			if err := r.rules.IncrementUsage(ctx, rule.ID); err != nil {
				r.log.Warn().Ctx(ctx).Err(err).Str("rule_id", rule.ID).Msg("failed to bump rule usage")
			}
			r.log.Debug().Ctx(ctx).
				Str("rule_id", rule.ID).
				Str("description", d.Description).
				Msg("detection suppressed by ignore rule")
			break
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}

	return kept, nil
}

// buildPlan converts a match result into the cycle's transactional
// mutation plan. Returns the plan plus the post-reinforcement task
// values used for event payloads.
func (r *Reconciler) buildPlan(zoneID string, matched engine.MatchResult, open []task.Task, floor float64, now time.Time) (task.ApplyPlan, []task.Task) {
	var plan task.ApplyPlan

	for _, d := range matched.New {
		spec := engine.Specificity(d.Description)
		plan.Create = append(plan.Create, task.Task{
			ZoneID:           zoneID,
			Description:      d.Description,
			Status:           task.StatusPending,
			ConfidenceScore:  d.Confidence * (0.8 + 0.2*spec),
			Priority:         engine.Priority(d.Description),
			EstimatedMinutes: engine.EstimateDuration(d.Description),
			DetectionCount:   1,
			CreatedAt:        now,
			LastDetectedAt:   now,
		})
	}

	openByID := make(map[string]task.Task, len(open))
	for _, t := range open {
		openByID[t.ID] = t
	}

	reinforcedTasks := make([]task.Task, 0, len(matched.Reinforced))
	for _, a := range matched.Reinforced {
		prev := openByID[a.TaskID]
		newConf := 0.7*prev.ConfidenceScore + 0.3*a.Detection.Confidence
		plan.Reinforce = append(plan.Reinforce, task.Reinforcement{
			ID:            a.TaskID,
			NewConfidence: newConf,
			DetectedAt:    now,
		})

		prev.ConfidenceScore = newConf
		prev.DetectionCount++
		prev.LastDetectedAt = now
		reinforcedTasks = append(reinforcedTasks, prev)
	}

	currentDescs := make([]string, len(matched.New)+len(matched.Reinforced))
	for i, d := range matched.New {
		currentDescs[i] = d.Description
	}
	for i, a := range matched.Reinforced {
		currentDescs[len(matched.New)+i] = a.Detection.Description
	}

	for i := range matched.UnmatchedOpen {
		t := matched.UnmatchedOpen[i]
		eval := r.evaluator.Evaluate(&t, currentDescs, floor, now)
		if !eval.MeetsFloor {
			continue
		}
		plan.Resolve = append(plan.Resolve, task.Resolution{
			ID:         t.ID,
			Confidence: eval.Confidence,
			Reason:     eval.Reason,
			ResolvedAt: now,
		})
	}

	return plan, reinforcedTasks
}

// recordOutcomes writes one outcome row per auto-completion for the
// threshold adaptor. A failed outcome write is logged, not fatal: the
// completion itself already committed.
func (r *Reconciler) recordOutcomes(ctx context.Context, zoneID string, resolutions []task.Resolution) {
	for _, res := range resolutions {
		rec := outcome.Record{
			ZoneID:     zoneID,
			TaskID:     res.ID,
			Confidence: res.Confidence,
			Reason:     res.Reason,
			CreatedAt:  res.ResolvedAt,
		}
		if err := r.outcomes.Create(ctx, &rec); err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Str("task_id", res.ID).Msg("failed to record outcome")
		}
	}
}

// recordAnalysis writes the cycle's history row. Like outcome rows it
// is written after the task mutations committed, so a failure here is
// logged, not fatal: the cycle itself succeeded.
func (r *Reconciler) recordAnalysis(ctx context.Context, result task.AnalysisResult) {
	rec := analysis.Record{
		ZoneID:           result.ZoneID,
		CycleID:          result.CycleID,
		Detected:         result.Detected,
		Created:          len(result.Created),
		Reinforced:       len(result.ReinforcedIDs),
		AutoCompleted:    len(result.AutoCompleted),
		CleanlinessScore: result.CleanlinessScore,
		Duration:         result.Duration,
		CreatedAt:        result.RanAt,
	}
	if err := r.analyses.Create(ctx, &rec); err != nil {
		r.log.Warn().Ctx(ctx).Err(err).Str("cycle_id", result.CycleID).Msg("failed to record analysis history")
	}
}

// publish emits events only after every mutation has committed.
func (r *Reconciler) publish(plan task.ApplyPlan, reinforced []task.Task, matched engine.MatchResult, result *task.AnalysisResult) {
	if r.bus == nil {
		return
	}

	for i := range plan.Create {
		r.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: &plan.Create[i]})
	}
	for i := range reinforced {
		r.bus.PublishTaskReinforced(eventbus.TaskReinforcedPayload{
			Task:  &reinforced[i],
			Score: matched.Reinforced[i].Score,
		})
	}
	for _, res := range plan.Resolve {
		t := taskForResolution(matched.UnmatchedOpen, res)
		r.bus.PublishTaskAutoCompleted(eventbus.TaskAutoCompletedPayload{
			Task:       t,
			Confidence: res.Confidence,
			Reason:     res.Reason,
		})
	}
	r.bus.PublishAnalysisCompleted(eventbus.AnalysisCompletedPayload{Result: result})
}

func taskForResolution(unmatched []task.Task, res task.Resolution) *task.Task {
	for i := range unmatched {
		if unmatched[i].ID == res.ID {
			t := unmatched[i]
			t.Status = task.StatusAutoCompleted
			t.CompletionReason = res.Reason
			t.CompletionConfidence = res.Confidence
			t.CompletedAt = &res.ResolvedAt
			return &t
		}
	}
	return nil
}

func assembleResult(zoneID, cycleID string, detected int, plan task.ApplyPlan, cleanliness float64, ranAt time.Time, duration time.Duration) task.AnalysisResult {
	result := task.AnalysisResult{
		ZoneID:           zoneID,
		CycleID:          cycleID,
		RanAt:            ranAt,
		Detected:         detected,
		AutoCompleted:    plan.Resolve,
		CleanlinessScore: cleanliness,
		Duration:         duration,
	}
	for _, t := range plan.Create {
		result.Created = append(result.Created, task.CreatedTask{ID: t.ID, Description: t.Description})
	}
	for _, rf := range plan.Reinforce {
		result.ReinforcedIDs = append(result.ReinforcedIDs, rf.ID)
	}
	return result
}
