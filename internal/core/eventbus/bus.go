package eventbus

import (
	"context"
	"sync"
)

// envelope carries one published event through the buffer.
type envelope struct {
	event   Event
	payload any
}

// EventBus is a buffered, typed publish/subscribe bus. Publishing never
// blocks: when the buffer is full the event is dropped and the OnDrop
// hooks fire. Subscribers run sequentially on the Start goroutine; a
// panicking subscriber is isolated and reported via OnPanic.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu                     sync.RWMutex
	taskCreatedSubs        []func(TaskCreatedPayload)
	taskReinforcedSubs     []func(TaskReinforcedPayload)
	taskAutoCompletedSubs  []func(TaskAutoCompletedPayload)
	taskReopenedSubs       []func(TaskReopenedPayload)
	analysisCompletedSubs  []func(AnalysisCompletedPayload)
	thresholdsAdjustedSubs []func(ThresholdsAdjustedPayload)
}

// New creates an event bus with the given buffer size.
func New(size int) *EventBus {
	return &EventBus{ch: make(chan envelope, size)}
}

// Start dispatches events to subscribers until the context is
// cancelled. It blocks; run it in a goroutine.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	switch env.event {
	case EventTaskCreated:
		p := env.payload.(TaskCreatedPayload)
		for _, fn := range bus.taskCreatedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	case EventTaskReinforced:
		p := env.payload.(TaskReinforcedPayload)
		for _, fn := range bus.taskReinforcedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	case EventTaskAutoCompleted:
		p := env.payload.(TaskAutoCompletedPayload)
		for _, fn := range bus.taskAutoCompletedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	case EventTaskReopened:
		p := env.payload.(TaskReopenedPayload)
		for _, fn := range bus.taskReopenedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	case EventAnalysisCompleted:
		p := env.payload.(AnalysisCompletedPayload)
		for _, fn := range bus.analysisCompletedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	case EventThresholdsAdjusted:
		p := env.payload.(ThresholdsAdjustedPayload)
		for _, fn := range bus.thresholdsAdjustedSnapshot() {
			bus.invoke(env, func() { fn(p) })
		}
	}
}

// invoke runs one subscriber with panic isolation.
func (bus *EventBus) invoke(env envelope, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn()
}

// PublishTaskCreated publishes a task.created event.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) {
	bus.send(EventTaskCreated, p)
}

// PublishTaskReinforced publishes a task.reinforced event.
func (bus *EventBus) PublishTaskReinforced(p TaskReinforcedPayload) {
	bus.send(EventTaskReinforced, p)
}

// PublishTaskAutoCompleted publishes a task.auto-completed event.
func (bus *EventBus) PublishTaskAutoCompleted(p TaskAutoCompletedPayload) {
	bus.send(EventTaskAutoCompleted, p)
}

// PublishTaskReopened publishes a task.reopened event.
func (bus *EventBus) PublishTaskReopened(p TaskReopenedPayload) {
	bus.send(EventTaskReopened, p)
}

// PublishAnalysisCompleted publishes an analysis.completed event.
func (bus *EventBus) PublishAnalysisCompleted(p AnalysisCompletedPayload) {
	bus.send(EventAnalysisCompleted, p)
}

// PublishThresholdsAdjusted publishes a thresholds.adjusted event.
func (bus *EventBus) PublishThresholdsAdjusted(p ThresholdsAdjustedPayload) {
	bus.send(EventThresholdsAdjusted, p)
}

// SubscribeTaskCreated registers a subscriber for task.created events.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.mu.Lock()
	bus.taskCreatedSubs = append(bus.taskCreatedSubs, fn)
	bus.mu.Unlock()
}

// SubscribeTaskReinforced registers a subscriber for task.reinforced events.
func (bus *EventBus) SubscribeTaskReinforced(fn func(TaskReinforcedPayload)) {
	bus.mu.Lock()
	bus.taskReinforcedSubs = append(bus.taskReinforcedSubs, fn)
	bus.mu.Unlock()
}

// SubscribeTaskAutoCompleted registers a subscriber for task.auto-completed events.
func (bus *EventBus) SubscribeTaskAutoCompleted(fn func(TaskAutoCompletedPayload)) {
	bus.mu.Lock()
	bus.taskAutoCompletedSubs = append(bus.taskAutoCompletedSubs, fn)
	bus.mu.Unlock()
}

// SubscribeTaskReopened registers a subscriber for task.reopened events.
func (bus *EventBus) SubscribeTaskReopened(fn func(TaskReopenedPayload)) {
	bus.mu.Lock()
	bus.taskReopenedSubs = append(bus.taskReopenedSubs, fn)
	bus.mu.Unlock()
}

// SubscribeAnalysisCompleted registers a subscriber for analysis.completed events.
func (bus *EventBus) SubscribeAnalysisCompleted(fn func(AnalysisCompletedPayload)) {
	bus.mu.Lock()
	bus.analysisCompletedSubs = append(bus.analysisCompletedSubs, fn)
	bus.mu.Unlock()
}

// SubscribeThresholdsAdjusted registers a subscriber for thresholds.adjusted events.
func (bus *EventBus) SubscribeThresholdsAdjusted(fn func(ThresholdsAdjustedPayload)) {
	bus.mu.Lock()
	bus.thresholdsAdjustedSubs = append(bus.thresholdsAdjustedSubs, fn)
	bus.mu.Unlock()
}

func (bus *EventBus) taskCreatedSnapshot() []func(TaskCreatedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(TaskCreatedPayload){}, bus.taskCreatedSubs...)
}

func (bus *EventBus) taskReinforcedSnapshot() []func(TaskReinforcedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(TaskReinforcedPayload){}, bus.taskReinforcedSubs...)
}

func (bus *EventBus) taskAutoCompletedSnapshot() []func(TaskAutoCompletedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(TaskAutoCompletedPayload){}, bus.taskAutoCompletedSubs...)
}

func (bus *EventBus) taskReopenedSnapshot() []func(TaskReopenedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(TaskReopenedPayload){}, bus.taskReopenedSubs...)
}

func (bus *EventBus) analysisCompletedSnapshot() []func(AnalysisCompletedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(AnalysisCompletedPayload){}, bus.analysisCompletedSubs...)
}

func (bus *EventBus) thresholdsAdjustedSnapshot() []func(ThresholdsAdjustedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return append([]func(ThresholdsAdjustedPayload){}, bus.thresholdsAdjustedSubs...)
}
