package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventProcessUpdate EventType = "process_update"
	EventBatchApplied  EventType = "batch_applied"
	EventTick          EventType = "tick"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	ExperimentID string    `json:"experiment_id"`
}

// ProcessEvent is raised every time a process computes an update.
type ProcessEvent struct {
	EventBase
	Path     Path    `json:"path"`
	Time     float64 `json:"time"`
	Interval float64 `json:"interval"`
	Deriver  bool    `json:"deriver,omitempty"`
}

// BatchEvent is raised after a batch of updates has been applied.
type BatchEvent struct {
	EventBase
	Horizon float64 `json:"horizon"`
	Size    int     `json:"size"`
}

// TickEvent is raised when a call to Update completes.
type TickEvent struct {
	EventBase
	Time     float64       `json:"time"`
	Timestep float64       `json:"timestep"`
	Rounds   int           `json:"rounds"`
	Elapsed  time.Duration `json:"elapsed"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnProcessUpdate func(context.Context, *ProcessEvent)
	OnBatchApplied  func(context.Context, *BatchEvent)
	OnTick          func(context.Context, *TickEvent)
}

// Join returns hooks calling every non-nil callback of each argument in order.
func Join(hooks ...LifecycleHooks) LifecycleHooks {
	var joined LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnProcessUpdate != nil {
			prev := joined.OnProcessUpdate
			joined.OnProcessUpdate = func(ctx context.Context, e *ProcessEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnProcessUpdate(ctx, e)
			}
		}
		if h.OnBatchApplied != nil {
			prev := joined.OnBatchApplied
			joined.OnBatchApplied = func(ctx context.Context, e *BatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnBatchApplied(ctx, e)
			}
		}
		if h.OnTick != nil {
			prev := joined.OnTick
			joined.OnTick = func(ctx context.Context, e *TickEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTick(ctx, e)
			}
		}
	}
	return joined
}
