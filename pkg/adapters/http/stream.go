package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/domain"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections. Subscribers are keyed by
// experiment id; the empty id receives every experiment.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{}
	buffer      int
	logger      *slog.Logger
}

// StreamOption configures a StreamManager.
type StreamOption func(*StreamManager)

// WithBuffer sets the per-subscriber channel size.
func WithBuffer(n int) StreamOption {
	return func(sm *StreamManager) {
		if n > 0 {
			sm.buffer = n
		}
	}
}

// WithStreamLogger sets the logger used for dropped messages.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(sm *StreamManager) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

func NewStreamManager(opts ...StreamOption) *StreamManager {
	sm := &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		buffer:      10,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Subscribe registers a channel for experimentID and returns it with the
// function that unregisters and closes it.
func (sm *StreamManager) Subscribe(experimentID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, sm.buffer)
	if _, ok := sm.subscribers[experimentID]; !ok {
		sm.subscribers[experimentID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[experimentID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[experimentID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, experimentID)
				}
			}
		})
	}
}

// Subscribers returns the number of channels listening to experimentID.
func (sm *StreamManager) Subscribers(experimentID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[experimentID])
}

// Broadcast sends event to the subscribers of experimentID and to the
// wildcard subscribers. Slow clients lose the event instead of blocking.
func (sm *StreamManager) Broadcast(experimentID string, event Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("broadcasting event", "experiment_id", experimentID, "event", event.Name, "payload_size", len(event.Data))

	targets := []string{experimentID}
	if experimentID != "" {
		targets = append(targets, "")
	}
	for _, id := range targets {
		for ch := range sm.subscribers[id] {
			select {
			case ch <- event:
			default:
				sm.logger.Warn("sse client buffer full, dropping event", "experiment_id", experimentID, "event", event.Name)
			}
		}
	}
}

// Emit broadcasts the envelope data, named after its table.
func (sm *StreamManager) Emit(ctx context.Context, envelope domain.Envelope) error {
	payload, err := json.Marshal(envelope.Data)
	if err != nil {
		return err
	}
	sm.Broadcast(envelope.ExperimentID, Event{Name: string(envelope.Table), Data: string(payload)})
	return nil
}
