package memory

import (
	"context"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
)

// Emitter keeps every record in memory and serves them back as history or
// aligned time series. Safe for concurrent use.
type Emitter struct {
	mu            sync.RWMutex
	configuration map[string]any
	history       []map[string]any
}

// NewEmitter creates an empty in-memory emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Emit stores a deep copy of the envelope data.
func (e *Emitter) Emit(ctx context.Context, envelope domain.Envelope) error {
	data, _ := deepcopy.Copy(envelope.Data).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch envelope.Table {
	case domain.TableConfiguration:
		e.configuration = data
	case domain.TableHistory:
		e.history = append(e.history, data)
	}
	return nil
}

// Configuration returns the configuration record.
func (e *Emitter) Configuration(ctx context.Context) (map[string]any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.configuration == nil {
		return nil, domain.ErrNoConfiguration
	}
	return deepcopy.Copy(e.configuration).(map[string]any), nil
}

// History returns a copy of every history record in emission order.
func (e *Emitter) History(ctx context.Context) ([]map[string]any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]map[string]any, len(e.history))
	for i, record := range e.history {
		out[i] = deepcopy.Copy(record).(map[string]any)
	}
	return out, nil
}

// Timeseries returns the history as one nested series per leaf.
func (e *Emitter) Timeseries() map[string]any {
	history, _ := e.History(context.Background())
	return Timeseries(history)
}

// PathTimeseries returns the history as one series per slash separated leaf
// path.
func (e *Emitter) PathTimeseries() map[string][]any {
	history, _ := e.History(context.Background())
	return PathTimeseries(history)
}

// Null drops everything.
type Null struct{}

// NewNull creates an emitter that discards every record.
func NewNull() Null { return Null{} }

// Emit does nothing.
func (Null) Emit(context.Context, domain.Envelope) error { return nil }
