package ports

import (
	"context"
	"errors"

	"github.com/aretw0/vivarium/pkg/domain"
)

// Emitter is a sink for experiment records.
// Implementations must not retain envelope.Data beyond the call unless they
// copy it; the engine hands over fresh maps but callers of Emit may not.
type Emitter interface {
	Emit(ctx context.Context, envelope domain.Envelope) error
}

// HistorySource reads back the records an emitter stored.
type HistorySource interface {
	// Configuration returns the data of the configuration envelope.
	// Returns domain.ErrNoConfiguration if none was emitted.
	Configuration(ctx context.Context) (map[string]any, error)

	// History returns the data of every history envelope in emission order.
	History(ctx context.Context) ([]map[string]any, error)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, envelope domain.Envelope) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, envelope domain.Envelope) error {
	return f(ctx, envelope)
}

// Tee returns an Emitter forwarding every envelope to each of emitters in
// order. All of them are called; their errors are joined.
func Tee(emitters ...Emitter) Emitter {
	return EmitterFunc(func(ctx context.Context, envelope domain.Envelope) error {
		var errs []error
		for _, e := range emitters {
			if e == nil {
				continue
			}
			if err := e.Emit(ctx, envelope); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
