package vivarium

import (
	"context"
	"log/slog"

	"github.com/aretw0/vivarium/internal/runtime"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
	"github.com/aretw0/vivarium/pkg/registry"
	"github.com/aretw0/vivarium/pkg/store"
)

// Experiment is the high-level entry point for the Vivarium library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Experiment struct {
	runtime *runtime.Experiment
}

type config struct {
	runtimeOpts []runtime.Option
	logger      *slog.Logger
	name        string
}

// Option defines a functional option for configuring the Experiment.
type Option func(*config)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithEmitter sets the sink receiving configuration and history records.
func WithEmitter(emitter ports.Emitter) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithEmitter(emitter))
	}
}

// WithRegistry sets the registry resolving named updaters and dividers.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithRegistry(r))
	}
}

// WithInitialState seeds the state tree before defaults are applied.
func WithInitialState(state map[string]any) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithInitialState(state))
	}
}

// WithID sets the experiment id (default: a random UUID).
func WithID(id string) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithID(id))
	}
}

// WithDescription sets the description recorded in the configuration record.
func WithDescription(description string) Option {
	return func(c *config) {
		c.runtimeOpts = append(c.runtimeOpts, runtime.WithDescription(description))
	}
}

// WithName labels the experiment in log records.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets a custom structured logger for the experiment.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New builds the state tree for processes wired by topology and emits the
// configuration record.
func New(processes domain.Processes, topology domain.Topology, opts ...Option) (*Experiment, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	runtimeOpts := c.runtimeOpts
	if c.logger != nil {
		logger := c.logger
		// Enrich logger with the experiment name if available
		if c.name != "" {
			logger = logger.With("experiment", c.name)
		}
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(logger))
	}

	rt, err := runtime.New(processes, topology, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	return &Experiment{runtime: rt}, nil
}

// Update advances the experiment by one tick of timestep.
func (e *Experiment) Update(ctx context.Context, timestep float64) error {
	return e.runtime.Update(ctx, timestep)
}

// UpdateInterval runs ticks of interval until the experiment time reaches until.
func (e *Experiment) UpdateInterval(ctx context.Context, until, interval float64) error {
	return e.runtime.UpdateInterval(ctx, until, interval)
}

// ID returns the experiment id.
func (e *Experiment) ID() string { return e.runtime.ID() }

// Time returns the simulated time reached so far.
func (e *Experiment) Time() float64 { return e.runtime.Time() }

// State returns the root of the state tree.
func (e *Experiment) State() *store.Store { return e.runtime.State() }

// Topology returns the current topology, including generated subtrees.
func (e *Experiment) Topology() domain.Topology { return e.runtime.Topology() }
