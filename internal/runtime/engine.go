package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
	"github.com/aretw0/vivarium/pkg/registry"
	"github.com/aretw0/vivarium/pkg/store"
)

// Experiment owns one state tree and runs the processes installed in it.
// It is single threaded: no method may be called concurrently.
type Experiment struct {
	id           string
	description  string
	processes    domain.Processes
	topology     domain.Topology
	initialState map[string]any

	state     *store.Store
	emitter   ports.Emitter
	registry  *registry.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	localTime float64
}

// Option defines a functional option for configuring the Experiment.
type Option func(*Experiment)

// WithID sets the experiment id. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(e *Experiment) {
		e.id = id
	}
}

// WithDescription sets the free text description recorded in the
// configuration envelope.
func WithDescription(description string) Option {
	return func(e *Experiment) {
		e.description = description
	}
}

// WithInitialState seeds the tree before defaults are applied.
func WithInitialState(state map[string]any) Option {
	return func(e *Experiment) {
		e.initialState = state
	}
}

// WithEmitter sets the sink receiving configuration and history records.
func WithEmitter(emitter ports.Emitter) Option {
	return func(e *Experiment) {
		e.emitter = emitter
	}
}

// WithRegistry sets the registry resolving named updaters and dividers.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Experiment) {
		e.registry = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Experiment) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the experiment.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Experiment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New builds the state tree for processes wired by topology, adds the
// derivers each process declares, runs every deriver once so derived state
// is consistent, and emits the configuration record.
func New(processes domain.Processes, topology domain.Topology, opts ...Option) (*Experiment, error) {
	e := &Experiment{
		processes: processes,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	e.logger = e.logger.With("experiment_id", e.id)

	// Declared derivers join the blueprint; the returned topology is the
	// experiment's own copy, which later generated subtrees fold into.
	processes, topology, err := store.WithDerivers(processes, topology, e.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate derivers: %w", err)
	}
	e.processes = processes
	e.topology = topology.Clone()

	state, err := store.GenerateState(processes, topology, e.initialState,
		store.WithLogger(e.logger),
		store.WithRegistry(e.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	e.state = state

	for _, entry := range state.Processes() {
		if err := checkTimestep(entry); err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	if err := e.runDerivers(ctx); err != nil {
		return nil, fmt.Errorf("failed to run derivers: %w", err)
	}
	e.emitConfiguration(ctx)

	e.logger.Debug("experiment created", "processes", len(state.Processes()))
	return e, nil
}

// ID returns the experiment id.
func (e *Experiment) ID() string { return e.id }

// Time returns the simulated time reached so far.
func (e *Experiment) Time() float64 { return e.localTime }

// State returns the root of the state tree. Callers must not mutate it
// while the experiment runs.
func (e *Experiment) State() *store.Store { return e.state }

// Topology returns the current topology, including generated subtrees.
func (e *Experiment) Topology() domain.Topology { return e.topology }

// Processes returns the process blueprint the experiment was built from.
func (e *Experiment) Processes() domain.Processes { return e.processes }

func checkTimestep(entry store.Entry) error {
	p, _ := entry.Store.Process()
	if p.IsDeriver() {
		return nil
	}
	if ts := p.LocalTimestep(); !(ts > 0) {
		return fmt.Errorf("%w: process %s has timestep %v", domain.ErrInvalidTimestep, entry.Path.String(), ts)
	}
	return nil
}
