package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/vivarium"
	"github.com/aretw0/vivarium/internal/config"
	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/composites"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
	"github.com/aretw0/vivarium/pkg/registry"
	"github.com/aretw0/vivarium/pkg/schema"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Settings config.Settings
	Debug    bool
	Logger   *slog.Logger
	// Hooks are joined after the debug hooks, e.g. metrics.
	Hooks domain.LifecycleHooks
	// Tee receives every record next to the sink, e.g. an SSE stream.
	Tee      ports.Emitter
	Registry *registry.Registry
}

// Result describes a finished run.
type Result struct {
	ExperimentID string
	Composite    string
	Description  string
	Time         float64
	Topology     domain.Topology
}

// Run builds the composite named by the settings and advances it to the
// total time, emitting into sink.
func Run(ctx context.Context, sink Sink, opts RunOptions) (Result, error) {
	s := opts.Settings
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = composites.Library()
	}

	c, err := composites.Build(s.Composite, s.Config, reg)
	if err != nil {
		return Result{}, err
	}
	description := s.Description
	if description == "" {
		description = c.Description
	}

	hooks := opts.Hooks
	if opts.Debug {
		hooks = domain.Join(createDebugHooks(logger), opts.Hooks)
	}
	emitter := sink.Emitter
	if opts.Tee != nil {
		emitter = ports.Tee(sink.Emitter, opts.Tee)
	}

	expOpts := []vivarium.Option{
		vivarium.WithName(c.Name),
		vivarium.WithDescription(description),
		vivarium.WithLogger(logger),
		vivarium.WithRegistry(reg),
		vivarium.WithEmitter(emitter),
		vivarium.WithLifecycleHooks(hooks),
	}
	if s.ExperimentID != "" {
		expOpts = append(expOpts, vivarium.WithID(s.ExperimentID))
	}
	if initial := schema.DeepMerge(c.InitialState, s.InitialState); len(initial) > 0 {
		expOpts = append(expOpts, vivarium.WithInitialState(initial))
	}

	exp, err := vivarium.New(c.Blueprint.Processes, c.Blueprint.Topology, expOpts...)
	if err != nil {
		return Result{}, fmt.Errorf("error initializing experiment: %w", err)
	}
	logger.Info("experiment started", "experiment_id", exp.ID(), "composite", c.Name, "total_time", s.TotalTime, "timestep", s.Timestep)

	result := Result{
		ExperimentID: exp.ID(),
		Composite:    c.Name,
		Description:  description,
	}
	runErr := exp.UpdateInterval(ctx, s.TotalTime, s.Timestep)
	result.Time = exp.Time()
	result.Topology = exp.Topology()
	if runErr != nil {
		return result, runErr
	}
	logger.Info("experiment finished", "experiment_id", exp.ID(), "time", result.Time)
	return result, nil
}
