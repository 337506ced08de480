package vivarium

import (
	"context"
	"fmt"

	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// Settings control a one-shot simulation.
type Settings struct {
	// TotalTime is the simulated time to reach (default 10).
	TotalTime float64
	// Timestep is the tick length (default 1).
	Timestep float64
	// InitialState seeds the state tree.
	InitialState map[string]any
	// Compartment is the configuration handed to a compartment.
	Compartment map[string]any
	// OuterPath nests a compartment below the root.
	OuterPath domain.Path
	// Registry resolves derivers declared by name.
	Registry *registry.Registry
	// Options are applied to the experiment after the ones Simulate sets.
	Options []Option
}

func (s Settings) withDefaults() Settings {
	if s.TotalTime == 0 {
		s.TotalTime = 10
	}
	if s.Timestep == 0 {
		s.Timestep = 1
	}
	return s
}

// ProcessInExperiment wires a single process with each port pointing at a
// child of the root named after it, plus the derivers it declares.
func ProcessInExperiment(p domain.Process, r *registry.Registry) (compartment.Blueprint, error) {
	ports := make(domain.Ports)
	for port := range p.PortsSchema() {
		ports[port] = domain.NewPath(port)
	}
	processes := domain.Processes{"process": p}
	topology := domain.Topology{"process": ports}

	derivers, err := compartment.GenerateDerivers(processes, topology, r)
	if err != nil {
		return compartment.Blueprint{}, err
	}
	return compartment.Blueprint{
		Processes: compartment.MergeProcesses(processes, derivers.Processes),
		Topology:  topology.Merge(derivers.Topology),
	}, nil
}

// SimulateProcess runs p alone and returns the nested timeseries of every
// emitted value.
func SimulateProcess(ctx context.Context, p domain.Process, settings Settings) (map[string]any, error) {
	blueprint, err := ProcessInExperiment(p, settings.Registry)
	if err != nil {
		return nil, err
	}
	return SimulateBlueprint(ctx, blueprint, settings)
}

// SimulateCompartment generates c under settings.OuterPath, runs it and
// returns the nested timeseries of every emitted value.
func SimulateCompartment(ctx context.Context, c compartment.Compartment, settings Settings) (map[string]any, error) {
	blueprint, err := compartment.Generate(c, settings.Compartment, settings.OuterPath,
		compartment.WithRegistry(settings.Registry))
	if err != nil {
		return nil, err
	}
	return SimulateBlueprint(ctx, blueprint, settings)
}

// SimulateBlueprint runs a blueprint for settings.TotalTime and returns the
// nested timeseries of every emitted value.
func SimulateBlueprint(ctx context.Context, blueprint compartment.Blueprint, settings Settings) (map[string]any, error) {
	settings = settings.withDefaults()
	emitter := memory.NewEmitter()

	opts := []Option{WithEmitter(emitter), WithInitialState(settings.InitialState)}
	if settings.Registry != nil {
		opts = append(opts, WithRegistry(settings.Registry))
	}
	opts = append(opts, settings.Options...)

	exp, err := New(blueprint.Processes, blueprint.Topology, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build experiment: %w", err)
	}
	if err := exp.UpdateInterval(ctx, settings.TotalTime, settings.Timestep); err != nil {
		return nil, fmt.Errorf("simulation stopped at %v: %w", exp.Time(), err)
	}
	return emitter.Timeseries(), nil
}
