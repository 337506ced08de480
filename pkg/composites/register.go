package composites

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// Register adds the processes of this package to r under their library
// names.
func Register(r *registry.Registry) {
	r.RegisterProcess("growth_death", func(config map[string]any) (domain.Process, error) {
		return NewGrowthDeath(config)
	})
	r.RegisterProcess("metabolism", func(config map[string]any) (domain.Process, error) {
		return NewMetabolism(config)
	})
	r.RegisterProcess("transport", func(config map[string]any) (domain.Process, error) {
		return NewTransport(config)
	})
	r.RegisterProcess("death", func(config map[string]any) (domain.Process, error) {
		return NewDeath(config)
	})
	r.RegisterProcess("growth", func(config map[string]any) (domain.Process, error) {
		return NewGrowth(config)
	})
	r.RegisterProcess(VolumeDeriver, func(config map[string]any) (domain.Process, error) {
		return NewDeriveVolume(config)
	})
}

// Library returns a registry holding every process of this package.
func Library() *registry.Registry {
	r := registry.NewRegistry()
	Register(r)
	return r
}

// Composite is a runnable blueprint: the processes, topology and initial
// state of a ready-made experiment.
type Composite struct {
	Name         string
	Description  string
	Blueprint    compartment.Blueprint
	InitialState map[string]any
}

// CompositeFactory builds a composite from a loosely typed configuration.
type CompositeFactory func(config map[string]any, r *registry.Registry) (Composite, error)

var composites = map[string]CompositeFactory{
	"growth_death":    growthDeathComposite,
	"toy_compartment": toyComposite,
	"growth_division": growthDivisionComposite,
}

// Names lists the ready-made composites in sorted order.
func Names() []string {
	return domain.SortedKeys(composites)
}

// Build returns the named composite. r resolves named derivers; when nil,
// Library() is used.
func Build(name string, config map[string]any, r *registry.Registry) (Composite, error) {
	factory, ok := composites[name]
	if !ok {
		return Composite{}, fmt.Errorf("%w: composite %q", domain.ErrUnknownProcess, name)
	}
	if r == nil {
		r = Library()
	}
	c, err := factory(config, r)
	if err != nil {
		return Composite{}, fmt.Errorf("composite %q: %w", name, err)
	}
	c.Name = name
	return c, nil
}

func growthDeathComposite(config map[string]any, r *registry.Registry) (Composite, error) {
	merged := map[string]any{"targets": []string{"../process"}}
	for k, v := range config {
		merged[k] = v
	}
	p, err := NewGrowthDeath(merged)
	if err != nil {
		return Composite{}, err
	}
	return Composite{
		Description: "linear growth until the mass passes a threshold, then the process removes itself",
		Blueprint: compartment.Blueprint{
			Processes: domain.Processes{"process": p},
			Topology:  domain.Topology{"process": domain.Ports{"global": domain.NewPath("global")}},
		},
	}, nil
}

func toyComposite(config map[string]any, r *registry.Registry) (Composite, error) {
	blueprint, err := compartment.Generate(ToyCompartment{}, config, nil, compartment.WithRegistry(r))
	if err != nil {
		return Composite{}, err
	}
	return Composite{
		Description: "toy cell: transport and metabolism until the cytoplasm outgrows its volume",
		Blueprint:   blueprint,
		InitialState: map[string]any{
			"periplasm": map[string]any{"GLC": 20, "MASS": 100, "DENSITY": 10},
			"cytoplasm": map[string]any{"GLC": 0, "MASS": 3, "DENSITY": 10},
		},
	}, nil
}

func growthDivisionComposite(config map[string]any, r *registry.Registry) (Composite, error) {
	c, err := NewGrowthDivision(config, compartment.WithRegistry(r))
	if err != nil {
		return Composite{}, err
	}
	blueprint, err := compartment.MakeAgents(c, domain.NewPath("cells"), []string{"0"}, nil, compartment.WithRegistry(r))
	if err != nil {
		return Composite{}, err
	}
	return Composite{
		Description: "a cell that grows and divides into daughters under cells/",
		Blueprint:   blueprint,
	}, nil
}
