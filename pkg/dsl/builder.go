package dsl

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

// Builder manages the construction of a process blueprint.
type Builder struct {
	order     []string
	processes map[string]*ProcessBuilder
}

// New creates a new blueprint builder.
func New() *Builder {
	return &Builder{
		processes: make(map[string]*ProcessBuilder),
	}
}

// Add places a process under name at the root of the blueprint.
// If the name is already taken, it returns the existing builder.
func (b *Builder) Add(name string, p domain.Process) *ProcessBuilder {
	if pb, ok := b.processes[name]; ok {
		return pb
	}
	pb := &ProcessBuilder{
		name:    name,
		process: p,
		ports:   make(domain.Ports),
		builder: b,
	}
	b.order = append(b.order, name)
	b.processes[name] = pb
	return pb
}

// Build validates the wiring of every process and returns the blueprint.
// Every port a process declares must be wired.
func (b *Builder) Build() (compartment.Blueprint, error) {
	out := compartment.Blueprint{Processes: domain.Processes{}, Topology: domain.Topology{}}
	var errs []error
	for _, name := range b.order {
		pb := b.processes[name]
		path := pb.at.Append(name)
		if err := schema.ValidatePorts(path, pb.process.PortsSchema(), pb.ports); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, exists := processAt(out.Processes, path); exists {
			return compartment.Blueprint{}, fmt.Errorf("%w: two processes at %q", domain.ErrStructural, path.String())
		}
		out.Processes = compartment.MergeProcesses(out.Processes, domain.Processes{name: pb.process}.Nest(pb.at))
		out.Topology.Merge(domain.Topology{name: pb.ports}.Nest(pb.at))
	}
	if len(errs) > 0 {
		return compartment.Blueprint{}, &schema.AggregateError{Errors: errs}
	}
	return out, nil
}

// GenerateProcesses builds the blueprint and returns its processes, so a
// Builder can serve as a compartment.
func (b *Builder) GenerateProcesses(map[string]any) (domain.Processes, error) {
	blueprint, err := b.Build()
	return blueprint.Processes, err
}

// GenerateTopology builds the blueprint and returns its topology.
func (b *Builder) GenerateTopology(map[string]any) (domain.Topology, error) {
	blueprint, err := b.Build()
	return blueprint.Topology, err
}

func processAt(processes domain.Processes, path domain.Path) (domain.Process, bool) {
	var node any = processes
	for _, step := range path {
		nested, ok := domain.AsProcesses(node)
		if !ok {
			return nil, false
		}
		node, ok = nested[step]
		if !ok {
			return nil, false
		}
	}
	p, ok := node.(domain.Process)
	return p, ok
}

// ProcessBuilder provides a fluent API for wiring one process.
type ProcessBuilder struct {
	name    string
	process domain.Process
	at      domain.Path
	ports   domain.Ports
	builder *Builder
}

// At nests the process under path instead of the root.
func (p *ProcessBuilder) At(steps ...string) *ProcessBuilder {
	p.at = domain.NewPath(steps...)
	return p
}

// Port wires port to the path given by steps, relative to the node holding
// the process. No steps wires the port to that node itself.
func (p *ProcessBuilder) Port(port string, steps ...string) *ProcessBuilder {
	p.ports[port] = domain.NewPath(steps...)
	return p
}

// Ports wires every declared port to a child of the same name.
func (p *ProcessBuilder) Ports() *ProcessBuilder {
	for _, port := range domain.SortedKeys(p.process.PortsSchema()) {
		if _, wired := p.ports[port]; !wired {
			p.ports[port] = domain.NewPath(port)
		}
	}
	return p
}

// Add continues with the next process of the same builder.
func (p *ProcessBuilder) Add(name string, process domain.Process) *ProcessBuilder {
	return p.builder.Add(name, process)
}

// Build builds the blueprint the process belongs to.
func (p *ProcessBuilder) Build() (compartment.Blueprint, error) {
	return p.builder.Build()
}
