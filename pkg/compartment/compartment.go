package compartment

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// Compartment generates a group of processes and their wiring.
type Compartment interface {
	GenerateProcesses(config map[string]any) (domain.Processes, error)
	GenerateTopology(config map[string]any) (domain.Topology, error)
}

// Blueprint is a generated set of processes with the topology wiring them.
type Blueprint struct {
	Processes domain.Processes
	Topology  domain.Topology
}

// Generate describes the blueprint as a directive creating it under path.
func (b Blueprint) Generate(path domain.Path, initial map[string]any) domain.Generate {
	return domain.Generate{
		Path:         path,
		Processes:    b.Processes,
		Topology:     b.Topology,
		InitialState: initial,
	}
}

type options struct {
	registry *registry.Registry
}

// Option configures Generate and MakeAgents.
type Option func(*options)

// WithRegistry sets the registry used to build derivers declared by name.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Generate builds the processes and topology of c, adds the derivers they
// declare, and nests everything under path.
func Generate(c Compartment, config map[string]any, path domain.Path, opts ...Option) (Blueprint, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if config == nil {
		config = map[string]any{}
	}

	processes, err := c.GenerateProcesses(config)
	if err != nil {
		return Blueprint{}, fmt.Errorf("failed to generate processes: %w", err)
	}
	topology, err := c.GenerateTopology(config)
	if err != nil {
		return Blueprint{}, fmt.Errorf("failed to generate topology: %w", err)
	}

	derivers, err := GenerateDerivers(processes, topology, o.registry)
	if err != nil {
		return Blueprint{}, err
	}
	processes = MergeProcesses(processes, derivers.Processes)
	topology = domain.Topology{}.Merge(topology).Merge(derivers.Topology)

	return Blueprint{
		Processes: processes.Nest(path),
		Topology:  topology.Nest(path),
	}, nil
}

// GenerateDerivers instantiates the derivers declared by every process in
// processes. A deriver is placed next to the process declaring it, and its
// ports are wired to the paths the declaring process's ports use. When two
// processes declare the same deriver key the first, in sorted order, wins;
// a key already naming a process is left alone.
func GenerateDerivers(processes domain.Processes, topology domain.Topology, r *registry.Registry) (Blueprint, error) {
	out := Blueprint{Processes: domain.Processes{}, Topology: domain.Topology{}}
	for _, key := range domain.SortedKeys(processes) {
		switch node := processes[key].(type) {
		case domain.Process:
			ports, _ := domain.AsPorts(topology[key])
			specs := node.Derivers()
			for _, deriverKey := range domain.SortedKeys(specs) {
				if _, taken := out.Processes[deriverKey]; taken {
					continue
				}
				if _, taken := processes[deriverKey]; taken {
					continue
				}
				spec := specs[deriverKey]
				deriver, err := newDeriver(spec, r)
				if err != nil {
					return Blueprint{}, fmt.Errorf("deriver %q of %q: %w", deriverKey, key, err)
				}
				wired := make(domain.Ports, len(spec.PortMapping))
				for target, source := range spec.PortMapping {
					path, ok := ports[source]
					if !ok {
						return Blueprint{}, &domain.TopologyError{Process: domain.NewPath(key), Port: source}
					}
					wired[target] = path
				}
				out.Processes[deriverKey] = deriver
				out.Topology[deriverKey] = wired
			}
		default:
			nested, ok := domain.AsProcesses(node)
			if !ok {
				return Blueprint{}, fmt.Errorf("%w: processes entry %q is %T", domain.ErrStructural, key, node)
			}
			subtopology, _ := domain.AsTopology(topology[key])
			inner, err := GenerateDerivers(nested, subtopology, r)
			if err != nil {
				return Blueprint{}, err
			}
			if len(inner.Processes) > 0 {
				out.Processes[key] = inner.Processes
				out.Topology[key] = inner.Topology
			}
		}
	}
	return out, nil
}

func newDeriver(spec domain.DeriverSpec, r *registry.Registry) (domain.Process, error) {
	switch d := spec.Deriver.(type) {
	case domain.Process:
		return d, nil
	case string:
		if r == nil {
			return nil, fmt.Errorf("%w: %q (no registry)", domain.ErrUnknownProcess, d)
		}
		return r.NewProcess(d, spec.Config)
	case registry.ProcessFactory:
		return d(spec.Config)
	case func(map[string]any) (domain.Process, error):
		return d(spec.Config)
	}
	return nil, fmt.Errorf("%w: unsupported deriver %T", domain.ErrUnknownProcess, spec.Deriver)
}

// MergeProcesses folds other into a copy of p, recursing where both nest.
func MergeProcesses(p, other domain.Processes) domain.Processes {
	out := make(domain.Processes, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		if right, ok := v.(domain.Processes); ok {
			if left, ok := domain.AsProcesses(out[k]); ok {
				out[k] = MergeProcesses(left, right)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// MakeAgents generates one copy of c per id, each under path/id. Every copy
// receives config with "agent_id" set to its id.
func MakeAgents(c Compartment, path domain.Path, ids []string, config map[string]any, opts ...Option) (Blueprint, error) {
	out := Blueprint{Processes: domain.Processes{}, Topology: domain.Topology{}}
	for _, id := range ids {
		agentConfig := make(map[string]any, len(config)+1)
		for k, v := range config {
			agentConfig[k] = v
		}
		agentConfig["agent_id"] = id
		agent, err := Generate(c, agentConfig, domain.NewPath(id), opts...)
		if err != nil {
			return Blueprint{}, fmt.Errorf("agent %q: %w", id, err)
		}
		out.Processes = MergeProcesses(out.Processes, agent.Processes)
		out.Topology.Merge(agent.Topology)
	}
	return Blueprint{
		Processes: out.Processes.Nest(path),
		Topology:  out.Topology.Nest(path),
	}, nil
}

// Parameters reports the parameters of every top level process c generates
// with an empty configuration.
func Parameters(c Compartment) (map[string]any, error) {
	processes, err := c.GenerateProcesses(map[string]any{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(processes))
	for _, key := range domain.SortedKeys(processes) {
		if p, ok := processes[key].(domain.Parameterized); ok {
			out[key] = p.Parameters()
		}
	}
	return out, nil
}
