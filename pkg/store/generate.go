package store

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
	"github.com/aretw0/vivarium/pkg/schema"
)

// EstablishPath walks path from s, creating missing children, then applies
// config to the node reached. A non-nil initial value is written there
// without running updaters. Up steps above the root are a structural error.
func (s *Store) EstablishPath(path domain.Path, config map[string]any, initial any) (*Store, error) {
	if len(path) == 0 {
		if err := s.ApplyConfig(config); err != nil {
			return nil, err
		}
		if initial != nil {
			if err := s.SetValue(initial); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	step, remaining := path[0], path[1:]
	if step == domain.Up {
		if s.outer == nil {
			return nil, s.structural(fmt.Errorf("no parent to resolve %q", path.String()))
		}
		return s.outer.EstablishPath(remaining, config, lookup(initial, step))
	}

	next, ok := s.inner[step]
	if !ok {
		if s.kind == leaf {
			return nil, s.variantConflict("child " + step)
		}
		next = s.child(step)
		s.attach(step, next)
	}
	return next.EstablishPath(remaining, config, lookup(initial, step))
}

func lookup(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return nil
}

// GeneratePaths installs processes under s and builds the state each of
// their ports declares, at the paths the topology assigns. Every process
// becomes a leaf holding the process with the set updater. A process port
// missing from the topology fails with *domain.TopologyError values
// collected in a schema.AggregateError.
func (s *Store) GeneratePaths(processes domain.Processes, topology domain.Topology, initial map[string]any) error {
	for _, key := range domain.SortedKeys(processes) {
		switch node := processes[key].(type) {
		case domain.Process:
			if err := s.generateProcess(key, node, topology[key], initial); err != nil {
				return err
			}
		default:
			nested, ok := domain.AsProcesses(node)
			if !ok {
				return s.structural(fmt.Errorf("processes entry %q is %T", key, node))
			}
			subtopology, _ := domain.AsTopology(topology[key])
			c, exists := s.inner[key]
			if !exists {
				c = s.child(key)
				s.attach(key, c)
			}
			substate, _ := initial[key].(map[string]any)
			if err := c.GeneratePaths(nested, subtopology, substate); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) generateProcess(key string, process domain.Process, rawPorts any, initial map[string]any) error {
	declared := process.PortsSchema()
	ports, _ := domain.AsPorts(rawPorts)
	if err := schema.ValidatePorts(s.PathFor().Append(key), declared, ports); err != nil {
		return err
	}

	leafNode := s.child(key)
	if err := leafNode.ApplyConfig(map[string]any{
		schema.KeyValue:   process,
		schema.KeyUpdater: registry.Builtin(registry.Set),
	}); err != nil {
		return err
	}
	s.attach(key, leafNode)

	for _, port := range domain.SortedKeys(declared) {
		path := ports[port]
		portInitial := getIn(initial, path)
		targets := declared[port]
		if _, err := s.EstablishPath(path, nil, nil); err != nil {
			return err
		}
		for _, target := range domain.SortedKeys(targets) {
			config, ok := asConfig(targets[target])
			if !ok {
				return fmt.Errorf("process %q port %q: %w", key, port, &schema.ValidationError{
					Key: target, Reason: "schema fragment must be a map", Value: targets[target],
				})
			}
			if target == schema.KeyWildcard {
				glob, err := s.EstablishPath(path, map[string]any{schema.KeySubschema: config}, nil)
				if err != nil {
					return err
				}
				if err := glob.applySubschema(); err != nil {
					return err
				}
				glob.ApplyDefaults()
				continue
			}
			if _, err := s.EstablishPath(path.Append(target), config, lookup(portInitial, target)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Generate builds processes and their state under path, together with the
// derivers the processes declare, then seeds the subtree with initial and
// fills the remaining leaves with defaults. It returns the topology it
// installed, deriver wiring included, relative to path.
func (s *Store) Generate(path domain.Path, processes domain.Processes, topology domain.Topology, initial map[string]any) (domain.Topology, error) {
	processes, topology, err := WithDerivers(processes, topology, s.registry)
	if err != nil {
		return nil, err
	}
	target, err := s.EstablishPath(path, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := target.GeneratePaths(processes, topology, initial); err != nil {
		return nil, err
	}
	if len(initial) > 0 {
		if err := target.SetValue(initial); err != nil {
			return nil, err
		}
	}
	target.ApplyDefaults()
	return topology, nil
}

// WithDerivers returns processes and topology extended with the derivers
// every process declares, resolved through r. Derivers already present are
// kept as they are.
func WithDerivers(processes domain.Processes, topology domain.Topology, r *registry.Registry) (domain.Processes, domain.Topology, error) {
	derivers, err := compartment.GenerateDerivers(processes, topology, r)
	if err != nil {
		return nil, nil, err
	}
	merged := domain.Topology{}.Merge(topology)
	if len(derivers.Processes) == 0 {
		return processes, merged, nil
	}
	return compartment.MergeProcesses(processes, derivers.Processes), merged.Merge(derivers.Topology), nil
}

// GenerateState builds a new tree holding processes wired by topology.
func GenerateState(processes domain.Processes, topology domain.Topology, initial map[string]any, opts ...Option) (*Store, error) {
	s, err := New(nil, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Generate(nil, processes, topology, initial); err != nil {
		return nil, err
	}
	return s, nil
}
