package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
	"github.com/aretw0/vivarium/pkg/store"
)

// processUpdate reads the ports of the process at entry, asks it for an
// update over interval, and returns the update rewritten to absolute tree
// paths. at is the absolute simulated time the interval starts from.
func (e *Experiment) processUpdate(ctx context.Context, entry store.Entry, interval, at float64) (map[string]any, error) {
	p, ok := entry.Store.Process()
	if !ok {
		return nil, fmt.Errorf("%w: no process at %s", domain.ErrStructural, entry.Path.String())
	}
	ports, ok := e.topology.PortsAt(entry.Path)
	if !ok {
		return nil, fmt.Errorf("%w: no topology for process %s", domain.ErrTopology, entry.Path.String())
	}

	states := e.readPorts(entry.Store.Outer(), p.PortsSchema(), ports)
	update, err := p.NextUpdate(interval, states)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", entry.Path.String(), err)
	}

	if e.hooks.OnProcessUpdate != nil {
		e.hooks.OnProcessUpdate(ctx, &domain.ProcessEvent{
			EventBase: e.event(domain.EventProcessUpdate),
			Path:      entry.Path,
			Time:      at,
			Interval:  interval,
			Deriver:   p.IsDeriver(),
		})
	}
	return e.absoluteUpdate(entry.Path, ports, update), nil
}

// readPorts builds the view handed to a process: for each port, the values
// of the targets it declared, read from the node its topology points at.
func (e *Experiment) readPorts(node *store.Store, declared domain.Schema, ports domain.Ports) domain.State {
	states := make(domain.State, len(declared))
	for port, targets := range declared {
		keys := domain.SortedKeys(targets)
		if _, glob := targets[schema.KeyWildcard]; glob {
			keys = []string{schema.KeyWildcard}
		}
		states[port] = node.StateFor(ports[port], keys)
	}
	return states
}

// absoluteUpdate rewrites an update keyed by port into one keyed from the
// root: each port path is taken relative to the node holding the process
// and normalized. Ports missing from the topology are dropped.
func (e *Experiment) absoluteUpdate(processPath domain.Path, ports domain.Ports, update domain.Update) map[string]any {
	absolute := map[string]any{}
	for _, port := range domain.SortedKeys(update) {
		path, ok := ports[port]
		if !ok {
			e.logger.Debug("update for unknown port dropped", "process", processPath.String(), "port", port)
			continue
		}
		target := processPath.Parent().Concat(path).Normalize()
		absolute = assocMerge(absolute, target, update[port])
	}
	return absolute
}

// assocMerge places value at path inside m, merging maps that meet.
func assocMerge(m map[string]any, path domain.Path, value any) map[string]any {
	if len(path) == 0 {
		if v, ok := value.(map[string]any); ok {
			return schema.DeepMerge(m, v)
		}
		if v, ok := value.(domain.Update); ok {
			return schema.DeepMerge(m, v)
		}
		return m
	}
	nested, _ := m[path[0]].(map[string]any)
	if len(path) == 1 {
		if existing, ok := value.(map[string]any); ok && nested != nil {
			m[path[0]] = schema.DeepMerge(nested, existing)
			return m
		}
		m[path[0]] = value
		return m
	}
	if nested == nil {
		nested = map[string]any{}
	}
	m[path[0]] = assocMerge(nested, path[1:], value)
	return m
}

// applyUpdate applies an absolute update, prunes the topology of removed
// subtrees, and folds any generated topology into the experiment's own.
func (e *Experiment) applyUpdate(update map[string]any) error {
	removed := store.RemovedPaths(update)
	topology, err := e.state.ApplyUpdate(update)
	if err != nil {
		return err
	}
	for _, path := range removed {
		if e.topology.Remove(path) {
			e.logger.Debug("topology pruned", "path", path.String())
		}
	}
	if len(topology) > 0 {
		e.topology.Merge(topology.Clone())
	}
	return nil
}

// runDerivers runs every deriver in the tree once, in depth order, with a
// zero interval, applying each update before the next deriver reads state.
// Derivers removed by an earlier deriver in the same pass are skipped.
func (e *Experiment) runDerivers(ctx context.Context) error {
	for _, entry := range e.state.Processes() {
		p, _ := entry.Store.Process()
		if !p.IsDeriver() || entry.Store.Top() != e.state {
			continue
		}
		update, err := e.processUpdate(ctx, entry, 0, e.localTime)
		if err != nil {
			return err
		}
		if err := e.applyUpdate(update); err != nil {
			return fmt.Errorf("applying deriver %s: %w", entry.Path.String(), err)
		}
	}
	return nil
}
