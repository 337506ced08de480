package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/vivarium/pkg/domain"
)

// ProcessFactory builds a process from its configuration. Factories make up
// the deriver library: a DeriverSpec may name one instead of carrying an
// instance.
type ProcessFactory func(config map[string]any) (domain.Process, error)

// Registry holds caller registered updaters, dividers, reducers and process
// factories. Built-ins resolve without registration. A nil *Registry
// resolves built-ins only.
type Registry struct {
	mu        sync.RWMutex
	updaters  map[string]UpdaterFunc
	dividers  map[string]Divider
	processes map[string]ProcessFactory
	reducers  map[string]ReducerFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		updaters:  make(map[string]UpdaterFunc),
		dividers:  make(map[string]Divider),
		processes: make(map[string]ProcessFactory),
		reducers:  make(map[string]ReducerFunc),
	}
}

// RegisterUpdater adds a named updater, overwriting any previous one.
// Built-in names cannot be shadowed.
func (r *Registry) RegisterUpdater(name string, fn UpdaterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updaters[name] = fn
}

// RegisterDivider adds a named divider function.
func (r *Registry) RegisterDivider(name string, fn DividerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dividers[name] = CustomDivide(name, fn)
}

// RegisterTopologyDivider adds a named divider consulting sibling state.
func (r *Registry) RegisterTopologyDivider(name string, fn TopologyDividerFunc, topology map[string]domain.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dividers[name] = WithTopology(name, fn, topology)
}

// RegisterProcess adds a named process factory.
func (r *Registry) RegisterProcess(name string, factory ProcessFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processes[name] = factory
}

// RegisterReducer adds a named reducer for _reduce directives.
func (r *Registry) RegisterReducer(name string, fn ReducerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reducers[name] = fn
}

// Processes lists the registered process factory names in sorted order.
func (r *Registry) Processes() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.processes))
	for name := range r.processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProcess instantiates the process registered under name.
func (r *Registry) NewProcess(name string, config map[string]any) (domain.Process, error) {
	var factory ProcessFactory
	if r != nil {
		r.mu.RLock()
		factory = r.processes[name]
		r.mu.RUnlock()
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProcess, name)
	}
	return factory(config)
}

// ResolveUpdater turns the loose _updater value of a configuration into an
// Updater. nil resolves to accumulate. Accepted forms are an Updater, an
// UpdaterKind, a registered or built-in name, and an UpdaterFunc.
func (r *Registry) ResolveUpdater(spec any) (Updater, error) {
	switch u := spec.(type) {
	case nil:
		return Builtin(Accumulate), nil
	case Updater:
		return u, nil
	case UpdaterKind:
		return Builtin(u), nil
	case UpdaterFunc:
		return Custom("custom", u), nil
	case func(current, delta any) (any, error):
		return Custom("custom", u), nil
	case string:
		if builtin, ok := builtinUpdater(u); ok {
			return builtin, nil
		}
		if r != nil {
			r.mu.RLock()
			fn, ok := r.updaters[u]
			r.mu.RUnlock()
			if ok {
				return Custom(u, fn), nil
			}
		}
		return Updater{}, fmt.Errorf("%w: %q", domain.ErrUnknownUpdater, u)
	}
	return Updater{}, fmt.Errorf("%w: unsupported %T", domain.ErrUnknownUpdater, spec)
}

// ResolveDivider turns the loose _divider value of a configuration into a
// Divider. nil resolves to no divider. Besides names, functions and Divider
// values, the map form {"divider": fn-or-name, "topology": {name: path}}
// is accepted.
func (r *Registry) ResolveDivider(spec any) (Divider, error) {
	switch d := spec.(type) {
	case nil:
		return Divider{}, nil
	case Divider:
		return d, nil
	case DividerKind:
		return Divider{Kind: d, Name: d.String()}, nil
	case DividerFunc:
		return CustomDivide("custom", d), nil
	case func(value any) ([2]any, error):
		return CustomDivide("custom", d), nil
	case string:
		if builtin, ok := builtinDivider(d); ok {
			return builtin, nil
		}
		if r != nil {
			r.mu.RLock()
			div, ok := r.dividers[d]
			r.mu.RUnlock()
			if ok {
				return div, nil
			}
		}
		return Divider{}, fmt.Errorf("%w: %q", domain.ErrUnknownDivider, d)
	case map[string]any:
		return r.resolveDividerMap(d)
	}
	return Divider{}, fmt.Errorf("%w: unsupported %T", domain.ErrUnknownDivider, spec)
}

func (r *Registry) resolveDividerMap(spec map[string]any) (Divider, error) {
	topology := make(map[string]domain.Path)
	if raw, ok := spec["topology"].(map[string]any); ok {
		for name, p := range raw {
			path, ok := domain.ToPath(p)
			if !ok {
				return Divider{}, fmt.Errorf("%w: topology path %q is %T", domain.ErrUnknownDivider, name, p)
			}
			topology[name] = path
		}
	}
	switch fn := spec["divider"].(type) {
	case TopologyDividerFunc:
		return WithTopology("custom", fn, topology), nil
	case func(value any, siblings map[string]any) ([2]any, error):
		return WithTopology("custom", fn, topology), nil
	}
	inner, err := r.ResolveDivider(spec["divider"])
	if err != nil {
		return Divider{}, err
	}
	if inner.Kind == TopologyDivider && len(topology) > 0 {
		inner.Topology = topology
	}
	return inner, nil
}
