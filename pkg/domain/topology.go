package domain

import "sort"

// Ports maps each port of one process to a path relative to the node that
// holds the process.
type Ports map[string]Path

// Processes is a nested map of names to either a Process or a nested
// Processes map, shaped like the part of the tree that will hold them.
type Processes map[string]any

// Topology mirrors Processes: where Processes holds a Process, Topology holds
// its Ports; where Processes nests, Topology nests a Topology.
type Topology map[string]any

// SortedKeys returns the keys of m in lexical order. Iteration over the tree
// and its blueprints always goes through it so runs are reproducible.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PortsAt returns the Ports registered for the process at path.
func (t Topology) PortsAt(path Path) (Ports, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var node any = t
	for _, step := range path {
		switch current := node.(type) {
		case Topology:
			node = current[step]
		case map[string]any:
			node = current[step]
		default:
			return nil, false
		}
	}
	return AsPorts(node)
}

// AsPorts accepts Ports or a loosely typed map of paths.
func AsPorts(v any) (Ports, bool) {
	switch p := v.(type) {
	case Ports:
		return p, true
	case map[string]Path:
		return Ports(p), true
	case map[string]any:
		out := make(Ports, len(p))
		for port, raw := range p {
			path, ok := ToPath(raw)
			if !ok {
				return nil, false
			}
			out[port] = path
		}
		return out, true
	}
	return nil, false
}

// AsTopology accepts Topology or a plain nested map.
func AsTopology(v any) (Topology, bool) {
	switch t := v.(type) {
	case Topology:
		return t, true
	case map[string]any:
		return Topology(t), true
	}
	return nil, false
}

// AsProcesses accepts Processes or a plain nested map.
func AsProcesses(v any) (Processes, bool) {
	switch p := v.(type) {
	case Processes:
		return p, true
	case map[string]any:
		return Processes(p), true
	}
	return nil, false
}

// Merge folds other into t, recursing where both sides nest and letting
// other win everywhere else. t is modified and returned.
func (t Topology) Merge(other Topology) Topology {
	if t == nil {
		t = Topology{}
	}
	for key, incoming := range other {
		existing, ok := t[key]
		if ok {
			if _, isPorts := existing.(Ports); !isPorts {
				left, lok := AsTopology(existing)
				right, rok := AsTopology(incoming)
				if lok && rok {
					t[key] = Topology{}.Merge(left).Merge(right)
					continue
				}
			}
		}
		t[key] = incoming
	}
	return t
}

// Remove deletes the entry at path, together with everything nested under
// it, and reports whether there was one.
func (t Topology) Remove(path Path) bool {
	if len(path) == 0 {
		return false
	}
	node := t
	for _, step := range path[:len(path)-1] {
		next, ok := AsTopology(node[step])
		if !ok {
			return false
		}
		node = next
	}
	if _, ok := node[path.Last()]; !ok {
		return false
	}
	delete(node, path.Last())
	return true
}

// Clone returns a deep copy of t. Paths are copied too.
func (t Topology) Clone() Topology {
	if t == nil {
		return nil
	}
	out := make(Topology, len(t))
	for key, node := range t {
		out[key] = cloneTopologyNode(node)
	}
	return out
}

func cloneTopologyNode(node any) any {
	switch n := node.(type) {
	case Ports:
		out := make(Ports, len(n))
		for port, path := range n {
			out[port] = NewPath(path...)
		}
		return out
	case Topology:
		return n.Clone()
	case map[string]any:
		out := make(map[string]any, len(n))
		for key, v := range n {
			out[key] = cloneTopologyNode(v)
		}
		return out
	case Path:
		return NewPath(n...)
	}
	return node
}

// Nest places t under path, returning a topology rooted one level per step
// higher. Nesting under the empty path returns t itself.
func (t Topology) Nest(path Path) Topology {
	out := t
	for i := len(path) - 1; i >= 0; i-- {
		out = Topology{path[i]: out}
	}
	return out
}

// Nest places p under path, like Topology.Nest.
func (p Processes) Nest(path Path) Processes {
	out := p
	for i := len(path) - 1; i >= 0; i-- {
		out = Processes{path[i]: out}
	}
	return out
}

// Walk visits every process in p with its path, in sorted order.
func (p Processes) Walk(fn func(path Path, process Process)) {
	p.walk(Path{}, fn)
}

func (p Processes) walk(prefix Path, fn func(Path, Process)) {
	for _, key := range SortedKeys(p) {
		switch node := p[key].(type) {
		case Process:
			fn(prefix.Append(key), node)
		default:
			if nested, ok := AsProcesses(node); ok {
				nested.walk(prefix.Append(key), fn)
			}
		}
	}
}
