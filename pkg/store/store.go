package store

import (
	"log/slog"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

type variant int

const (
	undecided variant = iota
	leaf
	branch
)

// Store is one node of the state tree. A node is either a branch holding
// named children or a leaf holding a value with its update and division
// metadata. A freshly created node is undecided until configuration, a child
// or a subschema fixes its variant.
//
// The parent link is used for relative lookups ("..") only; ownership runs
// strictly from parent to children.
type Store struct {
	key   string
	outer *Store
	inner map[string]*Store
	kind  variant

	subschema  map[string]any
	properties map[string]any

	value      any
	def        any
	hasDefault bool
	updater    registry.Updater
	divider    registry.Divider
	emit       bool
	units      string

	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a root Store.
type Option func(*Store)

// WithLogger sets the logger used for advisory messages such as default
// conflicts.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the registry resolving named updaters and dividers.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Store) {
		s.registry = r
	}
}

// New builds a root store from a configuration map.
func New(config map[string]any, opts ...Option) (*Store, error) {
	s := &Store{
		inner:  make(map[string]*Store),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ApplyConfig(config); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) child(key string) *Store {
	return &Store{
		key:      key,
		outer:    s,
		inner:    make(map[string]*Store),
		registry: s.registry,
		logger:   s.logger,
	}
}

// attach installs c as the child key, replacing any previous node.
func (s *Store) attach(key string, c *Store) {
	if old, ok := s.inner[key]; ok && old != c {
		old.outer = nil
	}
	c.key = key
	c.outer = s
	s.inner[key] = c
	s.kind = branch
	s.value = nil
}

// Key is the name of the node under its parent.
func (s *Store) Key() string { return s.key }

// Outer returns the parent node, or nil for the root.
func (s *Store) Outer() *Store { return s.outer }

// Top returns the root of the tree holding s.
func (s *Store) Top() *Store {
	if s.outer == nil {
		return s
	}
	return s.outer.Top()
}

// IsLeaf reports whether s holds a value rather than children.
func (s *Store) IsLeaf() bool { return !s.isBranch() }

func (s *Store) isBranch() bool {
	return s.kind == branch || s.subschema != nil
}

// Children returns the child names in sorted order.
func (s *Store) Children() []string {
	return domain.SortedKeys(s.inner)
}

// Child returns the named child.
func (s *Store) Child(key string) (*Store, bool) {
	c, ok := s.inner[key]
	return c, ok
}

// Updater returns the resolved updater of a leaf.
func (s *Store) Updater() registry.Updater { return s.updater }

// Divider returns the resolved divider of a leaf.
func (s *Store) Divider() registry.Divider { return s.divider }

// Emit reports whether the leaf is included in emitted snapshots.
func (s *Store) Emit() bool { return s.emit }

// Units returns the physical unit tag of the leaf.
func (s *Store) Units() string { return s.units }

// Default returns the default value of the leaf.
func (s *Store) Default() any { return s.def }

// Process returns the process held by a process leaf.
func (s *Store) Process() (domain.Process, bool) {
	if s.isBranch() {
		return nil, false
	}
	p, ok := s.value.(domain.Process)
	return p, ok
}

// PathFor returns the absolute path of s from the root.
func (s *Store) PathFor() domain.Path {
	if s.outer == nil {
		return domain.Path{}
	}
	return s.outer.PathFor().Append(s.key)
}

// GetPath walks path from s. Up steps move to the parent. It returns nil
// when any step is missing.
func (s *Store) GetPath(path domain.Path) *Store {
	node := s
	for _, step := range path {
		if step == domain.Up {
			node = node.outer
		} else {
			node = node.inner[step]
		}
		if node == nil {
			return nil
		}
	}
	return node
}

// GetIn returns the value at path.
func (s *Store) GetIn(path domain.Path) (any, bool) {
	node := s.GetPath(path)
	if node == nil {
		return nil, false
	}
	return node.Value(), true
}

// GetValues resolves each named path relative to s. The boolean is false
// when any path is missing.
func (s *Store) GetValues(paths map[string]domain.Path) (map[string]any, bool) {
	out := make(map[string]any, len(paths))
	for name, path := range paths {
		v, ok := s.GetIn(path)
		if !ok {
			return out, false
		}
		out[name] = v
	}
	return out, true
}

// Value returns the value of the subtree: a nested map for branches, the
// held value for leaves. Process leaves are included as their handles.
func (s *Store) Value() any {
	return s.valueOf(nil, nil)
}

// Snapshot returns a deep copy of the subtree value without process leaves.
func (s *Store) Snapshot() any {
	return s.valueOf(isState, func(v any) any { return deepcopy.Copy(v) })
}

// Introspect returns the subtree value with process leaves replaced by their
// pulled data, or dropped when the process exposes none.
func (s *Store) Introspect() any {
	return s.valueOf(func(c *Store) bool {
		if p, ok := c.Process(); ok {
			_, pulls := p.(domain.Puller)
			return pulls
		}
		return true
	}, func(v any) any {
		if puller, ok := v.(domain.Puller); ok {
			return puller.PullData()
		}
		return v
	})
}

func isState(c *Store) bool {
	_, isProcess := c.Process()
	return !isProcess
}

func (s *Store) valueOf(keep func(*Store) bool, leafFn func(any) any) any {
	if !s.isBranch() {
		if leafFn != nil {
			return leafFn(s.value)
		}
		return s.value
	}
	out := make(map[string]any, len(s.inner))
	for key, c := range s.inner {
		if keep != nil && !keep(c) {
			continue
		}
		out[key] = c.valueOf(keep, leafFn)
	}
	return out
}

// ChildValue returns the value of the named child, or nil.
func (s *Store) ChildValue(key string) any {
	if c, ok := s.inner[key]; ok {
		return c.Value()
	}
	return nil
}

// StateFor reads the view of one port: the values of keys under path. The
// single key "*" reads the whole subtree under path. A missing path yields
// an empty view.
func (s *Store) StateFor(path domain.Path, keys []string) map[string]any {
	node := s.GetPath(path)
	if node == nil {
		return map[string]any{}
	}
	if len(keys) > 0 && keys[0] == "*" {
		if m, ok := node.Value().(map[string]any); ok {
			return m
		}
		return map[string]any{}
	}
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		out[key] = node.ChildValue(key)
	}
	return out
}

// Entry pairs a node with its path relative to the node Depth was called on.
type Entry struct {
	Path  domain.Path
	Store *Store
}

// Depth lists s and every descendant in pre-order with children sorted by
// name, so enumeration order is stable across runs.
func (s *Store) Depth() []Entry {
	var out []Entry
	s.depth(domain.Path{}, &out)
	return out
}

func (s *Store) depth(path domain.Path, out *[]Entry) {
	*out = append(*out, Entry{Path: path, Store: s})
	for _, key := range s.Children() {
		s.inner[key].depth(path.Append(key), out)
	}
}

// Processes lists the process leaves under s in Depth order.
func (s *Store) Processes() []Entry {
	var out []Entry
	for _, e := range s.Depth() {
		if _, ok := e.Store.Process(); ok {
			out = append(out, e)
		}
	}
	return out
}
