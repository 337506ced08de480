package store

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

// ApplyUpdate applies a nested update mirroring the shape of the tree.
//
// On branches the structural directives run first, in order: _delete,
// _generate, _divide. Ordinary keys then recurse into matching children;
// unknown keys create a child from the subschema when there is one and are
// ignored otherwise. On leaves the update is a delta combined through the
// leaf updater, or a {"_updater": u, "_value": delta} map overriding the
// updater for this call only.
//
// The returned topology collects the blueprints of every generated subtree,
// placed at their paths relative to s, for the caller to fold into its own.
func (s *Store) ApplyUpdate(update any) (domain.Topology, error) {
	if !s.isBranch() && !(s.kind == undecided && hasDirective(update)) {
		return nil, s.applyLeafUpdate(update)
	}

	upd, ok := asUpdate(update)
	if !ok {
		return nil, &domain.UpdateError{Path: s.PathFor(), Err: fmt.Errorf("branch update must be a map, got %T", update)}
	}
	topology := domain.Topology{}

	if raw, ok := upd[domain.KeyDelete]; ok {
		paths, err := toPaths(raw)
		if err != nil {
			return nil, s.structural(err)
		}
		for _, path := range paths {
			s.DeletePath(path)
		}
	}

	if raw, ok := upd[domain.KeyGenerate]; ok {
		generates, err := toGenerates(raw)
		if err != nil {
			return nil, s.structural(err)
		}
		for _, g := range generates {
			installed, err := s.Generate(g.Path, g.Processes, g.Topology, g.InitialState)
			if err != nil {
				return nil, err
			}
			if len(installed) > 0 {
				topology.Merge(installed.Nest(g.Path))
			}
		}
		if err := s.ApplySubschemas(); err != nil {
			return nil, err
		}
		s.ApplyDefaults()
	}

	if raw, ok := upd[domain.KeyDivide]; ok {
		divide, err := toDivide(raw)
		if err != nil {
			return nil, s.structural(err)
		}
		daughters, err := s.divide(divide)
		if err != nil {
			return nil, err
		}
		topology.Merge(daughters)
	}

	for _, key := range domain.SortedKeys(upd) {
		if key == domain.KeyDelete || key == domain.KeyGenerate || key == domain.KeyDivide {
			continue
		}
		value := upd[key]
		if c, ok := s.inner[key]; ok {
			inner, err := c.ApplyUpdate(value)
			if err != nil {
				return nil, err
			}
			if len(inner) > 0 {
				topology.Merge(domain.Topology{key: inner})
			}
			continue
		}
		if s.subschema != nil {
			c := s.child(key)
			if err := c.ApplyConfig(s.subschema); err != nil {
				return nil, err
			}
			s.attach(key, c)
			if err := c.SetValue(value); err != nil {
				return nil, err
			}
			c.ApplyDefaults()
			continue
		}
		s.logger.Debug("update for unknown key ignored", "path", s.PathFor().Append(key).String())
	}

	if len(topology) == 0 {
		return nil, nil
	}
	return topology, nil
}

func (s *Store) applyLeafUpdate(update any) error {
	if m, ok := asUpdate(update); ok {
		if raw, ok := m[domain.KeyReduce]; ok {
			reduced, err := s.reduction(raw)
			if err != nil {
				return err
			}
			update = reduced
		}
	}

	updater := s.updater
	delta := update
	if m, ok := update.(map[string]any); ok {
		if override, ok := m[schema.KeyUpdater]; ok {
			u, err := s.registry.ResolveUpdater(override)
			if err != nil {
				return &domain.UpdateError{Path: s.PathFor(), Err: err}
			}
			updater = u
			if v, ok := m[schema.KeyValue]; ok {
				delta = v
			} else {
				delta = s.def
			}
		}
	}
	next, err := updater.Apply(s.value, delta)
	if err != nil {
		return &domain.UpdateError{Path: s.PathFor(), Err: err}
	}
	s.value = next
	return nil
}

// SetValue overwrites values in the subtree without running updaters.
// Branches take a map and recurse per key, creating children from the
// subschema where one exists; keys naming no child are skipped.
func (s *Store) SetValue(value any) error {
	if !s.isBranch() {
		s.value = value
		return nil
	}
	if value == nil {
		return nil
	}
	m, ok := asUpdate(value)
	if !ok {
		return s.structural(fmt.Errorf("cannot set %T on a branch", value))
	}
	for _, key := range domain.SortedKeys(m) {
		c, exists := s.inner[key]
		if !exists {
			if s.subschema == nil {
				continue
			}
			c = s.child(key)
			if err := c.ApplyConfig(s.subschema); err != nil {
				return err
			}
			s.attach(key, c)
		}
		if err := c.SetValue(m[key]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDefaults fills every unset leaf in the subtree with a copy of its
// default.
func (s *Store) ApplyDefaults() {
	if s.isBranch() {
		for _, c := range s.inner {
			c.ApplyDefaults()
		}
		return
	}
	if s.value == nil && s.def != nil {
		s.value = deepcopy.Copy(s.def)
	}
}

// ApplySubschemas reapplies every subschema in the subtree to the children
// of its node, so children created before the subschema pick it up too.
func (s *Store) ApplySubschemas() error {
	if s.subschema != nil {
		if err := s.applySubschema(); err != nil {
			return err
		}
	}
	for _, key := range s.Children() {
		if err := s.inner[key].ApplySubschemas(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applySubschema() error {
	for _, key := range s.Children() {
		if err := s.inner[key].ApplyConfig(s.subschema); err != nil {
			return err
		}
	}
	return nil
}

// DeletePath detaches the node at path and returns it. The empty path
// clears s itself. A missing path returns nil.
func (s *Store) DeletePath(path domain.Path) *Store {
	if len(path) == 0 {
		s.inner = make(map[string]*Store)
		s.value = nil
		return s
	}
	target := s.GetPath(path.Parent())
	if target == nil {
		return nil
	}
	lost, ok := target.inner[path.Last()]
	if !ok {
		return nil
	}
	delete(target.inner, path.Last())
	lost.outer = nil
	return lost
}

// RemovedPaths lists the nodes the _delete and _divide directives in update
// remove, as normalized paths relative to the node update is applied to.
// Malformed directives are skipped; ApplyUpdate reports them.
func RemovedPaths(update any) []domain.Path {
	var out []domain.Path
	collectRemoved(domain.Path{}, update, &out)
	return out
}

func collectRemoved(at domain.Path, update any, out *[]domain.Path) {
	upd, ok := asUpdate(update)
	if !ok {
		return
	}
	if raw, ok := upd[domain.KeyDelete]; ok {
		if paths, err := toPaths(raw); err == nil {
			for _, path := range paths {
				*out = append(*out, at.Concat(path).Normalize())
			}
		}
	}
	if raw, ok := upd[domain.KeyDivide]; ok {
		if divide, err := toDivide(raw); err == nil {
			*out = append(*out, at.Append(divide.Mother))
		}
	}
	for _, key := range domain.SortedKeys(upd) {
		switch key {
		case domain.KeyDelete, domain.KeyGenerate, domain.KeyDivide, domain.KeyReduce:
			continue
		}
		collectRemoved(at.Append(key), upd[key], out)
	}
}

func (s *Store) structural(err error) error {
	return fmt.Errorf("%w at %q: %v", domain.ErrStructural, s.PathFor().String(), err)
}

// hasDirective lets an undecided node accept structural directives, so an
// empty placeholder can receive generated subtrees.
func hasDirective(update any) bool {
	m, ok := asUpdate(update)
	if !ok {
		return false
	}
	for _, key := range []string{domain.KeyDelete, domain.KeyGenerate, domain.KeyDivide} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func asUpdate(v any) (map[string]any, bool) {
	switch u := v.(type) {
	case map[string]any:
		return u, true
	case domain.Update:
		return u, true
	}
	return nil, false
}

func toPaths(raw any) ([]domain.Path, error) {
	switch v := raw.(type) {
	case []domain.Path:
		return v, nil
	case domain.Path:
		return []domain.Path{v}, nil
	case []any:
		out := make([]domain.Path, 0, len(v))
		for _, item := range v {
			p, ok := domain.ToPath(item)
			if !ok {
				return nil, fmt.Errorf("invalid delete path %v", item)
			}
			out = append(out, p)
		}
		return out, nil
	case [][]string:
		out := make([]domain.Path, 0, len(v))
		for _, item := range v {
			out = append(out, domain.Path(item))
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid _delete directive %T", raw)
}

func toGenerates(raw any) ([]domain.Generate, error) {
	switch v := raw.(type) {
	case []domain.Generate:
		return v, nil
	case domain.Generate:
		return []domain.Generate{v}, nil
	case []any:
		out := make([]domain.Generate, 0, len(v))
		for _, item := range v {
			g, ok := item.(domain.Generate)
			if !ok {
				return nil, fmt.Errorf("invalid generate entry %T", item)
			}
			out = append(out, g)
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid _generate directive %T", raw)
}

func toDivide(raw any) (domain.Divide, error) {
	switch v := raw.(type) {
	case domain.Divide:
		return v, nil
	case *domain.Divide:
		if v != nil {
			return *v, nil
		}
	}
	return domain.Divide{}, fmt.Errorf("invalid _divide directive %T", raw)
}
