package store

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// Reduce folds reducer over s and every descendant in Depth order,
// starting from a copy of initial.
func (s *Store) Reduce(reducer registry.ReducerFunc, initial any) (any, error) {
	acc := deepcopy.Copy(initial)
	for _, e := range s.Depth() {
		var err error
		acc, err = reducer(acc, registry.ReduceNode{
			Path:  e.Path,
			Value: e.Store.Value(),
			Leaf:  e.Store.IsLeaf(),
		})
		if err != nil {
			return nil, &domain.UpdateError{Path: s.PathFor().Concat(e.Path), Err: err}
		}
	}
	return acc, nil
}

// ReduceTo reduces s and applies the result as an update to the node at
// path, relative to s.
func (s *Store) ReduceTo(path domain.Path, reducer registry.ReducerFunc, initial any) error {
	target := s.GetPath(path)
	if target == nil {
		return s.structural(fmt.Errorf("reduce target %q not found", path.String()))
	}
	value, err := s.Reduce(reducer, initial)
	if err != nil {
		return err
	}
	_, err = target.ApplyUpdate(value)
	return err
}

// reduction resolves a _reduce directive received by the leaf s into the
// delta it stands for.
func (s *Store) reduction(raw any) (any, error) {
	d, err := toReduce(raw)
	if err != nil {
		return nil, s.structural(err)
	}
	reducer, err := s.registry.ResolveReducer(d.Reducer)
	if err != nil {
		return nil, &domain.UpdateError{Path: s.PathFor(), Err: err}
	}
	from := s.GetPath(d.From)
	if from == nil {
		return nil, s.structural(fmt.Errorf("reduce source %q not found", d.From.String()))
	}
	return from.Reduce(reducer, d.Initial)
}

func toReduce(raw any) (domain.Reduce, error) {
	switch v := raw.(type) {
	case domain.Reduce:
		return v, nil
	case *domain.Reduce:
		if v != nil {
			return *v, nil
		}
	case map[string]any:
		from, ok := domain.ToPath(v["from"])
		if !ok && v["from"] != nil {
			return domain.Reduce{}, fmt.Errorf("invalid reduce source %v", v["from"])
		}
		return domain.Reduce{From: from, Reducer: v["reducer"], Initial: v["initial"]}, nil
	}
	return domain.Reduce{}, fmt.Errorf("invalid _reduce directive %T", raw)
}
