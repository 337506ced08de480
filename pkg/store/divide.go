package store

import (
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

// DivideValue computes the states of two daughters of s. A leaf uses its
// divider; a branch divides every child that can be divided and collects
// the results key by key, skipping leaves without a divider. Calling it on
// a leaf without a divider fails with *domain.DivisionError.
func (s *Store) DivideValue() ([2]any, error) {
	states, divisible, err := s.divideValue()
	if err != nil {
		return states, err
	}
	if !divisible {
		return states, &domain.DivisionError{Path: s.PathFor(), Reason: "leaf has neither divider nor children"}
	}
	return states, nil
}

func (s *Store) divideValue() ([2]any, bool, error) {
	if !s.isBranch() {
		if !s.divider.IsSet() {
			return [2]any{}, false, nil
		}
		var siblings map[string]any
		if len(s.divider.Topology) > 0 {
			var ok bool
			if s.outer != nil {
				siblings, ok = s.outer.GetValues(s.divider.Topology)
			}
			if !ok {
				return [2]any{}, false, &domain.DivisionError{
					Path:   s.PathFor(),
					Reason: "divider topology path cannot be resolved",
					Err:    domain.ErrStructural,
				}
			}
		}
		states, err := s.divider.Divide(s.value, siblings)
		if err != nil {
			var derr *domain.DivisionError
			if errors.As(err, &derr) {
				return [2]any{}, false, err
			}
			return [2]any{}, false, &domain.DivisionError{Path: s.PathFor(), Reason: err.Error(), Err: err}
		}
		return states, true, nil
	}

	daughters := [2]map[string]any{{}, {}}
	for _, key := range s.Children() {
		states, divisible, err := s.inner[key].divideValue()
		if err != nil {
			return [2]any{}, false, err
		}
		if !divisible {
			continue
		}
		daughters[0][key] = states[0]
		daughters[1][key] = states[1]
	}
	return [2]any{daughters[0], daughters[1]}, true, nil
}

// divide runs a _divide directive against a child of s and returns the
// topology of the generated daughters.
func (s *Store) divide(d domain.Divide) (domain.Topology, error) {
	mother, ok := s.inner[d.Mother]
	if !ok {
		return nil, s.structural(fmt.Errorf("mother %q not found", d.Mother))
	}
	if len(d.Daughters) > 2 {
		return nil, s.structural(fmt.Errorf("division yields two daughters, got %d", len(d.Daughters)))
	}

	snapshot := mother.Snapshot()
	states, err := mother.DivideValue()
	if err != nil {
		return nil, err
	}

	topology := domain.Topology{}
	for i, daughter := range d.Daughters {
		installed, err := s.Generate(daughter.Path, daughter.Processes, daughter.Topology, daughter.InitialState)
		if err != nil {
			return nil, err
		}
		if len(installed) > 0 {
			topology.Merge(installed.Nest(daughter.Path))
		}
		if err := s.ApplySubschemas(); err != nil {
			return nil, err
		}

		node, ok := s.inner[daughter.ID]
		if !ok {
			return nil, s.structural(fmt.Errorf("daughter %q was not generated", daughter.ID))
		}
		if err := node.SetValue(daughterState(snapshot, states[i])); err != nil {
			return nil, err
		}
		s.ApplyDefaults()
	}
	s.DeletePath(domain.NewPath(d.Mother))
	return topology, nil
}

// daughterState layers the divided values over a fresh copy of the mother's
// snapshot.
func daughterState(snapshot, divided any) any {
	base, ok := deepcopy.Copy(snapshot).(map[string]any)
	if !ok {
		return divided
	}
	if d, ok := divided.(map[string]any); ok {
		return schema.DeepMerge(base, d)
	}
	return base
}
