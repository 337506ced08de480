package store

import (
	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
)

// EmitData returns the emit-flagged part of the subtree. A branch yields a
// map of the children that emit something, or nil when none does; the root
// always yields a map. Leaves yield their value when flagged and nil
// otherwise. Process leaves contribute their pulled data when they implement
// domain.Puller. Values are deep copies, safe for emitters to retain.
func (s *Store) EmitData() any {
	if s.isBranch() {
		data := make(map[string]any, len(s.inner))
		for key, c := range s.inner {
			if v := c.EmitData(); v != nil {
				data[key] = v
			}
		}
		if len(data) == 0 && s.outer != nil {
			return nil
		}
		return data
	}
	if !s.emit {
		return nil
	}
	if p, ok := s.value.(domain.Process); ok {
		if puller, ok := p.(domain.Puller); ok {
			return deepcopy.Copy(puller.PullData())
		}
		return nil
	}
	return deepcopy.Copy(s.value)
}
