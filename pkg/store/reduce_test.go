package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

func populationConfig() map[string]any {
	return map[string]any{
		"agents": map[string]any{
			"_subschema": map[string]any{"mass": map[string]any{"_default": 0.0}},
		},
		"total": map[string]any{"_default": 0.0},
		"count": map[string]any{"_default": 0, "_updater": "set"},
	}
}

func seededPopulation(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(populationConfig(), opts...)
	require.NoError(t, err)
	require.NoError(t, s.SetValue(map[string]any{
		"agents": map[string]any{
			"a": map[string]any{"mass": 1.0},
			"b": map[string]any{"mass": 2.0},
			"c": map[string]any{"mass": 3.0},
		},
	}))
	s.ApplyDefaults()
	return s
}

func TestReduce(t *testing.T) {
	s := seededPopulation(t)
	sum, err := registry.NewRegistry().ResolveReducer(registry.ReduceSum)
	require.NoError(t, err)

	total, err := s.GetPath(domain.NewPath("agents")).Reduce(sum, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 6.0, total)

	require.NoError(t, s.GetPath(domain.NewPath("agents")).ReduceTo(domain.NewPath("..", "total"), sum, nil))
	assert.Equal(t, 6.0, s.ChildValue("total"))

	err = s.ReduceTo(domain.NewPath("nowhere"), sum, nil)
	assert.True(t, errors.Is(err, domain.ErrStructural))
}

func TestApplyUpdate_ReduceDirective(t *testing.T) {
	s := seededPopulation(t)

	_, err := s.ApplyUpdate(map[string]any{
		"total": domain.ReduceUpdate(domain.Reduce{
			From:    domain.NewPath("..", "agents"),
			Reducer: registry.ReduceSum,
			Initial: 0.0,
		}),
		"count": map[string]any{
			domain.KeyReduce: map[string]any{"from": "../agents", "reducer": "count"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.ChildValue("total"))
	assert.Equal(t, 3, s.ChildValue("count"))

	_, err = s.ApplyUpdate(map[string]any{
		"total": domain.ReduceUpdate(domain.Reduce{From: domain.NewPath("..", "agents"), Reducer: registry.ReduceSum}),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, s.ChildValue("total"), "the reduction is a delta for the leaf updater")
}

func TestApplyUpdate_ReduceRegistered(t *testing.T) {
	r := registry.NewRegistry()
	r.RegisterReducer("heaviest", func(acc any, node registry.ReduceNode) (any, error) {
		if !node.Leaf {
			return acc, nil
		}
		if best, ok := acc.(float64); ok && best >= node.Value.(float64) {
			return acc, nil
		}
		return node.Value, nil
	})
	s := seededPopulation(t, WithRegistry(r))

	_, err := s.ApplyUpdate(map[string]any{
		"total": map[string]any{
			domain.KeyReduce: domain.Reduce{From: domain.NewPath("..", "agents"), Reducer: "heaviest"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.ChildValue("total"))
}

func TestApplyUpdate_ReduceErrors(t *testing.T) {
	s := seededPopulation(t)

	_, err := s.ApplyUpdate(map[string]any{
		"total": domain.ReduceUpdate(domain.Reduce{From: domain.NewPath("..", "missing"), Reducer: "sum"}),
	})
	assert.True(t, errors.Is(err, domain.ErrStructural))

	_, err = s.ApplyUpdate(map[string]any{
		"total": domain.ReduceUpdate(domain.Reduce{From: domain.NewPath("..", "agents"), Reducer: "median"}),
	})
	assert.True(t, errors.Is(err, domain.ErrUnknownReducer))

	_, err = s.ApplyUpdate(map[string]any{"total": map[string]any{domain.KeyReduce: 7}})
	assert.True(t, errors.Is(err, domain.ErrStructural))
}
