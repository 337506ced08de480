package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

func TestGenerateState(t *testing.T) {
	transport := &fakeProcess{ports: domain.Schema{
		"internal": {"A": map[string]any{"_default": 0.0, "_emit": true}},
		"external": {"A": map[string]any{"_default": 5.0, "_updater": "set"}},
	}}
	s, err := GenerateState(
		domain.Processes{"cell": domain.Processes{"transport": transport}},
		domain.Topology{"cell": domain.Topology{"transport": domain.Ports{
			"internal": domain.NewPath("molecules"),
			"external": domain.NewPath("..", "environment"),
		}}},
		map[string]any{"cell": map[string]any{"molecules": map[string]any{"A": 2.0}}},
	)
	require.NoError(t, err)

	internal, _ := s.GetIn(domain.NewPath("cell", "molecules", "A"))
	assert.Equal(t, 2.0, internal)
	external, _ := s.GetIn(domain.NewPath("environment", "A"))
	assert.Equal(t, 5.0, external)
	assert.Equal(t, "set", s.GetPath(domain.NewPath("environment", "A")).Updater().String())

	leaf := s.GetPath(domain.NewPath("cell", "transport"))
	require.NotNil(t, leaf)
	p, ok := leaf.Process()
	require.True(t, ok)
	assert.Same(t, transport, p)
	assert.Equal(t, "set", leaf.Updater().String())

	entries := s.Processes()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.NewPath("cell", "transport"), entries[0].Path)
}

func TestGenerateState_EmptyPortPathIsEnclosingNode(t *testing.T) {
	p := &fakeProcess{ports: domain.Schema{"here": {"mass": map[string]any{"_default": 1.0}}}}
	s, err := GenerateState(
		domain.Processes{"agent": domain.Processes{"p": p}},
		domain.Topology{"agent": domain.Topology{"p": domain.Ports{"here": domain.NewPath()}}},
		nil,
	)
	require.NoError(t, err)

	mass, ok := s.GetIn(domain.NewPath("agent", "mass"))
	require.True(t, ok)
	assert.Equal(t, 1.0, mass)
}

func TestGenerateState_Wildcard(t *testing.T) {
	p := &fakeProcess{ports: domain.Schema{
		"fields": {"*": map[string]any{"_default": 0.0, "_updater": "set", "_emit": true}},
	}}
	s, err := GenerateState(
		domain.Processes{"diffusion": p},
		domain.Topology{"diffusion": domain.Ports{"fields": domain.NewPath("fields")}},
		map[string]any{"fields": map[string]any{"glc": 1.5, "ac": nil}},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"glc": 1.5, "ac": 0.0}, s.ChildValue("fields"))
	assert.Equal(t, "set", s.GetPath(domain.NewPath("fields", "glc")).Updater().String())

	_, err = s.ApplyUpdate(map[string]any{"fields": map[string]any{"lac": 3.0}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, s.GetPath(domain.NewPath("fields", "lac")).Value())
}

func TestGenerateState_MissingPorts(t *testing.T) {
	p := &fakeProcess{ports: domain.Schema{
		"a": {"x": map[string]any{}},
		"b": {"y": map[string]any{}},
		"c": {"z": map[string]any{}},
	}}
	_, err := GenerateState(
		domain.Processes{"agent": domain.Processes{"p": p}},
		domain.Topology{"agent": domain.Topology{"p": domain.Ports{"b": domain.NewPath("b")}}},
		nil,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTopology))

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], "topology conflict: agent/p process does not have a port")
	assert.EqualError(t, errs[1], "topology conflict: agent/p process does not have c port")
}

func TestEstablishPath_AboveRoot(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	_, err = s.EstablishPath(domain.NewPath("..", "x"), nil, nil)
	assert.True(t, errors.Is(err, domain.ErrStructural))
}
