package vivarium_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium"
	"github.com/aretw0/vivarium/pkg/composites"
	"github.com/aretw0/vivarium/pkg/domain"
)

func TestSimulateCompartment(t *testing.T) {
	timeseries, err := vivarium.SimulateCompartment(context.Background(), composites.ToyCompartment{}, vivarium.Settings{
		TotalTime: 3,
		OuterPath: domain.NewPath("cell"),
		Registry:  composites.Library(),
		InitialState: map[string]any{
			"cell": map[string]any{
				"periplasm": map[string]any{"GLC": 20, "MASS": 100, "DENSITY": 10},
				"cytoplasm": map[string]any{"GLC": 0, "MASS": 3, "DENSITY": 10},
			},
		},
	})
	require.NoError(t, err)

	cell := timeseries["cell"].(map[string]any)
	periplasm := cell["periplasm"].(map[string]any)
	assert.Equal(t, []any{18, 16, 14}, periplasm["GLC"])

	cytoplasm := cell["cytoplasm"].(map[string]any)
	volume := cytoplasm["VOLUME"].([]any)
	require.Len(t, volume, 3)
	assert.InDelta(t, 0.5, volume[2], 1e-12)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, timeseries["time"])
}

func TestSimulateProcess_Defaults(t *testing.T) {
	process, err := composites.NewGrowthDeath(map[string]any{"threshold": 100})
	require.NoError(t, err)

	timeseries, err := vivarium.SimulateProcess(context.Background(), process, vivarium.Settings{})
	require.NoError(t, err)
	assert.Len(t, timeseries["time"], 10)
}

func TestNew_TopologyError(t *testing.T) {
	process, err := composites.NewGrowthDeath(nil)
	require.NoError(t, err)

	_, err = vivarium.New(domain.Processes{"p": process}, domain.Topology{"p": domain.Ports{}})
	assert.ErrorIs(t, err, domain.ErrTopology)
}
