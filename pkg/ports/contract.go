package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/domain"
)

// RunEmitterContract runs a suite of tests to verify that an Emitter
// implementation adheres to the defined interface contract. Emitters that
// also implement HistorySource must read back what was emitted. The emitter
// must be fresh: the suite asserts on everything it stores.
func RunEmitterContract(t *testing.T, emitter Emitter) {
	t.Helper()
	ctx := context.Background()
	source, readable := emitter.(HistorySource)

	t.Run("No configuration yet", func(t *testing.T) {
		if !readable {
			t.Skip("emitter does not implement HistorySource")
		}
		_, err := source.Configuration(ctx)
		assert.ErrorIs(t, err, domain.ErrNoConfiguration)
	})

	t.Run("Emit configuration", func(t *testing.T) {
		err := emitter.Emit(ctx, domain.Envelope{
			Table:        domain.TableConfiguration,
			ExperimentID: "contract",
			Data: map[string]any{
				"experiment_id": "contract",
				"topology":      map[string]any{"growth": map[string]any{"global": []any{"global"}}},
			},
		})
		require.NoError(t, err)

		if !readable {
			return
		}
		config, err := source.Configuration(ctx)
		require.NoError(t, err)
		assert.Equal(t, "contract", config["experiment_id"])
	})

	t.Run("Emit history in order", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			err := emitter.Emit(ctx, domain.Envelope{
				Table:        domain.TableHistory,
				ExperimentID: "contract",
				Data: map[string]any{
					"global":       map[string]any{"mass": float64(i)},
					domain.KeyTime: float64(i),
				},
			})
			require.NoError(t, err)
		}

		if !readable {
			return
		}
		history, err := source.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 3)
		for i, record := range history {
			// JSON backed emitters decode numbers as float64.
			assert.EqualValues(t, float64(i+1), record[domain.KeyTime])
			global, ok := record["global"].(map[string]any)
			require.True(t, ok, "nested maps must survive the round trip")
			assert.EqualValues(t, float64(i+1), global["mass"])
		}
	})

	t.Run("Emitted data is not retained by reference", func(t *testing.T) {
		if !readable {
			t.Skip("emitter does not implement HistorySource")
		}
		data := map[string]any{"global": map[string]any{"mass": 100.0}, domain.KeyTime: 4.0}
		require.NoError(t, emitter.Emit(ctx, domain.Envelope{Table: domain.TableHistory, Data: data}))
		data["global"].(map[string]any)["mass"] = -1.0

		history, err := source.History(ctx)
		require.NoError(t, err)
		last := history[len(history)-1]
		assert.EqualValues(t, 100.0, last["global"].(map[string]any)["mass"])
	})
}
