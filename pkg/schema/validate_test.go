package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/domain"
)

func TestValidatePorts(t *testing.T) {
	ports := domain.Schema{
		"internal": {"A": map[string]any{}},
		"external": {"B": map[string]any{}},
		"global":   {"mass": map[string]any{}},
	}

	t.Run("complete", func(t *testing.T) {
		err := ValidatePorts(domain.NewPath("agent", "p"), ports, domain.Ports{
			"internal": domain.NewPath("cell"),
			"external": domain.NewPath("..", "env"),
			"global":   domain.NewPath(),
		})
		assert.NoError(t, err)
	})

	t.Run("missing ports are all reported", func(t *testing.T) {
		err := ValidatePorts(domain.NewPath("agent", "p"), ports, domain.Ports{
			"internal": domain.NewPath("cell"),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrTopology))

		errs := ValidationErrors(err)
		require.Len(t, errs, 2)
		var terr *domain.TopologyError
		require.ErrorAs(t, errs[0], &terr)
		assert.Equal(t, "external", terr.Port)
		assert.Equal(t, "topology conflict: agent/p process does not have global port", errs[1].Error())
	})
}

func TestValidatePortSchema(t *testing.T) {
	err := ValidatePortSchema(domain.Schema{
		"internal": {"A": map[string]any{"_default": 1.0}, "B": 3},
	})
	require.Error(t, err)
	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "internal/B")
}
