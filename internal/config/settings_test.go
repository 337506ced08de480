package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/internal/config"
)

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
composite: toy_compartment
total_time: 12
initial_state:
  periplasm:
    GLC: 20
emitter:
  type: redis
  address: localhost:6379
  prefix: "toy:"
log:
  level: debug
`), 0644))

	s, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "toy_compartment", s.Composite)
	assert.Equal(t, 12.0, s.TotalTime)
	assert.Equal(t, 1.0, s.Timestep, "unset fields keep their defaults")
	assert.Equal(t, map[string]any{"periplasm": map[string]any{"GLC": 20}}, s.InitialState)
	assert.Equal(t, config.EmitterSettings{Type: "redis", Address: "localhost:6379", Prefix: "toy:"}, s.Emitter)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"composite": "growth_death",
		"config": {"growth_rate": 2},
		"timestep": 0.5,
		"emitter": {"type": "file", "path": "out"}
	}`), 0644))

	s, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"growth_rate": 2.0}, s.Config)
	assert.Equal(t, 0.5, s.Timestep)
	assert.Equal(t, 10.0, s.TotalTime)
	assert.Equal(t, "out", s.Emitter.Path)
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Settings) {}},
		{name: "no composite", mutate: func(s *config.Settings) { s.Composite = "" }, wantErr: "composite is required"},
		{name: "zero total time", mutate: func(s *config.Settings) { s.TotalTime = 0 }, wantErr: "total_time must be positive"},
		{name: "negative timestep", mutate: func(s *config.Settings) { s.Timestep = -1 }, wantErr: "timestep must be positive"},
		{name: "unknown emitter", mutate: func(s *config.Settings) { s.Emitter.Type = "kafka" }, wantErr: `unknown emitter type "kafka"`},
		{name: "redis without address", mutate: func(s *config.Settings) { s.Emitter.Type = config.EmitterRedis }, wantErr: "requires an address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := config.Parse([]byte("composite: [unterminated"), ".yml")
	assert.ErrorContains(t, err, "failed to parse settings yaml")
}
