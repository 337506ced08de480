package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addSettingsFlags(cmd)
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("log-format", "", "")
	return cmd
}

func TestLoadSettings_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("composite: toy_compartment\ntotal_time: 12\n"), 0644))

	cmd := newSettingsCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--total-time", "4", "--emitter", "null", "--log-level", "debug"}))

	s, err := loadSettings(cmd, []string{path})
	require.NoError(t, err)

	assert.Equal(t, "toy_compartment", s.Composite)
	assert.Equal(t, 4.0, s.TotalTime)
	assert.Equal(t, "null", s.Emitter.Type)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadSettings_Invalid(t *testing.T) {
	cmd := newSettingsCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--timestep", "0"}))

	_, err := loadSettings(cmd, nil)
	assert.ErrorContains(t, err, "timestep must be positive")
}
