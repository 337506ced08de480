package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Emitter types understood by the CLI.
const (
	EmitterPrint      = "print"
	EmitterNull       = "null"
	EmitterTimeseries = "timeseries"
	EmitterFile       = "file"
	EmitterRedis      = "redis"
)

// EmitterSettings selects and configures the sink for experiment records.
type EmitterSettings struct {
	Type     string `yaml:"type" json:"type"`
	Address  string `yaml:"address,omitempty" json:"address,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	DB       int    `yaml:"db,omitempty" json:"db,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Format   string `yaml:"format,omitempty" json:"format,omitempty"`
}

// LogSettings configures the application logger.
type LogSettings struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Settings describes one simulation run.
type Settings struct {
	Composite    string          `yaml:"composite" json:"composite"`
	Description  string          `yaml:"description,omitempty" json:"description,omitempty"`
	ExperimentID string          `yaml:"experiment_id,omitempty" json:"experiment_id,omitempty"`
	Config       map[string]any  `yaml:"config,omitempty" json:"config,omitempty"`
	TotalTime    float64         `yaml:"total_time" json:"total_time"`
	Timestep     float64         `yaml:"timestep" json:"timestep"`
	InitialState map[string]any  `yaml:"initial_state,omitempty" json:"initial_state,omitempty"`
	Emitter      EmitterSettings `yaml:"emitter" json:"emitter"`
	Log          LogSettings     `yaml:"log" json:"log"`
	// MetricsAddress, when set, is where the CLI serves the HTTP surface.
	MetricsAddress string `yaml:"metrics_address,omitempty" json:"metrics_address,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		Composite: "growth_death",
		TotalTime: 10,
		Timestep:  1,
		Emitter:   EmitterSettings{Type: EmitterTimeseries},
		Log:       LogSettings{Level: "info", Format: "text"},
	}
}

// Load reads a settings file (YAML or JSON, chosen by extension) over the
// defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)))
}

// Parse decodes settings from data. ext ".json" selects JSON; anything
// else is YAML.
func Parse(data []byte, ext string) (Settings, error) {
	s := Default()
	if ext == ".json" {
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse settings yaml: %w", err)
		}
	}
	return s, s.Validate()
}

// Validate reports every problem with s at once.
func (s Settings) Validate() error {
	var errs []error
	if s.Composite == "" {
		errs = append(errs, errors.New("composite is required"))
	}
	if s.TotalTime <= 0 {
		errs = append(errs, fmt.Errorf("total_time must be positive, got %v", s.TotalTime))
	}
	if s.Timestep <= 0 {
		errs = append(errs, fmt.Errorf("timestep must be positive, got %v", s.Timestep))
	}
	switch s.Emitter.Type {
	case EmitterPrint, EmitterNull, EmitterTimeseries, EmitterFile:
	case EmitterRedis:
		if s.Emitter.Address == "" {
			errs = append(errs, errors.New("redis emitter requires an address"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown emitter type %q", s.Emitter.Type))
	}
	return errors.Join(errs...)
}
