package composites

import (
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// GrowthDeathConfig configures GrowthDeath.
type GrowthDeathConfig struct {
	GrowthRate float64 `mapstructure:"growth_rate"`
	Threshold  float64 `mapstructure:"threshold"`
	// Targets are slash separated paths, relative to the global port,
	// removed once the mass passes the threshold.
	Targets  []string `mapstructure:"targets"`
	Timestep float64  `mapstructure:"timestep"`
}

// GrowthDeath grows global/mass linearly. Once the mass exceeds the
// threshold it stops growing and deletes its targets instead.
type GrowthDeath struct {
	domain.Base
	config GrowthDeathConfig
}

// NewGrowthDeath builds a GrowthDeath from a loosely typed configuration.
func NewGrowthDeath(raw map[string]any) (*GrowthDeath, error) {
	config := GrowthDeathConfig{GrowthRate: 1.0, Threshold: 6.0}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &GrowthDeath{
		Base:   domain.Base{Timestep: config.Timestep, Params: raw},
		config: config,
	}, nil
}

func (g *GrowthDeath) PortsSchema() domain.Schema {
	return domain.Schema{
		"global": {
			"mass": map[string]any{"_default": 0.0, "_emit": true},
		},
	}
}

func (g *GrowthDeath) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	mass, _ := registry.AsFloat(states["global"]["mass"])
	if mass > g.config.Threshold {
		paths := make([]domain.Path, 0, len(g.config.Targets))
		for _, target := range g.config.Targets {
			paths = append(paths, domain.ParsePath(target))
		}
		return domain.Update{"global": domain.DeleteUpdate(paths...)}, nil
	}
	return domain.Update{
		"global": map[string]any{"mass": g.config.GrowthRate * interval},
	}, nil
}
