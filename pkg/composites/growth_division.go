package composites

import (
	"github.com/aretw0/vivarium/pkg/compartment"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// GrowthConfig configures Growth.
type GrowthConfig struct {
	Rate      float64 `mapstructure:"rate"`
	Threshold float64 `mapstructure:"threshold"`
	Timestep  float64 `mapstructure:"timestep"`
}

// Growth adds Rate mass per unit time and raises global/divide once the
// mass reaches Threshold. Mass is split between daughters on division.
type Growth struct {
	domain.Base
	config GrowthConfig
}

// NewGrowth builds a Growth from a loosely typed configuration.
func NewGrowth(raw map[string]any) (*Growth, error) {
	config := GrowthConfig{Rate: 1.0, Threshold: 2.0}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &Growth{
		Base: domain.Base{
			Timestep: config.Timestep,
			Params:   map[string]any{"rate": config.Rate, "threshold": config.Threshold},
		},
		config: config,
	}, nil
}

func (g *Growth) PortsSchema() domain.Schema {
	return domain.Schema{
		"global": {
			"mass": map[string]any{
				"_default": 1.0,
				"_divider": "split",
				"_emit":    true,
				"_units":   "fg",
			},
			"divide": map[string]any{"_default": false, "_updater": "set"},
		},
	}
}

func (g *Growth) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	mass, _ := registry.AsFloat(states["global"]["mass"])
	grown := g.config.Rate * interval
	return domain.Update{
		"global": map[string]any{
			"mass":   grown,
			"divide": mass+grown >= g.config.Threshold,
		},
	}, nil
}

// MetaDivision is a deriver watching global/divide. When it is raised the
// cell is divided in its parent "cells" node: the mother's state is split
// between two daughters, each generated from the same compartment.
type MetaDivision struct {
	domain.DeriverBase
	compartment  compartment.Compartment
	options      []compartment.Option
	cellID       string
	daughterPath domain.Path
}

// NewMetaDivision builds the division deriver for the cell cellID.
// Daughter ids extend the mother's id with "0" and "1".
func NewMetaDivision(c compartment.Compartment, cellID string, daughterPath domain.Path, opts ...compartment.Option) *MetaDivision {
	return &MetaDivision{
		DeriverBase:  domain.DeriverBase{Base: domain.Base{Params: map[string]any{"cell_id": cellID}}},
		compartment:  c,
		options:      opts,
		cellID:       cellID,
		daughterPath: daughterPath,
	}
}

func (m *MetaDivision) PortsSchema() domain.Schema {
	return domain.Schema{
		"global": {
			"divide": map[string]any{"_default": false, "_updater": "set"},
		},
		"cells": {"*": map[string]any{}},
	}
}

func (m *MetaDivision) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	if divide, _ := states["global"]["divide"].(bool); !divide {
		return domain.Update{}, nil
	}

	daughters := make([]domain.Daughter, 0, 2)
	for _, suffix := range []string{"0", "1"} {
		id := m.cellID + suffix
		blueprint, err := compartment.Generate(m.compartment, map[string]any{"agent_id": id}, nil, m.options...)
		if err != nil {
			return nil, err
		}
		daughters = append(daughters, domain.Daughter{
			ID:        id,
			Path:      domain.NewPath(id).Concat(m.daughterPath),
			Processes: blueprint.Processes,
			Topology:  blueprint.Topology,
		})
	}
	return domain.Update{
		"cells": domain.DivideUpdate(domain.Divide{Mother: m.cellID, Daughters: daughters}),
	}, nil
}

// GrowthDivisionConfig configures GrowthDivision.
type GrowthDivisionConfig struct {
	AgentID string       `mapstructure:"agent_id"`
	Growth  GrowthConfig `mapstructure:"growth"`
}

// GrowthDivision is a cell that grows and divides. Its agents live side by
// side under a common "cells" node.
type GrowthDivision struct {
	defaults GrowthConfig
	options  []compartment.Option
}

// NewGrowthDivision builds the compartment. raw may hold a "growth" block
// used by every cell generated from it.
func NewGrowthDivision(raw map[string]any, opts ...compartment.Option) (*GrowthDivision, error) {
	config := GrowthDivisionConfig{Growth: GrowthConfig{Rate: 1.0, Threshold: 2.0}}
	if err := DecodeConfig(raw, &config); err != nil {
		return nil, err
	}
	return &GrowthDivision{defaults: config.Growth, options: opts}, nil
}

func (g *GrowthDivision) GenerateProcesses(config map[string]any) (domain.Processes, error) {
	decoded := GrowthDivisionConfig{AgentID: "0", Growth: g.defaults}
	if err := DecodeConfig(config, &decoded); err != nil {
		return nil, err
	}
	growth := &Growth{
		Base: domain.Base{
			Timestep: decoded.Growth.Timestep,
			Params:   map[string]any{"rate": decoded.Growth.Rate, "threshold": decoded.Growth.Threshold},
		},
		config: decoded.Growth,
	}
	return domain.Processes{
		"growth":   growth,
		"division": NewMetaDivision(g, decoded.AgentID, nil, g.options...),
	}, nil
}

func (g *GrowthDivision) GenerateTopology(config map[string]any) (domain.Topology, error) {
	return domain.Topology{
		"growth": domain.Ports{"global": domain.NewPath("global")},
		"division": domain.Ports{
			"global": domain.NewPath("global"),
			"cells":  domain.NewPath(domain.Up),
		},
	}, nil
}
