package graph_test

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/vivarium/internal/presentation/graph"
	"github.com/aretw0/vivarium/pkg/composites"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name      string
		composite string
		contains  []string
	}{
		{
			name:      "Process And Deriver Shapes",
			composite: "toy_compartment",
			contains: []string{
				"graph LR\n",
				`p_death[["death"]]`,
				`p_internal_volume{{"internal_volume"}}`,
				`p_external_volume{{"external_volume"}}`,
			},
		},
		{
			name:      "Store Nodes",
			composite: "toy_compartment",
			contains: []string{
				`s_root[("root")]`,
				`s_cytoplasm[("cytoplasm")]`,
				`s_periplasm[("periplasm")]`,
			},
		},
		{
			name:      "Port Edges",
			composite: "toy_compartment",
			contains: []string{
				`p_death -- "global" --> s_root`,
				`p_transport -- "external" --> s_periplasm`,
				`p_internal_volume -- "compartment" --> s_cytoplasm`,
			},
		},
		{
			name:      "Nested Paths Resolve Parent Steps",
			composite: "growth_division",
			contains: []string{
				`p_cells_0_growth[["cells/0/growth"]]`,
				`p_cells_0_division -- "cells" --> s_cells`,
				`s_cells_0_global[("cells/0/global")]`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := composites.Build(tt.composite, nil, nil)
			if err != nil {
				t.Fatalf("Build(%q) error = %v", tt.composite, err)
			}
			got := graph.GenerateMermaid(c.Blueprint.Processes, c.Blueprint.Topology)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestYAML(t *testing.T) {
	c, err := composites.Build("growth_death", nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out, err := graph.YAML(c.Blueprint.Topology)
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}

	var decoded map[string]map[string][]string
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if got := decoded["process"]["global"]; len(got) != 1 || got[0] != "global" {
		t.Errorf("process.global = %v, want [global]", got)
	}
}
