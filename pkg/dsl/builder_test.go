package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/vivarium/pkg/domain"
)

type grower struct {
	domain.Base
}

func (grower) PortsSchema() domain.Schema {
	return domain.Schema{
		"global":   {"mass": map[string]any{"_default": 1.0}},
		"internal": {"glc": map[string]any{"_default": 0.0}},
	}
}

func (grower) NextUpdate(float64, domain.State) (domain.Update, error) {
	return domain.Update{}, nil
}

func TestBuilder_Wiring(t *testing.T) {
	blueprint, err := New().
		Add("growth", grower{}).Port("global", "..", "global").Port("internal", "internal").At("cells", "a").
		Add("other", grower{}).Ports().
		Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	ports, ok := blueprint.Topology.PortsAt(domain.NewPath("cells", "a", "growth"))
	if !ok {
		t.Fatal("expected ports for cells/a/growth")
	}
	if !ports["global"].Equal(domain.NewPath("..", "global")) {
		t.Errorf("expected global wired to ../global, got %v", ports["global"])
	}

	ports, ok = blueprint.Topology.PortsAt(domain.NewPath("other"))
	if !ok {
		t.Fatal("expected ports for other")
	}
	if !ports["internal"].Equal(domain.NewPath("internal")) {
		t.Errorf("expected default wiring to internal, got %v", ports["internal"])
	}

	var count int
	blueprint.Processes.Walk(func(domain.Path, domain.Process) { count++ })
	if count != 2 {
		t.Errorf("expected 2 processes, got %d", count)
	}
}

func TestBuilder_MissingPort(t *testing.T) {
	_, err := New().Add("growth", grower{}).Port("global", "global").Build()
	if !errors.Is(err, domain.ErrTopology) {
		t.Fatalf("expected topology error, got %v", err)
	}
	var topoErr *domain.TopologyError
	if !errors.As(err, &topoErr) || topoErr.Port != "internal" {
		t.Errorf("expected missing internal port, got %v", err)
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New()
	first := b.Add("growth", grower{})
	if b.Add("growth", grower{}) != first {
		t.Error("expected the existing builder for a taken name")
	}
}

func TestBuilder_AsCompartment(t *testing.T) {
	b := New()
	b.Add("growth", grower{}).Ports()

	processes, err := b.GenerateProcesses(nil)
	if err != nil {
		t.Fatalf("GenerateProcesses() failed: %v", err)
	}
	if _, ok := processes["growth"].(grower); !ok {
		t.Errorf("expected growth process, got %T", processes["growth"])
	}
}
