package runtime_test

import (
	"github.com/aretw0/vivarium/pkg/domain"
)

// counter adds one to state/<name> every time it runs and records the
// intervals it was given.
type counter struct {
	domain.Base
	name      string
	intervals []float64
}

func newCounter(name string, timestep float64) *counter {
	return &counter{Base: domain.Base{Timestep: timestep}, name: name}
}

func (c *counter) PortsSchema() domain.Schema {
	return domain.Schema{
		"state": {c.name: map[string]any{"_default": 0, "_emit": true}},
	}
}

func (c *counter) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	c.intervals = append(c.intervals, interval)
	return domain.Update{"state": map[string]any{c.name: 1}}, nil
}

// growthDeath grows global/mass linearly and, once mass passes the
// threshold, deletes the sibling nodes named in targets instead.
type growthDeath struct {
	domain.Base
	targets []string
}

func (g *growthDeath) PortsSchema() domain.Schema {
	return domain.Schema{
		"global": {"mass": map[string]any{"_default": 0.0, "_emit": true}},
	}
}

func (g *growthDeath) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	mass, _ := states["global"]["mass"].(float64)
	if mass > 6.0 {
		paths := make([]domain.Path, 0, len(g.targets))
		for _, target := range g.targets {
			paths = append(paths, domain.NewPath(domain.Up, target))
		}
		return domain.Update{"global": domain.DeleteUpdate(paths...)}, nil
	}
	return domain.Update{"global": map[string]any{"mass": 1.0 * interval}}, nil
}

// doubler is a deriver keeping derived/double at twice state/<source>.
type doubler struct {
	domain.DeriverBase
	source string
	runs   int
}

func (d *doubler) PortsSchema() domain.Schema {
	return domain.Schema{
		"state":   {d.source: map[string]any{"_default": 0}},
		"derived": {"double": map[string]any{"_default": 0, "_updater": "set", "_emit": true}},
	}
}

func (d *doubler) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	d.runs++
	v, _ := states["state"][d.source].(int)
	return domain.Update{"derived": map[string]any{"double": 2 * v}}, nil
}

// spawner generates a counter under agents/<n> on its first run.
type spawner struct {
	domain.Base
	done bool
	born *counter
}

func (s *spawner) PortsSchema() domain.Schema {
	return domain.Schema{"agents": {}}
}

func (s *spawner) NextUpdate(interval float64, states domain.State) (domain.Update, error) {
	if s.done {
		return domain.Update{}, nil
	}
	s.done = true
	return domain.Update{"agents": domain.GenerateUpdate(domain.Generate{
		Path:      domain.NewPath("baby"),
		Processes: domain.Processes{"clock": s.born},
		Topology:  domain.Topology{"clock": domain.Ports{"state": domain.NewPath("state")}},
	})}, nil
}

type badTimestep struct {
	domain.Base
}

func (badTimestep) PortsSchema() domain.Schema { return domain.Schema{} }

func (badTimestep) NextUpdate(float64, domain.State) (domain.Update, error) {
	return domain.Update{}, nil
}

func (badTimestep) LocalTimestep() float64 { return 0 }

// quitter deletes itself from the tree on its first run.
type quitter struct {
	domain.Base
}

func (quitter) PortsSchema() domain.Schema {
	return domain.Schema{"global": {}}
}

func (quitter) NextUpdate(float64, domain.State) (domain.Update, error) {
	return domain.Update{"global": domain.DeleteUpdate(domain.NewPath(domain.Up, "quitter"))}, nil
}

// tallied is a counter declaring a doubler wired onto its own state port.
type tallied struct {
	*counter
	deriver *doubler
}

func (t *tallied) Derivers() map[string]domain.DeriverSpec {
	return map[string]domain.DeriverSpec{
		"double": {
			Deriver:     t.deriver,
			PortMapping: map[string]string{"state": "state", "derived": "state"},
		},
	}
}

// cycler generates agents/x on odd runs, each time holding the next process
// name in names, and deletes agents/x on even runs.
type cycler struct {
	domain.Base
	names []string
	runs  int
}

func (c *cycler) PortsSchema() domain.Schema {
	return domain.Schema{"agents": {}}
}

func (c *cycler) NextUpdate(float64, domain.State) (domain.Update, error) {
	c.runs++
	if c.runs%2 == 0 {
		return domain.Update{"agents": domain.DeleteUpdate(domain.NewPath("x"))}, nil
	}
	name := c.names[(c.runs/2)%len(c.names)]
	return domain.Update{"agents": domain.GenerateUpdate(domain.Generate{
		Path:      domain.NewPath("x"),
		Processes: domain.Processes{name: newCounter(name, 1)},
		Topology:  domain.Topology{name: domain.Ports{"state": domain.NewPath("state")}},
	})}, nil
}
