package vivarium_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/vivarium"
	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/composites"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/dsl"
)

// ExampleSimulateProcess runs a single process with its ports wired to
// children of the root named after them.
func ExampleSimulateProcess() {
	process, err := composites.NewGrowthDeath(map[string]any{
		"targets": []string{"../process"},
	})
	if err != nil {
		log.Fatal(err)
	}

	timeseries, err := vivarium.SimulateProcess(context.Background(), process, vivarium.Settings{
		TotalTime: 10,
		Timestep:  1,
	})
	if err != nil {
		log.Fatal(err)
	}

	global := timeseries["global"].(map[string]any)
	fmt.Println(global["mass"])
	// Output:
	// [1 2 3 4 5 6 7 7 7 7]
}

// ExampleNew_dsl wires processes with the dsl builder and reads the state
// tree after a few ticks.
func ExampleNew_dsl() {
	growth, err := composites.NewGrowth(map[string]any{"threshold": 100})
	if err != nil {
		log.Fatal(err)
	}
	blueprint, err := dsl.New().
		Add("growth", growth).Port("global", "global").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	emitter := memory.NewEmitter()
	exp, err := vivarium.New(blueprint.Processes, blueprint.Topology,
		vivarium.WithID("example"),
		vivarium.WithEmitter(emitter))
	if err != nil {
		log.Fatal(err)
	}
	if err := exp.UpdateInterval(context.Background(), 3, 0.5); err != nil {
		log.Fatal(err)
	}

	mass, _ := exp.State().GetIn(domain.NewPath("global", "mass"))
	fmt.Println(exp.ID(), exp.Time(), mass)
	fmt.Println(len(emitter.PathTimeseries()["time"]))
	// Output:
	// example 3 4
	// 6
}
