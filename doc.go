/*
Package vivarium is a hierarchical state-and-scheduling engine for
multi-scale simulations.

Models are written as processes: small units that declare the state they
read and write through named ports and compute an update for an interval
of simulated time. An experiment places processes in a tree of state,
wires every port to a path in that tree, and runs all of them together,
each at its own natural timestep.

# Concept

The state tree is made of stores. A branch holds named children; a leaf
holds a value together with the rules for changing it: an updater that
combines the value with incoming deltas, and an optional divider used when
the subtree holding it splits in two. Processes never mutate the tree
directly. They return nested updates which the experiment routes to
absolute paths and applies in batches.

Updates can also change the shape of the tree: _generate creates a new
subtree of processes and state, _divide splits an agent into two
daughters, and _delete removes a subtree. Derivers are processes that run
after every batch, with a zero interval, to keep derived values current.

# Usage

	exp, err := vivarium.New(
		domain.Processes{"growth": growth},
		domain.Topology{"growth": domain.Ports{"global": domain.NewPath("global")}},
		vivarium.WithEmitter(memory.NewEmitter()),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := exp.UpdateInterval(ctx, 10, 1); err != nil {
		log.Fatal(err)
	}
*/
package vivarium
