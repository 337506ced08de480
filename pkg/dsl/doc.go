/*
Package dsl provides a fluent builder for process blueprints.

It places processes in the tree and wires their ports without writing the
nested Processes and Topology maps by hand. Build validates that every
declared port is wired.

Example usage:

	blueprint, err := dsl.New().
		Add("growth", growth).Port("global", "global").
		Add("division", division).Port("global", "global").Port("cells", "..").
		Build()
	if err != nil {
		return err
	}
	exp, err := vivarium.New(blueprint.Processes, blueprint.Topology)
*/
package dsl
