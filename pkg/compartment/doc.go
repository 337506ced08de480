/*
Package compartment builds reusable process blueprints.

A Compartment is a factory: given a configuration it returns a set of
processes and the topology wiring them. Generate adds the derivers those
processes declare and nests the result under a path, ready to hand to an
experiment or to a _generate / _divide directive.
*/
package compartment
