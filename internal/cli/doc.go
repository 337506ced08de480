// Package cli wires settings, sinks and the experiment together for the
// vivarium command.
package cli
