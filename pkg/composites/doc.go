// Package composites holds small processes and compartments used to
// exercise the engine: a growth/death fixture, a toy metabolism
// compartment and a growing, dividing cell.
package composites
