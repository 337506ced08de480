// Package registry resolves the update and division behaviours of leaves.
//
// Built-in behaviours form a closed enumeration (Accumulate, Set, Merge,
// NonnegativeAccumulate, Null for updaters; DivideSet, DivideSplit, DivideZero
// for dividers) plus one variant carrying a caller supplied function. A leaf
// resolves its behaviour once, when it is configured, and keeps the result.
//
// A Registry adds named custom updaters, dividers and process factories on
// top of the built-ins. Process factories double as the deriver library used
// when a process declares derivers by name.
package registry
