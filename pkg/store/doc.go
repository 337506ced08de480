/*
Package store implements the hierarchical state tree.

Every node is a *Store. Branches hold named children; leaves hold a value
together with a default, a resolved updater, an optional divider, an emit
flag and an optional unit tag. Processes live in the tree as leaves whose
value is the process and whose updater is set.

The tree is shaped by configuration maps (see package schema) and mutated
only through ApplyConfig and ApplyUpdate. ApplyUpdate also carries the
structural directives that create (_generate), remove (_delete) and split
(_divide) subtrees at runtime.

A Store is not safe for concurrent use.
*/
package store
