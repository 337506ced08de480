package registry

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/domain"
)

// ReduceNode is one node visited by a reduction. Path is relative to the
// node the reduction starts from. Value is a nested map for branches.
type ReduceNode struct {
	Path  domain.Path
	Value any
	Leaf  bool
}

// ReducerFunc folds node into the accumulator.
type ReducerFunc func(acc any, node ReduceNode) (any, error)

// Built-in reducer names.
const (
	ReduceSum   = "sum"
	ReduceCount = "count"
	ReduceMax   = "max"
)

var builtinReducers = map[string]ReducerFunc{
	ReduceSum:   sumLeaves,
	ReduceCount: countLeaves,
	ReduceMax:   maxLeaf,
}

// sumLeaves adds every numeric leaf. Other nodes are skipped.
func sumLeaves(acc any, node ReduceNode) (any, error) {
	if !node.Leaf {
		return acc, nil
	}
	if _, ok := AsFloat(node.Value); !ok {
		return acc, nil
	}
	if acc == nil {
		return node.Value, nil
	}
	sum, ok := addNumbers(acc, node.Value)
	if !ok {
		return nil, fmt.Errorf("sum: cannot add %T to %T", node.Value, acc)
	}
	return sum, nil
}

// countLeaves counts the leaves holding a value.
func countLeaves(acc any, node ReduceNode) (any, error) {
	if !node.Leaf || node.Value == nil {
		return acc, nil
	}
	if acc == nil {
		return 1, nil
	}
	sum, ok := addNumbers(acc, 1)
	if !ok {
		return nil, fmt.Errorf("count: accumulator is %T", acc)
	}
	return sum, nil
}

func maxLeaf(acc any, node ReduceNode) (any, error) {
	if !node.Leaf {
		return acc, nil
	}
	v, ok := AsFloat(node.Value)
	if !ok {
		return acc, nil
	}
	if current, ok := AsFloat(acc); ok && current >= v {
		return acc, nil
	}
	return node.Value, nil
}

// ResolveReducer turns the reducer of a _reduce directive into a function.
// Accepted forms are a ReducerFunc and a built-in or registered name;
// built-in names cannot be shadowed.
func (r *Registry) ResolveReducer(spec any) (ReducerFunc, error) {
	switch f := spec.(type) {
	case ReducerFunc:
		if f != nil {
			return f, nil
		}
	case func(acc any, node ReduceNode) (any, error):
		if f != nil {
			return f, nil
		}
	case string:
		if fn, ok := builtinReducers[f]; ok {
			return fn, nil
		}
		if r != nil {
			r.mu.RLock()
			fn, ok := r.reducers[f]
			r.mu.RUnlock()
			if ok {
				return fn, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownReducer, f)
	}
	return nil, fmt.Errorf("%w: unsupported %T", domain.ErrUnknownReducer, spec)
}
