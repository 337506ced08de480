package store

import (
	"fmt"
	"reflect"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/registry"
)

// valuesEqual compares numbers by value (1 == 1.0) and everything else
// structurally.
func valuesEqual(a, b any) bool {
	if equal, numeric := registry.NumbersEqual(a, b); numeric {
		return equal
	}
	return reflect.DeepEqual(a, b)
}

// describe renders values that do not serialise, such as process handles.
func describe(v any) any {
	if p, ok := v.(domain.Process); ok {
		if named, ok := p.(fmt.Stringer); ok {
			return named.String()
		}
		return fmt.Sprintf("%T", p)
	}
	return v
}

// getIn walks a plain nested map. Up steps cannot be resolved in a plain
// map and yield nil.
func getIn(m map[string]any, path domain.Path) any {
	var node any = m
	for _, step := range path {
		current, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = current[step]
	}
	return node
}
