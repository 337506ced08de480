package registry

import (
	"fmt"

	"github.com/mohae/deepcopy"

	"github.com/aretw0/vivarium/pkg/domain"
)

// DividerFunc splits a value into the values of two daughters.
type DividerFunc func(value any) ([2]any, error)

// TopologyDividerFunc splits a value using sibling state. siblings maps each
// name of the divider topology to the value found at its path.
type TopologyDividerFunc func(value any, siblings map[string]any) ([2]any, error)

// DividerKind enumerates the built-in division behaviours.
type DividerKind int

const (
	NoDivider DividerKind = iota
	DivideSet
	DivideSplit
	DivideZero
	CustomDivider
	TopologyDivider
)

var dividerNames = map[DividerKind]string{
	DivideSet:   "set",
	DivideSplit: "split",
	DivideZero:  "zero",
}

func (k DividerKind) String() string {
	switch k {
	case NoDivider:
		return ""
	case CustomDivider:
		return "custom"
	case TopologyDivider:
		return "topology"
	}
	return dividerNames[k]
}

// Divider is a resolved division behaviour. The zero value means the leaf
// is not divisible.
type Divider struct {
	Kind DividerKind
	Name string

	fn         DividerFunc
	topologyFn TopologyDividerFunc

	// Topology maps names passed to the function to paths relative to the
	// node holding the leaf.
	Topology map[string]domain.Path
}

// CustomDivide wraps fn under name.
func CustomDivide(name string, fn DividerFunc) Divider {
	return Divider{Kind: CustomDivider, Name: name, fn: fn}
}

// WithTopology wraps a divider consulting sibling state at the given paths.
func WithTopology(name string, fn TopologyDividerFunc, topology map[string]domain.Path) Divider {
	return Divider{Kind: TopologyDivider, Name: name, topologyFn: fn, Topology: topology}
}

// IsSet reports whether a divider was configured.
func (d Divider) IsSet() bool { return d.Kind != NoDivider }

// Divide splits value. siblings is only consulted by topology dividers.
func (d Divider) Divide(value any, siblings map[string]any) ([2]any, error) {
	switch d.Kind {
	case DivideSet:
		return [2]any{deepcopy.Copy(value), deepcopy.Copy(value)}, nil
	case DivideSplit:
		return split(value)
	case DivideZero:
		zero, ok := zeroLike(value)
		if !ok {
			return [2]any{}, fmt.Errorf("cannot zero %T", value)
		}
		return [2]any{zero, zero}, nil
	case CustomDivider:
		if d.fn != nil {
			return d.fn(value)
		}
	case TopologyDivider:
		if d.topologyFn != nil {
			return d.topologyFn(value, siblings)
		}
	case NoDivider:
		return [2]any{}, domain.ErrNotDivisible
	}
	return [2]any{}, fmt.Errorf("%w: %q has no function", domain.ErrUnknownDivider, d.Name)
}

func (d Divider) String() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Kind.String()
}

func builtinDivider(name string) (Divider, bool) {
	for kind, n := range dividerNames {
		if n == name {
			return Divider{Kind: kind, Name: n}, true
		}
	}
	return Divider{}, false
}

// split halves floats. Odd integers give the extra unit to the first daughter,
// so the two values always sum to the original.
func split(value any) ([2]any, error) {
	if n, ok := value.(int); ok {
		half := n / 2
		return [2]any{n - half, half}, nil
	}
	if n, ok := asInt(value); ok {
		half := n / 2
		return [2]any{n - half, half}, nil
	}
	if f, ok := AsFloat(value); ok {
		return [2]any{f / 2, f / 2}, nil
	}
	return [2]any{}, fmt.Errorf("cannot split %T", value)
}
