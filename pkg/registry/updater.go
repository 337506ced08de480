package registry

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

// UpdaterFunc combines the current value of a leaf with an incoming delta.
type UpdaterFunc func(current, delta any) (any, error)

// UpdaterKind enumerates the built-in update behaviours.
type UpdaterKind int

const (
	Accumulate UpdaterKind = iota
	Set
	Merge
	NonnegativeAccumulate
	Null
	CustomUpdater
)

var updaterNames = map[UpdaterKind]string{
	Accumulate:            "accumulate",
	Set:                   "set",
	Merge:                 "merge",
	NonnegativeAccumulate: "nonnegative_accumulate",
	Null:                  "null",
}

func (k UpdaterKind) String() string {
	if name, ok := updaterNames[k]; ok {
		return name
	}
	return "custom"
}

// Updater is a resolved update behaviour. The zero value accumulates.
type Updater struct {
	Kind UpdaterKind
	Name string
	fn   UpdaterFunc
}

// Custom wraps a caller supplied function under name.
func Custom(name string, fn UpdaterFunc) Updater {
	return Updater{Kind: CustomUpdater, Name: name, fn: fn}
}

// Builtin returns the built-in updater of kind k.
func Builtin(k UpdaterKind) Updater {
	return Updater{Kind: k, Name: k.String()}
}

// Apply runs the updater.
func (u Updater) Apply(current, delta any) (any, error) {
	switch u.Kind {
	case Accumulate:
		return accumulate(current, delta)
	case Set:
		return delta, nil
	case Merge:
		return merge(current, delta)
	case NonnegativeAccumulate:
		out, err := accumulate(current, delta)
		if err != nil {
			return nil, err
		}
		if isNegative(out) {
			zero, _ := zeroLike(out)
			return zero, nil
		}
		return out, nil
	case Null:
		return current, nil
	case CustomUpdater:
		if u.fn == nil {
			return nil, fmt.Errorf("%w: %q has no function", domain.ErrUnknownUpdater, u.Name)
		}
		return u.fn(current, delta)
	}
	return nil, fmt.Errorf("%w: kind %d", domain.ErrUnknownUpdater, u.Kind)
}

// String returns the updater name used in configuration dumps.
func (u Updater) String() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Kind.String()
}

func builtinUpdater(name string) (Updater, bool) {
	for kind, n := range updaterNames {
		if n == name {
			return Builtin(kind), true
		}
	}
	return Updater{}, false
}

func accumulate(current, delta any) (any, error) {
	if current == nil {
		return delta, nil
	}
	if delta == nil {
		return current, nil
	}
	if sum, ok := addNumbers(current, delta); ok {
		return sum, nil
	}
	switch c := current.(type) {
	case string:
		if d, ok := delta.(string); ok {
			return c + d, nil
		}
	case []any:
		if d, ok := delta.([]any); ok {
			out := make([]any, 0, len(c)+len(d))
			return append(append(out, c...), d...), nil
		}
		return append(append([]any{}, c...), delta), nil
	case []string:
		if d, ok := delta.([]string); ok {
			out := make([]string, 0, len(c)+len(d))
			return append(append(out, c...), d...), nil
		}
	case map[string]any:
		d, ok := delta.(map[string]any)
		if !ok {
			break
		}
		out := make(map[string]any, len(c)+len(d))
		for k, v := range c {
			out[k] = v
		}
		for k, v := range d {
			sum, err := accumulate(out[k], v)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = sum
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot accumulate %T and %T", current, delta)
}

func merge(current, delta any) (any, error) {
	if current == nil {
		return delta, nil
	}
	c, cok := current.(map[string]any)
	d, dok := delta.(map[string]any)
	if !cok || !dok {
		return nil, fmt.Errorf("cannot merge %T and %T", current, delta)
	}
	return schema.DeepMerge(c, d), nil
}
