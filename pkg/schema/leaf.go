package schema

import (
	"fmt"
)

// Leaf is the parsed form of the reserved keys of a leaf configuration.
// Presence flags distinguish an absent key from one explicitly set to nil.
type Leaf struct {
	Default    any
	HasDefault bool

	Value    any
	HasValue bool

	// Updater and Divider are kept unresolved (a registered name, a function
	// or a divider value); the store resolves them against a registry.
	Updater any
	Divider any

	Properties map[string]any
	Emit       *bool
	Units      string
}

// ParseLeaf extracts the reserved keys of config. Non reserved keys are
// ignored; callers classify the config first.
func ParseLeaf(config map[string]any) (Leaf, error) {
	var leaf Leaf
	if v, ok := config[KeyDefault]; ok {
		leaf.Default, leaf.HasDefault = v, true
	}
	if v, ok := config[KeyValue]; ok {
		leaf.Value, leaf.HasValue = v, true
	}
	leaf.Updater = config[KeyUpdater]
	leaf.Divider = config[KeyDivider]

	if raw, ok := config[KeyProperties]; ok && raw != nil {
		props, ok := raw.(map[string]any)
		if !ok {
			return leaf, &ValidationError{Key: KeyProperties, Reason: "expected a map", Value: raw}
		}
		leaf.Properties = props
	}
	if raw, ok := config[KeyEmit]; ok {
		emit, ok := raw.(bool)
		if !ok {
			return leaf, &ValidationError{Key: KeyEmit, Reason: "expected a bool", Value: raw}
		}
		leaf.Emit = &emit
	}
	if raw, ok := config[KeyUnits]; ok && raw != nil {
		switch u := raw.(type) {
		case string:
			leaf.Units = u
		case fmt.Stringer:
			leaf.Units = u.String()
		default:
			return leaf, &ValidationError{Key: KeyUnits, Reason: "expected a string", Value: raw}
		}
	}
	return leaf, nil
}
