package store

import (
	"fmt"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/schema"
)

// ApplyConfig merges a nested configuration map into the subtree. Keys
// naming children create or reconfigure them; reserved leaf keys configure
// s itself. An empty map changes nothing.
//
// A second, different _value for the same leaf fails with
// *domain.ConfigConflictError. A second, different _default is logged and
// the incoming one wins.
func (s *Store) ApplyConfig(config map[string]any) error {
	template, rest := schema.SplitSubschema(config)
	if template != nil {
		if s.kind == leaf {
			return s.variantConflict("subschema")
		}
		s.subschema = schema.DeepMerge(s.subschema, template)
	}

	switch schema.Classify(rest) {
	case schema.KindLeaf:
		return s.applyLeafConfig(rest)
	case schema.KindBranch:
		if s.kind == leaf {
			return s.variantConflict("children")
		}
		for _, key := range domain.SortedKeys(rest) {
			childConfig, ok := asConfig(rest[key])
			if !ok {
				return fmt.Errorf("config at %q: %w", s.PathFor().Append(key).String(), &schema.ValidationError{
					Key: key, Reason: "expected a configuration map", Value: rest[key],
				})
			}
			c, exists := s.inner[key]
			if !exists {
				c = s.child(key)
				s.attach(key, c)
			}
			if err := c.ApplyConfig(childConfig); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) applyLeafConfig(config map[string]any) error {
	if s.isBranch() {
		return s.variantConflict("leaf metadata")
	}
	spec, err := schema.ParseLeaf(config)
	if err != nil {
		return fmt.Errorf("config at %q: %w", s.PathFor().String(), err)
	}

	if spec.HasDefault {
		if s.hasDefault && !valuesEqual(s.def, spec.Default) {
			s.logger.Warn("default schema conflict",
				"path", s.PathFor().String(),
				"existing", s.def,
				"selected", spec.Default)
		}
		s.def, s.hasDefault = spec.Default, true
	}
	if spec.HasValue {
		switch {
		case s.value == nil:
			s.value = spec.Value
		case !valuesEqual(s.value, spec.Value):
			return &domain.ConfigConflictError{Path: s.PathFor(), Existing: s.value, Incoming: spec.Value}
		}
	}
	if spec.Updater != nil || s.kind != leaf {
		u, err := s.registry.ResolveUpdater(spec.Updater)
		if err != nil {
			return fmt.Errorf("config at %q: %w", s.PathFor().String(), err)
		}
		s.updater = u
	}
	if spec.Divider != nil {
		d, err := s.registry.ResolveDivider(spec.Divider)
		if err != nil {
			return fmt.Errorf("config at %q: %w", s.PathFor().String(), err)
		}
		s.divider = d
	}
	if spec.Properties != nil {
		s.properties = schema.DeepMerge(s.properties, spec.Properties)
	}
	if spec.Emit != nil {
		s.emit = *spec.Emit
	}
	if spec.Units != "" {
		s.units = spec.Units
	}
	s.kind = leaf
	return nil
}

func (s *Store) variantConflict(what string) error {
	held := "children"
	if s.kind == leaf {
		held = "a leaf configuration"
	}
	return fmt.Errorf("%w: %s applied to %q which holds %s", domain.ErrVariantConflict, what, s.PathFor().String(), held)
}

// GetConfig dumps the configuration of the subtree in the same shape
// ApplyConfig accepts. Updaters and dividers appear by name and process
// values by their type.
func (s *Store) GetConfig() map[string]any {
	config := make(map[string]any)
	if len(s.properties) > 0 {
		config[schema.KeyProperties] = s.properties
	}
	if s.subschema != nil {
		config[schema.KeySubschema] = s.subschema
	}
	if s.isBranch() {
		for key, c := range s.inner {
			config[key] = c.GetConfig()
		}
		return config
	}

	config[schema.KeyDefault] = s.def
	config[schema.KeyValue] = describe(s.value)
	config[schema.KeyUpdater] = s.updater.String()
	if s.divider.IsSet() {
		config[schema.KeyDivider] = s.divider.String()
	}
	if s.units != "" {
		config[schema.KeyUnits] = s.units
	}
	if s.emit {
		config[schema.KeyEmit] = true
	}
	return config
}

func asConfig(v any) (map[string]any, bool) {
	switch c := v.(type) {
	case map[string]any:
		return c, true
	case nil:
		return map[string]any{}, true
	}
	return nil, false
}
