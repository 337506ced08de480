// Package schema classifies and validates the configuration maps that shape
// the state tree.
//
// A configuration map either describes a leaf, when it holds any of the
// reserved keys (_default, _updater, _divider, _value, _properties, _emit,
// _units), or names children. The "*" and "_subschema" keys carry a template
// applied to every child of a node:
//
//	config := map[string]any{
//	    "*": map[string]any{"_default": 0.0, "_emit": true},
//	    "glucose": map[string]any{},
//	}
//
//	template, rest := schema.SplitSubschema(config)
//	kind := schema.Classify(rest) // schema.KindBranch
//
// Port validation reports every missing topology entry of a process at once:
//
//	if err := schema.ValidatePorts(path, p.PortsSchema(), ports); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // *domain.TopologyError
//	    }
//	}
//
// The package is pure and has no dependencies beyond pkg/domain.
package schema
