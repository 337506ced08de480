package schema

// Reserved leaf keys. Their presence in a configuration map turns the node it
// configures into a leaf.
const (
	KeyDefault    = "_default"
	KeyUpdater    = "_updater"
	KeyDivider    = "_divider"
	KeyValue      = "_value"
	KeyProperties = "_properties"
	KeyEmit       = "_emit"
	KeyUnits      = "_units"
)

// Subschema keys. Either one carries a template applied to every child of
// the node, including children created later.
const (
	KeySubschema = "_subschema"
	KeyWildcard  = "*"
)

// LeafKeys is the set of reserved keys that describe a leaf.
var LeafKeys = map[string]struct{}{
	KeyDefault:    {},
	KeyUpdater:    {},
	KeyDivider:    {},
	KeyValue:      {},
	KeyProperties: {},
	KeyEmit:       {},
	KeyUnits:      {},
}

// Kind is the variant a configuration map selects for the node it configures.
type Kind int

const (
	// KindEmpty carries no information; the node keeps its current variant.
	KindEmpty Kind = iota
	// KindLeaf holds at least one reserved leaf key.
	KindLeaf
	// KindBranch names children only.
	KindBranch
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindBranch:
		return "branch"
	default:
		return "empty"
	}
}

// IsLeafKey reports whether key is a reserved leaf key.
func IsLeafKey(key string) bool {
	_, ok := LeafKeys[key]
	return ok
}

// Classify decides whether config describes a leaf or names children.
// Any reserved leaf key makes it a leaf, whatever else is present; subschema
// keys are ignored and must be split off with SplitSubschema first.
func Classify(config map[string]any) Kind {
	branch := false
	for key := range config {
		if IsLeafKey(key) {
			return KindLeaf
		}
		if key != KeySubschema && key != KeyWildcard {
			branch = true
		}
	}
	if branch {
		return KindBranch
	}
	return KindEmpty
}

// SplitSubschema separates the "*" and "_subschema" templates from the rest
// of config. When both are present they are merged, "_subschema" last. The
// input map is not modified.
func SplitSubschema(config map[string]any) (subschema map[string]any, rest map[string]any) {
	rest = make(map[string]any, len(config))
	for key, value := range config {
		if key == KeySubschema || key == KeyWildcard {
			continue
		}
		rest[key] = value
	}
	for _, key := range []string{KeyWildcard, KeySubschema} {
		if template, ok := config[key].(map[string]any); ok {
			if subschema == nil {
				subschema = map[string]any{}
			}
			subschema = DeepMerge(subschema, template)
		}
	}
	return subschema, rest
}

// DeepMerge merges right into a copy of left. Nested maps merge recursively;
// any other right value replaces the left one.
func DeepMerge(left, right map[string]any) map[string]any {
	out := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		if rm, ok := v.(map[string]any); ok {
			if lm, ok := out[k].(map[string]any); ok {
				out[k] = DeepMerge(lm, rm)
				continue
			}
		}
		out[k] = v
	}
	return out
}
