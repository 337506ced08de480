package domain

import "strings"

// Up is the relative path step that resolves to the parent node.
const Up = ".."

// Path addresses a node in the state tree as a sequence of child names.
// A step equal to Up moves one level towards the root.
type Path []string

// NewPath builds a Path from its steps.
func NewPath(steps ...string) Path {
	return append(Path{}, steps...)
}

// ParsePath splits a slash separated path ("..", "global", "mass").
// The empty string and "/" both yield the empty path.
func ParsePath(s string) Path {
	s = strings.Trim(s, "/")
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, "/"))
}

// Append returns a new path with steps added. The receiver is never mutated.
func (p Path) Append(steps ...string) Path {
	out := make(Path, 0, len(p)+len(steps))
	out = append(out, p...)
	return append(out, steps...)
}

// Concat joins two paths without aliasing either of them.
func (p Path) Concat(other Path) Path {
	return p.Append(other...)
}

// Parent returns the path without its last step. The parent of the empty
// path is the empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return NewPath(p[:len(p)-1]...)
}

// Last returns the final step, or "" for the empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Normalize collapses every Up step against the step before it.
// Leading Up steps that cannot be collapsed are kept.
func (p Path) Normalize() Path {
	progress := make(Path, 0, len(p))
	for _, step := range p {
		if step == Up && len(progress) > 0 && progress[len(progress)-1] != Up {
			progress = progress[:len(progress)-1]
			continue
		}
		progress = append(progress, step)
	}
	return progress
}

// Equal reports whether both paths have the same steps.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading sub-path of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// String renders the path slash separated. It is also used as the key of
// per-process bookkeeping, so node names must not contain "/".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// ToPath converts the loose representations found in decoded configuration
// (Path, []string, []any of strings, a slash separated string) into a Path.
func ToPath(v any) (Path, bool) {
	switch p := v.(type) {
	case Path:
		return p, true
	case []string:
		return Path(p), true
	case string:
		return ParsePath(p), true
	case nil:
		return Path{}, true
	case []any:
		out := make(Path, 0, len(p))
		for _, step := range p {
			s, ok := step.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
