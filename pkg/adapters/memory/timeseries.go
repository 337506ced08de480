package memory

import (
	"github.com/aretw0/vivarium/pkg/domain"
)

// PathTimeseries flattens history records into one series per leaf path.
// The "time" key holds the time of each record. Every series has one entry
// per record; records where a path is absent contribute nil, so series stay
// aligned with time even when agents appear or vanish mid-run.
func PathTimeseries(history []map[string]any) map[string][]any {
	series := map[string][]any{domain.KeyTime: make([]any, len(history))}
	for i, record := range history {
		series[domain.KeyTime][i] = record[domain.KeyTime]
		flatten(domain.Path{}, record, func(path domain.Path, value any) {
			key := path.String()
			if key == domain.KeyTime {
				return
			}
			s, ok := series[key]
			if !ok {
				s = make([]any, len(history))
				series[key] = s
			}
			s[i] = value
		})
	}
	return series
}

// Timeseries is PathTimeseries nested back into the shape of the tree.
func Timeseries(history []map[string]any) map[string]any {
	out := map[string]any{}
	for key, values := range PathTimeseries(history) {
		path := domain.ParsePath(key)
		node := out
		for _, step := range path[:len(path)-1] {
			next, ok := node[step].(map[string]any)
			if !ok {
				next = map[string]any{}
				node[step] = next
			}
			node = next
		}
		node[path.Last()] = values
	}
	return out
}

func flatten(prefix domain.Path, value any, visit func(domain.Path, any)) {
	if m, ok := value.(map[string]any); ok {
		for _, key := range domain.SortedKeys(m) {
			flatten(prefix.Append(key), m[key], visit)
		}
		return
	}
	if len(prefix) > 0 {
		visit(prefix, value)
	}
}
