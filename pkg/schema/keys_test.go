package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   Kind
	}{
		{"empty", map[string]any{}, KindEmpty},
		{"nil", nil, KindEmpty},
		{"default", map[string]any{"_default": 1.0}, KindLeaf},
		{"units only", map[string]any{"_units": "fg"}, KindLeaf},
		{"leaf key wins over children", map[string]any{"_emit": true, "mass": map[string]any{}}, KindLeaf},
		{"children", map[string]any{"mass": map[string]any{}}, KindBranch},
		{"subschema only", map[string]any{"*": map[string]any{"_default": 0}}, KindEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.config))
		})
	}
}

func TestSplitSubschema(t *testing.T) {
	config := map[string]any{
		"*":          map[string]any{"_default": 0.0, "_emit": true},
		"_subschema": map[string]any{"_default": 1.0},
		"glucose":    map[string]any{"_default": 3.0},
	}

	template, rest := SplitSubschema(config)

	assert.Equal(t, map[string]any{"_default": 1.0, "_emit": true}, template)
	assert.Equal(t, map[string]any{"glucose": map[string]any{"_default": 3.0}}, rest)
	assert.Contains(t, config, "*", "input must not be modified")
}

func TestSplitSubschema_None(t *testing.T) {
	template, rest := SplitSubschema(map[string]any{"a": 1})
	assert.Nil(t, template)
	assert.Equal(t, map[string]any{"a": 1}, rest)
}

func TestDeepMerge(t *testing.T) {
	left := map[string]any{"a": map[string]any{"x": 1, "y": 2}, "b": 1}
	right := map[string]any{"a": map[string]any{"y": 3}, "c": 4}

	got := DeepMerge(left, right)

	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1, "y": 3}, "b": 1, "c": 4}, got)
	assert.Equal(t, 2, left["a"].(map[string]any)["y"])
}

func TestParseLeaf(t *testing.T) {
	leaf, err := ParseLeaf(map[string]any{
		"_default": nil,
		"_updater": "set",
		"_emit":    false,
		"_units":   "fg",
	})
	assert.NoError(t, err)
	assert.True(t, leaf.HasDefault)
	assert.Nil(t, leaf.Default)
	assert.False(t, leaf.HasValue)
	assert.Equal(t, "set", leaf.Updater)
	if assert.NotNil(t, leaf.Emit) {
		assert.False(t, *leaf.Emit)
	}
	assert.Equal(t, "fg", leaf.Units)
}

func TestParseLeaf_Malformed(t *testing.T) {
	_, err := ParseLeaf(map[string]any{"_emit": "yes"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, KeyEmit, verr.Key)
}
