package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 2.5, 2.5, true},
		{"float32", float32(2), 2, true},
		{"int", 7, 7, true},
		{"int64", int64(-3), -3, true},
		{"numeric string", "42", 42, true},
		{"numeric string with spaces", "  3.5 ", 3.5, true},
		{"negative string", "-1.25", -1.25, true},
		{"word", "monkeys", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
		{"map", map[string]any{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(0.0))
	assert.False(t, Truthy("0")) // numeric-looking strings coerce
	assert.False(t, Truthy("0.0"))
	assert.False(t, Truthy(" 0 "))

	assert.True(t, Truthy(true))
	assert.True(t, Truthy("2"))
	assert.True(t, Truthy("no"))
	assert.True(t, Truthy(1.0))
	assert.True(t, Truthy(-1))
	assert.True(t, Truthy(map[string]any{}))
	assert.True(t, Truthy([]any{}))
}

func TestLooseEqual(t *testing.T) {
	// Numeric coercion on both sides.
	assert.True(t, LooseEqual(2.0, 2))
	assert.True(t, LooseEqual("2", 2.0))
	assert.True(t, LooseEqual("2.5", 2.5))
	assert.False(t, LooseEqual("2", 3))

	// String form otherwise.
	assert.True(t, LooseEqual("abc", "abc"))
	assert.True(t, LooseEqual(true, "true"))
	assert.False(t, LooseEqual("abc", "abd"))

	// nil equals only nil.
	assert.True(t, LooseEqual(nil, nil))
	assert.False(t, LooseEqual(nil, ""))
	assert.False(t, LooseEqual(0, nil))
}

func TestContainsText(t *testing.T) {
	assert.True(t, ContainsText("Hello World", "world"))
	assert.True(t, ContainsText("banana", "NAN"))
	assert.False(t, ContainsText("banana", "apple"))
	assert.False(t, ContainsText("anything", ""))

	// Non-strings compare by string form.
	assert.True(t, ContainsText(12345, "234"))
	assert.True(t, ContainsText("count is 3", 3))
}

func TestMergeFields(t *testing.T) {
	dst := map[string]any{
		"cabana": map[string]any{"monkeys": 2.0, "bananas": 5.0},
		"flag":   true,
	}
	MergeFields(dst, map[string]any{
		"cabana": map[string]any{"monkeys": 3.0},
		"extra":  "x",
	})
	require.Equal(t, map[string]any{
		"cabana": map[string]any{"monkeys": 3.0, "bananas": 5.0},
		"flag":   true,
		"extra":  "x",
	}, dst)
}

func TestMergeFields_NilDeletes(t *testing.T) {
	dst := map[string]any{
		"audio": map[string]any{
			"is_playing":  true,
			"paused_time": 12.5,
		},
	}
	MergeFields(dst, map[string]any{
		"audio": map[string]any{
			"is_playing":  false,
			"paused_time": nil,
		},
	})
	require.Equal(t, map[string]any{
		"audio": map[string]any{"is_playing": false},
	}, dst)
}

func TestMergeFields_MapReplacesScalar(t *testing.T) {
	dst := map[string]any{"slot": "scalar"}
	MergeFields(dst, map[string]any{"slot": map[string]any{"k": 1.0}})
	require.Equal(t, map[string]any{"slot": map[string]any{"k": 1.0}}, dst)

	// src map is copied, not aliased
	src := map[string]any{"inner": map[string]any{"a": 1.0}}
	out := map[string]any{}
	MergeFields(out, src)
	out["inner"].(map[string]any)["a"] = 2.0
	assert.Equal(t, 1.0, src["inner"].(map[string]any)["a"])
}

func TestFieldsAtPath(t *testing.T) {
	assert.Equal(t,
		map[string]any{"cabana": map[string]any{"monkeys": 3.0}},
		FieldsAtPath([]string{"cabana", "monkeys"}, 3.0))
	assert.Equal(t,
		map[string]any{"done": true},
		FieldsAtPath([]string{"done"}, true))
	assert.Nil(t, FieldsAtPath(nil, 1))
}
