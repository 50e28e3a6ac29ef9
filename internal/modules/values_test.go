package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func valuesContext(fields map[string]any) *script.ActionContext {
	content := testutil.Content(map[string][]script.Resource{
		"roles": {{"name": "Guide", "actor": true}},
	})
	return testutil.ActionContext(content, testutil.EvalContext(fields))
}

func TestSetValue(t *testing.T) {
	ac := valuesContext(map[string]any{"source": "copied"})

	ops, err := setValue(map[string]any{
		"value_ref": "cabana.monkeys", "new_value_ref": "3",
	}, ac)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"cabana": map[string]any{"monkeys": 3.0}},
	}, ops[0])

	// The new value may itself be a ref.
	ops, err = setValue(map[string]any{
		"value_ref": "dest", "new_value_ref": "source",
	}, ac)
	require.NoError(t, err)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"dest": "copied"},
	}, ops[0])
}

func TestSetValue_RoleScopedRef(t *testing.T) {
	ac := valuesContext(nil)

	ops, err := setValue(map[string]any{
		"value_ref": "Guide.briefed", "new_value_ref": "true",
	}, ac)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.UpdatePlayerFields{
		Role:   "Guide",
		Fields: map[string]any{"briefed": true},
	}, ops[0])

	// A bare role name with no sub-path stays trip-scoped.
	ops, err = setValue(map[string]any{
		"value_ref": "Guide", "new_value_ref": "'x'",
	}, ac)
	require.NoError(t, err)
	assert.IsType(t, script.UpdateTripFields{}, ops[0])
}

func TestIncrementValue(t *testing.T) {
	ac := valuesContext(map[string]any{"count": 2.0})

	ops, err := incrementValue(map[string]any{"value_ref": "count"}, ac)
	require.NoError(t, err)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"count": 3.0},
	}, ops[0])

	ops, err = incrementValue(map[string]any{"value_ref": "count", "delta": 10.0}, ac)
	require.NoError(t, err)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"count": 12.0},
	}, ops[0])
}

func TestIncrementValue_MissingStartsAtZero(t *testing.T) {
	ac := valuesContext(nil)

	ops, err := incrementValue(map[string]any{"value_ref": "fresh"}, ac)
	require.NoError(t, err)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"fresh": 1.0},
	}, ops[0])
}

func TestRouteValueWrite(t *testing.T) {
	sc := testutil.Content(map[string][]script.Resource{
		"roles": {{"name": "Guide"}},
	})

	op := routeValueWrite(sc, "a.b.c", 1.0)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1.0}}},
	}, op)

	op = routeValueWrite(sc, "Guide.gear.radio", "ch5")
	assert.Equal(t, script.UpdatePlayerFields{
		Role:   "Guide",
		Fields: map[string]any{"gear": map[string]any{"radio": "ch5"}},
	}, op)
}
