package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
)

func testModule() Module {
	return Module{
		Name: "test",
		Actions: map[string]ActionDef{
			"do_thing": {
				Params: map[string]ParamSpec{
					"target": {Type: ParamString, Required: true},
				},
				Exec: func(map[string]any, *script.ActionContext) ([]script.ResultOp, error) {
					return nil, nil
				},
			},
		},
		Events: map[string]EventDef{
			"thing_done": {Specs: map[string]ParamSpec{
				"which": {Type: ParamString},
			}},
		},
		Conditions: map[string]ConditionDef{
			"thing_ready": {Eval: func(script.ComponentValue, *script.ActionContext, SubIf) bool {
				return true
			}},
		},
		Resources: map[string]ResourceDef{
			"things": {Properties: map[string]ParamSpec{
				"name": {Type: ParamString, Required: true},
			}},
		},
	}
}

func TestNew_Lookups(t *testing.T) {
	reg, err := New(testModule())
	require.NoError(t, err)

	_, ok := reg.Action("do_thing")
	assert.True(t, ok)
	_, ok = reg.Action("missing")
	assert.False(t, ok)

	_, ok = reg.Event("thing_done")
	assert.True(t, ok)
	_, ok = reg.Condition("thing_ready")
	assert.True(t, ok)
	_, ok = reg.Resource("things")
	assert.True(t, ok)

	assert.Equal(t, []string{"things"}, reg.Collections())
}

func TestNew_DuplicateVariant(t *testing.T) {
	other := Module{
		Name: "other",
		Actions: map[string]ActionDef{
			"do_thing": {},
		},
	}
	_, err := New(testModule(), other)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "do_thing")
	assert.Contains(t, err.Error(), `"test"`)
	assert.Contains(t, err.Error(), `"other"`)
}

func TestNew_MissingModuleName(t *testing.T) {
	_, err := New(Module{})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestNew_EmptyVariantName(t *testing.T) {
	_, err := New(Module{
		Name:    "bad",
		Actions: map[string]ActionDef{"": {}},
	})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestNew_ParamShadowsDiscriminator(t *testing.T) {
	_, err := New(Module{
		Name: "bad",
		Actions: map[string]ActionDef{
			"clash": {Params: map[string]ParamSpec{
				"name": {Type: ParamString},
			}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")
}

func TestDescriptor_MergesDiscriminatorEnum(t *testing.T) {
	reg, err := New(testModule())
	require.NoError(t, err)

	desc, err := reg.Descriptor(FamilyActions, "do_thing")
	require.NoError(t, err)
	assert.Equal(t, "test", desc.Module)
	assert.Equal(t, "name", desc.Discriminator())

	disc, ok := desc.Params["name"]
	require.True(t, ok)
	assert.Equal(t, ParamEnum, disc.Type)
	assert.True(t, disc.Required)
	assert.Equal(t, []string{"do_thing"}, disc.Options)

	target, ok := desc.Params["target"]
	require.True(t, ok)
	assert.Equal(t, ParamString, target.Type)

	_, err = reg.Descriptor(FamilyActions, "missing")
	require.Error(t, err)
}

func TestVariant(t *testing.T) {
	reg, err := New(testModule())
	require.NoError(t, err)

	variant, err := reg.Variant(FamilyEvents, script.ComponentValue{"type": "thing_done"})
	require.NoError(t, err)
	assert.Equal(t, "thing_done", variant)

	_, err = reg.Variant(FamilyEvents, script.ComponentValue{"type": "unknown"})
	require.Error(t, err)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "unknown", ce.Variant)

	_, err = reg.Variant(FamilyEvents, script.ComponentValue{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"type"`)

	// Conditions dispatch on "op", not "type".
	variant, err = reg.Variant(FamilyConditions, script.ComponentValue{"op": "thing_ready"})
	require.NoError(t, err)
	assert.Equal(t, "thing_ready", variant)
}

func TestVariantNames_Sorted(t *testing.T) {
	reg, err := New(
		Module{Name: "a", Actions: map[string]ActionDef{"zebra": {}, "apple": {}}},
		Module{Name: "b", Actions: map[string]ActionDef{"mango": {}}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "mango", "zebra"}, reg.VariantNames(FamilyActions))
}
