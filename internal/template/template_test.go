package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
)

func evalCtx() *script.EvalContext {
	return &script.EvalContext{
		Fields: map[string]any{
			"cabana":   map[string]any{"monkeys": 2.0},
			"greeting": "hello {{Guide.nickname}}",
			"armed":    true,
		},
		Roles: map[string][]map[string]any{
			"Guide": {{"nickname": "Sam", "phone": "4155551234"}},
		},
		History:  map[string]any{},
		Schedule: map[string]any{"ARRIVAL": "2026-03-14T16:30:00Z"},
	}
}

func TestResolveRef_Literals(t *testing.T) {
	ctx := evalCtx()

	assert.Equal(t, true, ResolveRef(ctx, "true", ""))
	assert.Equal(t, false, ResolveRef(ctx, "false", ""))
	assert.Nil(t, ResolveRef(ctx, "null", ""))
	assert.Equal(t, 42.0, ResolveRef(ctx, "42", ""))
	assert.Equal(t, -1.5, ResolveRef(ctx, "-1.5", ""))
	assert.Equal(t, "quoted", ResolveRef(ctx, "'quoted'", ""))
	assert.Equal(t, "double", ResolveRef(ctx, `"double"`, ""))

	// Quoting is the escape hatch: '3' is the string, 3 is the number.
	assert.Equal(t, "3", ResolveRef(ctx, "'3'", ""))
}

func TestResolveRef_Paths(t *testing.T) {
	ctx := evalCtx()

	assert.Equal(t, 2.0, ResolveRef(ctx, "cabana.monkeys", ""))
	assert.Equal(t, "Sam", ResolveRef(ctx, "Guide.nickname", ""))
	assert.Equal(t, "Sam", ResolveRef(ctx, "player.nickname", "Guide"))
	assert.Nil(t, ResolveRef(ctx, "cabana.missing", ""))
	assert.Nil(t, ResolveRef(ctx, "player.nickname", ""))
}

func TestResolveRef_NonStringPassesThrough(t *testing.T) {
	ctx := evalCtx()
	assert.Equal(t, 7.0, ResolveRef(ctx, 7.0, ""))
	assert.Equal(t, true, ResolveRef(ctx, true, ""))
	assert.Nil(t, ResolveRef(ctx, nil, ""))
}

func TestRenderText_Scalars(t *testing.T) {
	ctx := evalCtx()

	out, err := RenderText(ctx, nil, time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = RenderText(ctx, true, time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "Yes", out)

	out, err = RenderText(ctx, false, time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "No", out)

	out, err = RenderText(ctx, 3.0, time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	out, err = RenderText(ctx, 3.25, time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "3.25", out)
}

func TestRenderText_Timestamp(t *testing.T) {
	ctx := evalCtx()
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	out, err := RenderText(ctx, "2026-03-14T16:30:00Z", la, "")
	require.NoError(t, err)
	assert.Equal(t, "9:30am", out)

	out, err = RenderText(ctx, "2026-03-14T16:30:00Z", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "4:30pm", out)

	_, err = RenderText(ctx, "2026-03-14T16:30:00Z", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestRenderText_Phone(t *testing.T) {
	out, err := RenderText(evalCtx(), "4155551234", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "(415) 555-1234", out)
}

func TestRenderText_Interpolation(t *testing.T) {
	ctx := evalCtx()

	out, err := RenderText(ctx, "monkeys: {{cabana.monkeys}}", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "monkeys: 2", out)

	// A missing ref renders blank, never errors.
	out, err = RenderText(ctx, "[{{cabana.missing}}]", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	// A ref resolving to another template re-renders.
	out, err = RenderText(ctx, "{{greeting}}!", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "hello Sam!", out)
}

func TestRenderText_PlayerScope(t *testing.T) {
	out, err := RenderText(evalCtx(), "hi {{player.nickname}}", time.UTC, "Guide")
	require.NoError(t, err)
	assert.Equal(t, "hi Sam", out)
}

func TestRenderText_IfElse(t *testing.T) {
	ctx := evalCtx()

	out, err := RenderText(ctx, "{% if armed %}ready{% else %}waiting{% endif %}", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "ready", out)

	ctx.Fields["armed"] = false
	out, err = RenderText(ctx, "{% if armed %}ready{% else %}waiting{% endif %}", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "waiting", out)

	// No else arm renders blank on false.
	out, err = RenderText(ctx, "a{% if armed %}b{% endif %}c", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "ac", out)
}

func TestRenderText_InterpolationInsideIf(t *testing.T) {
	out, err := RenderText(evalCtx(),
		"{% if armed %}count {{cabana.monkeys}}{% endif %}", time.UTC, "")
	require.NoError(t, err)
	assert.Equal(t, "count 2", out)
}
