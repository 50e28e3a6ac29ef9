package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func pageContent() *script.ScriptContent {
	return testutil.Content(map[string][]script.Resource{
		"roles": {{"name": "Guide", "actor": true}},
		"cues":  {{"name": "READY"}},
		"pages": {{
			"name": "BRIEFING",
			"role": "Guide",
			"panels": []any{
				map[string]any{"type": "text", "text": "Monkeys: {{cabana.monkeys}}"},
				map[string]any{"type": "image", "path": "map.png"},
				map[string]any{"type": "button", "text": "I am ready", "cue": "READY"},
			},
		}},
	})
}

func TestPanelText(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(pageContent(), testutil.EvalContext(map[string]any{
		"cabana": map[string]any{"monkeys": 2.0},
	}))

	text, visible, err := k.PanelText(ac, script.ComponentValue{
		"type": "text", "text": "Monkeys: {{cabana.monkeys}}",
	}, "Guide")
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, "Monkeys: 2", text)

	// Images carry no visible text.
	_, visible, err = k.PanelText(ac, script.ComponentValue{
		"type": "image", "path": "map.png",
	}, "Guide")
	require.NoError(t, err)
	assert.False(t, visible)

	_, _, err = k.PanelText(ac, script.ComponentValue{"type": "bogus"}, "Guide")
	require.Error(t, err)
}

func TestPageText(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(pageContent(), testutil.EvalContext(map[string]any{
		"cabana": map[string]any{"monkeys": 2.0},
	}))

	lines, err := k.PageText(ac, "BRIEFING")
	require.NoError(t, err)
	assert.Equal(t, []string{"Monkeys: 2", "I am ready"}, lines)

	_, err = k.PageText(ac, "MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
}
