package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func sceneContext() *script.ActionContext {
	content := testutil.Content(map[string][]script.Resource{
		"scenes": {{"name": "INTRO"}, {"name": "MAIN"}},
		"cues":   {{"name": "GO"}},
	})
	return testutil.ActionContext(content, testutil.EvalContext(nil))
}

func TestSignalCue(t *testing.T) {
	ops, err := signalCue(map[string]any{"cue_name": "GO"}, sceneContext())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.EventOp{
		Event: script.Event{"type": "cue_signaled", "cue": "GO"},
	}, ops[0])
}

func TestSignalCue_Unknown(t *testing.T) {
	ops, err := signalCue(map[string]any{"cue_name": "NOPE"}, sceneContext())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	log := ops[0].(script.Log)
	assert.Equal(t, script.LogLevelError, log.Level)
	assert.Contains(t, log.Message, "NOPE")
}

func TestStartScene(t *testing.T) {
	ops, err := startScene(map[string]any{"scene_name": "MAIN"}, sceneContext())
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, script.UpdateTripFields{
		Fields: map[string]any{"current_scene_name": "MAIN"},
	}, ops[0])
	assert.Equal(t, script.EventOp{
		Event: script.Event{"type": "scene_started", "scene": "MAIN"},
	}, ops[1])
	assert.IsType(t, script.UpdateUI{}, ops[2])
}

func TestStartScene_Unknown(t *testing.T) {
	ops, err := startScene(map[string]any{"scene_name": "FINALE"}, sceneContext())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.LogLevelError, ops[0].(script.Log).Level)
}
