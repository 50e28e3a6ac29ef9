package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func callsContext() *script.ActionContext {
	content := testutil.Content(map[string][]script.Resource{
		"roles": {
			{"name": "Player", "actor": true},
			{"name": "Dispatcher", "actor": false},
		},
		"clips": {
			{"name": "GREETING", "path": "media/greeting.mp3"},
			{"name": "ASK_NAME", "transcript": "What is your name?", "voice": "alice"},
		},
	})
	return testutil.ActionContext(content, testutil.EvalContext(nil))
}

func TestInitiateCall(t *testing.T) {
	ops, err := initiateCall(map[string]any{
		"to_role_name":     "Player",
		"as_role_name":     "Dispatcher",
		"detect_voicemail": true,
	}, callsContext())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.InitiateCall{
		FromRole:        "Dispatcher",
		ToRole:          "Player",
		DetectVoicemail: true,
	}, ops[0])
}

func TestInitiateCall_UnknownRole(t *testing.T) {
	ops, err := initiateCall(map[string]any{
		"to_role_name": "Nobody",
		"as_role_name": "Dispatcher",
	}, callsContext())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.LogLevelError, ops[0].(script.Log).Level)
}

func TestPlayCallClip_RecordedVsSynthesized(t *testing.T) {
	ac := callsContext()

	ops, err := playCallClip(map[string]any{"clip_name": "GREETING"}, ac)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, script.Twiml{Clause: "play", Path: "media/greeting.mp3"}, ops[0])

	ops, err = playCallClip(map[string]any{"clip_name": "ASK_NAME"}, ac)
	require.NoError(t, err)
	assert.Equal(t, script.Twiml{
		Clause: "say", Message: "What is your name?", Voice: "alice",
	}, ops[0])
}

func TestCallEventMatchers(t *testing.T) {
	answered := Calls().Events["call_answered"].Match
	ended := Calls().Events["call_ended"].Match

	spec := script.ComponentValue{"type": "call_answered", "to": "Player"}
	assert.True(t, answered(spec, script.Event{
		"type": "call_answered", "from": "Dispatcher", "to": "Player",
	}, nil))
	assert.False(t, answered(spec, script.Event{
		"type": "call_answered", "to": "Guide",
	}, nil))

	assert.True(t, ended(script.ComponentValue{"type": "call_ended"}, script.Event{
		"type": "call_ended", "role": "Player",
	}, nil))
}
