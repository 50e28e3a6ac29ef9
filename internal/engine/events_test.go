package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func TestMatchEvent(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(testutil.Content(nil), testutil.EvalContext(nil))

	spec := script.ComponentValue{"type": "cue_signaled", "cue": "GO"}

	assert.True(t, k.MatchEvent(ac, spec, script.Event{"type": "cue_signaled", "cue": "GO"}))
	assert.False(t, k.MatchEvent(ac, spec, script.Event{"type": "cue_signaled", "cue": "STOP"}))
	assert.False(t, k.MatchEvent(ac, spec, script.Event{"type": "scene_started", "cue": "GO"}))
	assert.False(t, k.MatchEvent(ac, spec, nil))
}

func TestMatchEvent_AbsentSpecFieldIsWildcard(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(testutil.Content(nil), testutil.EvalContext(nil))

	spec := script.ComponentValue{"type": "cue_signaled"}
	assert.True(t, k.MatchEvent(ac, spec, script.Event{"type": "cue_signaled", "cue": "ANY"}))
	assert.True(t, k.MatchEvent(ac, spec, script.Event{"type": "cue_signaled"}))
}

func TestMatchEvent_MultiFieldSpecs(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(testutil.Content(nil), testutil.EvalContext(nil))

	spec := script.ComponentValue{"type": "message_received", "from": "Player", "medium": "text"}

	assert.True(t, k.MatchEvent(ac, spec, script.Event{
		"type": "message_received", "from": "Player", "to": "Guide", "medium": "text",
	}))
	assert.False(t, k.MatchEvent(ac, spec, script.Event{
		"type": "message_received", "from": "Guide", "medium": "text",
	}))
	assert.False(t, k.MatchEvent(ac, spec, script.Event{
		"type": "message_received", "from": "Player", "medium": "image",
	}))
}

func TestMatchEvent_UnknownSpecType(t *testing.T) {
	k := testKernel(t)
	ac := testutil.ActionContext(testutil.Content(nil), testutil.EvalContext(nil))

	assert.False(t, k.MatchEvent(ac,
		script.ComponentValue{"type": "no_such_event"},
		script.Event{"type": "no_such_event"}))
	assert.False(t, k.MatchEvent(ac,
		script.ComponentValue{},
		script.Event{"type": "cue_signaled"}))
}
