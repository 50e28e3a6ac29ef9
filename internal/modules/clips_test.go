package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/offstage/offstage/internal/script"
)

func TestClipAnsweredMatch_PartialGating(t *testing.T) {
	match := Clips().Events["clip_answered"].Match

	partial := script.Event{"type": "clip_answered", "clip": "ASK_NAME", "partial": true}
	final := script.Event{"type": "clip_answered", "clip": "ASK_NAME"}

	// No gating flags: both arrive.
	bare := script.ComponentValue{"type": "clip_answered", "clip": "ASK_NAME"}
	assert.True(t, match(bare, partial, nil))
	assert.True(t, match(bare, final, nil))

	// allow_partial: false rejects partials, keeps finals.
	noPartials := script.ComponentValue{"type": "clip_answered", "allow_partial": false}
	assert.False(t, match(noPartials, partial, nil))
	assert.True(t, match(noPartials, final, nil))

	// allow_partial: true admits both.
	allowed := script.ComponentValue{"type": "clip_answered", "allow_partial": true}
	assert.True(t, match(allowed, partial, nil))
	assert.True(t, match(allowed, final, nil))

	// final: true rejects partials.
	finalsOnly := script.ComponentValue{"type": "clip_answered", "final": true}
	assert.False(t, match(finalsOnly, partial, nil))
	assert.True(t, match(finalsOnly, final, nil))

	// partial: true/false require an exact match on the flag.
	partialsOnly := script.ComponentValue{"type": "clip_answered", "partial": true}
	assert.True(t, match(partialsOnly, partial, nil))
	assert.False(t, match(partialsOnly, final, nil))

	notPartial := script.ComponentValue{"type": "clip_answered", "partial": false}
	assert.False(t, match(notPartial, partial, nil))
	assert.True(t, match(notPartial, final, nil))
}

func TestClipAnsweredMatch_ClipField(t *testing.T) {
	match := Clips().Events["clip_answered"].Match

	spec := script.ComponentValue{"type": "clip_answered", "clip": "ASK_NAME"}
	assert.True(t, match(spec, script.Event{"type": "clip_answered", "clip": "ASK_NAME"}, nil))
	assert.False(t, match(spec, script.Event{"type": "clip_answered", "clip": "OTHER"}, nil))
}

func TestQueryRespondedMatch_SharesGating(t *testing.T) {
	match := Queries().Events["query_responded"].Match

	spec := script.ComponentValue{"type": "query_responded", "query": "FAVORITE", "final": true}
	assert.True(t, match(spec, script.Event{
		"type": "query_responded", "query": "FAVORITE",
	}, nil))
	assert.False(t, match(spec, script.Event{
		"type": "query_responded", "query": "FAVORITE", "partial": true,
	}, nil))
}

func TestAnswerContainsConditions(t *testing.T) {
	clipEval := Clips().Conditions["clip_answer_contains"].Eval
	queryEval := Queries().Conditions["query_response_contains"].Eval

	ac := messagesContext(nil)
	ac.EvalContext.Event = script.Event{
		"type": "clip_answered", "answer": "My name is Ishmael",
	}
	assert.True(t, clipEval(script.ComponentValue{"part": "ishmael"}, ac, nil))
	assert.False(t, clipEval(script.ComponentValue{"part": "ahab"}, ac, nil))

	ac.EvalContext.Event = script.Event{
		"type": "query_responded", "response": "the blue one",
	}
	assert.True(t, queryEval(script.ComponentValue{"part": "blue"}, ac, nil))
	assert.False(t, queryEval(script.ComponentValue{"part": "red"}, ac, nil))
}
