package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

func messagesContext(fields map[string]any) *script.ActionContext {
	content := testutil.Content(map[string][]script.Resource{
		"roles": {
			{"name": "Player", "actor": true},
			{"name": "Guide", "actor": true},
			{"name": "Narrator", "actor": false},
		},
	})
	return testutil.ActionContext(content, testutil.EvalContext(fields))
}

func TestSendMessage(t *testing.T) {
	ac := messagesContext(map[string]any{
		"cabana": map[string]any{"monkeys": 2.0},
	})

	ops, err := sendMessage(map[string]any{
		"from_role_name": "Narrator",
		"to_role_name":   "Player",
		"content":        "There are {{cabana.monkeys}} monkeys.",
		"medium":         "text",
	}, ac)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	msg := ops[0].(script.CreateMessage)
	assert.Equal(t, "Narrator", msg.FromRole)
	assert.Equal(t, "Player", msg.ToRole)
	assert.Equal(t, "text", msg.Medium)
	assert.Equal(t, "There are 2 monkeys.", msg.Content)
	assert.True(t, msg.ReplyNeeded, "scripted sender to human recipient expects a reply")
}

func TestSendMessage_ReplyNeededDerivation(t *testing.T) {
	ac := messagesContext(nil)

	send := func(from, to string) script.CreateMessage {
		ops, err := sendMessage(map[string]any{
			"from_role_name": from,
			"to_role_name":   to,
			"content":        "hi",
			"medium":         "text",
		}, ac)
		require.NoError(t, err)
		return ops[0].(script.CreateMessage)
	}

	assert.True(t, send("Narrator", "Player").ReplyNeeded)
	assert.False(t, send("Player", "Guide").ReplyNeeded, "human sender never needs a scripted reply")
	assert.False(t, send("Player", "Narrator").ReplyNeeded)
	assert.False(t, send("Narrator", "Narrator").ReplyNeeded)
}

func TestSendMessage_UnknownRole(t *testing.T) {
	ops, err := sendMessage(map[string]any{
		"from_role_name": "Ghost",
		"to_role_name":   "Player",
		"content":        "boo",
	}, messagesContext(nil))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	log := ops[0].(script.Log)
	assert.Equal(t, script.LogLevelError, log.Level)
	assert.Contains(t, log.Message, "Ghost")
}

func TestMessageReceivedMatch(t *testing.T) {
	match := Messages().Events["message_received"].Match

	spec := script.ComponentValue{"type": "message_received", "from": "Player"}
	assert.True(t, match(spec, script.Event{
		"type": "message_received", "from": "Player", "to": "Guide",
	}, nil))
	assert.False(t, match(spec, script.Event{
		"type": "message_received", "from": "Guide",
	}, nil))

	// Absent spec fields are wildcards.
	assert.True(t, match(script.ComponentValue{"type": "message_received"}, script.Event{
		"type": "message_received", "from": "Guide", "medium": "image",
	}, nil))
}

func TestMessageContainsCondition(t *testing.T) {
	eval := Messages().Conditions["message_contains"].Eval
	ac := messagesContext(nil)
	ac.EvalContext.Event = script.Event{
		"type": "message_received", "content": "Meet me at the Dock",
	}

	assert.True(t, eval(script.ComponentValue{
		"op": "message_contains", "part": "the dock",
	}, ac, nil))
	assert.False(t, eval(script.ComponentValue{
		"op": "message_contains", "part": "the pier",
	}, ac, nil))

	ac.EvalContext.Event = nil
	assert.False(t, eval(script.ComponentValue{
		"op": "message_contains", "part": "dock",
	}, ac, nil))
}
