package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// Messages contributes message sending and receiving.
func Messages() registry.Module {
	return registry.Module{
		Name: "messages",
		Actions: map[string]registry.ActionDef{
			"send_message": {
				Help: "Send a templated message from one role to another.",
				Params: map[string]registry.ParamSpec{
					"from_role_name": {Type: registry.ParamReference, Collection: "roles", Required: true},
					"to_role_name":   {Type: registry.ParamReference, Collection: "roles", Required: true},
					"content":        {Type: registry.ParamString, Required: true},
					"medium": {
						Type:    registry.ParamEnum,
						Options: []string{"text", "image", "audio"},
						Default: "text",
					},
				},
				Exec: sendMessage,
			},
		},
		Events: map[string]registry.EventDef{
			"message_received": {
				Help: "A message arrived from a participant.",
				Specs: map[string]registry.ParamSpec{
					"from":   {Type: registry.ParamReference, Collection: "roles"},
					"to":     {Type: registry.ParamReference, Collection: "roles"},
					"medium": {Type: registry.ParamEnum, Options: []string{"text", "image", "audio"}},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "from") &&
						specFieldMatches(spec, event, "to") &&
						specFieldMatches(spec, event, "medium")
				},
			},
		},
		Conditions: map[string]registry.ConditionDef{
			"message_contains": {
				Help: "True if the current message event's content contains the part.",
				Properties: map[string]registry.ParamSpec{
					"part": {Type: registry.ParamString, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					content := template.ResolveRef(ac.EvalContext, "event.content", "")
					if content == nil {
						return false
					}
					return script.ContainsText(content, cond["part"])
				},
			},
		},
	}
}

func sendMessage(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	fromName := paramString(params, "from_role_name")
	toName := paramString(params, "to_role_name")

	from, fromOK := ac.ScriptContent.ResourceByName("roles", fromName)
	to, toOK := ac.ScriptContent.ResourceByName("roles", toName)
	if !fromOK || !toOK {
		return errorLog("send_message: unknown role %q or %q", fromName, toName), nil
	}

	content, err := template.RenderText(ac.EvalContext, params["content"], ac.Timezone, toName)
	if err != nil {
		return nil, err
	}

	// Reply-needed is derived, never authored: a message from a scripted
	// (non-actor) sender to a human (actor) recipient expects an answer.
	fromActor, _ := from["actor"].(bool)
	toActor, _ := to["actor"].(bool)

	return []script.ResultOp{
		script.CreateMessage{
			FromRole:    fromName,
			ToRole:      toName,
			Medium:      paramString(params, "medium"),
			Content:     content,
			ReplyNeeded: !fromActor && toActor,
		},
	}, nil
}
