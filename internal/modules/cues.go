package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Cues contributes the cues collection, the signal_cue action, and the
// cue_signaled event. Cues are the scripting primitive for chaining
// triggers: signaling a cue emits an event op the caller re-enters, which
// can in turn fire other triggers.
func Cues() registry.Module {
	return registry.Module{
		Name: "cues",
		Resources: map[string]registry.ResourceDef{
			"cues": {
				Help: "Named signals that triggers can emit and listen for.",
				Properties: map[string]registry.ParamSpec{
					"name":  {Type: registry.ParamString, Required: true},
					"scene": {Type: registry.ParamReference, Collection: "scenes"},
				},
			},
		},
		Actions: map[string]registry.ActionDef{
			"signal_cue": {
				Help: "Emit a cue_signaled event for a named cue.",
				Params: map[string]registry.ParamSpec{
					"cue_name": {Type: registry.ParamReference, Collection: "cues", Required: true},
				},
				Exec: signalCue,
			},
		},
		Events: map[string]registry.EventDef{
			"cue_signaled": {
				Help: "A cue was signaled.",
				Specs: map[string]registry.ParamSpec{
					"cue": {Type: registry.ParamReference, Collection: "cues"},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "cue")
				},
			},
		},
	}
}

func signalCue(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	name := paramString(params, "cue_name")
	if _, ok := ac.ScriptContent.ResourceByName("cues", name); !ok {
		return errorLog("signal_cue: unknown cue %q", name), nil
	}
	return []script.ResultOp{
		script.EventOp{Event: script.Event{"type": "cue_signaled", "cue": name}},
	}, nil
}
