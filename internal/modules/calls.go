package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Calls contributes telephony control: placing calls, playing clips into
// an active call, and the call lifecycle events.
func Calls() registry.Module {
	return registry.Module{
		Name: "calls",
		Actions: map[string]registry.ActionDef{
			"initiate_call": {
				Help: "Place a call to a participant, appearing as another role.",
				Params: map[string]registry.ParamSpec{
					"to_role_name":     {Type: registry.ParamReference, Collection: "roles", Required: true},
					"as_role_name":     {Type: registry.ParamReference, Collection: "roles", Required: true},
					"detect_voicemail": {Type: registry.ParamBoolean, Default: false},
				},
				Exec: initiateCall,
			},
			"play_call_clip": {
				Help: "Play a clip into the active call.",
				Params: map[string]registry.ParamSpec{
					"clip_name": {Type: registry.ParamReference, Collection: "clips", Required: true},
				},
				Exec: playCallClip,
			},
		},
		Events: map[string]registry.EventDef{
			"call_received": {
				Help: "An inbound call arrived.",
				Specs: map[string]registry.ParamSpec{
					"from": {Type: registry.ParamReference, Collection: "roles"},
					"to":   {Type: registry.ParamReference, Collection: "roles"},
				},
				Match: matchFromTo,
			},
			"call_answered": {
				Help: "An outbound call was answered.",
				Specs: map[string]registry.ParamSpec{
					"from": {Type: registry.ParamReference, Collection: "roles"},
					"to":   {Type: registry.ParamReference, Collection: "roles"},
				},
				Match: matchFromTo,
			},
			"call_ended": {
				Help: "A call hung up.",
				Specs: map[string]registry.ParamSpec{
					"role": {Type: registry.ParamReference, Collection: "roles"},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "role")
				},
			},
		},
	}
}

func matchFromTo(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
	return specFieldMatches(spec, event, "from") && specFieldMatches(spec, event, "to")
}

func initiateCall(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	to := paramString(params, "to_role_name")
	as := paramString(params, "as_role_name")
	if !ac.ScriptContent.HasRole(to) || !ac.ScriptContent.HasRole(as) {
		return errorLog("initiate_call: unknown role %q or %q", to, as), nil
	}
	return []script.ResultOp{
		script.InitiateCall{
			FromRole:        as,
			ToRole:          to,
			DetectVoicemail: paramBool(params, "detect_voicemail"),
		},
	}, nil
}

func playCallClip(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	name := paramString(params, "clip_name")
	clip, ok := ac.ScriptContent.ResourceByName("clips", name)
	if !ok {
		return errorLog("play_call_clip: unknown clip %q", name), nil
	}

	// A clip with recorded audio plays the file; one with only a
	// transcript is synthesized.
	if path, _ := clip["path"].(string); path != "" {
		return []script.ResultOp{script.Twiml{Clause: "play", Path: path}}, nil
	}
	transcript, _ := clip["transcript"].(string)
	voice, _ := clip["voice"].(string)
	return []script.ResultOp{script.Twiml{Clause: "say", Message: transcript, Voice: voice}}, nil
}
