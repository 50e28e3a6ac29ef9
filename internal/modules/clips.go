package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// Clips contributes the clips collection and the clip answer events.
// Clip answers arrive incrementally from speech recognition, so the
// clip_answered event carries a partial flag and specs may gate on it.
func Clips() registry.Module {
	return registry.Module{
		Name: "clips",
		Resources: map[string]registry.ResourceDef{
			"clips": {
				Help: "Spoken audio clips, optionally expecting an answer.",
				Properties: map[string]registry.ParamSpec{
					"name":            {Type: registry.ParamString, Required: true},
					"scene":           {Type: registry.ParamReference, Collection: "scenes"},
					"transcript":      {Type: registry.ParamString},
					"path":            {Type: registry.ParamString},
					"voice":           {Type: registry.ParamString},
					"answer_expected": {Type: registry.ParamBoolean, Default: false},
				},
			},
		},
		Events: map[string]registry.EventDef{
			"clip_answered": {
				Help: "A participant answered a clip, possibly partially.",
				Specs: map[string]registry.ParamSpec{
					"clip":          {Type: registry.ParamReference, Collection: "clips"},
					"allow_partial": {Type: registry.ParamBoolean},
					"final":         {Type: registry.ParamBoolean},
					"partial":       {Type: registry.ParamBoolean},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "clip") &&
						partialGateMatches(spec, event)
				},
			},
		},
		Conditions: map[string]registry.ConditionDef{
			"clip_answer_contains": {
				Help: "True if the current clip answer contains the part.",
				Properties: map[string]registry.ParamSpec{
					"part": {Type: registry.ParamString, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					answer := template.ResolveRef(ac.EvalContext, "event.answer", "")
					if answer == nil {
						return false
					}
					return script.ContainsText(answer, cond["part"])
				},
			},
		},
	}
}
