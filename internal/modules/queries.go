package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// Queries contributes form-style query responses. Like clip answers,
// query responses stream in partially and final/partial gating applies.
func Queries() registry.Module {
	return registry.Module{
		Name: "queries",
		Resources: map[string]registry.ResourceDef{
			"queries": {
				Help: "Prompted inputs collected from participants.",
				Properties: map[string]registry.ParamSpec{
					"name":   {Type: registry.ParamString, Required: true},
					"scene":  {Type: registry.ParamReference, Collection: "scenes"},
					"prompt": {Type: registry.ParamString},
				},
			},
		},
		Events: map[string]registry.EventDef{
			"query_responded": {
				Help: "A participant responded to a query, possibly partially.",
				Specs: map[string]registry.ParamSpec{
					"query":         {Type: registry.ParamReference, Collection: "queries"},
					"allow_partial": {Type: registry.ParamBoolean},
					"final":         {Type: registry.ParamBoolean},
					"partial":       {Type: registry.ParamBoolean},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "query") &&
						partialGateMatches(spec, event)
				},
			},
		},
		Conditions: map[string]registry.ConditionDef{
			"query_response_contains": {
				Help: "True if the current query response contains the part.",
				Properties: map[string]registry.ParamSpec{
					"part": {Type: registry.ParamString, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					response := template.ResolveRef(ac.EvalContext, "event.response", "")
					if response == nil {
						return false
					}
					return script.ContainsText(response, cond["part"])
				},
			},
		},
	}
}
