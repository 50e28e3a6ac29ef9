package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Core contributes the composite boolean conditions. Every other
// condition in the system is a leaf; these three are the only ones that
// recurse, and they do so through the subIf callback rather than calling
// the evaluator directly.
func Core() registry.Module {
	return registry.Module{
		Name: "core",
		Resources: map[string]registry.ResourceDef{
			"triggers": {
				Help: "Rules: event match plus optional condition, gating an action list.",
				Properties: map[string]registry.ParamSpec{
					"name":       {Type: registry.ParamString, Required: true},
					"scene":      {Type: registry.ParamReference, Collection: "scenes"},
					"event":      {Type: registry.ParamComponent, Family: registry.FamilyEvents, Required: true},
					"active_if":  {Type: registry.ParamComponent, Family: registry.FamilyConditions},
					"repeatable": {Type: registry.ParamBoolean, Default: true},
					"actions":    {Type: registry.ParamActionList, Required: true},
				},
			},
		},
		Conditions: map[string]registry.ConditionDef{
			"and": {
				Help: "True if every item is true; an empty list is vacuously true.",
				Properties: map[string]registry.ParamSpec{
					"items": {Type: registry.ParamComponentList, Family: registry.FamilyConditions, Required: true},
				},
				Eval: func(cond script.ComponentValue, _ *script.ActionContext, subIf registry.SubIf) bool {
					for _, item := range conditionItems(cond["items"]) {
						if !subIf(item) {
							return false
						}
					}
					return true
				},
			},
			"or": {
				Help: "True if at least one item is true; an empty list is false.",
				Properties: map[string]registry.ParamSpec{
					"items": {Type: registry.ParamComponentList, Family: registry.FamilyConditions, Required: true},
				},
				Eval: func(cond script.ComponentValue, _ *script.ActionContext, subIf registry.SubIf) bool {
					for _, item := range conditionItems(cond["items"]) {
						if subIf(item) {
							return true
						}
					}
					return false
				},
			},
			"not": {
				Help: "Negation; an absent item counts as false, so not of nothing is true.",
				Properties: map[string]registry.ParamSpec{
					"item": {Type: registry.ParamComponentList, Family: registry.FamilyConditions},
				},
				Eval: func(cond script.ComponentValue, _ *script.ActionContext, subIf registry.SubIf) bool {
					item, _ := cond["item"].(map[string]any)
					return !subIf(script.ComponentValue(item))
				},
			},
		},
	}
}

func conditionItems(raw any) []script.ComponentValue {
	items, _ := raw.([]any)
	out := make([]script.ComponentValue, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		out = append(out, script.ComponentValue(m))
	}
	return out
}
