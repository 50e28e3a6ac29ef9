package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/template"
)

// Values contributes value mutation actions and the value predicates.
func Values() registry.Module {
	return registry.Module{
		Name: "values",
		Actions: map[string]registry.ActionDef{
			"set_value": {
				Help: "Set a trip or player value to a resolved reference.",
				Params: map[string]registry.ParamSpec{
					"value_ref":     {Type: registry.ParamValueRef, Required: true},
					"new_value_ref": {Type: registry.ParamValueRef, Required: true},
				},
				Exec: setValue,
			},
			"increment_value": {
				Help: "Add delta (default 1) to a numeric trip or player value.",
				Params: map[string]registry.ParamSpec{
					"value_ref": {Type: registry.ParamValueRef, Required: true},
					"delta":     {Type: registry.ParamNumber},
				},
				Exec: incrementValue,
			},
		},
		Conditions: map[string]registry.ConditionDef{
			"value_is_true": {
				Help: "True if the referenced value is truthy.",
				Properties: map[string]registry.ParamSpec{
					"ref": {Type: registry.ParamValueRef, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					return script.Truthy(template.ResolveRef(ac.EvalContext, cond["ref"], ""))
				},
			},
			"value_equals": {
				Help: "True if both references resolve to equal values.",
				Properties: map[string]registry.ParamSpec{
					"ref1": {Type: registry.ParamValueRef, Required: true},
					"ref2": {Type: registry.ParamValueRef, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					return script.LooseEqual(
						template.ResolveRef(ac.EvalContext, cond["ref1"], ""),
						template.ResolveRef(ac.EvalContext, cond["ref2"], ""),
					)
				},
			},
			"value_contains": {
				Help: "True if the first referenced string contains the second.",
				Properties: map[string]registry.ParamSpec{
					"value_ref": {Type: registry.ParamValueRef, Required: true},
					"part_ref":  {Type: registry.ParamValueRef, Required: true},
				},
				Eval: func(cond script.ComponentValue, ac *script.ActionContext, _ registry.SubIf) bool {
					haystack := template.ResolveRef(ac.EvalContext, cond["value_ref"], "")
					needle := template.ResolveRef(ac.EvalContext, cond["part_ref"], "")
					if haystack == nil || needle == nil {
						return false
					}
					return script.ContainsText(haystack, needle)
				},
			},
		},
	}
}

func setValue(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	ref := paramString(params, "value_ref")
	newValue := template.ResolveRef(ac.EvalContext, params["new_value_ref"], "")
	return []script.ResultOp{routeValueWrite(ac.ScriptContent, ref, newValue)}, nil
}

func incrementValue(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	ref := paramString(params, "value_ref")

	// Missing or non-numeric current values coerce to 0; delta defaults
	// to 1, so a bare increment_value counts occurrences.
	current, _ := script.ToNumber(template.ResolveRef(ac.EvalContext, ref, ""))
	delta := 1.0
	if raw, ok := params["delta"]; ok {
		if d, numeric := script.ToNumber(raw); numeric {
			delta = d
		}
	}
	return []script.ResultOp{routeValueWrite(ac.ScriptContent, ref, current+delta)}, nil
}
