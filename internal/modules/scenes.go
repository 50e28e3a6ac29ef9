package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Scenes contributes the scenes collection, scene transitions, and the
// scene_started event.
func Scenes() registry.Module {
	return registry.Module{
		Name: "scenes",
		Resources: map[string]registry.ResourceDef{
			"scenes": {
				Help: "Narrative phases of an experience.",
				Properties: map[string]registry.ParamSpec{
					"name":  {Type: registry.ParamString, Required: true},
					"title": {Type: registry.ParamString},
				},
			},
		},
		Actions: map[string]registry.ActionDef{
			"start_scene": {
				Help: "Advance the trip to a new scene.",
				Params: map[string]registry.ParamSpec{
					"scene_name": {Type: registry.ParamReference, Collection: "scenes", Required: true},
				},
				Exec: startScene,
			},
		},
		Events: map[string]registry.EventDef{
			"scene_started": {
				Help: "A scene became the trip's current scene.",
				Specs: map[string]registry.ParamSpec{
					"scene": {Type: registry.ParamReference, Collection: "scenes"},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "scene")
				},
			},
		},
	}
}

func startScene(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error) {
	name := paramString(params, "scene_name")
	if _, ok := ac.ScriptContent.ResourceByName("scenes", name); !ok {
		return errorLog("start_scene: unknown scene %q", name), nil
	}
	return []script.ResultOp{
		script.UpdateTripFields{Fields: map[string]any{"current_scene_name": name}},
		script.EventOp{Event: script.Event{"type": "scene_started", "scene": name}},
		script.UpdateUI{},
	}, nil
}
