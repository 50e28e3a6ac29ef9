package modules

import (
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Time contributes the schedule-driven time_occurred event. The external
// scheduler fires one of these when a named schedule entry's wall-clock
// time arrives; the kernel itself never watches the clock.
func Time() registry.Module {
	return registry.Module{
		Name: "time",
		Resources: map[string]registry.ResourceDef{
			"times": {
				Help: "Named schedule entries an experience is timed against.",
				Properties: map[string]registry.ParamSpec{
					"name":  {Type: registry.ParamString, Required: true},
					"title": {Type: registry.ParamString},
				},
			},
		},
		Events: map[string]registry.EventDef{
			"time_occurred": {
				Help: "A named schedule time arrived.",
				Specs: map[string]registry.ParamSpec{
					"time": {Type: registry.ParamReference, Collection: "times"},
				},
				Match: func(spec script.ComponentValue, event script.Event, _ *script.ActionContext) bool {
					return specFieldMatches(spec, event, "time")
				},
			},
		},
	}
}
