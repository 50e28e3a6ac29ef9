package engine

import (
	"fmt"
	"sort"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// opsForAction validates an action's params against its registered spec,
// applies defaults, and runs the action's resolver.
//
// An unknown action name or a missing required param is an authoring
// error: it degrades to an error-level log op so one bad phrase cannot
// abort the rest of a trigger's action list. A resolver returning a Go
// error is a contract violation and escalates.
func (k *Kernel) opsForAction(ac *script.ActionContext, name string, params map[string]any) ([]script.ResultOp, error) {
	def, ok := k.reg.Action(name)
	if !ok {
		return []script.ResultOp{script.Log{
			Level:   script.LogLevelError,
			Message: fmt.Sprintf("unknown action %q", name),
		}}, nil
	}

	applied, missing := applyParams(def.Params, params)
	if len(missing) > 0 {
		return []script.ResultOp{script.Log{
			Level:   script.LogLevelError,
			Message: fmt.Sprintf("action %q missing required params: %v", name, missing),
		}}, nil
	}

	ops, err := def.Exec(applied, ac)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}
	return ops, nil
}

// applyParams copies the authored params, fills declared defaults, and
// reports the sorted names of missing required params.
func applyParams(specs map[string]registry.ParamSpec, params map[string]any) (map[string]any, []string) {
	applied := make(map[string]any, len(params))
	for k, v := range params {
		applied[k] = v
	}

	var missing []string
	for name, spec := range specs {
		if _, present := applied[name]; present {
			continue
		}
		if spec.Default != nil {
			applied[name] = spec.Default
			continue
		}
		if spec.Required {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return applied, missing
}
