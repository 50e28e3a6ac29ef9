package modules

import (
	"fmt"
	"strings"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// All returns the built-in module set in registration order.
func All() []registry.Module {
	return []registry.Module{
		Core(),
		Roles(),
		Values(),
		Scenes(),
		Cues(),
		Pages(),
		Messages(),
		Calls(),
		Clips(),
		Queries(),
		Audio(),
		Time(),
	}
}

// paramString reads a string param, tolerating absence.
func paramString(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

// paramBool reads a boolean param, tolerating absence.
func paramBool(params map[string]any, key string) bool {
	b, _ := params[key].(bool)
	return b
}

// errorLog builds the standard authoring-error op.
func errorLog(format string, args ...any) []script.ResultOp {
	return []script.ResultOp{script.Log{
		Level:   script.LogLevelError,
		Message: fmt.Sprintf(format, args...),
	}}
}

// warnLog builds a warn-level log op.
func warnLog(format string, args ...any) []script.ResultOp {
	return []script.ResultOp{script.Log{
		Level:   script.LogLevelWarn,
		Message: fmt.Sprintf(format, args...),
	}}
}

// routeValueWrite turns a dotted value ref into either a role-scoped
// player update or a trip-scoped update, based on whether the ref's first
// path segment names a declared role.
func routeValueWrite(sc *script.ScriptContent, ref string, value any) script.ResultOp {
	parts := strings.Split(ref, ".")
	if len(parts) > 1 && sc.HasRole(parts[0]) {
		return script.UpdatePlayerFields{
			Role:   parts[0],
			Fields: script.FieldsAtPath(parts[1:], value),
		}
	}
	return script.UpdateTripFields{Fields: script.FieldsAtPath(parts, value)}
}

// specFieldMatches implements the shared wildcard policy: an absent spec
// field always matches; a present one must equal the event's field.
func specFieldMatches(spec script.ComponentValue, event script.Event, field string) bool {
	want, declared := spec[field]
	if !declared {
		return true
	}
	return script.LooseEqual(want, event[field])
}

// partialGateMatches implements the response-style gating flags. The
// allow_partial and final/partial constraints are mutually exclusive
// gates, not a tri-state: each declared flag filters independently, and an
// absent flag is a wildcard.
func partialGateMatches(spec script.ComponentValue, event script.Event) bool {
	eventPartial := script.Truthy(event["partial"])

	if allow, declared := spec["allow_partial"]; declared {
		if !script.Truthy(allow) && eventPartial {
			return false
		}
	}
	if final, declared := spec["final"]; declared {
		if script.Truthy(final) && eventPartial {
			return false
		}
	}
	if partial, declared := spec["partial"]; declared {
		if script.Truthy(partial) != eventPartial {
			return false
		}
	}
	return true
}
