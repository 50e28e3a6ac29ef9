package script

import "time"

// EvalContext is the flattened, read-only snapshot of everything a
// template or condition may reference: global trip fields, per-role player
// state projections, schedule/history maps, and the currently-processing
// event (nil when evaluating outside an event).
//
// The caller builds a fresh EvalContext for every evaluation; the kernel
// never mutates one.
type EvalContext struct {
	// Fields holds flattened trip-level values, e.g. {"cabana": {"monkeys": 2}}.
	Fields map[string]any

	// Roles maps role name to the ordered per-player state entries for
	// that role. Most trips have one player per role; refs resolve
	// against the first entry.
	Roles map[string][]map[string]any

	// History maps trigger name to the timestamp it last fired. A
	// non-repeatable trigger whose name appears here never fires again.
	History map[string]any

	// Schedule maps schedule entry names to ISO-8601 timestamps.
	Schedule map[string]any

	// CurrentScene is the trip's active scene name.
	CurrentScene string

	// Event is the event currently being processed, or nil.
	Event Event
}

// Resolve walks a dotted path (already split into segments) through the
// context. The first segment selects the namespace:
//
//   - "player" resolves against the first state entry of playerScope
//   - "event" resolves against the current event
//   - "history" / "schedule" resolve against those maps
//   - a declared role name resolves against that role's first state entry
//   - anything else resolves against the flattened trip fields
//
// A missing path yields (nil, false); resolution never errors.
func (c *EvalContext) Resolve(parts []string, playerScope string) (any, bool) {
	if c == nil || len(parts) == 0 {
		return nil, false
	}
	head, rest := parts[0], parts[1:]

	switch head {
	case "player":
		if playerScope == "" {
			return nil, false
		}
		states := c.Roles[playerScope]
		if len(states) == 0 {
			return nil, false
		}
		return walkPath(states[0], rest)
	case "event":
		if c.Event == nil {
			return nil, false
		}
		return walkPath(map[string]any(c.Event), rest)
	case "history":
		return walkPath(c.History, rest)
	case "schedule":
		return walkPath(c.Schedule, rest)
	}

	if states, isRole := c.Roles[head]; isRole {
		if len(states) == 0 {
			return nil, false
		}
		return walkPath(states[0], rest)
	}

	if v, ok := c.Fields[head]; ok {
		return walkPath(v, rest)
	}
	return nil, false
}

func walkPath(v any, parts []string) (any, bool) {
	for _, part := range parts {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// ActionContext is the per-call bundle the kernel needs to apply one
// action, event, or trigger. Immutable for the duration of the call.
type ActionContext struct {
	ScriptContent *ScriptContent
	EvalContext   *EvalContext

	// EvaluateAt is the logical timestamp actions are applied "as of".
	// Audio elapsed-time math and scheduled-action offsets are computed
	// from it, never from the wall clock.
	EvaluateAt time.Time

	// Timezone renders timestamps for participant-facing text. May be
	// nil when no timestamp rendering will occur.
	Timezone *time.Location
}
