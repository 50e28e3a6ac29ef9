package registry

import "github.com/offstage/offstage/internal/script"

// ParamType enumerates the primitive types a param spec may declare.
type ParamType string

const (
	// ParamString is a plain string, possibly a template.
	ParamString ParamType = "string"

	// ParamNumber is any numeric value.
	ParamNumber ParamType = "number"

	// ParamBoolean is true/false.
	ParamBoolean ParamType = "boolean"

	// ParamEnum restricts a string to Options.
	ParamEnum ParamType = "enum"

	// ParamReference names a resource in the Collection it points into.
	ParamReference ParamType = "reference"

	// ParamValueRef is a dotted value path resolved against the eval
	// context at runtime (e.g. "cabana.monkeys").
	ParamValueRef ParamType = "value_ref"

	// ParamSimpleValue is a scalar: string, number, or boolean.
	ParamSimpleValue ParamType = "simple_value"

	// ParamDuration is a duration string ("30s", "10m") or seconds.
	ParamDuration ParamType = "duration"

	// ParamComponent is a single nested component (an event spec or a
	// condition on a trigger). Validated against the nested family.
	ParamComponent ParamType = "component"

	// ParamComponentList is a list of nested components (panel lists on
	// pages, items of a composite condition). Each entry is validated
	// against the nested family.
	ParamComponentList ParamType = "component_list"

	// ParamActionList is a trigger's action tree: phrases mixed with
	// if/elseif/else clauses. Validated structurally by the loader.
	ParamActionList ParamType = "action_list"
)

// ParamSpec describes one field of a resource, action, event, condition,
// or panel: its primitive type, requiredness, default, and - for
// reference-typed fields - which collection it points into. Used for
// validation and cross-reference indexing, not evaluation.
type ParamSpec struct {
	Type       ParamType
	Required   bool
	Default    any
	Collection string   // for ParamReference
	Options    []string // for ParamEnum
	Family     Family   // for ParamComponentList
	Help       string
}

// ActionFunc resolves an action's authored params into result operations.
// Params arrive validated against the action's ParamSpec map and with
// defaults applied. Authoring-level problems (an unknown cue name, say)
// must degrade to script.Log ops; a returned error means the caller broke
// the kernel contract.
type ActionFunc func(params map[string]any, ac *script.ActionContext) ([]script.ResultOp, error)

// MatchFunc tests whether a trigger's event spec matches a concrete event
// instance. Both are guaranteed to share the variant's type by the time a
// MatchFunc runs; only the variant-specific fields need comparing.
type MatchFunc func(spec script.ComponentValue, event script.Event, ac *script.ActionContext) bool

// SubIf evaluates a nested condition. Composite conditions receive it
// instead of recursing into the evaluator directly, keeping condition
// plugins decoupled from the dispatch mechanism.
type SubIf func(cond script.ComponentValue) bool

// CondFunc evaluates one condition component to a boolean.
type CondFunc func(cond script.ComponentValue, ac *script.ActionContext, subIf SubIf) bool

// PanelTextFunc extracts the participant-visible raw text of a panel, if
// the panel variant has any. The text may contain templates; rendering is
// the interface exporter's job.
type PanelTextFunc func(panel script.ComponentValue) (string, bool)

// ActionDef is one registered action variant.
type ActionDef struct {
	Help   string
	Params map[string]ParamSpec
	Exec   ActionFunc
}

// EventDef is one registered event variant.
type EventDef struct {
	Help  string
	Specs map[string]ParamSpec
	Match MatchFunc
}

// ConditionDef is one registered condition variant.
type ConditionDef struct {
	Help       string
	Properties map[string]ParamSpec
	Eval       CondFunc
}

// PanelDef is one registered panel variant.
type PanelDef struct {
	Help       string
	Properties map[string]ParamSpec
	Text       PanelTextFunc
}

// ResourceDef describes one script collection's record schema.
type ResourceDef struct {
	Help       string
	Properties map[string]ParamSpec
}

// Module is one contribution of behavior to the registry. The built-in
// module set is fixed at startup; see the modules package.
type Module struct {
	Name       string
	Actions    map[string]ActionDef
	Events     map[string]EventDef
	Conditions map[string]ConditionDef
	Panels     map[string]PanelDef
	Resources  map[string]ResourceDef
}
