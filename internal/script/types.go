package script

import (
	"fmt"
	"time"
)

// ComponentValue is a polymorphic, schema-typed value: an action phrase,
// an event spec, a condition, or a panel. Its concrete shape is determined
// by the registry's merged descriptor for (family, variant); the variant is
// read from the family's discriminator field.
type ComponentValue map[string]any

// Resource is one named entry in a script collection. Resources are
// schema-validated records; "name" is unique within a collection.
type Resource map[string]any

// Name returns the resource's name, or "" if unnamed.
func (r Resource) Name() string {
	s, _ := r["name"].(string)
	return s
}

// ScriptContent is an immutable map from collection name (e.g. "triggers",
// "roles", "cues") to an ordered list of named resources. Authored and
// versioned externally; the kernel only reads it.
type ScriptContent struct {
	Meta        Meta                  `json:"meta" yaml:"meta"`
	Collections map[string][]Resource `json:"collections" yaml:"collections"`
}

// Meta carries script document metadata.
type Meta struct {
	Version int `json:"version" yaml:"version"`
}

// ResourcesIn returns the ordered resources of a collection. A missing
// collection is an empty list, not an error.
func (sc *ScriptContent) ResourcesIn(collection string) []Resource {
	if sc == nil || sc.Collections == nil {
		return nil
	}
	return sc.Collections[collection]
}

// ResourceByName finds a named resource within a collection.
func (sc *ScriptContent) ResourceByName(collection, name string) (Resource, bool) {
	for _, r := range sc.ResourcesIn(collection) {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// RoleNames returns the declared role names in script order. Used by the
// value-mutation actions to decide whether a ref is role-scoped.
func (sc *ScriptContent) RoleNames() []string {
	roles := sc.ResourcesIn("roles")
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name())
	}
	return names
}

// HasRole reports whether name is a declared role.
func (sc *ScriptContent) HasRole(name string) bool {
	for _, r := range sc.ResourcesIn("roles") {
		if r.Name() == name {
			return true
		}
	}
	return false
}

// Trigger is the typed view of one "triggers" resource: event match plus
// optional condition, gating an action list.
type Trigger struct {
	Name       string
	Scene      string         // empty = global, applies in any scene
	Event      ComponentValue // event spec, discriminated by "type"
	ActiveIf   ComponentValue // optional condition, discriminated by "op"
	Repeatable bool
	Actions    []ActionNode
}

// TriggerFromResource decodes the generic resource shape into a Trigger.
// Shape violations here are loader bugs, not authoring errors: validation
// runs before the kernel ever sees a script.
func TriggerFromResource(r Resource) (Trigger, error) {
	t := Trigger{
		Name:       r.Name(),
		Repeatable: true,
	}
	if t.Name == "" {
		return t, fmt.Errorf("trigger missing name")
	}
	if s, ok := r["scene"].(string); ok {
		t.Scene = s
	}
	if ev, ok := r["event"].(map[string]any); ok {
		t.Event = ComponentValue(ev)
	}
	if cond, ok := r["active_if"].(map[string]any); ok {
		t.ActiveIf = ComponentValue(cond)
	}
	if rep, ok := r["repeatable"].(bool); ok {
		t.Repeatable = rep
	}
	nodes, err := ActionNodesFrom(r["actions"])
	if err != nil {
		return t, fmt.Errorf("trigger %q: %w", t.Name, err)
	}
	t.Actions = nodes
	return t, nil
}

// Event is a tagged occurrence: a cue fired, a call answered, a message
// arrived, time elapsed. Transient; never stored by the kernel.
type Event map[string]any

// Type returns the event's discriminator, or "".
func (e Event) Type() string {
	s, _ := e["type"].(string)
	return s
}

// Action is a directly-invokable operation: a name plus authored params.
type Action struct {
	Name   string         `json:"name" yaml:"name"`
	Params map[string]any `json:"params" yaml:"params"`
}

// ScheduledAction is an action deferred to a future timestamp, persisted
// and later replayed by the external scheduler loop.
type ScheduledAction struct {
	Name        string         `json:"name"`
	Params      map[string]any `json:"params"`
	ScheduleAt  time.Time      `json:"schedule_at"`
	TriggerName string         `json:"trigger_name,omitempty"`
	Event       Event          `json:"event,omitempty"`
}
