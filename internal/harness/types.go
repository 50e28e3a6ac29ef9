package harness

import (
	"encoding/json"
	"time"
)

// TraceEvent is one entry in a scenario's evaluation trace: the stimulus
// that entered the kernel or an op it produced.
type TraceEvent struct {
	// Kind is "event", "action", "advance", "op", or "scheduled".
	Kind string `json:"kind"`

	// Name is the event type, action name, or op type.
	Name string `json:"name"`

	// At is the logical evaluation time, RFC 3339.
	At string `json:"at"`

	// Data carries the stimulus payload or op fields.
	Data map[string]any `json:"data,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains stimuli and ops in evaluation order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Fields is the final trip field state.
	Fields map[string]any `json:"fields"`

	// Players maps role name to final player field state.
	Players map[string]map[string]any `json:"players"`

	// History maps trigger names to the timestamps they fired.
	History map[string]any `json:"history"`

	// ScheduledCount is the number of actions still pending at the end.
	ScheduledCount int `json:"scheduled_count"`
}

// NewResult creates a passing result with empty state.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Fields:  map[string]any{},
		Players: map[string]map[string]any{},
		History: map[string]any{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) addTrace(kind, name string, at time.Time, data map[string]any) {
	r.Trace = append(r.Trace, TraceEvent{
		Kind: kind,
		Name: name,
		At:   at.UTC().Format(time.RFC3339),
		Data: data,
	})
}

// opFields flattens a ResultOp into a plain map through its JSON tags so
// traces and subset assertions see the same field names the op structs
// declare.
func opFields(op any) map[string]any {
	data, err := json.Marshal(op)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
