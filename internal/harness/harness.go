// Package harness provides a conformance testing framework for the
// script evaluation kernel.
//
// Scenarios are YAML files describing a script, an initial trip state,
// a stimulus sequence (events, direct actions, clock advances), and
// assertions over the resulting op trace and final state. The harness
// loads the script through the real loader, validates it against the
// full module registry, and drives the real kernel; trip state lives in
// memory so every run is hermetic and deterministic.
//
// State application mirrors the store layer: updateTripFields routes
// current_scene_name, history, and schedule to their own slots and
// deep-merges everything else, updatePlayerFields deep-merges into one
// role's player state, and event ops re-enter the kernel one hop at a
// time against freshly applied state.
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/offstage/offstage/internal/engine"
	"github.com/offstage/offstage/internal/loader"
	"github.com/offstage/offstage/internal/modules"
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
	"github.com/offstage/offstage/internal/testutil"
)

// maxEventDepth bounds re-entry chains, matching the runner: an authored
// cue cycle stops after this many hops and fails the scenario.
const maxEventDepth = 10

// Harness executes one scenario against in-memory trip state.
type Harness struct {
	kernel  *engine.Kernel
	content *script.ScriptContent
	clock   *testutil.FixedClock
	logger  *slog.Logger

	fields   map[string]any
	players  map[string]map[string]any
	history  map[string]any
	schedule map[string]any
	scene    string
	pending  []script.ScheduledAction
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Load and validate the script against the full module registry
//  2. Seed trip state from the scenario's trip section
//  3. Execute steps in order, applying ops and replaying due actions
//  4. Evaluate assertions against the trace and final state
//
// Run returns an error only for harness-level failures (unreadable
// script, registry misconfiguration). Step and assertion failures are
// reported through the result.
func Run(scenario *Scenario) (*Result, error) {
	content, err := loader.LoadFile(scenario.Script)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}

	reg, err := registry.New(modules.All()...)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	result := NewResult()
	for _, verr := range loader.Validate(reg, content) {
		result.AddError(fmt.Sprintf("script validation: %s", verr.Error()))
	}
	if !result.Pass {
		return result, nil
	}

	h := &Harness{
		kernel:   engine.New(reg),
		content:  content,
		clock:    testutil.NewFixedClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		fields:   map[string]any{},
		players:  map[string]map[string]any{},
		history:  map[string]any{},
		schedule: map[string]any{},
	}
	h.seed(scenario.Trip)

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, err
		}
	}

	h.snapshot(result)
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// seed copies the scenario's initial trip state, creating an empty
// player entry for every role the script declares.
func (h *Harness) seed(setup TripSetup) {
	script.MergeFields(h.fields, setup.Fields)
	script.MergeFields(h.schedule, setup.Schedule)
	h.scene = setup.Scene
	for _, role := range h.content.RoleNames() {
		h.players[role] = map[string]any{}
	}
	for role, fields := range setup.Players {
		if h.players[role] == nil {
			h.players[role] = map[string]any{}
		}
		script.MergeFields(h.players[role], fields)
	}
}

// evalContext snapshots the current state for one kernel evaluation.
func (h *Harness) evalContext() *script.EvalContext {
	roles := make(map[string][]map[string]any, len(h.players))
	for role, fields := range h.players {
		roles[role] = []map[string]any{fields}
	}
	return &script.EvalContext{
		Fields:       h.fields,
		Roles:        roles,
		History:      h.history,
		Schedule:     h.schedule,
		CurrentScene: h.scene,
	}
}

func (h *Harness) actionContext() *script.ActionContext {
	return &script.ActionContext{
		ScriptContent: h.content,
		EvalContext:   h.evalContext(),
		EvaluateAt:    h.clock.Now(),
		Timezone:      time.UTC,
	}
}

func (h *Harness) executeStep(index int, step Step, result *Result) error {
	now := h.clock.Now()
	var ops []string

	switch {
	case step.Event != nil:
		event := script.Event(step.Event)
		result.addTrace("event", event.Type(), now, step.Event)
		applied, err := h.evaluate(func(ac *script.ActionContext) (*engine.Result, error) {
			return h.kernel.ApplyEvent(ac, event)
		}, result)
		if err != nil {
			return fmt.Errorf("steps[%d]: event %s: %w", index, event.Type(), err)
		}
		ops = applied

	case step.Action != nil:
		result.addTrace("action", step.Action.Name, now, step.Action.Params)
		applied, err := h.evaluate(func(ac *script.ActionContext) (*engine.Result, error) {
			return h.kernel.ApplyAction(ac, script.Action{
				Name:   step.Action.Name,
				Params: step.Action.Params,
			})
		}, result)
		if err != nil {
			return fmt.Errorf("steps[%d]: action %s: %w", index, step.Action.Name, err)
		}
		ops = applied

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		now = h.clock.Advance(d)
		result.addTrace("advance", step.Advance, now, nil)
		applied, err := h.replayDue(index, result)
		if err != nil {
			return err
		}
		ops = applied
	}

	if step.Expect != nil && !equalStrings(ops, step.Expect) {
		result.AddError(fmt.Sprintf(
			"steps[%d]: expected ops %v, got %v", index, step.Expect, ops))
	}
	h.logger.Info("step completed", "step", index, "ops", len(ops))
	return nil
}

// evaluate runs one kernel call and applies its results, re-entering
// emitted events in FIFO order one hop at a time so each hop sees the
// previous hop's state. Returns the op types produced across all hops.
func (h *Harness) evaluate(call func(*script.ActionContext) (*engine.Result, error), result *Result) ([]string, error) {
	var opTypes []string
	depth := 0
	var pending []script.Event
	next := call
	for next != nil {
		res, err := next(h.actionContext())
		if err != nil {
			return nil, err
		}
		next = nil

		for _, op := range res.Ops {
			opTypes = append(opTypes, op.OpType())
			result.addTrace("op", op.OpType(), h.clock.Now(), opFields(op))
			h.applyOp(op)
			if eventOp, ok := op.(script.EventOp); ok {
				pending = append(pending, eventOp.Event)
			}
		}
		for _, sched := range res.Scheduled {
			result.addTrace("scheduled", sched.Name, sched.ScheduleAt, map[string]any{
				"params":  sched.Params,
				"trigger": sched.TriggerName,
			})
			h.pending = append(h.pending, sched)
		}

		if len(pending) > 0 {
			if depth++; depth > maxEventDepth {
				result.AddError(fmt.Sprintf(
					"event chain exceeded max depth %d at event %q",
					maxEventDepth, pending[0].Type()))
				break
			}
			event := pending[0]
			pending = pending[1:]
			next = func(ac *script.ActionContext) (*engine.Result, error) {
				return h.kernel.ApplyEvent(ac, event)
			}
		}
	}
	return opTypes, nil
}

// applyOp folds one op into the in-memory trip state. Message, UI, call,
// and twiml ops have no state to apply; they exist in the trace.
func (h *Harness) applyOp(op script.ResultOp) {
	switch op := op.(type) {
	case script.UpdateTripFields:
		for key, value := range op.Fields {
			switch key {
			case "current_scene_name":
				h.scene, _ = value.(string)
			case "history":
				if m, ok := value.(map[string]any); ok {
					script.MergeFields(h.history, m)
				}
			case "schedule":
				if m, ok := value.(map[string]any); ok {
					script.MergeFields(h.schedule, m)
				}
			default:
				script.MergeFields(h.fields, map[string]any{key: value})
			}
		}
	case script.UpdatePlayerFields:
		if h.players[op.Role] == nil {
			h.players[op.Role] = map[string]any{}
		}
		script.MergeFields(h.players[op.Role], op.Fields)
	}
}

// replayDue replays pending actions whose time has come, in
// (scheduleAt, insertion) order, the ordering the store's due query
// guarantees.
func (h *Harness) replayDue(index int, result *Result) ([]string, error) {
	now := h.clock.Now()
	sort.SliceStable(h.pending, func(i, j int) bool {
		return h.pending[i].ScheduleAt.Before(h.pending[j].ScheduleAt)
	})

	var opTypes []string
	remaining := h.pending[:0]
	for _, sched := range h.pending {
		if sched.ScheduleAt.After(now) {
			remaining = append(remaining, sched)
			continue
		}
		action := script.Action{Name: sched.Name, Params: sched.Params}
		applied, err := h.evaluate(func(ac *script.ActionContext) (*engine.Result, error) {
			return h.kernel.ApplyAction(ac, action)
		}, result)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: scheduled action %s: %w", index, sched.Name, err)
		}
		opTypes = append(opTypes, applied...)
	}
	h.pending = remaining
	return opTypes, nil
}

// snapshot copies final state into the result for assertions and
// golden traces.
func (h *Harness) snapshot(result *Result) {
	result.Fields = h.fields
	result.Players = h.players
	result.History = h.history
	result.ScheduledCount = len(h.pending)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
