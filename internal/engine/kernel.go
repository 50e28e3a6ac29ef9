package engine

import (
	"fmt"
	"time"

	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// Kernel evaluates scripts against trip state. It holds only the
// immutable registry, so a single Kernel is safe to share across
// concurrent per-trip evaluations.
type Kernel struct {
	reg *registry.Registry
}

// New creates a kernel over a built registry.
func New(reg *registry.Registry) *Kernel {
	return &Kernel{reg: reg}
}

// Registry exposes the kernel's registry for validation tooling.
func (k *Kernel) Registry() *registry.Registry {
	return k.reg
}

// Result is one evaluation's output: immediate state mutations in
// declaration order, plus actions deferred to future timestamps.
type Result struct {
	Ops       []script.ResultOp
	Scheduled []script.ScheduledAction
}

func (r *Result) merge(other *Result) {
	r.Ops = append(r.Ops, other.Ops...)
	r.Scheduled = append(r.Scheduled, other.Scheduled...)
}

// ApplyAction resolves one directly-invoked action into result
// operations. Scheduled actions replayed by the external scheduler enter
// the kernel through here.
func (k *Kernel) ApplyAction(ac *script.ActionContext, action script.Action) (*Result, error) {
	if err := checkContext(ac); err != nil {
		return nil, err
	}
	ops, err := k.opsForAction(ac, action.Name, action.Params)
	if err != nil {
		return nil, err
	}
	return &Result{Ops: ops}, nil
}

// ApplyEvent runs one incoming event through trigger selection and fires
// every applicable trigger in script order.
func (k *Kernel) ApplyEvent(ac *script.ActionContext, event script.Event) (*Result, error) {
	if err := checkContext(ac); err != nil {
		return nil, err
	}
	if event.Type() == "" {
		return nil, fmt.Errorf("event missing type: %v", event)
	}

	res := &Result{}
	for _, r := range ac.ScriptContent.ResourcesIn("triggers") {
		trigger, err := script.TriggerFromResource(r)
		if err != nil {
			// Validation runs before the kernel; a malformed trigger
			// here is a caller contract violation.
			return nil, err
		}
		if !k.triggerApplies(ac, trigger, event) {
			continue
		}
		sub, err := k.ApplyTrigger(ac, trigger, event)
		if err != nil {
			return nil, err
		}
		res.merge(sub)
	}
	return res, nil
}

// ApplyTrigger fires one trigger: expands its conditional action tree,
// resolves each phrase in order, and - for a non-repeatable trigger -
// appends the history op that prevents it from firing again.
//
// event may be nil when a trigger is invoked directly rather than by
// event matching.
func (k *Kernel) ApplyTrigger(ac *script.ActionContext, trigger script.Trigger, event script.Event) (*Result, error) {
	if err := checkContext(ac); err != nil {
		return nil, err
	}
	ac = withEvent(ac, event)

	res := &Result{}
	for _, phrase := range k.expandActions(ac, trigger.Actions) {
		if phrase.Offset > 0 {
			res.Scheduled = append(res.Scheduled, script.ScheduledAction{
				Name:        phrase.Name,
				Params:      phrase.Params,
				ScheduleAt:  ac.EvaluateAt.Add(phrase.Offset),
				TriggerName: trigger.Name,
				Event:       event,
			})
			continue
		}
		ops, err := k.opsForAction(ac, phrase.Name, phrase.Params)
		if err != nil {
			return nil, err
		}
		res.Ops = append(res.Ops, ops...)
	}

	if !trigger.Repeatable {
		res.Ops = append(res.Ops, script.UpdateTripFields{
			Fields: map[string]any{
				"history": map[string]any{
					trigger.Name: ac.EvaluateAt.UTC().Format(time.RFC3339),
				},
			},
		})
	}
	return res, nil
}

// triggerApplies implements trigger selection: scene filter, event spec
// match, repeatability, then active_if.
func (k *Kernel) triggerApplies(ac *script.ActionContext, trigger script.Trigger, event script.Event) bool {
	if trigger.Scene != "" && trigger.Scene != ac.EvalContext.CurrentScene {
		return false
	}
	if trigger.Event == nil {
		return false
	}
	if !k.MatchEvent(ac, trigger.Event, event) {
		return false
	}
	if !trigger.Repeatable {
		if _, fired := ac.EvalContext.History[trigger.Name]; fired {
			return false
		}
	}
	if trigger.ActiveIf != nil {
		if !k.If(withEvent(ac, event), trigger.ActiveIf) {
			return false
		}
	}
	return true
}

// expandActions collapses conditional branch nodes into the concrete
// phrase list, taking the first true branch of each clause. Purely
// structural; branch nodes never execute as actions.
func (k *Kernel) expandActions(ac *script.ActionContext, nodes []script.ActionNode) []*script.ActionPhrase {
	var phrases []*script.ActionPhrase
	for _, node := range nodes {
		switch {
		case node.Phrase != nil:
			phrases = append(phrases, node.Phrase)
		case node.Conditional != nil:
			branch := k.selectBranch(ac, node.Conditional)
			phrases = append(phrases, k.expandActions(ac, branch)...)
		}
	}
	return phrases
}

func (k *Kernel) selectBranch(ac *script.ActionContext, clause *script.ConditionalClause) []script.ActionNode {
	if k.If(ac, clause.If) {
		return clause.Actions
	}
	for _, arm := range clause.ElseIfs {
		if k.If(ac, arm.If) {
			return arm.Actions
		}
	}
	return clause.Else
}

// withEvent returns a context whose eval context sees event as current.
// Contexts are immutable, so this is a shallow copy, never a mutation.
func withEvent(ac *script.ActionContext, event script.Event) *script.ActionContext {
	if event == nil || (ac.EvalContext != nil && ac.EvalContext.Event != nil) {
		return ac
	}
	ctx := *ac.EvalContext
	ctx.Event = event
	out := *ac
	out.EvalContext = &ctx
	return &out
}

func checkContext(ac *script.ActionContext) error {
	if ac == nil {
		return fmt.Errorf("nil action context")
	}
	if ac.ScriptContent == nil {
		return fmt.Errorf("action context missing script content")
	}
	if ac.EvalContext == nil {
		return fmt.Errorf("action context missing eval context")
	}
	if ac.EvaluateAt.IsZero() {
		return fmt.Errorf("action context missing evaluateAt")
	}
	return nil
}
