package script

import (
	"fmt"
	"time"
)

// ActionNode is one item of a trigger's action list: either a concrete
// action phrase or a conditional branch node. Exactly one of Phrase and
// Conditional is set. The branch node is purely structural - it is
// collapsed during expansion and never executed as an action itself.
type ActionNode struct {
	Phrase      *ActionPhrase
	Conditional *ConditionalClause
}

// ActionPhrase is a named, parameterized action occurrence inside a
// trigger, with an optional relative schedule offset.
type ActionPhrase struct {
	Name   string
	Params map[string]any
	Offset time.Duration // zero = run immediately at evaluateAt
}

// ConditionalClause is an if/elseif/else branch over action sub-lists.
type ConditionalClause struct {
	If      ComponentValue
	Actions []ActionNode
	ElseIfs []ElseIf
	Else    []ActionNode
}

// ElseIf is one elseif arm of a ConditionalClause.
type ElseIf struct {
	If      ComponentValue
	Actions []ActionNode
}

// ActionNodesFrom decodes a raw action list (as loaded from a script
// document) into an ActionNode tree. A nil input is an empty list.
//
// An item with an "if" key is a conditional clause; anything else must
// carry a "name" and is a phrase. Malformed items are loader errors.
func ActionNodesFrom(raw any) ([]ActionNode, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("actions must be a list, got %T", raw)
	}
	nodes := make([]ActionNode, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("actions[%d]: must be a map, got %T", i, item)
		}
		node, err := actionNodeFrom(m)
		if err != nil {
			return nil, fmt.Errorf("actions[%d]: %w", i, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func actionNodeFrom(m map[string]any) (ActionNode, error) {
	if _, isCond := m["if"]; isCond {
		clause, err := conditionalClauseFrom(m)
		if err != nil {
			return ActionNode{}, err
		}
		return ActionNode{Conditional: clause}, nil
	}

	name, _ := m["name"].(string)
	if name == "" {
		return ActionNode{}, fmt.Errorf("action item needs a name or an if clause")
	}
	phrase := &ActionPhrase{Name: name}
	if params, ok := m["params"].(map[string]any); ok {
		phrase.Params = params
	}
	if rawOffset, ok := m["offset"]; ok {
		offset, err := parseOffset(rawOffset)
		if err != nil {
			return ActionNode{}, fmt.Errorf("action %q: %w", name, err)
		}
		phrase.Offset = offset
	}
	return ActionNode{Phrase: phrase}, nil
}

func conditionalClauseFrom(m map[string]any) (*ConditionalClause, error) {
	clause := &ConditionalClause{}

	condRaw, ok := m["if"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("if clause must be a condition map, got %T", m["if"])
	}
	clause.If = ComponentValue(condRaw)

	actions, err := ActionNodesFrom(m["actions"])
	if err != nil {
		return nil, fmt.Errorf("if branch: %w", err)
	}
	clause.Actions = actions

	if rawElseIfs, ok := m["elseifs"]; ok {
		items, ok := rawElseIfs.([]any)
		if !ok {
			return nil, fmt.Errorf("elseifs must be a list, got %T", rawElseIfs)
		}
		for i, item := range items {
			arm, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("elseifs[%d]: must be a map, got %T", i, item)
			}
			armCond, ok := arm["if"].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("elseifs[%d]: missing if condition", i)
			}
			armActions, err := ActionNodesFrom(arm["actions"])
			if err != nil {
				return nil, fmt.Errorf("elseifs[%d]: %w", i, err)
			}
			clause.ElseIfs = append(clause.ElseIfs, ElseIf{
				If:      ComponentValue(armCond),
				Actions: armActions,
			})
		}
	}

	if rawElse, ok := m["else"]; ok {
		elseActions, err := ActionNodesFrom(rawElse)
		if err != nil {
			return nil, fmt.Errorf("else branch: %w", err)
		}
		clause.Else = elseActions
	}

	return clause, nil
}

// parseOffset accepts either a Go duration string ("30s", "10m", "1h30m")
// or a plain number of seconds.
func parseOffset(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q: %w", v, err)
		}
		if d < 0 {
			return 0, fmt.Errorf("offset must not be negative: %q", v)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("invalid offset type %T", raw)
	}
}
