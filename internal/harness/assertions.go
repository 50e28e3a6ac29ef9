package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/offstage/offstage/internal/script"
)

// AssertionError is returned when an assertion fails.
// It includes the op trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\ntrace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, event.Kind, event.Name)
		}
	}
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertOpsContain:
			err = assertOpsContain(result.Trace, assertion)
		case AssertOpsOrder:
			err = assertOpsOrder(result.Trace, assertion)
		case AssertOpCount:
			err = assertOpCount(result.Trace, assertion)
		case AssertFinalField:
			err = assertField(result.Fields, assertion, "final_field")
		case AssertPlayerField:
			player, ok := result.Players[assertion.Role]
			if !ok {
				err = &AssertionError{
					Type:     "player_field",
					Expected: fmt.Sprintf("player for role %q", assertion.Role),
					Actual:   "role has no player",
				}
			} else {
				err = assertField(player, assertion, "player_field")
			}
		case AssertHistoryFired:
			if _, fired := result.History[assertion.Trigger]; !fired {
				err = &AssertionError{
					Type:     "history_fired",
					Expected: fmt.Sprintf("trigger %q recorded in history", assertion.Trigger),
					Actual:   fmt.Sprintf("history: %v", result.History),
					Trace:    result.Trace,
				}
			}
		case AssertScheduledCount:
			if result.ScheduledCount != assertion.Count {
				err = &AssertionError{
					Type:     "scheduled_count",
					Expected: fmt.Sprintf("%d pending scheduled actions", assertion.Count),
					Actual:   fmt.Sprintf("%d pending", result.ScheduledCount),
					Trace:    result.Trace,
				}
			}
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

// assertOpsContain checks if the trace contains an op of the given type
// whose fields match the assertion's fields (subset match).
func assertOpsContain(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Kind == "op" && event.Name == assertion.Op {
			if matchFields(event.Data, assertion.Fields) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     "ops_contain",
		Expected: fmt.Sprintf("op %s with fields %v", assertion.Op, assertion.Fields),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertOpsOrder checks if op types appear in the specified relative
// order. Ops don't need to be consecutive.
func assertOpsOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Kind != "op" {
			continue
		}
		for _, expected := range assertion.Ops {
			if event.Name == expected && positions[expected] == 0 {
				positions[expected] = i + 1 // 1-indexed for readability
			}
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     "ops_order",
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev, curr := assertion.Ops[i-1], assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     "ops_order",
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertOpCount checks if the op type appears exactly the specified
// number of times.
func assertOpCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == "op" && event.Name == assertion.Op {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     "op_count",
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertField checks a dotted path into a field map against an expected
// value. Comparison uses the script engine's loose equality so YAML
// integers match stored floats.
func assertField(fields map[string]any, assertion Assertion, typ string) error {
	parts := strings.Split(assertion.Path, ".")
	actual := any(fields)
	for _, part := range parts {
		m, ok := actual.(map[string]any)
		if !ok {
			actual = nil
			break
		}
		actual = m[part]
	}

	if !fieldValueEqual(assertion.Value, actual) {
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("field %q = %v", assertion.Path, assertion.Value),
			Actual:   fmt.Sprintf("field %q = %v", assertion.Path, actual),
		}
	}
	return nil
}

// matchFields checks if actual op fields contain all expected fields
// (subset match). Extra keys in actual are ignored.
func matchFields(actual map[string]any, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}
	if actual == nil {
		return false
	}
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !fieldValueEqual(expectedVal, actualVal) {
			return false
		}
	}
	return true
}

// fieldValueEqual compares expected and actual values. Scalars compare
// with the engine's loose equality (so 2 matches 2.0 and "true" matches
// true); maps compare as nested subsets; everything else falls back to
// DeepEqual.
func fieldValueEqual(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expectedMap, ok := expected.(map[string]any); ok {
		actualMap, ok := actual.(map[string]any)
		return ok && matchFields(actualMap, expectedMap)
	}
	switch expected.(type) {
	case string, bool, int, int64, float64:
		return script.LooseEqual(expected, actual)
	}
	return reflect.DeepEqual(expected, actual)
}
