package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/offstage/offstage/internal/script"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Snapshots serialize with canonical JSON so byte comparison against
// golden files is deterministic.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Fields       map[string]any
	History      map[string]any
}

// toCanonicalMap flattens the snapshot for canonical serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"kind": event.Kind,
			"name": event.Name,
			"at":   event.At,
		}
		if event.Data != nil {
			eventMap["data"] = event.Data
		}
		traceList[i] = eventMap
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"fields":        s.Fields,
		"history":       s.History,
	}
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files serve as the source of truth for expected trace output.
// Returns error if scenario execution fails; trace mismatches fail the
// test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-run result's trace against a golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Fields:       result.Fields,
		History:      result.History,
	}
	traceJSON, err := script.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
