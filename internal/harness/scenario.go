package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate trip behavior by feeding a sequence of events and
// actions through the kernel and asserting on the resulting op trace and
// final trip state.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the path to the script file to load (YAML, JSON, or
	// CUE). Relative paths resolve against the scenario file location.
	Script string `yaml:"script"`

	// Trip describes the initial trip state before the first step.
	Trip TripSetup `yaml:"trip,omitempty"`

	// Steps is the stimulus sequence. Each step fires an event, invokes
	// an action, or advances the clock to replay due scheduled actions.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final op trace and trip state.
	Assertions []Assertion `yaml:"assertions"`
}

// TripSetup seeds the in-memory trip state.
type TripSetup struct {
	// Fields are the initial trip-level values.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Scene is the initial current scene name.
	Scene string `yaml:"scene,omitempty"`

	// Players maps role name to that player's initial state values.
	// One player per role; roles without an entry start empty.
	Players map[string]map[string]any `yaml:"players,omitempty"`

	// Schedule maps schedule entry names to ISO-8601 timestamps.
	Schedule map[string]any `yaml:"schedule,omitempty"`
}

// Step is one stimulus in the scenario flow. Exactly one of Event,
// Action, or Advance must be set.
type Step struct {
	// Event fires an incoming event through trigger matching. The map
	// must carry a "type" discriminator.
	Event map[string]any `yaml:"event,omitempty"`

	// Action invokes a single action directly, bypassing triggers.
	Action *ActionStep `yaml:"action,omitempty"`

	// Advance moves the logical clock forward by a duration string
	// (e.g. "10m") and replays scheduled actions that come due.
	Advance string `yaml:"advance,omitempty"`

	// Expect lists the op types the step must produce, in order.
	// If nil, the step's ops are recorded but not checked inline.
	Expect []string `yaml:"expect,omitempty"`
}

// ActionStep names an action and its params.
type ActionStep struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Assertion validates the op trace or final state.
type Assertion struct {
	// Type selects the assertion:
	//   - "ops_contain": an op of the given type with matching fields exists
	//   - "ops_order": op types appear in this relative order
	//   - "op_count": the op type appears exactly Count times
	//   - "final_field": a dotted trip field path has the expected value
	//   - "player_field": a dotted player field path has the expected value
	//   - "history_fired": the named trigger is recorded in history
	//   - "scheduled_count": exactly Count actions remain scheduled
	Type string `yaml:"type"`

	// Op is the op type name (ops_contain, op_count).
	Op string `yaml:"op,omitempty"`

	// Fields are expected op field values, subset match (ops_contain).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Ops is the expected op type order (ops_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected occurrence count (op_count, scheduled_count).
	Count int `yaml:"count,omitempty"`

	// Path is a dotted field path (final_field, player_field).
	Path string `yaml:"path,omitempty"`

	// Role scopes player_field to one role's player.
	Role string `yaml:"role,omitempty"`

	// Value is the expected field value (final_field, player_field).
	Value any `yaml:"value,omitempty"`

	// Trigger is the trigger name (history_fired).
	Trigger string `yaml:"trigger,omitempty"`
}

// Assertion type constants.
const (
	AssertOpsContain     = "ops_contain"
	AssertOpsOrder       = "ops_order"
	AssertOpCount        = "op_count"
	AssertFinalField     = "final_field"
	AssertPlayerField    = "player_field"
	AssertHistoryFired   = "history_fired"
	AssertScheduledCount = "scheduled_count"
)

// LoadScenario reads and parses a scenario YAML file, resolving the
// script path relative to the scenario file. Returns an error if the
// file is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario yaml: %w", err)
	}

	if scenario.Script != "" && !filepath.IsAbs(scenario.Script) {
		scenario.Script = filepath.Join(filepath.Dir(path), scenario.Script)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Script == "" {
		return fmt.Errorf("script is required")
	}
	if _, err := os.Stat(s.Script); os.IsNotExist(err) {
		return fmt.Errorf("script file not found: %s", s.Script)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Event != nil {
			set++
			if t, _ := step.Event["type"].(string); t == "" {
				return fmt.Errorf("steps[%d].event: type is required", i)
			}
		}
		if step.Action != nil {
			set++
			if step.Action.Name == "" {
				return fmt.Errorf("steps[%d].action: name is required", i)
			}
		}
		if step.Advance != "" {
			set++
			if _, err := time.ParseDuration(step.Advance); err != nil {
				return fmt.Errorf("steps[%d].advance: %w", i, err)
			}
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of event, action, advance is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOpsContain:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for ops_contain", index)
		}
	case AssertOpsOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for ops_order", index)
		}
	case AssertOpCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for op_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for op_count", index)
		}
	case AssertFinalField:
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for final_field", index)
		}
	case AssertPlayerField:
		if a.Role == "" {
			return fmt.Errorf("assertions[%d]: role is required for player_field", index)
		}
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for player_field", index)
		}
	case AssertHistoryFired:
		if a.Trigger == "" {
			return fmt.Errorf("assertions[%d]: trigger is required for history_fired", index)
		}
	case AssertScheduledCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for scheduled_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
