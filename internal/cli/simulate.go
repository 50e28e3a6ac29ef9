package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/offstage/offstage/internal/engine"
	"github.com/offstage/offstage/internal/loader"
	"github.com/offstage/offstage/internal/modules"
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/script"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Event  string
	Action string
	Params string
	Fields string
	Scene  string
	At     string
}

// SimulateResult is the simulate command's payload.
type SimulateResult struct {
	Ops       []map[string]any `json:"ops"`
	Scheduled []SimScheduled   `json:"scheduled,omitempty"`
}

// SimScheduled is one deferred action in a simulate payload.
type SimScheduled struct {
	Name       string         `json:"name"`
	Params     map[string]any `json:"params,omitempty"`
	ScheduleAt string         `json:"schedule_at"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <script>",
		Short: "Apply one event or action against a trip snapshot",
		Long: `Evaluate a single event or action against a script and an ad-hoc trip
snapshot, printing the resulting ops without persisting anything.

Exactly one of --event and --action is required.

Examples:
  offstage simulate ./script.yaml --event '{"type":"cue_signaled","cue":"ALERT"}'
  offstage simulate ./script.yaml --action signal_cue --params '{"cue_name":"ALERT"}'
  offstage simulate ./script.yaml --event '{"type":"time_occurred","time":"T1"}' \
    --fields '{"cabana":{"monkeys":2}}' --scene MAIN`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Event, "event", "", "event to apply, as JSON")
	cmd.Flags().StringVar(&opts.Action, "action", "", "action name to apply")
	cmd.Flags().StringVar(&opts.Params, "params", "{}", "action params as JSON")
	cmd.Flags().StringVar(&opts.Fields, "fields", "{}", "trip fields snapshot as JSON")
	cmd.Flags().StringVar(&opts.Scene, "scene", "", "current scene name")
	cmd.Flags().StringVar(&opts.At, "at", "", "evaluation time, RFC 3339 (default: now)")

	return cmd
}

func runSimulate(opts *SimulateOptions, scriptPath string, cmd *cobra.Command) error {
	if (opts.Event == "") == (opts.Action == "") {
		return NewExitError(ExitCommandError, "exactly one of --event and --action is required")
	}

	content, err := loader.LoadFile(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}
	reg, err := registry.New(modules.All()...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build registry", err)
	}
	if errs := loader.Validate(reg, content); len(errs) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("script has %d validation error(s); run validate", len(errs)))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(opts.Fields), &fields); err != nil {
		return WrapExitError(ExitCommandError, "invalid --fields JSON", err)
	}

	evaluateAt := time.Now().UTC()
	if opts.At != "" {
		if evaluateAt, err = time.Parse(time.RFC3339, opts.At); err != nil {
			return WrapExitError(ExitCommandError, "invalid --at timestamp", err)
		}
	}

	roles := map[string][]map[string]any{}
	for _, role := range content.RoleNames() {
		roles[role] = []map[string]any{{}}
	}
	ac := &script.ActionContext{
		ScriptContent: content,
		EvalContext: &script.EvalContext{
			Fields:       fields,
			Roles:        roles,
			History:      map[string]any{},
			Schedule:     map[string]any{},
			CurrentScene: opts.Scene,
		},
		EvaluateAt: evaluateAt,
		Timezone:   time.UTC,
	}

	kernel := engine.New(reg)
	var result *engine.Result
	if opts.Event != "" {
		var event map[string]any
		if err := json.Unmarshal([]byte(opts.Event), &event); err != nil {
			return WrapExitError(ExitCommandError, "invalid --event JSON", err)
		}
		result, err = kernel.ApplyEvent(ac, script.Event(event))
	} else {
		var params map[string]any
		if err := json.Unmarshal([]byte(opts.Params), &params); err != nil {
			return WrapExitError(ExitCommandError, "invalid --params JSON", err)
		}
		result, err = kernel.ApplyAction(ac, script.Action{Name: opts.Action, Params: params})
	}
	if err != nil {
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	payload := SimulateResult{Ops: make([]map[string]any, 0, len(result.Ops))}
	for _, op := range result.Ops {
		payload.Ops = append(payload.Ops, opPayload(op))
	}
	for _, sched := range result.Scheduled {
		payload.Scheduled = append(payload.Scheduled, SimScheduled{
			Name:       sched.Name,
			Params:     sched.Params,
			ScheduleAt: sched.ScheduleAt.UTC().Format(time.RFC3339),
		})
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(payload)
	}

	if len(payload.Ops) == 0 && len(payload.Scheduled) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No ops.")
		return nil
	}
	for _, op := range payload.Ops {
		line, _ := json.Marshal(op)
		fmt.Fprintln(cmd.OutOrStdout(), string(line))
	}
	for _, sched := range payload.Scheduled {
		fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s at %s\n", sched.Name, sched.ScheduleAt)
	}
	return nil
}

// opPayload flattens an op into a map with its type under "op".
func opPayload(op script.ResultOp) map[string]any {
	data, err := json.Marshal(op)
	if err != nil {
		return map[string]any{"op": op.OpType()}
	}
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"op": op.OpType()}
	}
	m["op"] = op.OpType()
	return m
}
