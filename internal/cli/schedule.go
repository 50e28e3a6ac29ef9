package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/offstage/offstage/internal/store"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// ScheduledRow is one row of the schedule payload.
type ScheduledRow struct {
	ID         string `json:"id"`
	TripID     string `json:"trip_id"`
	Action     string `json:"action"`
	Trigger    string `json:"trigger,omitempty"`
	ScheduleAt string `json:"schedule_at"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List pending scheduled actions",
		Long: `List scheduled actions that have not been applied or failed, in the
order the scheduler will replay them.

Example:
  offstage schedule --db ./trips.db --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv("OFFSTAGE_DB"), "path to SQLite trip database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "max rows to list")
	return cmd
}

func runSchedule(opts *ScheduleOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required (or set OFFSTAGE_DB)")
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	pending, err := st.PendingActions(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list scheduled actions", err)
	}

	rows := make([]ScheduledRow, 0, len(pending))
	for _, p := range pending {
		rows = append(rows, ScheduledRow{
			ID:         p.ID,
			TripID:     p.TripID,
			Action:     p.Action.Name,
			Trigger:    p.Action.TriggerName,
			ScheduleAt: p.Action.ScheduleAt.UTC().Format(time.RFC3339),
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return formatter.Success(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending actions.")
		return nil
	}
	for _, row := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  trip=%s  %s  at=%s\n",
			row.ID, row.TripID, row.Action, row.ScheduleAt)
	}
	return nil
}
