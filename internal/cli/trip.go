package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/offstage/offstage/internal/loader"
	"github.com/offstage/offstage/internal/store"
)

// TripOptions holds flags shared by the trip subcommands.
type TripOptions struct {
	*RootOptions
	Database string
}

// TripCreated is the trip create payload.
type TripCreated struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Scene string   `json:"scene"`
	Roles []string `json:"roles"`
}

// TripSummary is one row of the trip list payload.
type TripSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Scene     string `json:"scene"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
}

// NewTripCommand creates the trip command and its subcommands.
func NewTripCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TripOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Manage trips",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", os.Getenv("OFFSTAGE_DB"), "path to SQLite trip database")

	cmd.AddCommand(newTripCreateCommand(opts))
	cmd.AddCommand(newTripListCommand(opts))
	return cmd
}

func newTripCreateCommand(opts *TripOptions) *cobra.Command {
	var title, timezone, scene string

	cmd := &cobra.Command{
		Use:   "create <script>",
		Short: "Create a trip for a script",
		Long: `Create a trip: one player per role the script declares, starting in the
given scene (default: the script's first scene).

Example:
  offstage trip create ./script.yaml --db ./trips.db --title "Saturday run"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Database == "" {
				return NewExitError(ExitCommandError, "--db is required (or set OFFSTAGE_DB)")
			}

			content, err := loader.LoadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load script", err)
			}

			firstScene := scene
			if firstScene == "" {
				if scenes := content.ResourcesIn("scenes"); len(scenes) > 0 {
					firstScene = scenes[0].Name()
				}
			}

			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			roles := content.RoleNames()
			id, err := st.CreateTrip(cmd.Context(), title, timezone, firstScene, roles, time.Now())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to create trip", err)
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(TripCreated{ID: id, Title: title, Scene: firstScene, Roles: roles})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created trip %s (%d players)\n", id, len(roles))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "trip title")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "trip IANA timezone")
	cmd.Flags().StringVar(&scene, "scene", "", "starting scene (default: first scene in the script)")
	return cmd
}

func newTripListCommand(opts *TripOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List trips",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Database == "" {
				return NewExitError(ExitCommandError, "--db is required (or set OFFSTAGE_DB)")
			}

			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			trips, err := st.ListTrips(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list trips", err)
			}

			summaries := make([]TripSummary, 0, len(trips))
			for _, trip := range trips {
				summaries = append(summaries, TripSummary{
					ID:        trip.ID,
					Title:     trip.Title,
					Scene:     trip.CurrentScene,
					Timezone:  trip.Timezone,
					CreatedAt: trip.CreatedAt.UTC().Format(time.RFC3339),
				})
			}

			formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return formatter.Success(summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trips.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s  scene=%s  tz=%s  created=%s\n",
					s.ID, s.Title, s.Scene, s.Timezone, s.CreatedAt)
			}
			return nil
		},
	}
}
