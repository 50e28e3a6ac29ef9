package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/offstage/offstage/internal/engine"
	"github.com/offstage/offstage/internal/loader"
	"github.com/offstage/offstage/internal/modules"
	"github.com/offstage/offstage/internal/registry"
	"github.com/offstage/offstage/internal/runner"
	"github.com/offstage/offstage/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Interval time.Duration
	Batch    int
	Safe     bool
	Watch    bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Start the scheduler loop for a script",
		Long: `Start the scheduler loop: load and validate the script, open the trip
database (creating it if needed), and replay scheduled actions as they
come due.

With --watch, the script file is reloaded on change; a reload that fails
validation keeps the previous script.

Examples:
  offstage run ./script.yaml --db ./trips.db
  offstage run ./script.cue --db ./trips.db --interval 500ms --safe --watch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", os.Getenv("OFFSTAGE_DB"), "path to SQLite trip database")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "due-action poll interval")
	cmd.Flags().IntVar(&opts.Batch, "batch", 100, "max due actions per tick")
	cmd.Flags().BoolVar(&opts.Safe, "safe", false, "record per-action failures and continue the batch")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "reload the script when the file changes")

	return cmd
}

func runScheduler(opts *RunOptions, scriptPath string, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required (or set OFFSTAGE_DB)")
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	content, err := loader.LoadFile(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}
	reg, err := registry.New(modules.All()...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build registry", err)
	}
	if errs := loader.Validate(reg, content); len(errs) > 0 {
		for _, verr := range errs {
			logger.Error("script validation", "error", verr.Error())
		}
		return NewExitError(ExitFailure, fmt.Sprintf("script has %d validation error(s)", len(errs)))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	r := runner.New(st, engine.New(reg), content, logger, runner.Options{
		Interval:   opts.Interval,
		BatchLimit: opts.Batch,
		SafeMode:   opts.Safe,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.Watch {
		go func() {
			if err := r.WatchScript(ctx, scriptPath); err != nil && ctx.Err() == nil {
				logger.Error("script watch failed", "error", err)
			}
		}()
	}

	logger.Info("scheduler starting", "db", opts.Database, "script", scriptPath,
		"interval", opts.Interval.String(), "safe", opts.Safe)
	fmt.Fprintln(cmd.OutOrStdout(), "Scheduler started. Press Ctrl-C to stop.")

	if err := r.Run(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "scheduler error", err)
	}
	logger.Info("scheduler stopped")
	return nil
}
