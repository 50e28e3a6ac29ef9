package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offstage/offstage/internal/loader"
	"github.com/offstage/offstage/internal/modules"
	"github.com/offstage/offstage/internal/registry"
)

// ValidationResult holds the validate command's payload.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []loader.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Validate a script without running it",
		Long: `Validate a script document (YAML, JSON, or CUE) against the module
registry: collection schemas, component variants, references between
resources, and action trees.

Exit codes:
  0 - script is valid
  1 - validation errors found
  2 - command error (unreadable file, bad format)

Examples:
  offstage validate ./scripts/headlands.yaml
  offstage validate ./scripts/headlands.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, scriptPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	content, err := loader.LoadFile(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}
	formatter.VerboseLog("loaded script with %d collections", len(content.Collections))

	reg, err := registry.New(modules.All()...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build registry", err)
	}

	errs := loader.Validate(reg, content)
	if len(errs) > 0 {
		if opts.Format == "json" {
			if err := formatter.Success(ValidationResult{Valid: false, Errors: errs}); err != nil {
				return err
			}
		} else {
			for _, verr := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), verr.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d validation error(s)\n", len(errs))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Script is valid.")
	return nil
}
