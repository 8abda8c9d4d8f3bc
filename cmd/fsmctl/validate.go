package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/validator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errValidationFailed = errors.New("validation failed")

func newValidateCommand() *cobra.Command {
	var strict, fix bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a machine definition for errors and questionable structure",
		Long: `Reports hard configuration errors, warnings (unreachable states, parallel
transitions, names with whitespace) and notes (self loops, terminal states).
Exits non-zero when there are errors; --strict counts warnings as errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			result, err := validator.ValidateFile(path, strict)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), result.String())

			if fix {
				if err := printFixed(cmd, path, result); err != nil {
					return err
				}
			}

			if result.HasErrors() {
				return fmt.Errorf("%w: %s has %d error(s)", errValidationFailed, path, len(result.Errors))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&fix, "fix", false, "Print the definition with every available fix applied")

	return cmd
}

// printFixed applies the result's fixes to a fresh copy of the file and prints it as YAML.
func printFixed(cmd *cobra.Command, path string, result validator.ValidationResult) error {
	fixes := result.Fixes()
	if len(fixes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nNo fixes available")

		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the command line
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", path, err)
	}

	config, err := statemachine.ParseConfig(data)
	if err != nil {
		return err
	}

	applied, err := validator.ApplyFixes(config, fixes)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode fixed config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n# %d fix(es) applied\n%s", applied, out)

	return nil
}
