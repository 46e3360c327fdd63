package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quietforge/circuitsim/harness"
)

// ValidationResult is the per-file outcome of validation.
type ValidationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml...>",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the registered contracts.

Checks YAML shape, that the contract is registered, and that every called
circuit is declared with matching arity. Nothing is executed.

Exit codes:
  0 - all files valid
  1 - one or more files invalid

Examples:
  circuitsim validate scenarios/transfer.yaml
  circuitsim validate scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			reg := harness.Builtin()

			results := make([]ValidationResult, 0, len(args))
			invalid := 0
			for _, path := range args {
				res := validateFile(reg, path)
				if !res.Valid {
					invalid++
				}
				results = append(results, res)
				if res.Valid {
					out.Textf("✓ %s\n", res.Path)
				} else {
					out.Textf("✗ %s\n  %s\n", res.Path, res.Error)
				}
			}

			if out.JSON() {
				errMsg := ""
				if invalid > 0 {
					errMsg = fmt.Sprintf("%d file(s) invalid", invalid)
				}
				if err := out.Emit(map[string]any{"results": results}, "E_INVALID_SCENARIO", errMsg); err != nil {
					return err
				}
			}
			if invalid > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) invalid", invalid))
			}
			return nil
		},
	}
}

func validateFile(reg *harness.Registry, path string) ValidationResult {
	sc, err := harness.LoadScenario(path)
	if err != nil {
		return ValidationResult{Path: path, Error: err.Error()}
	}
	if err := reg.ValidateScenario(sc); err != nil {
		return ValidationResult{Path: path, Error: err.Error()}
	}
	return ValidationResult{Path: path, Valid: true}
}
