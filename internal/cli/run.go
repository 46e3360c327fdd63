package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/quietforge/circuitsim/harness"
)

// ScenarioResult is the per-scenario outcome of a run.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// RunSummary totals a run over multiple scenario files.
type RunSummary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml...>",
		Short: "Execute conformance scenarios",
		Long: `Execute scenario files against the registered contracts.

Each scenario deploys a fresh contract instance, drives its flow, and
evaluates its assertions. Results are reported per scenario.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (unreadable file, unknown contract, etc.)

Examples:
  circuitsim run scenarios/transfer.yaml
  circuitsim run scenarios/*.yaml --format json
  circuitsim run scenarios/transfer.yaml -v`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			runner := harness.NewRunner(harness.Builtin())
			if rootOpts.Verbose {
				runner.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			}

			summary := RunSummary{Scenarios: make([]ScenarioResult, 0, len(args)), Total: len(args)}
			for _, path := range args {
				res := runFile(runner, path)
				if res.Pass {
					summary.Passed++
					out.Textf("✓ %s\n", res.Name)
				} else {
					summary.Failed++
					out.Textf("✗ %s\n", res.Name)
					for _, e := range res.Errors {
						out.Textf("  %s\n", e)
					}
				}
				summary.Scenarios = append(summary.Scenarios, res)
			}

			if out.JSON() {
				errMsg := ""
				if summary.Failed > 0 {
					errMsg = fmt.Sprintf("%d scenario(s) failed", summary.Failed)
				}
				if err := out.Emit(summary, "E_SCENARIO_FAILED", errMsg); err != nil {
					return err
				}
			} else {
				out.Textf("\n%d passed, %d failed, %d total\n", summary.Passed, summary.Failed, summary.Total)
			}

			if summary.Failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", summary.Failed))
			}
			return nil
		},
	}
}

func runFile(runner *harness.Runner, path string) ScenarioResult {
	sc, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioResult{Name: path, Errors: []string{fmt.Sprintf("load scenario: %v", err)}}
	}
	result, err := runner.Run(sc)
	if err != nil {
		return ScenarioResult{Name: sc.Name, Errors: []string{fmt.Sprintf("run scenario: %v", err)}}
	}
	return ScenarioResult{Name: sc.Name, Pass: result.Pass, Errors: result.Errors}
}
