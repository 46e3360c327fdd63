package cli

import (
	"github.com/spf13/cobra"

	"github.com/quietforge/circuitsim/harness"
	"github.com/quietforge/circuitsim/ledger"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Execute a scenario and dump its full call trace",
		Long: `Execute one scenario and print every recorded invocation and outcome
in order. Text output is a timeline; JSON output is the canonical trace
snapshot, the same form golden files hold.

Examples:
  circuitsim trace scenarios/transfer.yaml
  circuitsim trace scenarios/transfer.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}

			sc, err := harness.LoadScenario(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load scenario", err)
			}
			result, err := harness.Run(harness.Builtin(), sc)
			if err != nil {
				return WrapExitError(ExitCommandError, "run scenario", err)
			}

			if out.JSON() {
				snapshot := harness.TraceSnapshot{
					ScenarioName: sc.Name,
					RunToken:     result.RunToken,
					Trace:        result.Trace,
				}
				data, err := snapshot.MarshalJSON()
				if err != nil {
					return err
				}
				if _, err := out.Writer.Write(append(data, '\n')); err != nil {
					return err
				}
			} else {
				printTimeline(out, result)
			}

			if !result.Pass {
				return NewExitError(ExitFailure, "scenario failed")
			}
			return nil
		},
	}
}

func printTimeline(out *OutputFormatter, result *harness.Result) {
	out.Textf("run %s\n", result.RunToken)
	for _, e := range result.Trace {
		switch e.Type {
		case harness.EventInvocation:
			out.Textf("[%d] call %s(%s) as %s\n",
				e.Seq, e.Circuit, ledger.CanonicalJSON(ledger.List(e.Args)), e.Caller)
		case harness.EventOutcome:
			if e.Error != "" {
				out.Textf("[%d]   err %s\n", e.Seq, e.Error)
			} else if e.Value != nil {
				out.Textf("[%d]   ok %s\n", e.Seq, ledger.CanonicalJSON(e.Value))
			} else {
				out.Textf("[%d]   ok\n", e.Seq)
			}
		}
	}
	for _, msg := range result.Errors {
		out.Textf("failure: %s\n", msg)
	}
}
