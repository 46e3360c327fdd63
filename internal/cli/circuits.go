package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quietforge/circuitsim/harness"
)

// CircuitInfo describes one declared circuit for output.
type CircuitInfo struct {
	Name   string   `json:"name"`
	Pure   bool     `json:"pure"`
	Args   []string `json:"args"`
	Result string   `json:"result"`
}

// ContractInfo describes one registered contract for output.
type ContractInfo struct {
	Contract        string        `json:"contract"`
	ConstructorArgs []string      `json:"constructor_args"`
	Circuits        []CircuitInfo `json:"circuits"`
}

// NewCircuitsCommand creates the circuits command.
func NewCircuitsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "circuits [contract]",
		Short: "List registered contracts and their circuits",
		Long: `List the contracts registered with the harness.

Without an argument, prints the registered contract keys. With a contract
key, prints its declared circuits: name, purity, argument kinds, and result
kind.

Examples:
  circuitsim circuits
  circuitsim circuits ownable
  circuitsim circuits token --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			reg := harness.Builtin()

			if len(args) == 0 {
				return listContracts(out, reg)
			}
			return listCircuits(out, reg, args[0])
		},
	}
}

func listContracts(out *OutputFormatter, reg *harness.Registry) error {
	keys := reg.Keys()
	if out.JSON() {
		return out.Emit(map[string]any{"contracts": keys}, "", "")
	}
	for _, key := range keys {
		out.Textf("%s\n", key)
	}
	return nil
}

func listCircuits(out *OutputFormatter, reg *harness.Registry, key string) error {
	entry, ok := reg.Lookup(key)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("contract %q is not registered", key))
	}

	info := ContractInfo{
		Contract:        entry.Manifest.Contract,
		ConstructorArgs: entry.Manifest.Constructor.Args,
		Circuits:        make([]CircuitInfo, 0, len(entry.Manifest.Circuits)),
	}
	for _, c := range entry.Manifest.Circuits {
		info.Circuits = append(info.Circuits, CircuitInfo{
			Name:   c.Name,
			Pure:   c.Pure,
			Args:   c.Args,
			Result: c.Result,
		})
	}

	if out.JSON() {
		return out.Emit(info, "", "")
	}

	out.Textf("contract %s(%s)\n", info.Contract, strings.Join(info.ConstructorArgs, ", "))
	for _, c := range info.Circuits {
		purity := "impure"
		if c.Pure {
			purity = "pure"
		}
		out.Textf("  %-6s %s(%s) -> %s\n", purity, c.Name, strings.Join(c.Args, ", "), c.Result)
	}
	return nil
}
