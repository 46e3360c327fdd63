// Package cli implements the circuitsim command tree: inspecting registered
// contracts, validating scenario files, and running them against the
// conformance harness.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats lists the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand builds the circuitsim root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "circuitsim",
		Short: "Contract execution simulator",
		Long:  "Run compiled-contract circuits against an in-memory execution context:\ninspect registered contracts, validate conformance scenarios, and execute them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCircuitsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}
