// Package cli implements the stratumctl command tree.
//
// Every command loads a configuration file, builds the layered strategy for one
// world and reports on it without contacting NATS.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	World      string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for stratumctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stratumctl",
		Short: "Inspect layered load balancing configuration",
		Long: `stratumctl loads a stratum configuration and shows how a world is split
into layers: which layer a class belongs to, how many virtual workers each
layer needs, and which worker ids each layer receives.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "stratum.yaml", "configuration file")
	cmd.PersistentFlags().StringVarP(&opts.World, "world", "w", "", "world to inspect (default: the configured world)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log strategy construction to stderr")

	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewMinWorkersCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}
