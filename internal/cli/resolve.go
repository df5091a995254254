package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/stratum"
	"github.com/arloliu/stratum/types"
)

// Resolution is the layer of one class path.
type Resolution struct {
	Class string            `json:"class"`
	Layer stratum.LayerName `json:"layer"`
	Known bool              `json:"known"`
}

// ResolveResult is the output of the resolve command.
type ResolveResult struct {
	World   string       `json:"world"`
	Classes []Resolution `json:"classes"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <class-path>...",
		Short: "Show the layer each class belongs to",
		Long: `Resolve class paths to layers using the class hierarchy in the configuration.

A class missing from the hierarchy is resolved on its own path only and is
reported as unknown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, cmd, args)
		},
	}
}

func runResolve(opts *RootOptions, cmd *cobra.Command, paths []string) error {
	cfg, ls, err := loadStrategy(opts, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}

	table, err := cfg.ClassTable()
	if err != nil {
		return WrapExitError(ExitCommandError, "build class hierarchy", err)
	}

	result := ResolveResult{World: ls.World(), Classes: make([]Resolution, 0, len(paths))}
	for _, path := range paths {
		class, known := table.Lookup(path)
		if !known {
			class = types.NewClass(path, nil)
		}
		result.Classes = append(result.Classes, Resolution{
			Class: path,
			Layer: ls.LayerForClass(class),
			Known: known,
		})
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	if f.json() {
		return f.encode(result)
	}

	for _, r := range result.Classes {
		if r.Known {
			f.printf("%s -> %s\n", r.Class, r.Layer)
		} else {
			f.printf("%s -> %s (unknown class)\n", r.Class, r.Layer)
		}
	}

	return nil
}
