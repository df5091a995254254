package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/stratum"
)

// ValidationResult is the output of the validate command.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	World    string              `json:"world"`
	Layers   []stratum.LayerName `json:"layers"`
	Required uint32              `json:"required"`
	Warnings []string            `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration and report degraded layers",
		Long: `Validate the configuration file and build the layered strategy of the selected
world. Layers that would be skipped at runtime are reported as warnings.

With --strict any warning fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, strict bool) error {
	collector := &warningCollector{next: newLogger(opts, cmd.ErrOrStderr())}

	cfg, ls, err := loadStrategy(opts, cmd.ErrOrStderr(), collector)
	if err != nil {
		return err
	}

	// Warnings describe the world being inspected, which --world may override.
	checked := *cfg
	checked.World = ls.World()
	checked.ValidateWithWarnings(collector)

	warnings := collector.list()
	result := ValidationResult{
		Valid:    !strict || len(warnings) == 0,
		World:    ls.World(),
		Layers:   ls.Layers(),
		Required: ls.MinimumRequiredWorkers(),
		Warnings: warnings,
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	if f.json() {
		if err := f.encode(result); err != nil {
			return err
		}
	} else {
		for _, w := range result.Warnings {
			f.printf("warning: %s\n", w)
		}
		if result.Valid {
			f.printf("configuration valid: world %s, %d layers, %d workers required\n",
				result.World, len(result.Layers), result.Required)
		} else {
			f.printf("configuration invalid: %d warnings\n", len(result.Warnings))
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d warning(s)", len(warnings)))
	}

	return nil
}
