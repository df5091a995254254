package cli

import (
	"github.com/spf13/cobra"

	"github.com/arloliu/stratum"
)

// LayerRequirement is the worker requirement of one layer.
type LayerRequirement struct {
	Layer   stratum.LayerName `json:"layer"`
	Workers uint32            `json:"workers"`
}

// MinWorkersResult is the output of the min-workers command.
type MinWorkersResult struct {
	World  string             `json:"world"`
	Layers []LayerRequirement `json:"layers"`
	Total  uint32             `json:"total"`
}

// NewMinWorkersCommand creates the min-workers command.
func NewMinWorkersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "min-workers",
		Short: "Show how many virtual workers each layer needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinWorkers(rootOpts, cmd)
		},
	}
}

func runMinWorkers(opts *RootOptions, cmd *cobra.Command) error {
	_, ls, err := loadStrategy(opts, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}

	result := MinWorkersResult{World: ls.World(), Total: ls.MinimumRequiredWorkers()}
	for _, name := range ls.Layers() {
		s, _ := ls.StrategyFor(name)
		result.Layers = append(result.Layers, LayerRequirement{Layer: name, Workers: s.MinimumRequiredWorkers()})
	}

	f := newFormatter(opts, cmd.OutOrStdout())
	if f.json() {
		return f.encode(result)
	}

	f.printf("%-12s %7s\n", "LAYER", "WORKERS")
	for _, l := range result.Layers {
		f.printf("%-12s %7d\n", l.Layer, l.Workers)
	}
	f.printf("%-12s %7d\n", "total", result.Total)

	return nil
}
