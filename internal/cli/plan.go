package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/arloliu/stratum"
)

// PlanLayer is one layer of an allocation plan.
type PlanLayer struct {
	Layer   stratum.LayerName `json:"layer"`
	First   uint32            `json:"first"`
	Last    uint32            `json:"last"`
	Workers uint32            `json:"workers"`
}

// PlanResult is the output of the plan command.
type PlanResult struct {
	World    string      `json:"world"`
	First    uint32      `json:"first"`
	Last     uint32      `json:"last"`
	Required uint32      `json:"required"`
	Layers   []PlanLayer `json:"layers"`
	Spare    uint32      `json:"spare"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var first, last uint32

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which virtual worker ids each layer receives",
		Long: `Carve a virtual worker id range into per-layer sub-ranges, in layer order
with the default layer last.

Without --last the range is exactly the minimum number of workers the world needs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, cmd, first, last)
		},
	}

	cmd.Flags().Uint32Var(&first, "first", 1, "first virtual worker id")
	cmd.Flags().Uint32Var(&last, "last", 0, "last virtual worker id (default: first + required - 1)")

	return cmd
}

func runPlan(opts *RootOptions, cmd *cobra.Command, first, last uint32) error {
	_, ls, err := loadStrategy(opts, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}

	required := ls.MinimumRequiredWorkers()
	if last == 0 {
		end := uint64(first) + uint64(required) - 1
		if required == 0 || end > math.MaxUint32 {
			return WrapExitError(ExitFailure, fmt.Sprintf("plan from %d for world %s", first, ls.World()),
				fmt.Errorf("%w: need %d ids starting at %d", stratum.ErrInsufficientWorkerIDs, required, first))
		}
		last = uint32(end)
	}

	if err := ls.SetVirtualWorkerIDs(stratum.VirtualWorkerID(first), stratum.VirtualWorkerID(last)); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("plan [%d, %d] for world %s", first, last, ls.World()), err)
	}

	result := PlanResult{
		World:    ls.World(),
		First:    first,
		Last:     last,
		Required: required,
		Layers:   []PlanLayer{},
	}
	for _, r := range ls.Ranges() {
		result.Layers = append(result.Layers, PlanLayer{
			Layer:   r.Layer,
			First:   uint32(r.Range.First),
			Last:    uint32(r.Range.Last),
			Workers: r.Range.Len(),
		})
	}
	result.Spare = ls.SpareWorkers()

	f := newFormatter(opts, cmd.OutOrStdout())
	if f.json() {
		return f.encode(result)
	}

	f.printf("world: %s\n", result.World)
	f.printf("range: [%d, %d], %d required\n", result.First, result.Last, result.Required)
	f.printf("%-12s %5s %5s %7s\n", "LAYER", "FIRST", "LAST", "WORKERS")
	for _, l := range result.Layers {
		f.printf("%-12s %5d %5d %7d\n", l.Layer, l.First, l.Last, l.Workers)
	}
	f.printf("spare: %d\n", result.Spare)

	return nil
}
