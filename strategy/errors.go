package strategy

import (
	"fmt"

	"github.com/arloliu/stratum/types"
)

// checkRange validates an id range handed to a strategy needing required ids.
func checkRange(first, last types.VirtualWorkerID, required uint32) error {
	r := types.WorkerRange{First: first, Last: last}
	if !first.IsValid() || r.Len() == 0 {
		return fmt.Errorf("%w: [%d, %d]", types.ErrInvalidWorkerRange, first, last)
	}

	if r.Len() < required {
		return fmt.Errorf("%w: need %d, got %d", types.ErrInsufficientWorkerIDs, required, r.Len())
	}

	return nil
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidStrategyConfig, fmt.Sprintf(format, args...))
}
