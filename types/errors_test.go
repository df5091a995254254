package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrInsufficientWorkerIDs, ErrInsufficientWorkerIDs))
		require.False(t, errors.Is(ErrInsufficientWorkerIDs, ErrInvalidWorkerRange))

		wrapped := fmt.Errorf("layer %q: %w", "Physics", ErrInsufficientWorkerIDs)
		require.True(t, errors.Is(wrapped, ErrInsufficientWorkerIDs))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrInvalidConfig,
			ErrLoadBalancerDisabled,
			ErrAlreadyInitialized,
			ErrNotInitialized,
			ErrInvalidWorkerRange,
			ErrInsufficientWorkerIDs,
			ErrUnknownStrategy,
			ErrInvalidStrategyConfig,
			ErrNoWorkersRequired,
			ErrNoAvailableWorkerID,
			ErrNotClaimed,
			ErrLeaseLost,
		}

		seen := make(map[string]bool)
		for _, err := range allErrors {
			msg := err.Error()
			require.False(t, seen[msg], "duplicate error message: %s", msg)
			seen[msg] = true
		}
	})
}
