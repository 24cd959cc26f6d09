package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Delivery_Status_Machine(t *testing.T) {
	req := require.New(t)

	// Pending is the only non-terminal status
	req.True(StatusPending.CanTransitionTo(StatusDelivered))
	req.True(StatusPending.CanTransitionTo(StatusFailed))

	// Terminal statuses are frozen
	req.False(StatusDelivered.CanTransitionTo(StatusFailed))
	req.False(StatusDelivered.CanTransitionTo(StatusPending))
	req.False(StatusFailed.CanTransitionTo(StatusDelivered))
	req.False(StatusFailed.CanTransitionTo(StatusPending))

	// Self transitions are not transitions
	req.False(StatusPending.CanTransitionTo(StatusPending))
}
