package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFlagDefaults(t *testing.T) {
	// Rewards are bounded in [-1,1], so a -1 floor filters nothing.
	minReward := exportCmd.Flags().Lookup("min-reward")
	require.NotNil(t, minReward)
	assert.Equal(t, "-1", minReward.DefValue)

	limit := exportCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "100", limit.DefValue)
}
