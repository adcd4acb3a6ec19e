package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefetch/tracefetch/internal/config"
)

// resetCollectFlags restores the collect flags to their unset state so
// each test sees a fresh command line.
func resetCollectFlags(t *testing.T) {
	t.Helper()
	for _, name := range []string{"out-dir", "compress", "pace", "client"} {
		f := collectCmd.Flags().Lookup(name)
		require.NotNil(t, f, "flag %s", name)
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
}

func TestBatchOptionsFromConfig(t *testing.T) {
	resetCollectFlags(t)

	cfg := config.DefaultConfig()
	cfg.Collect.OutDir = "batches"
	cfg.Collect.Compress = true
	cfg.Collect.Pace = 30

	opts := batchOptions(cfg, "1M.bin", 5)
	assert.Equal(t, "1M.bin", opts.Asset)
	assert.Equal(t, 5, opts.Count)
	assert.Equal(t, "batches", opts.OutDir)
	assert.True(t, opts.Compress)
	assert.Equal(t, 30, opts.Pace)
}

func TestBatchOptionsFlagsOverrideConfig(t *testing.T) {
	resetCollectFlags(t)
	require.NoError(t, collectCmd.Flags().Set("out-dir", "elsewhere"))
	require.NoError(t, collectCmd.Flags().Set("compress", "false"))
	require.NoError(t, collectCmd.Flags().Set("pace", "12"))

	cfg := config.DefaultConfig()
	cfg.Collect.OutDir = "batches"
	cfg.Collect.Compress = true
	cfg.Collect.Pace = 30

	opts := batchOptions(cfg, "1K.bin", 2)
	assert.Equal(t, "elsewhere", opts.OutDir)
	assert.False(t, opts.Compress)
	assert.Equal(t, 12, opts.Pace)
}

func TestBatchOptionsDefaults(t *testing.T) {
	resetCollectFlags(t)

	opts := batchOptions(config.DefaultConfig(), "1G.bin", 1)
	assert.Equal(t, "traces", opts.OutDir)
	assert.False(t, opts.Compress)
	assert.Zero(t, opts.Pace)
}
