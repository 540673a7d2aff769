package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dposchain/node/engine/blockchain"
	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/utils/unittest"
)

func TestDefaultConfig(t *testing.T) {
	config, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, config.MaxLastBlocks)
	assert.Equal(t, 10000, config.MaxLastTransactionIDs)
	assert.Equal(t, 8*time.Second, config.BlockTime)
	assert.Equal(t, uint64(51), config.ActiveDelegates)
	assert.Equal(t, time.Date(2017, 3, 21, 13, 0, 0, 0, time.UTC), config.Epoch.UTC())
	assert.Equal(t, uint64(4), config.ForkRollbackMin)
	assert.Equal(t, uint64(102), config.ForkRollbackMax)
	assert.Empty(t, config.MilestoneHeights)
	assert.Empty(t, config.ExceptionBlockIDs)

	// the embedded defaults match the engine's
	engine := config.BlockchainConfig()
	defaults := blockchain.DefaultConfig()
	assert.Equal(t, defaults.MaxLastBlocks, engine.MaxLastBlocks)
	assert.Equal(t, defaults.ChunkMaxTransactions, engine.ChunkMaxTransactions)
	assert.Equal(t, defaults.ChunkMaxBlocks, engine.ChunkMaxBlocks)
	assert.Equal(t, defaults.WakeUpInterval, engine.WakeUpInterval)
	assert.Equal(t, defaults.MissedBlocksHealthInterval, engine.MissedBlocksHealthInterval)
	assert.Equal(t, defaults.MinTimeLeftInSlot, engine.MinTimeLeftInSlot)
	assert.Equal(t, defaults.Processor.NotReadyMaxAttempts, engine.Processor.NotReadyMaxAttempts)
	assert.Equal(t, defaults.Processor.NotReadyRollbackBlocks, engine.Processor.NotReadyRollbackBlocks)
	assert.Equal(t, defaults.Actions.QueuePauseThreshold, engine.Actions.QueuePauseThreshold)
	assert.Equal(t, defaults.Actions.NoBlockThreshold, engine.Actions.NoBlockThreshold)
	assert.Equal(t, defaults.Actions.NetworkHealthCheckEvery, engine.Actions.NetworkHealthCheckEvery)
	assert.Equal(t, defaults.Actions.RollbackMaxBlockRewind, engine.Actions.RollbackMaxBlockRewind)
	assert.Equal(t, defaults.Actions.RollbackSteps, engine.Actions.RollbackSteps)
	assert.Equal(t, defaults.Actions.DownloadRetries, engine.Actions.DownloadRetries)
	assert.Equal(t, defaults.Actions.DownloadRetryDelay, engine.Actions.DownloadRetryDelay)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(unittest.TempDir(t), "chain.yml")
	err := os.WriteFile(path, []byte(`
active-delegates: 101
wake-up-interval: 30s
milestone-heights: [1000, 2000]
exception-block-ids: ["abc"]
`), 0o600)
	require.NoError(t, err)

	config, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(101), config.ActiveDelegates)
	assert.Equal(t, 30*time.Second, config.WakeUpInterval)
	assert.Equal(t, []uint64{1000, 2000}, config.MilestoneHeights)
	assert.Equal(t, []chain.Identifier{"abc"}, config.ExceptionBlockIDs)
	// untouched keys keep their default
	assert.Equal(t, uint64(1000), config.RollbackSteps)

	engine := config.BlockchainConfig()
	assert.Equal(t, config.ExceptionBlockIDs, engine.Processor.ExceptionBlockIDs)
	assert.Equal(t, config.ExceptionBlockIDs, engine.Actions.ExceptionBlockIDs)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(unittest.TempDir(t), "chain.yml")
	require.NoError(t, os.WriteFile(path, []byte("fork-rollback-min: 8\nfork-rollback-max: 50\n"), 0o600))

	defaults, err := DefaultConfig()
	require.NoError(t, err)
	flags := pflag.NewFlagSet("node", pflag.ContinueOnError)
	InitializeFlags(flags, defaults)
	require.NoError(t, flags.Parse([]string{
		"--fork-rollback-max=20",
		"--network-start",
		"--download-retry-delay=250ms",
		"--milestone-heights=5,9",
	}))

	config, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, uint64(8), config.ForkRollbackMin)
	assert.Equal(t, uint64(20), config.ForkRollbackMax)
	assert.True(t, config.NetworkStart)
	assert.Equal(t, 250*time.Millisecond, config.DownloadRetryDelay)
	assert.Equal(t, []uint64{5, 9}, config.MilestoneHeights)
	// flags that were not set do not override the defaults
	assert.Equal(t, uint64(51), config.ActiveDelegates)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(unittest.TempDir(t), "missing.yml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		config, err := DefaultConfig()
		require.NoError(t, err)
		return config
	}

	cases := map[string]func(*Config){
		"no tail":             func(c *Config) { c.MaxLastBlocks = 0 },
		"no delegates":        func(c *Config) { c.ActiveDelegates = 0 },
		"no rollback steps":   func(c *Config) { c.RollbackSteps = 0 },
		"short block time":    func(c *Config) { c.BlockTime = 500 * time.Millisecond },
		"no retry delay":      func(c *Config) { c.DownloadRetryDelay = 0 },
		"negative threshold":  func(c *Config) { c.QueuePauseThreshold = -1 },
		"inverted fork range": func(c *Config) { c.ForkRollbackMin = 10; c.ForkRollbackMax = 9 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			config := valid(t)
			mutate(config)
			assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("equal fork range", func(t *testing.T) {
		config := valid(t)
		config.ForkRollbackMin = 5
		config.ForkRollbackMax = 5
		assert.NoError(t, config.Validate())
	})

	t.Run("reports every violation by key", func(t *testing.T) {
		config := valid(t)
		config.BlockTime = 500 * time.Millisecond
		config.ForkRollbackMin = 10
		config.ForkRollbackMax = 9
		config.RollbackSteps = 0

		err := config.Validate()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorContains(t, err, "block-time must be at least 1s, got 500ms")
		assert.ErrorContains(t, err, "fork-rollback-min (10) must not exceed fork-rollback-max")
		assert.ErrorContains(t, err, "database-rollback-steps must be greater than 0")
	})
}

func TestInitializeFlags(t *testing.T) {
	defaults, err := DefaultConfig()
	require.NoError(t, err)
	flags := pflag.NewFlagSet("node", pflag.ContinueOnError)
	InitializeFlags(flags, defaults)

	for _, name := range AllFlagNames() {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
}
