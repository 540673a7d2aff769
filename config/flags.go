package config

import (
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/dposchain/node/model/chain"
)

const (
	// All constant strings are used for CLI flag names and corresponding keys for config values.
	// chain tail
	maxLastBlocks         = "max-last-blocks"
	maxLastTransactionIDs = "max-last-transaction-ids"
	// block queue
	chunkMaxTransactions = "chunk-max-transactions"
	chunkMaxBlocks       = "chunk-max-blocks"
	milestoneHeights     = "milestone-heights"
	queuePauseThreshold  = "queue-pause-threshold"
	// slots
	blockTime         = "block-time"
	activeDelegates   = "active-delegates"
	epoch             = "epoch"
	minTimeLeftInSlot = "min-time-left-in-slot"
	// syncing
	wakeUpInterval             = "wake-up-interval"
	noBlockThreshold           = "no-block-threshold"
	networkHealthCheckEvery    = "network-health-check-every"
	missedBlocksHealthInterval = "missed-blocks-health-interval"
	downloadRetries            = "download-retries"
	downloadRetryDelay         = "download-retry-delay"
	// recovery
	rollbackMaxBlockRewind = "database-rollback-max-block-rewind"
	rollbackSteps          = "database-rollback-steps"
	notReadyMaxAttempts    = "not-ready-max-attempts"
	notReadyRollbackBlocks = "not-ready-rollback-blocks"
	forkRollbackMin        = "fork-rollback-min"
	forkRollbackMax        = "fork-rollback-max"
	// launch and testing
	networkStart      = "network-start"
	testMode          = "test-mode"
	exceptionBlockIDs = "exception-block-ids"
)

func AllFlagNames() []string {
	return []string{
		maxLastBlocks, maxLastTransactionIDs, chunkMaxTransactions, chunkMaxBlocks, milestoneHeights, queuePauseThreshold,
		blockTime, activeDelegates, epoch, minTimeLeftInSlot, wakeUpInterval, noBlockThreshold, networkHealthCheckEvery,
		missedBlocksHealthInterval, downloadRetries, downloadRetryDelay, rollbackMaxBlockRewind, rollbackSteps,
		notReadyMaxAttempts, notReadyRollbackBlocks, forkRollbackMin, forkRollbackMax, networkStart, testMode, exceptionBlockIDs,
	}
}

// InitializeFlags initializes all CLI flags for the chain configuration on the provided pflag set.
// Args:
//
//	*pflag.FlagSet: the pflag set of the node.
//	*Config: the default config used to set default values on the flags
func InitializeFlags(flags *pflag.FlagSet, config *Config) {
	flags.Int(maxLastBlocks, config.MaxLastBlocks, "number of most recent blocks kept in memory")
	flags.Int(maxLastTransactionIDs, config.MaxLastTransactionIDs, "number of most recent transaction ids kept in memory")
	flags.Int(chunkMaxTransactions, config.ChunkMaxTransactions, "transaction count at which a block batch is closed")
	flags.Int(chunkMaxBlocks, config.ChunkMaxBlocks, "maximum number of blocks in a block batch")
	flags.StringSlice(milestoneHeights, uint64Strings(config.MilestoneHeights), "protocol upgrade heights, block batches never span them")
	flags.Int(queuePauseThreshold, config.QueuePauseThreshold, "number of queued block batches above which downloading pauses")
	flags.Duration(blockTime, config.BlockTime, "length of a forging slot")
	flags.Uint64(activeDelegates, config.ActiveDelegates, "number of delegates forging in a round")
	flags.String(epoch, config.Epoch.Format(time.RFC3339), "start of the network's slot clock, in RFC 3339")
	flags.Duration(minTimeLeftInSlot, config.MinTimeLeftInSlot, "time a locally forged block needs left in its slot to be accepted")
	flags.Duration(wakeUpInterval, config.WakeUpInterval, "how long an idle node waits before syncing again")
	flags.Uint64(noBlockThreshold, config.NoBlockThreshold, "number of empty downloads after which the network is considered halted")
	flags.Uint64(networkHealthCheckEvery, config.NetworkHealthCheckEvery, "number of halted network detections between network health checks")
	flags.Duration(missedBlocksHealthInterval, config.MissedBlocksHealthInterval, "minimum time between network health checks caused by missed blocks")
	flags.Uint64(downloadRetries, config.DownloadRetries, "number of retries of a failed block download")
	flags.Duration(downloadRetryDelay, config.DownloadRetryDelay, "delay between block download retries")
	flags.Uint64(rollbackMaxBlockRewind, config.RollbackMaxBlockRewind, "maximum number of blocks removed while restoring database integrity")
	flags.Uint64(rollbackSteps, config.RollbackSteps, "number of blocks removed per database integrity rollback step")
	flags.Uint(notReadyMaxAttempts, config.NotReadyMaxAttempts, "number of times a block above the next height is seen before fork recovery starts")
	flags.Uint64(notReadyRollbackBlocks, config.NotReadyRollbackBlocks, "number of blocks removed when fork recovery starts because of blocks above the next height")
	flags.Uint64(forkRollbackMin, config.ForkRollbackMin, "minimum number of blocks removed by fork recovery")
	flags.Uint64(forkRollbackMax, config.ForkRollbackMax, "maximum number of blocks removed by fork recovery")
	flags.Bool(networkStart, config.NetworkStart, "launch a new network from its genesis block")
	flags.Bool(testMode, config.TestMode, "skip syncing with the network")
	flags.StringSlice(exceptionBlockIDs, identifierStrings(config.ExceptionBlockIDs), "ids of blocks accepted without checks")
}

func uint64Strings(values []uint64) []string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, strconv.FormatUint(v, 10))
	}
	return strs
}

func identifierStrings(ids []chain.Identifier) []string {
	return chain.IdentifierList(ids).Strings()
}
