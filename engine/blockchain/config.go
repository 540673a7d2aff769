package blockchain

import (
	"time"

	"github.com/dposchain/node/engine/blockchain/fsm"
	"github.com/dposchain/node/engine/blockchain/processor"
)

// Config holds the tunables of the chain engine.
type Config struct {
	MaxLastBlocks              int
	MaxLastTransactionIDs      int
	ChunkMaxTransactions       int
	ChunkMaxBlocks             int
	MilestoneHeights           []uint64
	WakeUpInterval             time.Duration
	MissedBlocksHealthInterval time.Duration
	// MinTimeLeftInSlot is the time a block from the local forger needs left
	// in its slot to be accepted.
	MinTimeLeftInSlot time.Duration
	NetworkStart      bool
	Processor         processor.Config
	Actions           fsm.Config
}

func DefaultConfig() Config {
	return Config{
		MaxLastBlocks:              100,
		MaxLastTransactionIDs:      10000,
		ChunkMaxTransactions:       150,
		ChunkMaxBlocks:             100,
		WakeUpInterval:             60 * time.Second,
		MissedBlocksHealthInterval: 10 * time.Minute,
		MinTimeLeftInSlot:          2 * time.Second,
		Processor: processor.Config{
			NotReadyMaxAttempts:    5,
			NotReadyRollbackBlocks: 5000,
		},
		Actions: fsm.Config{
			QueuePauseThreshold:     100,
			NoBlockThreshold:        5,
			NetworkHealthCheckEvery: 3,
			RollbackMaxBlockRewind:  10000,
			RollbackSteps:           1000,
			ForkRollbackMin:         4,
			ForkRollbackMax:         102,
			DownloadRetries:         3,
			DownloadRetryDelay:      time.Second,
		},
	}
}
