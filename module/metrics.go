package module

import (
	"time"

	"github.com/dposchain/node/model/chain"
)

// ChainMetrics records the progress and health of the chain-management core.
type ChainMetrics interface {
	// LastBlockHeight reports the height of the most recently accepted block.
	LastBlockHeight(height uint64)

	// LastDownloadedHeight reports the height of the most recently downloaded block.
	LastDownloadedHeight(height uint64)

	// BlockProcessed counts a processed block by its disposition.
	BlockProcessed(disposition chain.Disposition)

	// BatchProcessed reports the time spent classifying one chunk of blocks.
	BatchProcessed(blocks int, duration time.Duration)

	// QueueLength reports the number of chunks waiting to be processed.
	QueueLength(length int)

	// StateEntered counts transitions into the named state.
	StateEntered(state string)

	// ForkRecovery counts fork recoveries and the blocks they removed.
	ForkRecovery(removed uint64)

	// DatabaseRollback counts iterations of the database integrity rollback.
	DatabaseRollback(removed uint64)

	// BlocksRemoved counts blocks removed from the top of the chain.
	BlocksRemoved(count uint64)
}
