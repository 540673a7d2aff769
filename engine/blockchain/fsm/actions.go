package fsm

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/model/events"
	"github.com/dposchain/node/module"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/state/chainstate"
	"github.com/dposchain/node/storage"
)

// ErrChainFailure is passed to the ExitFunc when the machine enters Exit.
var ErrChainFailure = errors.New("chain cannot recover, stopping node")

// ExitFunc terminates the node.
type ExitFunc func(err error)

// Blockchain is the part of the chain facade the entry actions drive.
type Blockchain interface {
	IsSynced(block *chain.Block) bool
	IsStopped() bool
	EnqueueBlocks(blocks []*chain.Block)
	ClearQueue()
	ClearAndStopQueue()
	RemoveBlocks(ctx context.Context, n uint64) error
	RemoveTopBlocks(ctx context.Context, n uint64) error
	SetWakeUp()
}

// Queue exposes the block queue's progress.
type Queue interface {
	Len() int
	Idle() bool
	Resume()
}

// Config holds the tunables of the entry actions.
type Config struct {
	QueuePauseThreshold     int
	NoBlockThreshold        uint64
	NetworkHealthCheckEvery uint64
	RollbackMaxBlockRewind  uint64
	RollbackSteps           uint64
	ForkRollbackMin         uint64
	ForkRollbackMax         uint64
	DownloadRetries         uint64
	DownloadRetryDelay      time.Duration
	ExceptionBlockIDs       []chain.Identifier
	TestMode                bool
}

// Actions implements the entry actions of the chain state machine.
type Actions struct {
	log        zerolog.Logger
	metrics    module.ChainMetrics
	blocks     storage.Blocks
	state      *chainstate.State
	network    module.Network
	pool       module.TransactionPool
	bus        module.EventBus
	slots      *slots.Slots
	chain      Blockchain
	queue      Queue
	config     Config
	exit       ExitFunc
	exceptions map[chain.Identifier]struct{}
	rand       *rand.Rand
}

func NewActions(
	log zerolog.Logger,
	metrics module.ChainMetrics,
	blocks storage.Blocks,
	state *chainstate.State,
	network module.Network,
	pool module.TransactionPool,
	bus module.EventBus,
	slots *slots.Slots,
	blockchain Blockchain,
	queue Queue,
	config Config,
	exit ExitFunc,
) *Actions {
	return &Actions{
		log:        log.With().Str("component", "chain_actions").Logger(),
		metrics:    metrics,
		blocks:     blocks,
		state:      state,
		network:    network,
		pool:       pool,
		bus:        bus,
		slots:      slots,
		chain:      blockchain,
		queue:      queue,
		config:     config,
		exit:       exit,
		exceptions: chain.IdentifierList(config.ExceptionBlockIDs).Lookup(),
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Table maps every entry action to its implementation.
func (a *Actions) Table() map[ActionID]Action {
	return map[ActionID]Action{
		ActionInit:                           a.initialize,
		ActionRollbackDatabase:               a.rollbackDatabase,
		ActionCheckLastDownloadedBlockSynced: a.checkLastDownloadedBlockSynced,
		ActionDownloadBlocks:                 a.downloadBlocks,
		ActionDownloadFinished:               a.downloadFinished,
		ActionDownloadPaused:                 a.downloadPaused,
		ActionCheckLastBlockSynced:           a.checkLastBlockSynced,
		ActionSyncingComplete:                a.syncingComplete,
		ActionCheckLater:                     a.checkLater,
		ActionBlockchainReady:                a.blockchainReady,
		ActionStartForkRecovery:              a.startForkRecovery,
		ActionStopped:                        a.stopped,
		ActionExitApp:                        a.exitApp,
	}
}

// initialize loads the last stored block and prepares chain state for
// syncing.
func (a *Actions) initialize(ctx context.Context) Event {
	last, err := a.blocks.LastBlock()
	if err != nil {
		a.log.Error().Err(err).Msg("could not load last block from storage")
		return EventFailure
	}
	log := a.log.With().Uint64("height", last.Height).Str("block_id", last.ID.String()).Logger()

	if !a.state.RestoredDatabaseIntegrity() {
		log.Info().Msg("verifying database integrity")
		verified, err := a.blocks.VerifyBlockchain()
		if err != nil {
			log.Error().Err(err).Msg("could not verify database integrity")
			return EventFailure
		}
		if !verified {
			log.Error().Msg("database is corrupted, starting rollback")
			return EventRollback
		}
		log.Info().Msg("verified database integrity")
	}

	// rounds saved ahead of the genesis round are leftovers of an aborted start
	if last.Height == 1 {
		err = a.blocks.DeleteRound(a.slots.RoundOf(last.Height) + 1)
		if err != nil {
			log.Error().Err(err).Msg("could not clean up rounds after genesis")
			return EventFailure
		}
	}

	a.state.SetLastBlock(last)
	a.state.SetLastDownloadedBlock(last)
	a.state.SetLastStoredBlockHeight(last.Height)
	a.metrics.LastBlockHeight(last.Height)
	a.metrics.LastDownloadedHeight(last.Height)

	if a.state.NetworkStart() {
		log.Info().Msg("network start, skipping round checks")
		return EventStarted
	}
	if a.config.TestMode {
		log.Info().Msg("test mode, skipping round checks")
		return EventStarted
	}

	round := a.slots.RoundOf(last.Height)
	delegates, err := a.blocks.ActiveDelegates(round)
	if err != nil {
		log.Error().Err(err).Uint64("round", round).Msg("could not load active delegates")
		return EventFailure
	}
	if len(delegates) == 0 {
		n := (last.Height-1)%a.slots.ActiveDelegates() + 1
		log.Warn().
			Uint64("round", round).
			Uint64("blocks", n).
			Msg("current round has no active delegates, removing its blocks")
		err = a.chain.RemoveBlocks(ctx, n)
		if err != nil {
			log.Error().Err(err).Msg("could not remove blocks of incomplete round")
			return EventFailure
		}
	}

	a.rebuildPool(ctx)
	return EventStarted
}

// rebuildPool rebuilds the pool's wallet state against the current chain
// and re-admits the pending transactions.
func (a *Actions) rebuildPool(ctx context.Context) {
	backup := a.pool.GetAllTransactions()
	a.pool.Flush()
	err := a.pool.ResetWalletState(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("could not reset pool wallet state")
		return
	}
	err = a.pool.ReaddTransactions(ctx, backup)
	if err != nil {
		a.log.Warn().Err(err).Int("transactions", len(backup)).Msg("could not re-add transactions to pool")
	}
}

func (a *Actions) rollbackDatabase(ctx context.Context) Event {
	a.log.Warn().
		Uint64("max_block_rewind", a.config.RollbackMaxBlockRewind).
		Uint64("steps", a.config.RollbackSteps).
		Msg("rolling back database")

	removed, verified, err := RollbackDatabase(ctx, a.log, a.blocks, a.chain.RemoveTopBlocks,
		a.config.RollbackMaxBlockRewind, a.config.RollbackSteps)
	a.metrics.DatabaseRollback(removed)
	if err != nil {
		a.log.Error().Err(err).Uint64("removed", removed).Msg("database rollback failed")
		return EventFailure
	}
	if !verified {
		a.log.Error().Uint64("removed", removed).Msg("database rollback exhausted its budget without restoring integrity")
		return EventFailure
	}

	a.log.Info().Uint64("removed", removed).Msg("database integrity restored")
	a.state.SetRestoredDatabaseIntegrity(true)
	return EventSuccess
}

// checkLastDownloadedBlockSynced decides how syncing continues. Later
// checks override earlier ones.
func (a *Actions) checkLastDownloadedBlockSynced(ctx context.Context) Event {
	event := EventNotSynced
	lastDownloaded := a.state.LastDownloadedBlock()

	if length := a.queue.Len(); length > a.config.QueuePauseThreshold {
		a.log.Debug().Int("queue_length", length).Msg("block queue is full, pausing download")
		event = EventPaused
	}

	if a.state.NoBlockCounter() > a.config.NoBlockThreshold && a.queue.Idle() {
		a.log.Info().
			Uint64("attempts", a.state.NoBlockCounter()).
			Msg("could not download blocks from the network, network looks halted")
		event = EventNetworkHalted
		a.state.ResetNoBlockCounter()

		if a.state.IncP2PUpdateCounter() >= a.config.NetworkHealthCheckEvery {
			a.state.ResetP2PUpdateCounter()
			status, err := a.network.CheckNetworkHealth(ctx)
			if err != nil {
				a.log.Warn().Err(err).Msg("could not check network health")
			} else if status.Forked {
				a.log.Warn().Uint64("blocks_to_rollback", status.BlocksToRollback).Msg("network health check detected a fork")
				a.state.SetNumberOfBlocksToRollback(status.BlocksToRollback)
				event = EventFork
			}
		}
	}

	if lastDownloaded != nil && a.chain.IsSynced(lastDownloaded) {
		a.state.ResetNoBlockCounter()
		a.state.ResetP2PUpdateCounter()
		event = EventSynced
	}
	if a.state.NetworkStart() {
		event = EventSynced
	}
	if a.config.TestMode {
		event = EventTest
	}
	return event
}

func (a *Actions) isException(block *chain.Block) bool {
	_, ok := a.exceptions[block.ID]
	return ok
}

// downloadBlocks downloads the blocks following the last downloaded block
// and queues them if they chain onto it.
func (a *Actions) downloadBlocks(ctx context.Context) Event {
	lastDownloaded := a.state.LastDownloadedBlock()
	if lastDownloaded == nil {
		lastDownloaded = a.state.LastBlock()
	}
	if lastDownloaded == nil {
		a.log.Error().Msg("cannot download blocks before the chain was loaded")
		return EventFailure
	}
	log := a.log.With().Uint64("from_height", lastDownloaded.Height).Logger()

	var blocks []*chain.Block
	attempt := 0
	backoff := retry.WithMaxRetries(a.config.DownloadRetries, retry.NewConstant(a.config.DownloadRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Msg("retrying download")
		}
		attempt++

		var err error
		blocks, err = a.network.SyncWithNetwork(ctx, lastDownloaded.Height)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("could not download blocks")
		blocks = nil
	}

	if a.chain.IsStopped() {
		return EventNone
	}
	// a rollback moved the download pointer while downloading
	if current := a.state.LastDownloadedBlock(); current == nil || current.ID != lastDownloaded.ID {
		log.Info().Msg("last downloaded block changed during download, dropping downloaded blocks")
		return EventNone
	}

	if len(blocks) > 0 && (chain.IsChained(lastDownloaded, blocks[0]) || a.isException(blocks[0])) {
		last := blocks[len(blocks)-1]
		log.Info().
			Int("blocks", len(blocks)).
			Uint64("to_height", last.Height).
			Msg("downloaded blocks")
		a.state.SetLastDownloadedBlock(last)
		a.metrics.LastDownloadedHeight(last.Height)
		a.chain.EnqueueBlocks(blocks)
		return EventDownloaded
	}

	if len(blocks) == 0 {
		log.Info().Msg("no new blocks found on the network")
	} else {
		log.Warn().
			Uint64("height", blocks[0].Height).
			Str("block_id", blocks[0].ID.String()).
			Msg("downloaded block does not chain onto the last downloaded block")
	}

	a.chain.ClearQueue()
	if a.queue.Idle() {
		a.state.IncNoBlockCounter()
		a.state.SetLastDownloadedBlock(a.state.LastBlock())
	}
	return EventNoBlock
}

func (a *Actions) downloadFinished(context.Context) Event {
	a.log.Info().Msg("block download finished")
	if a.state.NetworkStart() {
		// the genesis block is all there is
		a.state.SetNetworkStart(false)
		return EventSyncFinished
	}
	if a.queue.Idle() {
		return EventProcessFinished
	}
	return EventNone
}

func (a *Actions) downloadPaused(context.Context) Event {
	a.log.Info().Int("queue_length", a.queue.Len()).Msg("block download paused")
	return EventNone
}

func (a *Actions) checkLastBlockSynced(context.Context) Event {
	last := a.state.LastBlock()
	if last != nil && a.chain.IsSynced(last) {
		return EventSynced
	}
	return EventNotSynced
}

func (a *Actions) syncingComplete(context.Context) Event {
	a.log.Info().Uint64("height", a.state.LastHeight()).Msg("blockchain is synced")
	return EventSyncFinished
}

func (a *Actions) checkLater(context.Context) Event {
	if !a.chain.IsStopped() && !a.state.HasWakeUp() {
		a.chain.SetWakeUp()
	}
	return EventNone
}

func (a *Actions) blockchainReady(context.Context) Event {
	if a.state.MarkStarted() {
		a.log.Info().Uint64("height", a.state.LastHeight()).Msg("blockchain ready")
		a.bus.Publish(events.StateStarted, true)
	}
	return EventNone
}

// forkRollback returns the hinted number of blocks to remove, or a random
// number in the configured range.
func (a *Actions) forkRollback() uint64 {
	if n := a.state.NumberOfBlocksToRollback(); n > 0 {
		return n
	}
	spread := a.config.ForkRollbackMax - a.config.ForkRollbackMin + 1
	return a.config.ForkRollbackMin + uint64(a.rand.Int63n(int64(spread)))
}

func (a *Actions) startForkRecovery(ctx context.Context) Event {
	a.log.Info().Msg("starting fork recovery")
	a.chain.ClearAndStopQueue()

	n := a.forkRollback()
	log := a.log.With().Uint64("blocks", n).Logger()
	log.Info().Msg("removing blocks to recover from fork")
	err := a.chain.RemoveBlocks(ctx, n)
	if err != nil {
		log.Error().Err(err).Msg("could not remove blocks during fork recovery")
		return EventFailure
	}
	a.state.ClearNumberOfBlocksToRollback()
	a.metrics.ForkRecovery(n)

	a.rebuildPool(ctx)

	err = a.network.RefreshPeersAfterFork(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("could not refresh peers after fork")
	}

	a.queue.Resume()
	log.Info().Uint64("height", a.state.LastHeight()).Msg("fork recovery finished")
	return EventSuccess
}

// stopped drops the in-memory chain state, the stored chain is untouched.
func (a *Actions) stopped(context.Context) Event {
	a.state.Reset()
	a.log.Info().Msg("blockchain stopped")
	return EventNone
}

func (a *Actions) exitApp(context.Context) Event {
	a.log.Error().Uint64("height", a.state.LastHeight()).Msg("blockchain failed, exiting")
	a.exit(ErrChainFailure)
	return EventNone
}
