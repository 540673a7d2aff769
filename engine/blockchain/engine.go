package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.uber.org/atomic"

	"github.com/dposchain/node/engine/blockchain/fsm"
	"github.com/dposchain/node/engine/blockchain/processor"
	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/model/events"
	"github.com/dposchain/node/module"
	"github.com/dposchain/node/module/component"
	"github.com/dposchain/node/module/irrecoverable"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/module/util"
	"github.com/dposchain/node/state/chainstate"
	"github.com/dposchain/node/state/tail"
	"github.com/dposchain/node/storage"
)

const (
	// maxFailedBroadcasts is the number of consecutive failed broadcasts
	// after which broadcasting is suspended.
	maxFailedBroadcasts = 5
	// broadcastSuspension is how long broadcasting stays suspended.
	broadcastSuspension = 30 * time.Second
)

// Engine manages the local chain: it boots the chain from storage, keeps
// it in sync with the network, processes incoming blocks and recovers from
// forks. Chain state is only mutated by the queue worker and by block
// removal, which are serialized.
type Engine struct {
	log       zerolog.Logger
	metrics   module.ChainMetrics
	blocks    storage.Blocks
	network   module.Network
	pool      module.TransactionPool
	bus       module.EventBus
	slots     *slots.Slots
	config    Config
	state     *chainstate.State
	queue     *BlockQueue
	processor *processor.Processor
	machine   *fsm.Machine

	// writer serializes batch processing with block removal
	writer sync.Mutex

	broadcaster *workerpool.WorkerPool
	breaker     *gobreaker.CircuitBreaker
	ctx         context.Context
	cancel      context.CancelFunc
	failures    chan error
	stopped     *atomic.Bool

	now             func() time.Time
	draw            func() float64
	lastHealthCheck time.Time
	onForgerMissing func(payload any)
	onRoundApplied  func(payload any)

	cm *component.ComponentManager
	component.Component
}

var _ processor.Blockchain = (*Engine)(nil)
var _ fsm.Blockchain = (*Engine)(nil)

// Option customizes the engine.
type Option func(*Engine)

// WithClock replaces the wall clock used to throttle health checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRandom replaces the random draw in [0, 1) of the missed-block check.
func WithRandom(draw func() float64) Option {
	return func(e *Engine) {
		e.draw = draw
	}
}

func New(
	log zerolog.Logger,
	metrics module.ChainMetrics,
	blocks storage.Blocks,
	network module.Network,
	pool module.TransactionPool,
	verifier module.Verifier,
	bus module.EventBus,
	slots *slots.Slots,
	config Config,
	opts ...Option,
) (*Engine, error) {
	t, err := tail.New(config.MaxLastBlocks, config.MaxLastTransactionIDs)
	if err != nil {
		return nil, fmt.Errorf("could not create chain tail: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:         log.With().Str("engine", "blockchain").Logger(),
		metrics:     metrics,
		blocks:      blocks,
		network:     network,
		pool:        pool,
		bus:         bus,
		slots:       slots,
		config:      config,
		state:       chainstate.New(t, config.NetworkStart),
		broadcaster: workerpool.New(1),
		ctx:         ctx,
		cancel:      cancel,
		failures:    make(chan error, 1),
		stopped:     atomic.NewBool(false),
		now:         time.Now,
		draw:        rand.Float64,
	}
	for _, apply := range opts {
		apply(e)
	}
	e.lastHealthCheck = e.now()
	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "block-broadcast",
		Timeout: broadcastSuspension,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailedBroadcasts
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("broadcast circuit breaker changed state")
		},
	})
	e.onForgerMissing = e.handleForgerMissing
	e.onRoundApplied = e.handleRoundApplied

	e.queue, err = NewBlockQueue(
		log,
		metrics,
		config.ChunkMaxTransactions,
		config.ChunkMaxBlocks,
		config.MilestoneHeights,
		e.processChunk,
		func() { e.machine.Dispatch(fsm.EventProcessFinished) },
	)
	if err != nil {
		return nil, err
	}

	e.processor = processor.New(log, metrics, blocks, e.state, pool, verifier, slots, e, config.Processor)

	actions := fsm.NewActions(log, metrics, blocks, e.state, network, pool, bus, slots, e, e.queue, config.Actions, e.exit)
	e.machine, err = fsm.NewMachine(log, metrics, actions.Table())
	if err != nil {
		return nil, err
	}

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.queue.Run).
		AddWorker(e.machine.Loop).
		AddWorker(e.lifecycle).
		Build()
	e.Component = e.cm

	return e, nil
}

// lifecycle subscribes to chain events, starts the state machine and tears
// the engine down on shutdown.
func (e *Engine) lifecycle(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	err := e.subscribe()
	if err != nil {
		ctx.Throw(fmt.Errorf("could not subscribe to chain events: %w", err))
		return
	}
	ready()

	e.machine.Dispatch(fsm.EventStart)

	select {
	case <-ctx.Done():
	case err := <-e.failures:
		e.shutdown()
		ctx.Throw(err)
		return
	}
	e.shutdown()
}

func (e *Engine) shutdown() {
	if e.stopped.Swap(true) {
		return
	}
	e.log.Info().Msg("stopping blockchain")
	e.unsubscribe()
	e.queue.Pause()
	e.queue.Clear()
	e.state.ClearWakeUp()
	e.cancel()
	e.broadcaster.StopWait()
}

// exit is called by the state machine once it entered Exit.
func (e *Engine) exit(err error) {
	select {
	case e.failures <- err:
	default:
	}
}

// processChunk is the block queue's consumer.
func (e *Engine) processChunk(ctx context.Context, blocks []*chain.Block) {
	e.writer.Lock()
	defer e.writer.Unlock()

	_, err := e.processor.ProcessBlocks(ctx, blocks)
	if err != nil {
		e.log.Error().Err(err).
			Uint64("from_height", blocks[0].Height).
			Int("blocks", len(blocks)).
			Msg("could not process blocks")
	}
}

// HandleIncomingBlock hands a block received from a peer or from the local
// forger to the chain.
func (e *Engine) HandleIncomingBlock(block *chain.Block, fromForger bool) {
	log := e.log.With().
		Uint64("height", block.Height).
		Str("block_id", block.ID.String()).
		Str("generator", block.GeneratorPublicKey.String()).
		Bool("from_forger", fromForger).
		Logger()

	if e.slots.IsFutureSlot(block.Timestamp) {
		log.Info().Msg("discarding block from a future slot")
		return
	}
	if fromForger {
		late := e.slots.SlotNumber(block.Timestamp) != e.slots.CurrentSlot() ||
			e.slots.TimeLeftInSlot() < e.config.MinTimeLeftInSlot
		if late {
			log.Info().Msg("discarding forged block received too late in its slot")
			return
		}
	}

	if !e.state.PingBlock(block) {
		e.state.PushPingBlock(block, fromForger)
	}

	state := e.machine.State()
	if !e.state.Started() || (state != fsm.Idle && state != fsm.NewBlock) {
		log.Info().Str("state", state.String()).Msg("blockchain not ready to accept new block")
		e.bus.Publish(events.BlockDisregarded, block)
		return
	}

	log.Debug().Msg("received new block")
	e.bus.Publish(events.BlockReceived, block)
	e.machine.Dispatch(fsm.EventNewBlock)
	e.queue.EnqueueBlocks([]*chain.Block{block})
}

func (e *Engine) EnqueueBlocks(blocks []*chain.Block) {
	e.queue.EnqueueBlocks(blocks)
}

func (e *Engine) ClearQueue() {
	e.queue.Clear()
}

// ClearAndStopQueue pauses and clears the queue and moves the download
// pointer back to the last block.
func (e *Engine) ClearAndStopQueue() {
	e.state.ResetLastDownloadedBlock()
	e.queue.Pause()
	e.queue.Clear()
}

// RemoveBlocks reverts the top n blocks, keeping at least the genesis
// block, and returns their transactions to the pool. The queue is paused
// while blocks are removed.
func (e *Engine) RemoveBlocks(ctx context.Context, n uint64) error {
	if e.IsStopped() {
		return ErrEngineStopped
	}
	e.ClearAndStopQueue()
	defer e.queue.Resume()

	e.writer.Lock()
	defer e.writer.Unlock()

	last := e.state.LastBlock()
	if last == nil {
		return fmt.Errorf("cannot remove blocks before the chain was loaded")
	}
	if n > last.Height-1 {
		n = last.Height - 1
	}
	if n == 0 {
		return nil
	}
	log := e.log.With().Uint64("from_height", last.Height).Uint64("blocks", n).Logger()
	log.Info().Msg("removing blocks")

	progress := util.LogProgress(log, util.DefaultLogProgressConfig("revert blocks", int(n)))
	removed := make([]*chain.Block, 0, n)
	current := last
	for i := uint64(0); i < n; i++ {
		err := e.blocks.RevertBlock(current)
		if err != nil {
			return fmt.Errorf("could not revert block at height %d: %w", current.Height, err)
		}
		removed = append(removed, current)

		parent, err := e.parentOf(current)
		if err != nil {
			return err
		}
		e.state.SetLastBlock(parent)
		e.state.SetLastDownloadedBlock(parent)
		current = parent
		progress(1)
	}

	stored := e.state.LastStoredBlockHeight()
	var saved []*chain.Block
	var transactions []*chain.Transaction
	for i := len(removed) - 1; i >= 0; i-- {
		if removed[i].Height <= stored {
			saved = append(saved, removed[i])
		}
		transactions = append(transactions, removed[i].Transactions...)
	}
	err := e.blocks.DeleteBlocks(saved)
	if err != nil {
		return fmt.Errorf("could not delete removed blocks: %w", err)
	}
	if stored > current.Height {
		e.state.SetLastStoredBlockHeight(current.Height)
	}
	e.state.Tail().RemoveCachedTransactionIDs(chain.TransactionIDs(transactions))

	e.metrics.BlocksRemoved(n)
	e.metrics.LastBlockHeight(current.Height)
	log.Info().Uint64("height", current.Height).Msg("removed blocks")

	if len(transactions) > 0 {
		err = e.pool.ReaddTransactions(ctx, transactions)
		if err != nil {
			log.Warn().Err(err).Int("transactions", len(transactions)).Msg("could not re-add transactions of removed blocks")
		}
	}
	return nil
}

// parentOf returns the parent of the block from the tail or from storage.
func (e *Engine) parentOf(block *chain.Block) (*chain.Block, error) {
	if parent, ok := e.state.Tail().BlockAt(block.Height - 1); ok {
		return parent, nil
	}
	parent, err := e.blocks.ByHeight(block.Height - 1)
	if err != nil {
		return nil, fmt.Errorf("could not load block at height %d: %w", block.Height-1, err)
	}
	return parent, nil
}

// RemoveTopBlocks deletes the top n stored blocks without reverting them,
// keeping at least the genesis block.
func (e *Engine) RemoveTopBlocks(ctx context.Context, n uint64) error {
	if e.IsStopped() {
		return ErrEngineStopped
	}
	e.writer.Lock()
	defer e.writer.Unlock()

	err := fsm.StorageRemover(e.blocks, e.slots)(ctx, n)
	if err != nil {
		return fmt.Errorf("could not remove top blocks: %w", err)
	}
	last, err := e.blocks.LastBlock()
	if err != nil {
		return fmt.Errorf("could not load last block: %w", err)
	}
	e.state.SetLastBlock(last)
	e.state.SetLastDownloadedBlock(last)
	e.state.SetLastStoredBlockHeight(last.Height)
	e.metrics.BlocksRemoved(n)
	e.metrics.LastBlockHeight(last.Height)
	return nil
}

// ForkBlock starts fork recovery against the block. A non-zero hint sets
// the number of blocks to remove.
func (e *Engine) ForkBlock(block *chain.Block, rollbackHint uint64) {
	e.log.Warn().
		Uint64("height", block.Height).
		Str("block_id", block.ID.String()).
		Uint64("rollback_hint", rollbackHint).
		Msg("fork detected")

	e.state.SetForkedBlock(block)
	e.ClearAndStopQueue()
	if rollbackHint > 0 {
		e.state.SetNumberOfBlocksToRollback(rollbackHint)
	}
	e.bus.Publish(events.ForkDetected, events.ForkDetectedPayload{Block: block, BlocksToRemove: rollbackHint})
	e.machine.Dispatch(fsm.EventFork)
}

func (e *Engine) ResetLastDownloadedBlock() {
	e.state.ResetLastDownloadedBlock()
}

// IsSynced returns true if the block is less than three block times old,
// or if there are no peers to sync with.
func (e *Engine) IsSynced(block *chain.Block) bool {
	if !e.network.HasPeers() {
		return true
	}
	if block == nil {
		return false
	}
	now := e.slots.Time()
	if block.Timestamp >= now {
		return true
	}
	return time.Duration(now-block.Timestamp)*time.Second < 3*e.slots.BlockTime()
}

func (e *Engine) LastBlock() *chain.Block {
	return e.state.LastBlock()
}

func (e *Engine) LastHeight() uint64 {
	return e.state.LastHeight()
}

func (e *Engine) LastDownloadedBlock() *chain.Block {
	return e.state.LastDownloadedBlock()
}

// ChainState exposes the engine's chain state.
func (e *Engine) ChainState() *chainstate.State {
	return e.state
}

// SetWakeUp arms the idle wake-up timer unless it is armed already.
func (e *Engine) SetWakeUp() {
	if e.IsStopped() {
		return
	}
	e.state.SetWakeUp(e.config.WakeUpInterval, e.wakeUp)
}

// ResetWakeUp re-arms the idle wake-up timer from now.
func (e *Engine) ResetWakeUp() {
	if e.IsStopped() {
		return
	}
	e.state.ResetWakeUp(e.config.WakeUpInterval, e.wakeUp)
}

func (e *Engine) wakeUp() {
	e.machine.Dispatch(fsm.EventWakeUp)
}

func (e *Engine) Dispatch(event fsm.Event) {
	e.machine.Dispatch(event)
}

// State returns the state machine's current state.
func (e *Engine) State() fsm.State {
	return e.machine.State()
}

func (e *Engine) IsStopped() bool {
	return e.stopped.Load()
}

// BroadcastBlock relays the block to peers in the background. Blocks are
// relayed in the order they were submitted. After repeated failures blocks
// are dropped until the network had time to recover.
func (e *Engine) BroadcastBlock(block *chain.Block) {
	if e.IsStopped() {
		return
	}
	e.broadcaster.Submit(func() {
		_, err := e.breaker.Execute(func() (interface{}, error) {
			return nil, e.network.BroadcastBlock(e.ctx, block)
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			e.log.Debug().
				Uint64("height", block.Height).
				Str("block_id", block.ID.String()).
				Msg("broadcasting suspended, dropping block")
			return
		}
		if err != nil {
			e.log.Warn().Err(err).
				Uint64("height", block.Height).
				Str("block_id", block.ID.String()).
				Msg("could not broadcast block")
		}
	})
}

// Fail moves the state machine to Exit.
func (e *Engine) Fail() {
	e.machine.Dispatch(fsm.EventFailure)
}
