package blockchain

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dposchain/node/engine"
	"github.com/dposchain/node/engine/common/fifoqueue"
	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module"
	"github.com/dposchain/node/module/component"
	"github.com/dposchain/node/module/irrecoverable"
)

// ProcessFunc processes one batch of blocks.
type ProcessFunc func(ctx context.Context, blocks []*chain.Block)

// BlockQueue is an ordered queue of block batches consumed by a single
// worker, so at most one batch is processed at any time. Once the last
// queued batch was processed the drain hook is called. Clearing the queue
// does not call it.
type BlockQueue struct {
	log             zerolog.Logger
	chunks          *fifoqueue.FifoQueue[[]*chain.Block]
	notifier        engine.Notifier
	process         ProcessFunc
	drained         func()
	maxTransactions int
	maxBlocks       int
	milestones      []uint64

	mu      sync.Mutex
	paused  bool
	running bool
}

func NewBlockQueue(
	log zerolog.Logger,
	metrics module.ChainMetrics,
	maxTransactions int,
	maxBlocks int,
	milestones []uint64,
	process ProcessFunc,
	drained func(),
) (*BlockQueue, error) {
	chunks, err := fifoqueue.NewFifoQueue[[]*chain.Block](
		fifoqueue.WithLengthObserver(metrics.QueueLength),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create block queue: %w", err)
	}
	return &BlockQueue{
		log:             log.With().Str("component", "block_queue").Logger(),
		chunks:          chunks,
		notifier:        engine.NewNotifier(),
		process:         process,
		drained:         drained,
		maxTransactions: maxTransactions,
		maxBlocks:       maxBlocks,
		milestones:      milestones,
	}, nil
}

// EnqueueBlocks splits the blocks into batches and queues them in order.
func (q *BlockQueue) EnqueueBlocks(blocks []*chain.Block) {
	if len(blocks) == 0 {
		return
	}
	chunks := Chunk(blocks, q.maxTransactions, q.maxBlocks, q.milestones)
	for _, chunk := range chunks {
		q.chunks.Push(chunk)
	}
	q.log.Debug().
		Uint64("from_height", blocks[0].Height).
		Uint64("to_height", blocks[len(blocks)-1].Height).
		Int("chunks", len(chunks)).
		Msg("blocks queued")
	q.notifier.Notify()
}

// Len returns the number of queued batches.
func (q *BlockQueue) Len() int {
	return q.chunks.Len()
}

// Idle returns true if no batch is queued or being processed.
func (q *BlockQueue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.running && q.chunks.Len() == 0
}

// Pause stops the worker from taking further batches. A batch being
// processed is completed.
func (q *BlockQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = true
}

func (q *BlockQueue) Resume() {
	q.mu.Lock()
	q.paused = false
	q.mu.Unlock()
	q.notifier.Notify()
}

func (q *BlockQueue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Clear drops all queued batches.
func (q *BlockQueue) Clear() {
	removed := q.chunks.Clear()
	if removed > 0 {
		q.log.Debug().Int("chunks", removed).Msg("block queue cleared")
	}
}

// Run is the component worker consuming the queue.
func (q *BlockQueue) Run(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.notifier.Channel():
			q.processChunks(ctx)
		}
	}
}

// processChunks processes batches until the queue is empty or paused.
func (q *BlockQueue) processChunks(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		chunk, ok := q.next()
		if !ok {
			return
		}
		q.process(ctx, chunk)
		if q.finish() {
			q.drained()
		}
	}
}

func (q *BlockQueue) next() ([]*chain.Block, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.paused {
		return nil, false
	}
	chunk, ok := q.chunks.Pop()
	if ok {
		q.running = true
	}
	return chunk, ok
}

// finish marks the current batch as processed and returns true if the
// queue drained.
func (q *BlockQueue) finish() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = false
	return q.chunks.Len() == 0
}
