package chainstate

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/state/tail"
)

// BlockPing tracks repeated receipt of the block most recently handed to
// the chain.
type BlockPing struct {
	Block      *chain.Block
	Count      int
	First      time.Time
	Last       time.Time
	FromForger bool
}

// State is the mutable chain state of a node. Block pointers, the wake-up
// timer and the block ping are guarded by one lock; flags and counters are
// atomics. The last block lives in the tail.
type State struct {
	tail *tail.Tail
	now  func() time.Time

	mu                  sync.RWMutex
	lastDownloadedBlock *chain.Block
	forkedBlock         *chain.Block
	wakeUp              *time.Timer
	blockPing           *BlockPing

	started                   atomic.Bool
	networkStart              atomic.Bool
	restoredDatabaseIntegrity atomic.Bool
	numberOfBlocksToRollback  atomic.Uint64
	lastStoredBlockHeight     atomic.Uint64
	noBlockCounter            atomic.Uint64
	p2pUpdateCounter          atomic.Uint64
	missedBlocks              atomic.Uint64
}

func New(t *tail.Tail, networkStart bool) *State {
	s := &State{
		tail: t,
		now:  time.Now,
	}
	s.networkStart.Store(networkStart)
	return s
}

// WithClock replaces the wall clock used for block ping times.
func (s *State) WithClock(now func() time.Time) *State {
	s.now = now
	return s
}

// Tail returns the tail of accepted blocks.
func (s *State) Tail() *tail.Tail {
	return s.tail
}

// LastBlock returns the last accepted block, or nil before the chain was loaded.
func (s *State) LastBlock() *chain.Block {
	last, ok := s.tail.LastBlock()
	if !ok {
		return nil
	}
	return last
}

// LastHeight returns the height of the last accepted block, 0 if none.
func (s *State) LastHeight() uint64 {
	last := s.LastBlock()
	if last == nil {
		return 0
	}
	return last.Height
}

// SetLastBlock makes the block the last accepted block. The last downloaded
// block is moved along if it would fall behind.
func (s *State) SetLastBlock(block *chain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tail.SetLastBlock(block)
	if s.lastDownloadedBlock == nil || s.lastDownloadedBlock.Height < block.Height {
		s.lastDownloadedBlock = block
	}
}

func (s *State) LastDownloadedBlock() *chain.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDownloadedBlock
}

func (s *State) SetLastDownloadedBlock(block *chain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDownloadedBlock = block
}

// ResetLastDownloadedBlock moves the download pointer back to the last
// accepted block.
func (s *State) ResetLastDownloadedBlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDownloadedBlock = s.LastBlock()
}

func (s *State) ForkedBlock() *chain.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forkedBlock
}

func (s *State) SetForkedBlock(block *chain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forkedBlock = block
}

// ClearForkedBlockAt clears the forked block if it sits at the given height.
func (s *State) ClearForkedBlockAt(height uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forkedBlock != nil && s.forkedBlock.Height == height {
		s.forkedBlock = nil
	}
}

// NumberOfBlocksToRollback returns the rollback hint, 0 if unset.
func (s *State) NumberOfBlocksToRollback() uint64 {
	return s.numberOfBlocksToRollback.Load()
}

func (s *State) SetNumberOfBlocksToRollback(n uint64) {
	s.numberOfBlocksToRollback.Store(n)
}

func (s *State) ClearNumberOfBlocksToRollback() {
	s.numberOfBlocksToRollback.Store(0)
}

func (s *State) Started() bool {
	return s.started.Load()
}

// MarkStarted sets the started flag and reports whether it was unset before.
func (s *State) MarkStarted() bool {
	return s.started.CompareAndSwap(false, true)
}

func (s *State) NetworkStart() bool {
	return s.networkStart.Load()
}

func (s *State) SetNetworkStart(networkStart bool) {
	s.networkStart.Store(networkStart)
}

func (s *State) RestoredDatabaseIntegrity() bool {
	return s.restoredDatabaseIntegrity.Load()
}

func (s *State) SetRestoredDatabaseIntegrity(restored bool) {
	s.restoredDatabaseIntegrity.Store(restored)
}

// LastStoredBlockHeight is the height of the last block known to be saved.
// Blocks above it were applied but may not be persisted yet.
func (s *State) LastStoredBlockHeight() uint64 {
	return s.lastStoredBlockHeight.Load()
}

func (s *State) SetLastStoredBlockHeight(height uint64) {
	s.lastStoredBlockHeight.Store(height)
}

func (s *State) NoBlockCounter() uint64 {
	return s.noBlockCounter.Load()
}

func (s *State) IncNoBlockCounter() uint64 {
	return s.noBlockCounter.Inc()
}

func (s *State) ResetNoBlockCounter() {
	s.noBlockCounter.Store(0)
}

func (s *State) IncP2PUpdateCounter() uint64 {
	return s.p2pUpdateCounter.Inc()
}

func (s *State) ResetP2PUpdateCounter() {
	s.p2pUpdateCounter.Store(0)
}

func (s *State) MissedBlocks() uint64 {
	return s.missedBlocks.Load()
}

func (s *State) IncMissedBlocks() uint64 {
	return s.missedBlocks.Inc()
}

func (s *State) ResetMissedBlocks() {
	s.missedBlocks.Store(0)
}

// SetWakeUp arms the wake-up timer unless it is already armed. fn runs on
// the timer's goroutine after the handle was cleared.
func (s *State) SetWakeUp(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setWakeUp(d, fn)
}

func (s *State) setWakeUp(d time.Duration, fn func()) {
	if s.wakeUp != nil {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.wakeUp == timer {
			s.wakeUp = nil
		}
		s.mu.Unlock()
		fn()
	})
	s.wakeUp = timer
}

// ResetWakeUp re-arms the wake-up timer from now.
func (s *State) ResetWakeUp(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearWakeUp()
	s.setWakeUp(d, fn)
}

func (s *State) ClearWakeUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearWakeUp()
}

func (s *State) clearWakeUp() {
	if s.wakeUp != nil {
		s.wakeUp.Stop()
		s.wakeUp = nil
	}
}

func (s *State) HasWakeUp() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wakeUp != nil
}

// PushPingBlock starts tracking receipts of a new block and returns the
// tracking record of the block it replaces, if any. Blocks from the local
// forger start with a count of 0.
func (s *State) PushPingBlock(block *chain.Block, fromForger bool) *BlockPing {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.blockPing
	now := s.now()
	count := 1
	if fromForger {
		count = 0
	}
	s.blockPing = &BlockPing{
		Block:      block,
		Count:      count,
		First:      now,
		Last:       now,
		FromForger: fromForger,
	}
	return previous
}

// PingBlock counts another receipt of the tracked block. Returns false if
// the block is not the one being tracked.
func (s *State) PingBlock(block *chain.Block) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blockPing == nil {
		return false
	}
	if s.blockPing.Block.Height != block.Height || s.blockPing.Block.ID != block.ID {
		return false
	}
	s.blockPing.Count++
	s.blockPing.Last = s.now()
	return true
}

// BlockPing returns a copy of the current tracking record.
func (s *State) BlockPing() (BlockPing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.blockPing == nil {
		return BlockPing{}, false
	}
	return *s.blockPing, true
}

// Reset restores the state a node boots with, keeping the network start
// flag. The tail is cleared.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearWakeUp()
	s.tail.Clear()
	s.lastDownloadedBlock = nil
	s.forkedBlock = nil
	s.blockPing = nil

	s.started.Store(false)
	s.restoredDatabaseIntegrity.Store(false)
	s.numberOfBlocksToRollback.Store(0)
	s.lastStoredBlockHeight.Store(0)
	s.noBlockCounter.Store(0)
	s.p2pUpdateCounter.Store(0)
	s.missedBlocks.Store(0)
}
