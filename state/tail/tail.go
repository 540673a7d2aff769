package tail

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dposchain/node/model/chain"
)

// Tail holds the most recent accepted blocks keyed by height and a capped
// set of recently seen transaction ids. Block heights in the tail always
// form a contiguous range ending at the last block.
//
// Entries are only ever read with Peek and Contains, so the LRU order of
// both caches is insertion order and eviction drops the oldest entry.
type Tail struct {
	mu     sync.RWMutex
	blocks *lru.Cache[uint64, *chain.Block]
	txIDs  *lru.Cache[chain.Identifier, struct{}]
	last   *chain.Block
}

func New(maxBlocks int, maxTxIDs int) (*Tail, error) {
	blocks, err := lru.New[uint64, *chain.Block](maxBlocks)
	if err != nil {
		return nil, fmt.Errorf("could not create block tail: %w", err)
	}
	txIDs, err := lru.New[chain.Identifier, struct{}](maxTxIDs)
	if err != nil {
		return nil, fmt.Errorf("could not create transaction id cache: %w", err)
	}
	return &Tail{
		blocks: blocks,
		txIDs:  txIDs,
	}, nil
}

// SetLastBlock makes the block the newest tail entry. Entries at or above
// the block's height are dropped first unless the block directly extends
// the current last block. A block that leaves a gap restarts the tail.
func (t *Tail) SetLastBlock(block *chain.Block) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil && t.last.Height != block.Height-1 {
		if block.Height > t.last.Height {
			t.blocks.Purge()
		} else {
			for height := t.last.Height; height >= block.Height; height-- {
				t.blocks.Remove(height)
				if height == 0 {
					break
				}
			}
		}
	}

	t.blocks.Add(block.Height, block)
	t.last = block
}

// LastBlock returns the newest tail entry.
func (t *Tail) LastBlock() (*chain.Block, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.last != nil
}

// Len returns the number of blocks held.
func (t *Tail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blocks.Len()
}

// BlockAt returns the tail entry at the given height.
func (t *Tail) BlockAt(height uint64) (*chain.Block, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blocks.Peek(height)
}

// LastBlocks returns all tail entries, newest first.
func (t *Tail) LastBlocks() []*chain.Block {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastBlocks()
}

func (t *Tail) lastBlocks() []*chain.Block {
	if t.last == nil {
		return nil
	}
	blocks := make([]*chain.Block, 0, t.blocks.Len())
	for height := t.last.Height; ; height-- {
		block, ok := t.blocks.Peek(height)
		if !ok {
			break
		}
		blocks = append(blocks, block)
		if height == 0 {
			break
		}
	}
	return blocks
}

// LastBlockIDs returns the ids of all tail entries, newest first.
func (t *Tail) LastBlockIDs() chain.IdentifierList {
	blocks := t.LastBlocks()
	ids := make(chain.IdentifierList, 0, len(blocks))
	for _, block := range blocks {
		ids = append(ids, block.ID)
	}
	return ids
}

// BlocksByHeight returns the tail entries with heights in [start, end], in
// ascending order. Heights outside the tail are skipped.
func (t *Tail) BlocksByHeight(start uint64, end uint64) []*chain.Block {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var blocks []*chain.Block
	for height := start; height <= end; height++ {
		if block, ok := t.blocks.Peek(height); ok {
			blocks = append(blocks, block)
		}
		if height == end {
			break
		}
	}
	return blocks
}

// CommonBlocks returns the tail entries whose id is in ids, in ascending
// height order.
func (t *Tail) CommonBlocks(ids []chain.Identifier) []*chain.Block {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lookup := chain.IdentifierList(ids).Lookup()
	newestFirst := t.lastBlocks()
	common := make([]*chain.Block, 0, len(ids))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		if _, ok := lookup[newestFirst[i].ID]; ok {
			common = append(common, newestFirst[i])
		}
	}
	return common
}

// CacheTransactions records the transactions' ids and reports which ones
// were new and which were already cached.
func (t *Tail) CacheTransactions(txs []*chain.Transaction) ([]*chain.Transaction, []*chain.Transaction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var added, notAdded []*chain.Transaction
	for _, tx := range txs {
		if t.txIDs.Contains(tx.ID) {
			notAdded = append(notAdded, tx)
			continue
		}
		t.txIDs.Add(tx.ID, struct{}{})
		added = append(added, tx)
	}
	return added, notAdded
}

// RemoveCachedTransactionIDs forgets the given transaction ids.
func (t *Tail) RemoveCachedTransactionIDs(ids chain.IdentifierList) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		t.txIDs.Remove(id)
	}
}

// CachedTransactionIDs returns the cached ids, oldest first.
func (t *Tail) CachedTransactionIDs() chain.IdentifierList {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return chain.IdentifierList(t.txIDs.Keys())
}

// Clear drops all blocks and transaction ids.
func (t *Tail) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.blocks.Purge()
	t.txIDs.Purge()
	t.last = nil
}
