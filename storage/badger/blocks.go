package badger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v2"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/storage"
	"github.com/dposchain/node/storage/badger/operation"
)

// Blocks implements the chain storage around a badger DB. Saved blocks,
// their height and transaction indexes and the round delegates are
// persisted; the applied height is chain state rebuilt from the saved top
// block when the store is opened.
type Blocks struct {
	db     *badger.DB
	slots  *slots.Slots
	cache  *Cache[chain.Identifier, *chain.Block]
	mu     sync.Mutex
	loaded bool
	// applied is the height of the last block applied to chain state
	applied uint64
}

var _ storage.Blocks = (*Blocks)(nil)

func NewBlocks(db *badger.DB, slots *slots.Slots, cacheSize uint) *Blocks {

	retrieve := func(blockID chain.Identifier) func(*badger.Txn) (*chain.Block, error) {
		return func(tx *badger.Txn) (*chain.Block, error) {
			var block chain.Block
			err := operation.RetrieveBlock(blockID, &block)(tx)
			return &block, err
		}
	}

	return &Blocks{
		db:    db,
		slots: slots,
		cache: newCache[chain.Identifier, *chain.Block](
			withLimit[chain.Identifier, *chain.Block](cacheSize),
			withRetrieve[chain.Identifier, *chain.Block](retrieve)),
	}
}

// Bootstrap saves and applies the genesis block and stores the delegates of
// the first round.
func (b *Blocks) Bootstrap(genesis *chain.Block, delegates []chain.PublicKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if genesis.Height != 1 {
		return fmt.Errorf("genesis block must have height 1, got %d", genesis.Height)
	}

	err := b.db.Update(func(tx *badger.Txn) error {
		err := b.storeTx(genesis)(tx)
		if err != nil {
			return err
		}
		return operation.InsertRound(1, delegates)(tx)
	})
	if err != nil {
		return fmt.Errorf("could not bootstrap chain: %w", err)
	}

	b.cache.Insert(genesis.ID, genesis)
	b.loaded = true
	b.applied = 1
	return nil
}

func (b *Blocks) storeTx(block *chain.Block) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := operation.InsertBlock(block)(tx)
		if err != nil {
			return fmt.Errorf("could not insert block %x: %w", block.ID, err)
		}
		err = operation.IndexBlockHeight(block.Height, block.ID)(tx)
		if err != nil {
			return fmt.Errorf("could not index block %x at height %d: %w", block.ID, block.Height, err)
		}
		for _, transaction := range block.Transactions {
			err = operation.IndexTransaction(transaction.ID, block.ID)(tx)
			if err != nil {
				return fmt.Errorf("could not index transaction %x: %w", transaction.ID, err)
			}
		}
		return nil
	}
}

func (b *Blocks) topHeightTx(tx *badger.Txn) (uint64, error) {
	var heights []uint64
	var blockIDs []chain.Identifier
	err := operation.LookupTopHeights(1, &heights, &blockIDs)(tx)
	if err != nil {
		return 0, err
	}
	if len(heights) == 0 {
		return 0, nil
	}
	return heights[0], nil
}

// loadApplied initializes the applied height from the saved top block.
// Must be called with the lock held.
func (b *Blocks) loadApplied() error {
	if b.loaded {
		return nil
	}
	var top uint64
	err := b.db.View(func(tx *badger.Txn) error {
		var err error
		top, err = b.topHeightTx(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("could not load top height: %w", err)
	}
	b.applied = top
	b.loaded = true
	return nil
}

func (b *Blocks) LastBlock() (*chain.Block, error) {
	blocks, err := b.TopBlocks(1)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, storage.ErrNotFound
	}
	return blocks[0], nil
}

func (b *Blocks) ByHeight(height uint64) (*chain.Block, error) {
	var block *chain.Block
	err := b.db.View(func(tx *badger.Txn) error {
		var blockID chain.Identifier
		err := operation.LookupBlockHeight(height, &blockID)(tx)
		if err != nil {
			return err
		}
		block, err = b.cache.Get(blockID)(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve block at height %d: %w", height, err)
	}
	return block, nil
}

func (b *Blocks) HasBlock(blockID chain.Identifier) (bool, error) {
	var found bool
	err := b.db.View(operation.BlockExists(blockID, &found))
	if err != nil {
		return false, fmt.Errorf("could not check block %x: %w", blockID, err)
	}
	return found, nil
}

func (b *Blocks) ApplyBlock(block *chain.Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.loadApplied()
	if err != nil {
		return err
	}
	if block.Height != b.applied+1 {
		return fmt.Errorf("cannot apply block at height %d on top of %d: %w", block.Height, b.applied, storage.ErrNotContiguous)
	}

	if block.Height > 1 && b.slots.IsNewRound(block.Height) {
		round := b.slots.RoundOf(block.Height)
		err = b.db.Update(func(tx *badger.Txn) error {
			var delegates []chain.PublicKey
			err := operation.RetrieveRound(round, &delegates)(tx)
			if err == nil {
				return nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			err = operation.RetrieveRound(round-1, &delegates)(tx)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return operation.InsertRound(round, delegates)(tx)
		})
		if err != nil {
			return fmt.Errorf("could not start round for height %d: %w", block.Height, err)
		}
	}

	b.applied = block.Height
	return nil
}

func (b *Blocks) RevertBlock(block *chain.Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.loadApplied()
	if err != nil {
		return err
	}
	// a block right above the applied height failed to apply, only the
	// round it may have opened needs to go
	failed := block.Height == b.applied+1
	if block.Height != b.applied && !failed {
		return fmt.Errorf("cannot revert block at height %d, applied height is %d: %w", block.Height, b.applied, storage.ErrNotContiguous)
	}

	if block.Height > 1 && b.slots.IsNewRound(block.Height) {
		err = b.db.Update(operation.RemoveRound(b.slots.RoundOf(block.Height)))
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not revert round for height %d: %w", block.Height, err)
		}
	}

	b.applied = block.Height - 1
	return nil
}

func (b *Blocks) SaveBlocks(blocks []*chain.Block) error {
	if len(blocks) == 0 {
		return nil
	}

	err := b.db.Update(func(tx *badger.Txn) error {
		top, err := b.topHeightTx(tx)
		if err != nil {
			return fmt.Errorf("could not look up top height: %w", err)
		}
		for _, block := range blocks {
			if block.Height != top+1 {
				return fmt.Errorf("cannot save block at height %d on top of %d: %w", block.Height, top, storage.ErrNotContiguous)
			}
			err = b.storeTx(block)(tx)
			if err != nil {
				return err
			}
			top = block.Height
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not save blocks: %w", err)
	}

	for _, block := range blocks {
		b.cache.Insert(block.ID, block)
	}
	return nil
}

func (b *Blocks) DeleteBlocks(blocks []*chain.Block) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.loadApplied()
	if err != nil {
		return err
	}

	var top uint64
	err = b.db.Update(func(tx *badger.Txn) error {
		for _, block := range blocks {
			err := operation.RemoveBlock(block.ID)(tx)
			if err != nil {
				return fmt.Errorf("could not remove block %x: %w", block.ID, err)
			}

			var indexed chain.Identifier
			err = operation.LookupBlockHeight(block.Height, &indexed)(tx)
			if err == nil && indexed == block.ID {
				err = operation.RemoveBlockHeight(block.Height)(tx)
			}
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("could not remove height index %d: %w", block.Height, err)
			}

			for _, transaction := range block.Transactions {
				err = operation.RemoveTransactionIndex(transaction.ID)(tx)
				if err != nil && !errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("could not remove transaction index %x: %w", transaction.ID, err)
				}
			}
		}

		var err error
		top, err = b.topHeightTx(tx)
		return err
	})
	if err != nil {
		return fmt.Errorf("could not delete blocks: %w", err)
	}

	for _, block := range blocks {
		b.cache.Remove(block.ID)
	}
	if b.applied > top {
		b.applied = top
	}
	return nil
}

func (b *Blocks) Blocks(offset uint64, count uint64) ([]*chain.Block, error) {
	blocks := make([]*chain.Block, 0, count)
	err := b.db.View(func(tx *badger.Txn) error {
		for height := offset; height < offset+count; height++ {
			var blockID chain.Identifier
			err := operation.LookupBlockHeight(height, &blockID)(tx)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			block, err := b.cache.Get(blockID)(tx)
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve blocks from height %d: %w", offset, err)
	}
	return blocks, nil
}

func (b *Blocks) TopBlocks(n uint64) ([]*chain.Block, error) {
	if n == 0 {
		return nil, nil
	}
	var blocks []*chain.Block
	err := b.db.View(func(tx *badger.Txn) error {
		var heights []uint64
		var blockIDs []chain.Identifier
		err := operation.LookupTopHeights(int(n), &heights, &blockIDs)(tx)
		if err != nil {
			return err
		}
		blocks = make([]*chain.Block, 0, len(blockIDs))
		for _, blockID := range blockIDs {
			block, err := b.cache.Get(blockID)(tx)
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve top %d blocks: %w", n, err)
	}
	return blocks, nil
}

// VerifyBlockchain checks that the height index is contiguous from genesis
// to the top block, that every indexed block links to its parent, that the
// top block's transactions are indexed and that the top block's round has
// delegates.
func (b *Blocks) VerifyBlockchain() (bool, error) {
	consistent := true
	err := b.db.View(func(tx *badger.Txn) error {
		var heights []uint64
		var blockIDs []chain.Identifier
		err := operation.LookupTopHeights(0, &heights, &blockIDs)(tx)
		if err != nil {
			return err
		}
		if len(heights) == 0 || heights[0] != uint64(len(heights)) {
			consistent = false
			return nil
		}

		// heights are sorted descending, walk from genesis upwards
		var parent *chain.Block
		for i := len(heights) - 1; i >= 0; i-- {
			var block chain.Block
			err := operation.RetrieveBlock(blockIDs[i], &block)(tx)
			if errors.Is(err, storage.ErrNotFound) {
				consistent = false
				return nil
			}
			if err != nil {
				return err
			}
			if block.Height != heights[i] || (parent != nil && block.PreviousBlockID != parent.ID) {
				consistent = false
				return nil
			}
			parent = &block
		}

		for _, transaction := range parent.Transactions {
			var blockID chain.Identifier
			err := operation.LookupTransactionBlock(transaction.ID, &blockID)(tx)
			if errors.Is(err, storage.ErrNotFound) {
				consistent = false
				return nil
			}
			if err != nil {
				return err
			}
			if blockID != parent.ID {
				consistent = false
				return nil
			}
		}

		var delegates []chain.PublicKey
		err = operation.RetrieveRound(b.slots.RoundOf(parent.Height), &delegates)(tx)
		if errors.Is(err, storage.ErrNotFound) {
			consistent = false
			return nil
		}
		if err != nil {
			return err
		}
		consistent = len(delegates) > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("could not verify blockchain: %w", err)
	}
	return consistent, nil
}

func (b *Blocks) DeleteRound(round uint64) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		var rounds []uint64
		err := operation.LookupRounds(&rounds)(tx)
		if err != nil {
			return err
		}
		for _, r := range rounds {
			if r < round {
				continue
			}
			err = operation.RemoveRound(r)(tx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("could not delete rounds from %d: %w", round, err)
	}
	return nil
}

func (b *Blocks) ForgedTransactionIDs(ids chain.IdentifierList) (chain.IdentifierList, error) {
	var forged chain.IdentifierList
	err := b.db.View(func(tx *badger.Txn) error {
		for _, id := range ids {
			var blockID chain.Identifier
			err := operation.LookupTransactionBlock(id, &blockID)(tx)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			forged = append(forged, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not look up forged transactions: %w", err)
	}
	return forged, nil
}

func (b *Blocks) ActiveDelegates(round uint64) ([]chain.PublicKey, error) {
	var delegates []chain.PublicKey
	err := b.db.View(operation.RetrieveRound(round, &delegates))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not retrieve delegates of round %d: %w", round, err)
	}
	return delegates, nil
}
