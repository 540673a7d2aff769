package storage

import (
	"github.com/dposchain/node/model/chain"
)

// Blocks represents persistent storage for the canonical chain, the chain
// state derived from it and the delegate rounds.
//
// Applying a block updates chain state. Saving a block persists it. The
// chain core applies blocks one at a time and saves them in batches, so the
// applied height may run ahead of the saved top block.
type Blocks interface {

	// LastBlock returns the saved block with the greatest height.
	// Returns ErrNotFound if no block was saved.
	LastBlock() (*chain.Block, error)

	// ByHeight returns the saved block at the given height.
	// Returns ErrNotFound if there is none.
	ByHeight(height uint64) (*chain.Block, error)

	// HasBlock returns true if a block with the given id was saved.
	HasBlock(blockID chain.Identifier) (bool, error)

	// ApplyBlock applies the block on top of chain state. The first block of
	// a round carries the previous round's delegates forward.
	// Returns ErrNotContiguous if the block is not one above the applied height.
	ApplyBlock(block *chain.Block) error

	// RevertBlock reverts the top applied block from chain state and drops the
	// round data of the block's round if the block opened it. A block one above
	// the applied height is treated as a failed apply: only its round data is
	// dropped.
	// Returns ErrNotContiguous for any other height.
	RevertBlock(block *chain.Block) error

	// SaveBlocks persists the blocks in height order.
	SaveBlocks(blocks []*chain.Block) error

	// DeleteBlocks removes the given saved blocks and their indexes.
	DeleteBlocks(blocks []*chain.Block) error

	// Blocks returns up to count saved blocks starting at height offset, in
	// ascending height order.
	Blocks(offset uint64, count uint64) ([]*chain.Block, error)

	// TopBlocks returns the n saved blocks with the greatest heights, highest first.
	TopBlocks(n uint64) ([]*chain.Block, error)

	// VerifyBlockchain checks the integrity of the saved chain. It returns
	// false with a nil error if the data is inconsistent.
	VerifyBlockchain() (bool, error)

	// DeleteRound removes the delegates of the given round and all later rounds.
	DeleteRound(round uint64) error

	// ForgedTransactionIDs returns the subset of ids already included in a
	// saved block.
	ForgedTransactionIDs(ids chain.IdentifierList) (chain.IdentifierList, error)

	// ActiveDelegates returns the delegates forging in the given round, in
	// forging order. The result is empty if the round is unknown.
	ActiveDelegates(round uint64) ([]chain.PublicKey, error)
}
