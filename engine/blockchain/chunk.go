package blockchain

import (
	"github.com/dposchain/node/model/chain"
)

// Chunk splits blocks into ordered batches. A batch closes once its
// transaction count reaches maxTransactions or it holds maxBlocks blocks.
// A block at a milestone height always opens a new batch.
func Chunk(blocks []*chain.Block, maxTransactions int, maxBlocks int, milestones []uint64) [][]*chain.Block {
	if len(blocks) == 0 {
		return nil
	}

	lookup := make(map[uint64]struct{}, len(milestones))
	for _, height := range milestones {
		lookup[height] = struct{}{}
	}

	var (
		chunks       [][]*chain.Block
		current      []*chain.Block
		transactions int
	)
	closeChunk := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
		}
		current = nil
		transactions = 0
	}

	for _, block := range blocks {
		if _, ok := lookup[block.Height]; ok {
			closeChunk()
		}
		current = append(current, block)
		transactions += block.NumberOfTransactions()
		if transactions >= maxTransactions || len(current) >= maxBlocks {
			closeChunk()
		}
	}
	closeChunk()

	return chunks
}
