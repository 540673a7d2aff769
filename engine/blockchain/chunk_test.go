package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/utils/unittest"
)

func chunkSizes(chunks [][]*chain.Block) []int {
	sizes := make([]int, 0, len(chunks))
	for _, c := range chunks {
		sizes = append(sizes, len(c))
	}
	return sizes
}

func TestChunk_ByBlockCount(t *testing.T) {
	blocks := unittest.ChainFixture(unittest.GenesisFixture(), 101)
	assert.Equal(t, []int{100, 1}, chunkSizes(Chunk(blocks, 150, 100, nil)))

	blocks = unittest.ChainFixture(unittest.GenesisFixture(), 250)
	assert.Equal(t, []int{100, 100, 50}, chunkSizes(Chunk(blocks, 150, 100, nil)))
}

func TestChunk_ByTransactionCount(t *testing.T) {
	blocks := unittest.ChainFixture(unittest.GenesisFixture(), 5)
	for _, block := range blocks {
		block.Transactions = unittest.TransactionListFixture(75)
	}
	// two blocks reach the limit of 150 transactions
	assert.Equal(t, []int{2, 2, 1}, chunkSizes(Chunk(blocks, 150, 100, nil)))
}

func TestChunk_MilestoneOpensChunk(t *testing.T) {
	// heights 2..11
	blocks := unittest.ChainFixture(unittest.GenesisFixture(), 10)
	chunks := Chunk(blocks, 150, 100, []uint64{5, 9})
	require.Equal(t, []int{3, 4, 3}, chunkSizes(chunks))
	assert.Equal(t, uint64(5), chunks[1][0].Height)
	assert.Equal(t, uint64(9), chunks[2][0].Height)

	// a milestone on the first block does not produce an empty chunk
	chunks = Chunk(blocks, 150, 100, []uint64{2})
	assert.Equal(t, []int{10}, chunkSizes(chunks))
}

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk(nil, 150, 100, nil))
}

// TestChunk_Properties checks that chunking keeps every block in order, never
// produces an empty chunk and respects the size limits.
func TestChunk_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 300).Draw(t, "blocks")
		maxBlocks := rapid.IntRange(1, 120).Draw(t, "max_blocks")
		maxTransactions := rapid.IntRange(1, 200).Draw(t, "max_transactions")
		milestones := rapid.SliceOf(rapid.Uint64Range(1, 310)).Draw(t, "milestones")

		blocks := unittest.ChainFixture(unittest.GenesisFixture(), n)
		for _, block := range blocks {
			count := rapid.IntRange(0, 10).Draw(t, "transactions")
			block.Transactions = make([]*chain.Transaction, count)
		}

		chunks := Chunk(blocks, maxTransactions, maxBlocks, milestones)

		var flattened []*chain.Block
		for _, c := range chunks {
			if len(c) == 0 {
				t.Fatalf("empty chunk")
			}
			if len(c) > maxBlocks {
				t.Fatalf("chunk of %d blocks exceeds %d", len(c), maxBlocks)
			}
			txs := 0
			for i, block := range c {
				// only the last block may push the chunk over the limit
				if i < len(c)-1 {
					txs += block.NumberOfTransactions()
					if txs >= maxTransactions {
						t.Fatalf("chunk kept growing past %d transactions", maxTransactions)
					}
				}
			}
			flattened = append(flattened, c...)
		}
		if len(flattened) != len(blocks) {
			t.Fatalf("expected %d blocks, got %d", len(blocks), len(flattened))
		}
		for i := range blocks {
			if flattened[i] != blocks[i] {
				t.Fatalf("block %d out of order", i)
			}
		}
	})
}
