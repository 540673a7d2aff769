package operation

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module/irrecoverable"
	"github.com/dposchain/node/storage"
	"github.com/dposchain/node/utils/unittest"
)

func TestBlockInsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		block := unittest.BlockFixture(unittest.WithTransactions(unittest.TransactionListFixture(3)...))

		require.NoError(t, db.Update(InsertBlock(block)))
		err := db.Update(InsertBlock(block))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		var actual chain.Block
		require.NoError(t, db.View(RetrieveBlock(block.ID, &actual)))
		assert.Equal(t, block, &actual)

		var found bool
		require.NoError(t, db.View(BlockExists(block.ID, &found)))
		assert.True(t, found)

		require.NoError(t, db.Update(RemoveBlock(block.ID)))
		err = db.View(RetrieveBlock(block.ID, &actual))
		require.ErrorIs(t, err, storage.ErrNotFound)
		err = db.Update(RemoveBlock(block.ID))
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLookupTopHeights(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		ids := make(map[uint64]chain.Identifier)
		for height := uint64(1); height <= 300; height++ {
			id := unittest.IdentifierFixture()
			ids[height] = id
			require.NoError(t, db.Update(IndexBlockHeight(height, id)))
		}
		// heights are big endian encoded, so 256 must sort above 255
		var heights []uint64
		var blockIDs []chain.Identifier
		require.NoError(t, db.View(LookupTopHeights(3, &heights, &blockIDs)))
		assert.Equal(t, []uint64{300, 299, 298}, heights)
		assert.Equal(t, []chain.Identifier{ids[300], ids[299], ids[298]}, blockIDs)

		require.NoError(t, db.View(LookupTopHeights(0, &heights, &blockIDs)))
		assert.Len(t, heights, 300)
		assert.Equal(t, uint64(1), heights[299])

		err := db.Update(IndexBlockHeight(7, unittest.IdentifierFixture()))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
	})
}

func TestRounds(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		delegates := unittest.PublicKeyListFixture(5)
		for round := uint64(1); round <= 3; round++ {
			require.NoError(t, db.Update(InsertRound(round, delegates)))
		}

		var actual []chain.PublicKey
		require.NoError(t, db.View(RetrieveRound(2, &actual)))
		assert.Equal(t, delegates, actual)

		var rounds []uint64
		require.NoError(t, db.View(LookupRounds(&rounds)))
		assert.Equal(t, []uint64{1, 2, 3}, rounds)
	})
}

func TestDecodeCorruptedValue(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		id := unittest.IdentifierFixture()
		require.NoError(t, db.Update(func(tx *badger.Txn) error {
			return tx.Set(makePrefix(codeBlock, id), []byte("not snappy"))
		}))

		var block chain.Block
		err := db.View(RetrieveBlock(id, &block))
		require.Error(t, err)
		assert.True(t, irrecoverable.IsException(err))
	})
}
