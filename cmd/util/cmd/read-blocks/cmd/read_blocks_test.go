package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module/slots"
	bstorage "github.com/dposchain/node/storage/badger"
	"github.com/dposchain/node/utils/unittest"
)

func TestReadBlocks(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		blocks := bstorage.NewBlocks(db, slots.New(time.Unix(0, 0), 8*time.Second, 5), 10)
		genesis := unittest.GenesisFixture()
		require.NoError(t, blocks.Bootstrap(genesis, unittest.PublicKeyListFixture(5)))
		chained := unittest.ChainFixture(genesis, 4)
		for _, block := range chained {
			require.NoError(t, blocks.ApplyBlock(block))
		}
		require.NoError(t, blocks.SaveBlocks(chained))

		var out bytes.Buffer
		// the range is cut at the top block
		require.NoError(t, readBlocks(&out, blocks, 3, 10))

		var heights []uint64
		scanner := bufio.NewScanner(&out)
		for scanner.Scan() {
			var block chain.Block
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &block))
			heights = append(heights, block.Height)
		}
		assert.Equal(t, []uint64{3, 4, 5}, heights)

		assert.Error(t, readBlocks(&out, blocks, 0, 1))
	})
}
