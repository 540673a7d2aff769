package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/dposchain/node/model/chain"
)

func InsertBlock(block *chain.Block) func(*badger.Txn) error {
	return insert(makePrefix(codeBlock, block.ID), block)
}

func RetrieveBlock(blockID chain.Identifier, block *chain.Block) func(*badger.Txn) error {
	return retrieve(makePrefix(codeBlock, blockID), block)
}

func RemoveBlock(blockID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeBlock, blockID))
}

func BlockExists(blockID chain.Identifier, blockExists *bool) func(*badger.Txn) error {
	return exists(makePrefix(codeBlock, blockID), blockExists)
}
