package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/dposchain/node/model/chain"
)

// IndexTransaction records which block included the transaction.
func IndexTransaction(txID chain.Identifier, blockID chain.Identifier) func(*badger.Txn) error {
	return insert(makePrefix(codeTxToBlock, txID), blockID)
}

func LookupTransactionBlock(txID chain.Identifier, blockID *chain.Identifier) func(*badger.Txn) error {
	return retrieve(makePrefix(codeTxToBlock, txID), blockID)
}

func RemoveTransactionIndex(txID chain.Identifier) func(*badger.Txn) error {
	return remove(makePrefix(codeTxToBlock, txID))
}
