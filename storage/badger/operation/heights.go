package operation

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v2"

	"github.com/dposchain/node/model/chain"
)

// IndexBlockHeight indexes the block ID by height. Fails with
// storage.ErrAlreadyExists if the height is already taken.
func IndexBlockHeight(height uint64, blockID chain.Identifier) func(*badger.Txn) error {
	return insert(makePrefix(codeHeightToBlock, height), blockID)
}

func LookupBlockHeight(height uint64, blockID *chain.Identifier) func(*badger.Txn) error {
	return retrieve(makePrefix(codeHeightToBlock, height), blockID)
}

func RemoveBlockHeight(height uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeHeightToBlock, height))
}

// LookupTopHeights collects up to limit (height, block ID) pairs of the
// height index, highest first. A limit of 0 collects the whole index.
func LookupTopHeights(limit int, heights *[]uint64, blockIDs *[]chain.Identifier) func(*badger.Txn) error {
	*heights = (*heights)[:0]
	*blockIDs = (*blockIDs)[:0]
	return traverse(makePrefix(codeHeightToBlock), true, func() (checkFunc, createFunc, handleFunc) {
		var height uint64
		check := func(key []byte) bool {
			height = binary.BigEndian.Uint64(key[1:])
			return true
		}
		var blockID chain.Identifier
		create := func() interface{} {
			return &blockID
		}
		handle := func() error {
			*heights = append(*heights, height)
			*blockIDs = append(*blockIDs, blockID)
			if limit > 0 && len(*heights) >= limit {
				return errStopIteration
			}
			return nil
		}
		return check, create, handle
	})
}
