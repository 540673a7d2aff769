package operation

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v2"

	"github.com/dposchain/node/model/chain"
)

func InsertRound(round uint64, delegates []chain.PublicKey) func(*badger.Txn) error {
	return insert(makePrefix(codeRound, round), delegates)
}

func RetrieveRound(round uint64, delegates *[]chain.PublicKey) func(*badger.Txn) error {
	return retrieve(makePrefix(codeRound, round), delegates)
}

func RemoveRound(round uint64) func(*badger.Txn) error {
	return remove(makePrefix(codeRound, round))
}

// LookupRounds collects the numbers of all stored rounds, in ascending order.
func LookupRounds(rounds *[]uint64) func(*badger.Txn) error {
	*rounds = (*rounds)[:0]
	return traverse(makePrefix(codeRound), false, func() (checkFunc, createFunc, handleFunc) {
		var round uint64
		check := func(key []byte) bool {
			round = binary.BigEndian.Uint64(key[1:])
			return true
		}
		var delegates []chain.PublicKey
		create := func() interface{} {
			return &delegates
		}
		handle := func() error {
			*rounds = append(*rounds, round)
			return nil
		}
		return check, create, handle
	})
}
