package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/dposchain/node/model/chain"
)

const (

	// codes for entities
	codeBlock = 10
	codeRound = 11 // active delegates of a round

	// codes for indexes
	codeHeightToBlock = 20 // index mapping height to block ID
	codeTxToBlock     = 21 // index mapping transaction ID to containing block ID
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case chain.Identifier:
		return []byte(i)
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
