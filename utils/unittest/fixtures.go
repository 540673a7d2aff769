package unittest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/dposchain/node/model/chain"
)

// IdentifierFixture returns a random identifier.
func IdentifierFixture() chain.Identifier {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return chain.Identifier(hex.EncodeToString(b[:]))
}

// PublicKeyFixture returns a random delegate public key.
func PublicKeyFixture() chain.PublicKey {
	var b [33]byte
	_, _ = rand.Read(b[:])
	return chain.PublicKey(hex.EncodeToString(b[:]))
}

// PublicKeyListFixture returns n random delegate public keys.
func PublicKeyListFixture(n int) []chain.PublicKey {
	keys := make([]chain.PublicKey, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, PublicKeyFixture())
	}
	return keys
}

// TransactionFixture returns a transaction with random id and sender.
func TransactionFixture() *chain.Transaction {
	return &chain.Transaction{
		ID:              IdentifierFixture(),
		SenderPublicKey: PublicKeyFixture(),
		Nonce:           1,
		Payload:         []byte("transfer"),
	}
}

// TransactionListFixture returns n random transactions.
func TransactionListFixture(n int) []*chain.Transaction {
	txs := make([]*chain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, TransactionFixture())
	}
	return txs
}

// BlockFixture returns a verified block with random ids and no transactions.
func BlockFixture(opts ...func(*chain.Block)) *chain.Block {
	block := &chain.Block{
		ID:                 IdentifierFixture(),
		Height:             1,
		PreviousBlockID:    IdentifierFixture(),
		Timestamp:          8,
		GeneratorPublicKey: PublicKeyFixture(),
		Verification:       chain.Verification{Verified: true},
	}
	for _, apply := range opts {
		apply(block)
	}
	return block
}

// WithHeight sets the block height.
func WithHeight(height uint64) func(*chain.Block) {
	return func(b *chain.Block) {
		b.Height = height
	}
}

// WithID sets the block id.
func WithID(id chain.Identifier) func(*chain.Block) {
	return func(b *chain.Block) {
		b.ID = id
	}
}

// WithTimestamp sets the block timestamp.
func WithTimestamp(ts uint64) func(*chain.Block) {
	return func(b *chain.Block) {
		b.Timestamp = ts
	}
}

// WithGenerator sets the block generator.
func WithGenerator(pk chain.PublicKey) func(*chain.Block) {
	return func(b *chain.Block) {
		b.GeneratorPublicKey = pk
	}
}

// WithTransactions sets the block payload.
func WithTransactions(txs ...*chain.Transaction) func(*chain.Block) {
	return func(b *chain.Block) {
		b.Transactions = txs
	}
}

// WithParent makes the block a child of parent, one height above and one
// block time later.
func WithParent(parent *chain.Block, blockTime uint64) func(*chain.Block) {
	return func(b *chain.Block) {
		b.PreviousBlockID = parent.ID
		b.Height = parent.Height + 1
		b.Timestamp = parent.Timestamp + blockTime
	}
}

// GenesisFixture returns a block at height 1.
func GenesisFixture() *chain.Block {
	return BlockFixture(
		WithID(chain.Identifier(fmt.Sprintf("genesis-%s", IdentifierFixture()[:8]))),
		WithHeight(1),
		WithTimestamp(0),
		func(b *chain.Block) { b.PreviousBlockID = chain.ZeroID },
	)
}

// ChainFixture returns n blocks extending from, each one block time (8s)
// after its parent.
func ChainFixture(from *chain.Block, n int, opts ...func(*chain.Block)) []*chain.Block {
	blocks := make([]*chain.Block, 0, n)
	parent := from
	for i := 0; i < n; i++ {
		all := append([]func(*chain.Block){WithParent(parent, 8)}, opts...)
		block := BlockFixture(all...)
		blocks = append(blocks, block)
		parent = block
	}
	return blocks
}
