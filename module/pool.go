package module

import (
	"context"

	"github.com/dposchain/node/model/chain"
)

// TransactionPool is the unconfirmed-transaction pool. The chain core keeps
// it consistent with the applied chain but does not own its admission rules.
type TransactionPool interface {
	// AcceptChainedBlock removes the block's transactions from the pool and
	// updates pool wallets after the block was applied.
	AcceptChainedBlock(ctx context.Context, block *chain.Block) error

	// ReaddTransactions re-admits transactions, e.g. from reverted blocks.
	ReaddTransactions(ctx context.Context, txs []*chain.Transaction) error

	// GetAllTransactions returns every transaction currently held.
	GetAllTransactions() []*chain.Transaction

	// Flush drops every transaction.
	Flush()

	// ResetWalletState rebuilds the pool's wallet state from the chain.
	ResetWalletState(ctx context.Context) error

	// PurgeSendersWithInvalidTransactions removes pool transactions of senders
	// whose transactions in the given block failed verification.
	PurgeSendersWithInvalidTransactions(block *chain.Block)
}
