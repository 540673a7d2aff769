package module

import (
	"context"

	"github.com/dposchain/node/model/chain"
)

// NetworkStatus is the result of a network health probe.
type NetworkStatus struct {
	// Forked is true when the majority of peers disagree with our chain.
	Forked bool
	// BlocksToRollback is a hint of how many blocks must be removed to get
	// back to the common chain. Zero means no hint.
	BlocksToRollback uint64
}

// Network is the peer-to-peer layer as seen by the chain core.
type Network interface {
	// SyncWithNetwork downloads the blocks following fromHeight from peers.
	// An empty result without error means peers had nothing to offer.
	SyncWithNetwork(ctx context.Context, fromHeight uint64) ([]*chain.Block, error)

	// BroadcastBlock relays a block to peers.
	BroadcastBlock(ctx context.Context, block *chain.Block) error

	// CheckNetworkHealth asks peers whether our chain is on a fork.
	CheckNetworkHealth(ctx context.Context) (NetworkStatus, error)

	// RefreshPeersAfterFork drops peer state that was collected on the fork.
	RefreshPeersAfterFork(ctx context.Context) error

	// CleansePeers removes unresponsive peers.
	CleansePeers(ctx context.Context) error

	// HasPeers returns true if at least one peer is connected.
	HasPeers() bool
}
