package chain

// Disposition is the outcome of processing a single candidate block.
type Disposition int

const (
	// Accepted blocks were applied to the chain.
	Accepted Disposition = iota
	// DiscardedButCanBeBroadcasted blocks are valid but redundant or not yet
	// applicable locally; relaying them is safe.
	DiscardedButCanBeBroadcasted
	// Rejected blocks are invalid or disallowed and are never retried.
	Rejected
	// Reverted blocks failed during apply and were rolled back cleanly.
	Reverted
	// Corrupted blocks failed during apply and could not be rolled back,
	// storage and chain state may have diverged.
	Corrupted
)

func (d Disposition) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case DiscardedButCanBeBroadcasted:
		return "discarded_but_can_be_broadcasted"
	case Rejected:
		return "rejected"
	case Reverted:
		return "reverted"
	case Corrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// CanBroadcast returns true if a block with this disposition may be relayed
// to peers.
func (d Disposition) CanBroadcast() bool {
	return d == Accepted || d == DiscardedButCanBeBroadcasted
}
