package chain

// Verification is the outcome of the structural and cryptographic checks a
// block goes through before it reaches the chain core.
type Verification struct {
	Verified                bool
	ContainsMultiSignatures bool
	Errors                  []string
}

// Block is a candidate or accepted block. Blocks are produced and verified
// elsewhere; the chain core only reads them.
type Block struct {
	ID                 Identifier
	Height             uint64
	PreviousBlockID    Identifier
	Timestamp          uint64 // seconds since the network epoch, slot aligned
	GeneratorPublicKey PublicKey
	Transactions       []*Transaction
	Verification       Verification
}

// NumberOfTransactions returns the number of transactions in the payload.
func (b *Block) NumberOfTransactions() int {
	return len(b.Transactions)
}

// TransactionIDs returns the ids of the block's transactions in block order.
func (b *Block) TransactionIDs() IdentifierList {
	ids := make(IdentifierList, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		ids = append(ids, tx.ID)
	}
	return ids
}

// IsChained returns true if next correctly extends previous: it references
// previous as its parent, sits exactly one height above it and has a later
// timestamp.
func IsChained(previous *Block, next *Block) bool {
	if previous == nil || next == nil {
		return false
	}
	return next.PreviousBlockID == previous.ID &&
		next.Height == previous.Height+1 &&
		next.Timestamp > previous.Timestamp
}

// Heights returns the heights of the given blocks, used for logging batches.
func Heights(blocks []*Block) []uint64 {
	heights := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		heights = append(heights, b.Height)
	}
	return heights
}
