package chain

// Transaction is the part of a transaction the chain core needs: its id for
// duplicate detection and its sender for pool reconciliation.
type Transaction struct {
	ID              Identifier
	SenderPublicKey PublicKey
	Nonce           uint64
	MultiSignature  bool
	Payload         []byte
}

// TransactionIDs returns the ids of the given transactions.
func TransactionIDs(txs []*Transaction) IdentifierList {
	ids := make(IdentifierList, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	return ids
}
