package module

import (
	"context"

	"github.com/dposchain/node/model/chain"
)

// Verifier re-checks blocks against current wallet state. Multi-signature
// transactions can only be verified once the signer set is known, so blocks
// containing them are verified again right before they are applied.
type Verifier interface {
	VerifyMultiSignatures(ctx context.Context, block *chain.Block) (chain.Verification, error)
}
