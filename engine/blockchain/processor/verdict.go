package processor

import (
	"github.com/dposchain/node/model/chain"
)

// UnchainedStatus classifies a block that does not extend the last block.
type UnchainedStatus int

const (
	// NotUnchained marks verdicts of blocks that chained onto the last block.
	NotUnchained UnchainedStatus = iota
	NotReadyToAcceptNewHeight
	ExceededNotReadyToAcceptNewHeightMaxAttempts
	AlreadyInBlockchain
	EqualToLastBlock
	InvalidTimestamp
	DoubleForging
	GeneratorMismatch
)

func (s UnchainedStatus) String() string {
	switch s {
	case NotUnchained:
		return "chained"
	case NotReadyToAcceptNewHeight:
		return "not_ready_to_accept_new_height"
	case ExceededNotReadyToAcceptNewHeightMaxAttempts:
		return "exceeded_not_ready_to_accept_new_height_max_attempts"
	case AlreadyInBlockchain:
		return "already_in_blockchain"
	case EqualToLastBlock:
		return "equal_to_last_block"
	case InvalidTimestamp:
		return "invalid_timestamp"
	case DoubleForging:
		return "double_forging"
	case GeneratorMismatch:
		return "generator_mismatch"
	default:
		return "unknown"
	}
}

// Handler names the classification step that decided a verdict.
type Handler string

const (
	HandlerException          Handler = "exception"
	HandlerVerificationFailed Handler = "verification_failed"
	HandlerUnchained          Handler = "unchained"
	HandlerInvalidGenerator   Handler = "invalid_generator"
	HandlerAlreadyForged      Handler = "already_forged"
	HandlerAccept             Handler = "accept"
)

// Verdict is the outcome of classifying one block.
type Verdict struct {
	Disposition chain.Disposition
	Handler     Handler
	// Unchained is set by the unchained handler only.
	Unchained UnchainedStatus
	// Fork requests fork recovery against the classified block.
	Fork bool
	// RollbackHint is the number of blocks fork recovery should remove, 0
	// lets recovery pick.
	RollbackHint uint64
}

// Broadcastable returns true if the classified block may be relayed. A
// block equal to our last block was relayed when we accepted it.
func (v Verdict) Broadcastable() bool {
	return v.Disposition.CanBroadcast() && !v.Fork && v.Unchained != EqualToLastBlock
}
