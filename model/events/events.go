package events

import (
	"github.com/dposchain/node/model/chain"
)

// Name identifies a topic on the event bus.
type Name string

const (
	// BlockReceived is published with the *chain.Block accepted for processing.
	BlockReceived Name = "block.received"
	// BlockDisregarded is published with the *chain.Block dropped because the
	// chain is not ready.
	BlockDisregarded Name = "block.disregarded"
	// StateStarted is published once the node reaches idle for the first time.
	StateStarted Name = "state.started"
	// RoundApplied is published by the round manager with the applied round
	// number (uint64).
	RoundApplied Name = "round.applied"
	// ForgerMissing is published by the round manager with the ForgerMissingPayload
	// of a delegate that did not forge in its slot.
	ForgerMissing Name = "forger.missing"
	// ForkDetected is published with the ForkDetectedPayload that triggered fork recovery.
	ForkDetected Name = "fork.detected"
)

func (n Name) String() string {
	return string(n)
}

// ForgerMissingPayload describes a missed forging slot.
type ForgerMissingPayload struct {
	Delegate chain.PublicKey
	Height   uint64
}

// ForkDetectedPayload describes the block that caused fork recovery and the
// rollback hint, if any.
type ForkDetectedPayload struct {
	Block          *chain.Block
	BlocksToRemove uint64
}
