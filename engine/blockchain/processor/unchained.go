package processor

import (
	"github.com/rs/zerolog"

	"github.com/dposchain/node/model/chain"
)

// handleUnchained classifies a block that does not extend the last block
// by comparing its height with the last block's.
func (p *Processor) handleUnchained(log zerolog.Logger, block *chain.Block, last *chain.Block) Verdict {
	p.chain.ClearQueue()

	status := p.unchainedStatus(log, block, last)
	verdict := Verdict{Handler: HandlerUnchained, Unchained: status}

	switch status {
	case DoubleForging:
		verdict.Disposition = chain.Rejected
		verdict.Fork = true
	case ExceededNotReadyToAcceptNewHeightMaxAttempts:
		verdict.Disposition = chain.DiscardedButCanBeBroadcasted
		verdict.Fork = true
		verdict.RollbackHint = p.config.NotReadyRollbackBlocks
		p.state.ResetLastDownloadedBlock()
	case InvalidTimestamp:
		verdict.Disposition = chain.Rejected
	default:
		verdict.Disposition = chain.DiscardedButCanBeBroadcasted
	}

	event := log.Debug()
	if verdict.Disposition == chain.Rejected || verdict.Fork {
		event = log.Warn()
	}
	event.Str("handler", string(HandlerUnchained)).
		Str("disposition", verdict.Disposition.String()).
		Str("reason", status.String()).
		Bool("fork", verdict.Fork).
		Msg("block processed")
	return verdict
}

func (p *Processor) unchainedStatus(log zerolog.Logger, block *chain.Block, last *chain.Block) UnchainedStatus {
	if last == nil {
		log.Debug().Msg("chain has no last block, not ready to accept blocks")
		return NotReadyToAcceptNewHeight
	}

	switch {
	case block.Height > last.Height+1:
		log.Debug().Uint64("last_height", last.Height).Msg("chain not ready to accept new block at this height")
		if p.notReady.Increment(block) {
			log.Warn().Msg("block was not chainable too many times, forcing fork recovery")
			return ExceededNotReadyToAcceptNewHeightMaxAttempts
		}
		return NotReadyToAcceptNewHeight

	case block.Height < last.Height:
		return AlreadyInBlockchain

	case block.Height == last.Height && block.ID == last.ID:
		return EqualToLastBlock

	case block.Timestamp < last.Timestamp:
		return InvalidTimestamp
	}

	delegates, err := p.blocks.ActiveDelegates(p.slots.RoundOf(block.Height))
	if err != nil {
		log.Warn().Err(err).Msg("could not load active delegates")
	}
	for _, delegate := range delegates {
		if delegate == block.GeneratorPublicKey {
			log.Warn().Str("last_block_id", last.ID.String()).Msg("detected double forging")
			return DoubleForging
		}
	}
	return GeneratorMismatch
}
