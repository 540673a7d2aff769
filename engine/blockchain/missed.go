package blockchain

import (
	"github.com/hashicorp/go-multierror"

	"github.com/dposchain/node/engine/blockchain/fsm"
	"github.com/dposchain/node/model/events"
)

// missedBlocksProbability is the chance of probing the network once enough
// forgers missed their slot in a row.
const missedBlocksProbability = 0.8

func (e *Engine) subscribe() error {
	err := e.bus.SubscribeAsync(events.ForgerMissing, e.onForgerMissing)
	if err != nil {
		return err
	}
	return e.bus.Subscribe(events.RoundApplied, e.onRoundApplied)
}

func (e *Engine) unsubscribe() {
	var errs *multierror.Error
	errs = multierror.Append(errs, e.bus.Unsubscribe(events.ForgerMissing, e.onForgerMissing))
	errs = multierror.Append(errs, e.bus.Unsubscribe(events.RoundApplied, e.onRoundApplied))
	if err := errs.ErrorOrNil(); err != nil {
		e.log.Warn().Err(err).Msg("could not unsubscribe from chain events")
	}
}

// missedBlocksThreshold is the number of consecutive missed slots after
// which the network is probed for a fork.
func (e *Engine) missedBlocksThreshold() uint64 {
	third := e.slots.ActiveDelegates() / 3
	if third <= 1 {
		return 1
	}
	return third - 1
}

// handleForgerMissing probes the network once enough forgers missed their
// slot, as a long streak hints that the node is on a fork. Probes are
// throttled.
func (e *Engine) handleForgerMissing(payload any) {
	if e.IsStopped() {
		return
	}
	missed := e.state.IncMissedBlocks()
	lg := e.log.With().Uint64("missed_blocks", missed).Logger()
	if p, ok := payload.(events.ForgerMissingPayload); ok {
		lg = lg.With().Str("delegate", p.Delegate.String()).Uint64("height", p.Height).Logger()
	}
	lg.Debug().Msg("forger missed its slot")

	if missed < e.missedBlocksThreshold() || e.draw() > missedBlocksProbability {
		return
	}
	e.state.ResetMissedBlocks()

	now := e.now()
	if now.Sub(e.lastHealthCheck) < e.config.MissedBlocksHealthInterval {
		lg.Debug().Msg("skipping network health check, checked recently")
		return
	}
	e.lastHealthCheck = now

	status, err := e.network.CheckNetworkHealth(e.ctx)
	if err != nil {
		lg.Warn().Err(err).Msg("could not check network health")
		return
	}
	if !status.Forked {
		return
	}
	lg.Warn().Uint64("rollback_hint", status.BlocksToRollback).Msg("network reports fork after missed blocks")
	if status.BlocksToRollback > 0 {
		e.state.SetNumberOfBlocksToRollback(status.BlocksToRollback)
	}
	e.machine.Dispatch(fsm.EventFork)
}

func (e *Engine) handleRoundApplied(any) {
	e.state.ResetMissedBlocks()
}
