package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/state/chainstate"
	"github.com/dposchain/node/storage"
)

// Blockchain is the part of the chain facade the processor drives.
type Blockchain interface {
	// ClearQueue drops all pending chunks.
	ClearQueue()
	// ForkBlock starts fork recovery against the block.
	ForkBlock(block *chain.Block, rollbackHint uint64)
	// ResetWakeUp re-arms the idle wake-up timer.
	ResetWakeUp()
	// BroadcastBlock relays the block to peers without blocking.
	BroadcastBlock(block *chain.Block)
	// Fail signals an unrecoverable chain state.
	Fail()
}

// Config holds the processor's tunables.
type Config struct {
	// ExceptionBlockIDs are accepted without any checks.
	ExceptionBlockIDs []chain.Identifier
	// NotReadyMaxAttempts bounds consecutive not-ready sightings of a block.
	NotReadyMaxAttempts uint
	// NotReadyRollbackBlocks is the rollback hint used once the bound is exceeded.
	NotReadyRollbackBlocks uint64
}

// Processor classifies candidate blocks and applies the accepted ones. It
// must be driven by a single goroutine.
type Processor struct {
	log        zerolog.Logger
	metrics    module.ChainMetrics
	blocks     storage.Blocks
	state      *chainstate.State
	pool       module.TransactionPool
	verifier   module.Verifier
	slots      *slots.Slots
	chain      Blockchain
	notReady   *NotReadyCounter
	exceptions map[chain.Identifier]struct{}
	config     Config
}

func New(
	log zerolog.Logger,
	metrics module.ChainMetrics,
	blocks storage.Blocks,
	state *chainstate.State,
	pool module.TransactionPool,
	verifier module.Verifier,
	slots *slots.Slots,
	blockchain Blockchain,
	config Config,
) *Processor {
	return &Processor{
		log:        log.With().Str("component", "block_processor").Logger(),
		metrics:    metrics,
		blocks:     blocks,
		state:      state,
		pool:       pool,
		verifier:   verifier,
		slots:      slots,
		chain:      blockchain,
		notReady:   NewNotReadyCounter(config.NotReadyMaxAttempts),
		exceptions: chain.IdentifierList(config.ExceptionBlockIDs).Lookup(),
		config:     config,
	}
}

func (p *Processor) isException(block *chain.Block) bool {
	_, ok := p.exceptions[block.ID]
	return ok
}

// ProcessBlocks classifies the blocks in order, stopping at the first block
// that is not accepted, and saves the accepted ones. Returns the blocks that
// were accepted and saved.
func (p *Processor) ProcessBlocks(ctx context.Context, blocks []*chain.Block) ([]*chain.Block, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() {
		p.metrics.BatchProcessed(len(blocks), time.Since(start))
	}()

	last := p.state.LastBlock()
	first := blocks[0]
	if len(blocks) > 1 && !chain.IsChained(last, first) && !p.isException(first) {
		lastHeight := uint64(0)
		if last != nil {
			lastHeight = last.Height
		}
		p.log.Info().
			Uint64("height", first.Height).
			Str("block_id", first.ID.String()).
			Uint64("last_height", lastHeight).
			Int("blocks", len(blocks)).
			Msg("discarding batch that does not chain onto the last block")
		p.chain.ClearQueue()
		p.state.ResetLastDownloadedBlock()
		return nil, nil
	}

	var (
		accepted      []*chain.Block
		lastProcessed *chain.Block
		lastVerdict   Verdict
		forkBlock     *chain.Block
		forkHint      uint64
	)
	for _, block := range blocks {
		verdict := p.Process(ctx, block)
		p.metrics.BlockProcessed(verdict.Disposition)
		lastProcessed = block
		lastVerdict = verdict

		if verdict.Fork {
			forkBlock = block
			forkHint = verdict.RollbackHint
		}
		if verdict.Disposition != chain.Accepted {
			break
		}
		accepted = append(accepted, block)
	}

	if len(accepted) > 0 {
		err := p.blocks.SaveBlocks(accepted)
		if err != nil {
			return nil, p.unwindUnsaved(accepted, err)
		}
		p.state.SetLastStoredBlockHeight(accepted[len(accepted)-1].Height)
	}

	if lastVerdict.Disposition == chain.Corrupted {
		p.log.Error().
			Uint64("height", lastProcessed.Height).
			Str("block_id", lastProcessed.ID.String()).
			Msg("chain state is corrupted, stopping")
		p.chain.Fail()
		return accepted, nil
	}

	if forkBlock != nil {
		p.chain.ForkBlock(forkBlock, forkHint)
		return accepted, nil
	}

	if lastVerdict.Broadcastable() && p.state.Started() && !p.slots.IsFutureSlot(lastProcessed.Timestamp) {
		p.chain.BroadcastBlock(lastProcessed)
	}

	return accepted, nil
}

// unwindUnsaved reverts accepted blocks whose batch could not be saved, so
// that chain state matches storage again.
func (p *Processor) unwindUnsaved(accepted []*chain.Block, saveErr error) error {
	first := accepted[0]
	p.log.Error().Err(saveErr).
		Uint64("from_height", first.Height).
		Int("blocks", len(accepted)).
		Msg("could not save accepted blocks, reverting them")

	p.chain.ClearQueue()

	var result *multierror.Error
	result = multierror.Append(result, fmt.Errorf("could not save %d blocks: %w", len(accepted), saveErr))
	reverted := true
	for i := len(accepted) - 1; i >= 0; i-- {
		err := p.blocks.RevertBlock(accepted[i])
		if err != nil {
			reverted = false
			result = multierror.Append(result, fmt.Errorf("could not revert block at height %d: %w", accepted[i].Height, err))
		}
	}

	lastHeight := first.Height - 1
	last, err := p.blocks.LastBlock()
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("could not load last saved block: %w", err))
	} else {
		p.state.SetLastBlock(last)
		p.state.SetLastStoredBlockHeight(last.Height)
		lastHeight = last.Height
	}

	err = p.blocks.DeleteRound(p.slots.RoundOf(lastHeight) + 1)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("could not delete rounds after height %d: %w", lastHeight, err))
	}
	p.state.ResetLastDownloadedBlock()

	if !reverted {
		p.log.Error().Msg("could not revert unsaved blocks, chain state is corrupted")
		p.chain.Fail()
	}
	return result.ErrorOrNil()
}

// Process classifies a single block. The checks run in a fixed order and
// the first one that applies decides the verdict.
func (p *Processor) Process(ctx context.Context, block *chain.Block) Verdict {
	log := p.log.With().
		Uint64("height", block.Height).
		Str("block_id", block.ID.String()).
		Str("generator", block.GeneratorPublicKey.String()).
		Logger()

	if p.isException(block) {
		return p.handleException(ctx, log, block)
	}
	if !p.verified(ctx, log, block) {
		return p.handleVerificationFailed(log, block)
	}
	last := p.state.LastBlock()
	if !chain.IsChained(last, block) {
		return p.handleUnchained(log, block, last)
	}
	valid, err := p.validGenerator(log, block)
	if err != nil {
		log.Error().Err(err).Msg("could not check block generator")
		p.state.ResetLastDownloadedBlock()
		return p.verdict(log, HandlerInvalidGenerator, chain.Rejected, "could not load active delegates")
	}
	if !valid {
		p.state.ResetLastDownloadedBlock()
		return p.verdict(log, HandlerInvalidGenerator, chain.Rejected, "generator is not allowed to forge in this slot")
	}
	forged, err := p.alreadyForged(log, block)
	if err != nil {
		log.Error().Err(err).Msg("could not look up forged transactions")
		p.state.ResetLastDownloadedBlock()
		return p.verdict(log, HandlerAlreadyForged, chain.Rejected, "could not check forged transactions")
	}
	if forged {
		p.state.ResetLastDownloadedBlock()
		return p.verdict(log, HandlerAlreadyForged, chain.DiscardedButCanBeBroadcasted, "block contains already forged transactions")
	}
	return p.accept(ctx, log, block, HandlerAccept)
}

func (p *Processor) verdict(log zerolog.Logger, handler Handler, disposition chain.Disposition, reason string) Verdict {
	event := log.Debug()
	if disposition == chain.Rejected {
		event = log.Warn()
	}
	event.Str("handler", string(handler)).
		Str("disposition", disposition.String()).
		Str("reason", reason).
		Msg("block processed")
	return Verdict{Disposition: disposition, Handler: handler}
}

func (p *Processor) handleException(ctx context.Context, log zerolog.Logger, block *chain.Block) Verdict {
	found, err := p.blocks.HasBlock(block.ID)
	if err != nil {
		log.Error().Err(err).Msg("could not check exception block")
		return p.verdict(log, HandlerException, chain.Rejected, "could not check storage")
	}
	if found {
		return p.verdict(log, HandlerException, chain.Rejected, "exception block already in storage")
	}
	log.Warn().Msg("accepting exception block without checks")
	return p.accept(ctx, log, block, HandlerException)
}

// verified re-verifies blocks with multi-signature transactions against
// current wallet state before reading the verification flag.
func (p *Processor) verified(ctx context.Context, log zerolog.Logger, block *chain.Block) bool {
	verification := block.Verification
	if verification.ContainsMultiSignatures {
		reverified, err := p.verifier.VerifyMultiSignatures(ctx, block)
		if err != nil {
			log.Warn().Err(err).Msg("could not verify multi-signature transactions")
			return false
		}
		verification = reverified
	}
	if !verification.Verified {
		log.Warn().Strs("errors", verification.Errors).Msg("block failed verification")
	}
	return verification.Verified
}

func (p *Processor) handleVerificationFailed(log zerolog.Logger, block *chain.Block) Verdict {
	p.pool.PurgeSendersWithInvalidTransactions(block)
	p.state.ResetLastDownloadedBlock()
	return p.verdict(log, HandlerVerificationFailed, chain.Rejected, "verification failed")
}

// validGenerator checks the block's generator against the delegate
// scheduled for its slot. A round without delegates allows any generator.
func (p *Processor) validGenerator(log zerolog.Logger, block *chain.Block) (bool, error) {
	round := p.slots.RoundOf(block.Height)
	delegates, err := p.blocks.ActiveDelegates(round)
	if err != nil {
		return false, fmt.Errorf("could not load active delegates of round %d: %w", round, err)
	}
	forger, ok := p.slots.Forger(delegates, block.Timestamp)
	if !ok {
		log.Debug().Uint64("round", round).Msg("no delegates for round, skipping generator check")
		return true, nil
	}
	if forger != block.GeneratorPublicKey {
		log.Warn().Str("expected_generator", forger.String()).Msg("generator not allowed to forge block")
		return false, nil
	}
	return true, nil
}

// alreadyForged checks the block's transactions against saved blocks and
// against applied blocks that were not saved yet.
func (p *Processor) alreadyForged(log zerolog.Logger, block *chain.Block) (bool, error) {
	if block.NumberOfTransactions() == 0 {
		return false, nil
	}
	ids := block.TransactionIDs()
	forged, err := p.blocks.ForgedTransactionIDs(ids)
	if err != nil {
		return false, err
	}

	lookup := ids.Lookup()
	stored := p.state.LastStoredBlockHeight()
	for _, unsaved := range p.state.Tail().LastBlocks() {
		if unsaved.Height <= stored {
			break
		}
		for _, tx := range unsaved.Transactions {
			if _, ok := lookup[tx.ID]; ok {
				forged = append(forged, tx.ID)
			}
		}
	}

	if len(forged) > 0 {
		log.Warn().Strs("transactions", forged.Strings()).Msg("block contains already forged transactions")
		return true, nil
	}
	return false, nil
}

// accept applies the block to chain state and reconciles the transaction
// pool with it. A block storage refuses to apply is reverted, since the apply
// may have been partially persisted.
func (p *Processor) accept(ctx context.Context, log zerolog.Logger, block *chain.Block, handler Handler) Verdict {
	err := p.blocks.ApplyBlock(block)
	if err != nil {
		p.state.ResetLastDownloadedBlock()
		if errors.Is(err, storage.ErrNotContiguous) {
			log.Warn().Err(err).Msg("refused new block")
			return p.verdict(log, handler, chain.Rejected, "block does not extend the applied chain")
		}

		log.Warn().Err(err).Msg("could not apply block, reverting it")
		err = p.blocks.RevertBlock(block)
		if err != nil {
			log.Error().Err(err).Msg("could not revert block, chain state is corrupted")
			return Verdict{Disposition: chain.Corrupted, Handler: handler}
		}
		return p.verdict(log, handler, chain.Reverted, "block reverted after failed apply")
	}

	p.state.SetLastBlock(block)
	p.state.ClearForkedBlockAt(block.Height)
	p.metrics.LastBlockHeight(block.Height)
	p.reconcilePool(ctx, log, block)
	p.chain.ResetWakeUp()

	log.Debug().Str("handler", string(handler)).Msg("block accepted")
	return Verdict{Disposition: chain.Accepted, Handler: handler}
}

// reconcilePool removes the block's transactions from the pool. When that
// fails the pool is rebuilt from wallet state. Pool failures never fail the
// block.
func (p *Processor) reconcilePool(ctx context.Context, log zerolog.Logger, block *chain.Block) {
	err := p.pool.AcceptChainedBlock(ctx, block)
	if err == nil {
		return
	}
	log.Warn().Err(err).Msg("could not apply block to transaction pool, rebuilding pool")

	backup := p.pool.GetAllTransactions()
	p.pool.Flush()
	err = p.pool.ResetWalletState(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not reset pool wallet state")
	}
	err = p.pool.ReaddTransactions(ctx, backup)
	if err != nil {
		log.Warn().Err(err).Int("transactions", len(backup)).Msg("could not re-add transactions to pool")
	}
}
