package fsm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/storage"
)

// RemoveFunc removes the top n blocks of the chain.
type RemoveFunc func(ctx context.Context, n uint64) error

// RollbackIterations is the maximum number of removal rounds a rollback
// runs for the given budget.
func RollbackIterations(maxBlockRewind, steps uint64) uint64 {
	if steps == 0 {
		return 0
	}
	return (maxBlockRewind + steps - 1) / steps
}

// RollbackDatabase removes the top blocks in steps, verifying the stored
// chain after each removal, until verification passes or maxBlockRewind
// blocks were removed. Returns the number of removed blocks and whether
// the chain verified.
func RollbackDatabase(
	ctx context.Context,
	log zerolog.Logger,
	blocks storage.Blocks,
	remove RemoveFunc,
	maxBlockRewind uint64,
	steps uint64,
) (uint64, bool, error) {
	iterations := RollbackIterations(maxBlockRewind, steps)
	var removed uint64
	for i := uint64(0); i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return removed, false, err
		}

		n := steps
		if removed+n > maxBlockRewind {
			n = maxBlockRewind - removed
		}
		err := remove(ctx, n)
		if err != nil {
			return removed, false, fmt.Errorf("could not remove %d blocks: %w", n, err)
		}
		removed += n

		verified, err := blocks.VerifyBlockchain()
		if err != nil {
			return removed, false, fmt.Errorf("could not verify chain after removing %d blocks: %w", removed, err)
		}
		log.Info().
			Uint64("removed", removed).
			Uint64("iteration", i+1).
			Bool("verified", verified).
			Msg("rolled back database")
		if verified {
			return removed, true, nil
		}
	}
	return removed, false, nil
}

// StorageRemover removes top blocks from storage only, for use without a
// running chain. The genesis block is never removed and rounds above the
// new top are purged.
func StorageRemover(blocks storage.Blocks, slots *slots.Slots) RemoveFunc {
	return func(_ context.Context, n uint64) error {
		last, err := blocks.LastBlock()
		if err != nil {
			return fmt.Errorf("could not read last block: %w", err)
		}
		if n > last.Height-1 {
			n = last.Height - 1
		}
		top, err := blocks.TopBlocks(n)
		if err != nil {
			return fmt.Errorf("could not read top blocks: %w", err)
		}
		err = blocks.DeleteBlocks(top)
		if err != nil {
			return err
		}
		return blocks.DeleteRound(slots.RoundOf(last.Height-n) + 1)
	}
}
