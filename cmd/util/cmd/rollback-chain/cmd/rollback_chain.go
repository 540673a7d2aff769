package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dposchain/node/cmd/util/cmd/common"
	"github.com/dposchain/node/engine/blockchain/fsm"
	"github.com/dposchain/node/module/slots"
	"github.com/dposchain/node/storage"
)

var (
	flagDataDir        string
	flagConfig         string
	flagMaxBlockRewind uint64
	flagSteps          uint64
)

var Cmd = &cobra.Command{
	Use:   "rollback-chain",
	Short: "Remove blocks from the top of the stored chain until it verifies again",
	Long: `Remove blocks from the top of the stored chain in steps, verifying the chain after
every step, until it verifies or the maximum number of blocks was removed. The
genesis block is never removed. The node must be stopped.`,
	Run: run,
}

func init() {
	common.InitDataDirFlag(Cmd, &flagDataDir)
	common.InitConfigFlag(Cmd, &flagConfig)

	Cmd.Flags().Uint64Var(&flagMaxBlockRewind, "max-block-rewind", 10000,
		"maximum number of blocks to remove")
	Cmd.Flags().Uint64Var(&flagSteps, "steps", 1000,
		"number of blocks removed before the chain is verified again")
}

func run(*cobra.Command, []string) {
	log.Info().
		Str("datadir", flagDataDir).
		Uint64("max_block_rewind", flagMaxBlockRewind).
		Uint64("steps", flagSteps).
		Msg("flags")

	if flagSteps == 0 {
		log.Fatal().Msg("steps must be above 0")
	}

	db := common.InitStorage(flagDataDir)
	defer db.Close()
	blocks, conf := common.InitBlocks(db, flagConfig)

	removed, err := rollback(context.Background(), log.Logger, blocks, conf.Slots(), flagMaxBlockRewind, flagSteps)
	if err != nil {
		log.Fatal().Err(err).Uint64("removed", removed).Msg("could not restore chain integrity")
	}
	log.Info().Uint64("removed", removed).Msg("chain integrity restored")
}

// rollback removes blocks until the chain verifies. Returns the number of
// removed blocks.
func rollback(ctx context.Context, log zerolog.Logger, blocks storage.Blocks, slots *slots.Slots, maxBlockRewind uint64, steps uint64) (uint64, error) {
	verified, err := blocks.VerifyBlockchain()
	if err != nil {
		return 0, fmt.Errorf("could not verify chain: %w", err)
	}
	if verified {
		log.Info().Msg("chain is intact, nothing to remove")
		return 0, nil
	}

	removed, verified, err := fsm.RollbackDatabase(ctx, log, blocks, fsm.StorageRemover(blocks, slots), maxBlockRewind, steps)
	if err != nil {
		return removed, err
	}
	if !verified {
		return removed, fmt.Errorf("chain does not verify after removing %d blocks", removed)
	}
	return removed, nil
}
