package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dposchain/node/cmd/util/cmd/common"
	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/storage"
)

var (
	flagDataDir string
	flagConfig  string
)

var Cmd = &cobra.Command{
	Use:   "verify-chain",
	Short: "Verify the integrity of the stored chain and print its last block",
	Run:   run,
}

func init() {
	common.InitDataDirFlag(Cmd, &flagDataDir)
	common.InitConfigFlag(Cmd, &flagConfig)
}

func run(cmd *cobra.Command, _ []string) {
	log.Info().Str("datadir", flagDataDir).Msg("verifying chain")

	db := common.InitStorage(flagDataDir)
	defer db.Close()
	blocks, _ := common.InitBlocks(db, flagConfig)

	last, verified, err := verify(blocks)
	if err != nil {
		log.Fatal().Err(err).Msg("could not verify chain")
	}
	err = common.WriteJSONLines(cmd.OutOrStdout(), []*chain.Block{last})
	if err != nil {
		log.Fatal().Err(err).Msg("could not print last block")
	}
	if !verified {
		log.Fatal().Uint64("height", last.Height).Msg("chain is corrupted, run rollback-chain to repair it")
	}
	log.Info().Uint64("height", last.Height).Str("block_id", last.ID.String()).Msg("chain verified")
}

// verify checks the stored chain and returns its last block.
func verify(blocks storage.Blocks) (*chain.Block, bool, error) {
	last, err := blocks.LastBlock()
	if err != nil {
		return nil, false, fmt.Errorf("could not load last block: %w", err)
	}
	verified, err := blocks.VerifyBlockchain()
	if err != nil {
		return nil, false, fmt.Errorf("could not verify chain: %w", err)
	}
	return last, verified, nil
}
