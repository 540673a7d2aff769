package cmd

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dposchain/node/cmd/util/cmd/common"
	"github.com/dposchain/node/storage"
)

var (
	flagDataDir string
	flagConfig  string
	flagFrom    uint64
	flagCount   uint64
)

var Cmd = &cobra.Command{
	Use:   "read-blocks",
	Short: "Print stored blocks as JSON lines",
	Run:   run,
}

func init() {
	common.InitDataDirFlag(Cmd, &flagDataDir)
	common.InitConfigFlag(Cmd, &flagConfig)

	Cmd.Flags().Uint64Var(&flagFrom, "from", 1, "height of the first block to print")
	Cmd.Flags().Uint64Var(&flagCount, "count", 10, "number of blocks to print")
}

func run(cmd *cobra.Command, _ []string) {
	db := common.InitStorage(flagDataDir)
	defer db.Close()
	blocks, _ := common.InitBlocks(db, flagConfig)

	err := readBlocks(cmd.OutOrStdout(), blocks, flagFrom, flagCount)
	if err != nil {
		log.Fatal().Err(err).Uint64("from", flagFrom).Uint64("count", flagCount).Msg("could not read blocks")
	}
}

func readBlocks(w io.Writer, blocks storage.Blocks, from uint64, count uint64) error {
	if from == 0 {
		return fmt.Errorf("heights start at 1")
	}
	stored, err := blocks.Blocks(from, count)
	if err != nil {
		return fmt.Errorf("could not read %d blocks from height %d: %w", count, from, err)
	}
	return common.WriteJSONLines(w, stored)
}
