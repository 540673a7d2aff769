package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	readBlocks "github.com/dposchain/node/cmd/util/cmd/read-blocks/cmd"
	rollbackChain "github.com/dposchain/node/cmd/util/cmd/rollback-chain/cmd"
	verifyChain "github.com/dposchain/node/cmd/util/cmd/verify-chain/cmd"
)

var (
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "util",
	Short: "Utilities for inspecting and repairing a node's chain database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "loglevel", "l", "info", "log level (panic, fatal, error, warn, info, debug)")

	addCommands()

	cobra.OnInitialize(initConfig)
}

func addCommands() {
	rootCmd.AddCommand(verifyChain.Cmd)
	rootCmd.AddCommand(rollbackChain.Cmd)
	rootCmd.AddCommand(readBlocks.Cmd)
}

func initConfig() {
	viper.AutomaticEnv()
}

func setLogLevel() {
	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("loglevel", flagLogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
}
