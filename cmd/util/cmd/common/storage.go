package common

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dposchain/node/config"
	bstorage "github.com/dposchain/node/storage/badger"
)

// DefaultCacheSize is the block cache size of the offline tools.
const DefaultCacheSize = 1000

// InitDataDirFlag registers the --datadir flag on the command.
func InitDataDirFlag(cmd *cobra.Command, dataDir *string) {
	cmd.PersistentFlags().StringVarP(dataDir, "datadir", "d", "/var/dpos/data/chain", "directory that stores the chain database")
}

// InitConfigFlag registers the --config flag on the command.
func InitConfigFlag(cmd *cobra.Command, path *string) {
	cmd.PersistentFlags().StringVar(path, "config", "", "chain config file overriding the defaults, e.g. the network's epoch and delegates")
}

// InitStorage opens the badger database in dir, logging fatally on failure.
func InitStorage(dir string) *badger.DB {
	db, err := OpenStorage(dir)
	if err != nil {
		log.Fatal().Err(err).Str("datadir", dir).Msg("could not open chain database")
	}
	return db
}

// OpenStorage opens the badger database in dir. The database must exist.
func OpenStorage(dir string) (*badger.DB, error) {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database at %s: %w", dir, err)
	}
	return db, nil
}

// InitBlocks returns the chain storage on top of db, using the slot and
// round parameters of the chain config at configPath.
func InitBlocks(db *badger.DB, configPath string) (*bstorage.Blocks, *config.Config) {
	conf, err := config.Load(configPath, nil)
	if err != nil {
		log.Fatal().Err(err).Str("config", configPath).Msg("could not load chain config")
	}
	return bstorage.NewBlocks(db, conf.Slots(), DefaultCacheSize), conf
}
