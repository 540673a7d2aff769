package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dposchain/node/engine/blockchain"
	"github.com/dposchain/node/engine/blockchain/fsm"
	"github.com/dposchain/node/engine/blockchain/processor"
	"github.com/dposchain/node/model/chain"
	"github.com/dposchain/node/module/slots"
)

//go:embed default-config.yml
var defaultConfig []byte

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid chain configuration")

// validate reports fields by their configuration key.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("mapstructure")
	})
	return v
}()

// Config is the configuration of the chain core. Keys match the command
// line flags.
type Config struct {
	MaxLastBlocks              int                `mapstructure:"max-last-blocks" validate:"gt=0"`
	MaxLastTransactionIDs      int                `mapstructure:"max-last-transaction-ids" validate:"gt=0"`
	ChunkMaxTransactions       int                `mapstructure:"chunk-max-transactions" validate:"gt=0"`
	ChunkMaxBlocks             int                `mapstructure:"chunk-max-blocks" validate:"gt=0"`
	MilestoneHeights           []uint64           `mapstructure:"milestone-heights"`
	QueuePauseThreshold        int                `mapstructure:"queue-pause-threshold" validate:"gte=0"`
	BlockTime                  time.Duration      `mapstructure:"block-time" validate:"gte=1s"`
	ActiveDelegates            uint64             `mapstructure:"active-delegates" validate:"gt=0"`
	Epoch                      time.Time          `mapstructure:"epoch"`
	MinTimeLeftInSlot          time.Duration      `mapstructure:"min-time-left-in-slot"`
	WakeUpInterval             time.Duration      `mapstructure:"wake-up-interval"`
	NoBlockThreshold           uint64             `mapstructure:"no-block-threshold"`
	NetworkHealthCheckEvery    uint64             `mapstructure:"network-health-check-every" validate:"gt=0"`
	MissedBlocksHealthInterval time.Duration      `mapstructure:"missed-blocks-health-interval"`
	DownloadRetries            uint64             `mapstructure:"download-retries"`
	DownloadRetryDelay         time.Duration      `mapstructure:"download-retry-delay" validate:"gt=0"`
	RollbackMaxBlockRewind     uint64             `mapstructure:"database-rollback-max-block-rewind" validate:"gt=0"`
	RollbackSteps              uint64             `mapstructure:"database-rollback-steps" validate:"gt=0"`
	NotReadyMaxAttempts        uint               `mapstructure:"not-ready-max-attempts" validate:"gt=0"`
	NotReadyRollbackBlocks     uint64             `mapstructure:"not-ready-rollback-blocks"`
	ForkRollbackMin            uint64             `mapstructure:"fork-rollback-min" validate:"ltefield=ForkRollbackMax"`
	ForkRollbackMax            uint64             `mapstructure:"fork-rollback-max"`
	NetworkStart               bool               `mapstructure:"network-start"`
	TestMode                   bool               `mapstructure:"test-mode"`
	ExceptionBlockIDs          []chain.Identifier `mapstructure:"exception-block-ids"`
}

// DefaultConfig returns the configuration embedded in the binary.
func DefaultConfig() (*Config, error) {
	return Load("", nil)
}

// Load reads the default configuration, overlays the config file at path,
// if any, and then the flags that were set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(bytes.NewReader(defaultConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		err = v.MergeInConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
	}

	if flags != nil {
		err = v.BindPFlags(flags)
		if err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var config Config
	err = v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration values against their validate tags.
// Every violation is reported.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	var result *multierror.Error
	for _, field := range invalid {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInvalidConfig, describe(field)))
	}
	return result.ErrorOrNil()
}

func describe(field validator.FieldError) string {
	switch field.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", field.Field(), field.Param(), field.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s, got %v", field.Field(), field.Param(), field.Value())
	case "ltefield":
		return fmt.Sprintf("%s (%v) must not exceed %s", field.Field(), field.Value(), flagName(field.Param()))
	default:
		return fmt.Sprintf("%s failed %s check, got %v", field.Field(), field.Tag(), field.Value())
	}
}

// flagName returns the key of the named Config field.
func flagName(fieldName string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(fieldName)
	if !ok {
		return fieldName
	}
	return f.Tag.Get("mapstructure")
}

// Slots returns the slot arithmetic of the configured network.
func (c *Config) Slots() *slots.Slots {
	return slots.New(c.Epoch, c.BlockTime, c.ActiveDelegates)
}

// BlockchainConfig returns the configuration of the chain engine.
func (c *Config) BlockchainConfig() blockchain.Config {
	return blockchain.Config{
		MaxLastBlocks:              c.MaxLastBlocks,
		MaxLastTransactionIDs:      c.MaxLastTransactionIDs,
		ChunkMaxTransactions:       c.ChunkMaxTransactions,
		ChunkMaxBlocks:             c.ChunkMaxBlocks,
		MilestoneHeights:           c.MilestoneHeights,
		WakeUpInterval:             c.WakeUpInterval,
		MissedBlocksHealthInterval: c.MissedBlocksHealthInterval,
		MinTimeLeftInSlot:          c.MinTimeLeftInSlot,
		NetworkStart:               c.NetworkStart,
		Processor: processor.Config{
			ExceptionBlockIDs:      c.ExceptionBlockIDs,
			NotReadyMaxAttempts:    c.NotReadyMaxAttempts,
			NotReadyRollbackBlocks: c.NotReadyRollbackBlocks,
		},
		Actions: fsm.Config{
			QueuePauseThreshold:     c.QueuePauseThreshold,
			NoBlockThreshold:        c.NoBlockThreshold,
			NetworkHealthCheckEvery: c.NetworkHealthCheckEvery,
			RollbackMaxBlockRewind:  c.RollbackMaxBlockRewind,
			RollbackSteps:           c.RollbackSteps,
			ForkRollbackMin:         c.ForkRollbackMin,
			ForkRollbackMax:         c.ForkRollbackMax,
			DownloadRetries:         c.DownloadRetries,
			DownloadRetryDelay:      c.DownloadRetryDelay,
			ExceptionBlockIDs:       c.ExceptionBlockIDs,
			TestMode:                c.TestMode,
		},
	}
}
