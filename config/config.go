package config

import (
	"fmt"
	"path/filepath"

	"github.com/spacemeshos/smutil"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitbuffer/bitstream"
)

const (
	MaxItemBitSize = 64
	MinItemBitSize = 1

	MaxDumpGroup = 64

	// MaxInitialCapacity is the largest initial buffer size, in bytes.
	MaxInitialCapacity = bitstream.MaxBits / 8
)

const (
	DefaultDataDirName     = "data"
	DefaultConfigFileName  = "config.toml"
	DefaultInitialCapacity = 1 << 10
	DefaultItemBitSize     = 8
	DefaultDumpGroup       = 8
	DefaultLogLevel        = "info"
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), "bitbuffer")
	DefaultDataDir    = filepath.Join(DefaultHomeDir, DefaultDataDirName)
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)
)

type Config struct {
	DataDir string `mapstructure:"datadir"`

	// InitialCapacity is the number of bytes preallocated for owned buffers.
	InitialCapacity uint32 `mapstructure:"initial-capacity"`

	// ItemBitSize is the record width used by item files.
	ItemBitSize uint `mapstructure:"item-bits"`

	// DumpGroup splits bit dumps into groups of this many bits. 0 disables grouping.
	DumpGroup uint `mapstructure:"group"`

	LogLevel string `mapstructure:"log-level"`
}

func (cfg *Config) Validate() error {
	if cfg.ItemBitSize > MaxItemBitSize {
		return fmt.Errorf("invalid `ItemBitSize`; expected: <= %d, given: %d", MaxItemBitSize, cfg.ItemBitSize)
	}

	if cfg.ItemBitSize < MinItemBitSize {
		return fmt.Errorf("invalid `ItemBitSize`; expected: >= %d, given: %d", MinItemBitSize, cfg.ItemBitSize)
	}

	if cfg.DumpGroup > MaxDumpGroup {
		return fmt.Errorf("invalid `DumpGroup`; expected: <= %d, given: %d", MaxDumpGroup, cfg.DumpGroup)
	}

	if uint64(cfg.InitialCapacity) > MaxInitialCapacity {
		return fmt.Errorf("invalid `InitialCapacity`; expected: <= %d, given: %d", uint64(MaxInitialCapacity), cfg.InitialCapacity)
	}

	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("invalid `LogLevel`; expected: a zap level name, given: %q", cfg.LogLevel)
	}

	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (zapcore.Level, error) {
	var lvl zapcore.Level
	err := lvl.UnmarshalText([]byte(cfg.LogLevel))
	return lvl, err
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:         DefaultDataDir,
		InitialCapacity: DefaultInitialCapacity,
		ItemBitSize:     DefaultItemBitSize,
		DumpGroup:       DefaultDumpGroup,
		LogLevel:        DefaultLogLevel,
	}
}
