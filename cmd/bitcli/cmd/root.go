package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitbuffer/config"
)

const envPrefix = "BITBUF"

var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""

	configFile  string
	printConfig bool

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bitcli",
	Short: "Inspect and edit bit-packed buffers",
	Long: `bitcli packs values of arbitrary bit widths into buffers, dumps and unpacks them,
and edits snapshot files by inserting, erasing or resizing bits.

Configuration is read from the config file, from BITBUF_* environment variables
and from flags, in increasing order of priority.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		if printConfig {
			spew.Fdump(cmd.OutOrStdout(), cfg)
		}

		logger, err = buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize zap logger: %w", err)
		}
		return nil
	},
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&configFile, "config", config.DefaultConfigFile, "Path to configuration file")
	flags.BoolVar(&printConfig, "print-config", false, "Print the effective configuration")

	flags.String("datadir", defaults.DataDir, "Directory snapshots are listed from")
	flags.Uint32("initial-capacity", defaults.InitialCapacity, "Initial buffer capacity, in bytes")
	flags.Uint("item-bits", defaults.ItemBitSize, "Width of the items in item files, in bits")
	flags.Uint("group", defaults.DumpGroup, "Split bit dumps into groups of this many bits (0 disables grouping)")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	if err := loadConfigFile(smutil.GetCanonicalPath(configFile), vip); err != nil {
		return nil, err
	}

	// Flags changed on the command line take precedence over the config file.
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	loaded := config.DefaultConfig()
	if err := vip.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	loaded.DataDir = smutil.GetCanonicalPath(loaded.DataDir)

	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// loadConfigFile reads fileLocation into vip. Only the default config file may
// be missing.
func loadConfigFile(fileLocation string, vip *viper.Viper) error {
	if _, err := os.Stat(fileLocation); os.IsNotExist(err) && fileLocation == smutil.GetCanonicalPath(config.DefaultConfigFile) {
		return nil
	}

	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapCfg.Build()
}
