// Package cmd implements the curio command line interface.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/curioledger/curio/internal/config"
	"github.com/curioledger/curio/internal/flags"
	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/presentation"
	"github.com/curioledger/curio/internal/registry/domain"
)

var (
	version      = "dev"
	cfgFile      string
	cfg          config.Config
	featureFlags *flags.Registry

	flagDebug bool
	flagJSON  bool
	flagAs    string
)

var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "A deterministic registry for non-fungible tokens",
	Long: `Curio tracks uniquely identified tokens in a local sqlite ledger.

Each token has exactly one owner. Owners can transfer tokens, delegate a
single token to another account, or grant an operator blanket rights over
everything they hold. Every successful mutation is journaled and can be
inspected or followed with the events command.

Mutating commands act on behalf of an account given with --as:

  curio mint alice
  curio transfer alice bob 1 --as alice
  curio approve bob 2 --as alice
  curio burn 2 --as bob`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .curio/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"write debug logs to .curio/debug.log")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false,
		"emit JSON instead of aligned text")
	rootCmd.PersistentFlags().StringVar(&flagAs, "as", "",
		"account performing the operation")
	rootCmd.PersistentFlags().String("ledger", "",
		"path to the ledger database")
}

func initConfig() {
	// Bind flags to viper
	_ = viper.BindPFlag("ledger.path", rootCmd.PersistentFlags().Lookup("ledger"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	defaults := config.Defaults()
	viper.SetDefault("registry.name", defaults.Registry.Name)
	viper.SetDefault("registry.symbol", defaults.Registry.Symbol)
	viper.SetDefault("ledger.path", defaults.Ledger.Path)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .curio/config.yaml (current directory)
		// 2. ~/.config/curio/config.yaml (user config)
		if _, err := os.Stat(config.ProjectConfigPath()); err == nil {
			viper.SetConfigFile(config.ProjectConfigPath())
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "curio"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		// Missing config is fine, defaults apply. The init command writes
		// a starter file.
	}

	_ = viper.Unmarshal(&cfg)
	featureFlags = flags.New(cfg.Flags)

	if cfg.Debug || os.Getenv("CURIO_DEBUG") != "" {
		setupDebugLog()
	}
}

func setupDebugLog() {
	dir := config.ConfigDirName
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return
	}
	if _, err := log.Init(filepath.Join(dir, "debug.log")); err == nil {
		log.SetEnabled(true)
	}
}

// formatter returns the output formatter for the current invocation.
func formatter(cmd *cobra.Command) *presentation.Formatter {
	return presentation.NewFormatter(cmd.OutOrStdout(), flagJSON)
}

// caller resolves the --as flag for mutating commands.
func caller() (domain.Address, error) {
	if flagAs == "" {
		return domain.ZeroAddress, fmt.Errorf("--as is required: specify the account performing the operation")
	}
	return parseAccount(flagAs)
}

// parseAccount parses an account name, applying the strict-accounts flag
// when it is enabled.
func parseAccount(arg string) (domain.Address, error) {
	if arg == "" {
		return domain.ZeroAddress, domain.ErrInvalidAccount
	}
	if featureFlags.Enabled(flags.FlagStrictAccounts) {
		for _, r := range arg {
			if r <= ' ' || r > '~' {
				return domain.ZeroAddress, fmt.Errorf("invalid account %q: strict accounts allow only printable ASCII without spaces", arg)
			}
		}
	}
	return domain.Address(arg), nil
}

// printJSON emits v as indented JSON on the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseTokenID parses a positional token id argument.
func parseTokenID(arg string) (domain.TokenID, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid token id %q: expected a positive integer", arg)
	}
	return domain.TokenID(id), nil
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
