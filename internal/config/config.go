// Package config provides configuration types and defaults for curio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/tracing"
)

// ConfigDirName is the per-project configuration directory.
const ConfigDirName = ".curio"

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.yaml"

// LedgerFileName is the default ledger database file name.
const LedgerFileName = "ledger.db"

// Config holds all configuration options for curio.
type Config struct {
	Registry RegistryConfig  `mapstructure:"registry"`
	Ledger   LedgerConfig    `mapstructure:"ledger"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
	Debug    bool            `mapstructure:"debug"`
	Flags    map[string]bool `mapstructure:"flags"`
}

// RegistryConfig identifies the collection the ledger tracks. Name and
// symbol are fixed when the ledger is first created; changing them here has
// no effect on an existing ledger.
type RegistryConfig struct {
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
}

// LedgerConfig holds ledger storage configuration.
type LedgerConfig struct {
	// Path is the sqlite database file. Relative paths resolve against the
	// working directory.
	Path string `mapstructure:"path"`
}

// CacheConfig holds token lookup cache configuration.
type CacheConfig struct {
	// Disabled bypasses the cache entirely.
	Disabled bool `mapstructure:"disabled"`

	// TTL is how long a token view stays cached, as a Go duration string.
	// Default: "5m"
	TTL string `mapstructure:"ttl"`
}

// ParseTTL returns the configured TTL, falling back to fallback when unset
// or invalid.
func (c CacheConfig) ParseTTL(fallback time.Duration) time.Duration {
	if c.TTL == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		log.Warn(log.CatConfig, "invalid cache ttl, using fallback", "ttl", c.TTL, "fallback", fallback)
		return fallback
	}
	return d
}

// DefaultLedgerPath returns the default ledger location relative to the
// working directory.
func DefaultLedgerPath() string {
	return filepath.Join(ConfigDirName, LedgerFileName)
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/curio/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "curio", "traces", "traces.jsonl")
}

// UserConfigPath returns the user-level config file location.
// Returns ~/.config/curio/config.yaml or empty string if home dir unavailable.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "curio", ConfigFileName)
}

// ProjectConfigPath returns the project-level config file location relative
// to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(ConfigDirName, ConfigFileName)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Registry: RegistryConfig{
			Name:   "Curio Registry",
			Symbol: "CURIO",
		},
		Ledger: LedgerConfig{
			Path: DefaultLedgerPath(),
		},
		Cache: CacheConfig{
			TTL: "5m",
		},
		Tracing: tracing.Config{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// ValidateRegistry checks registry configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateRegistry(reg RegistryConfig) error {
	if len(reg.Symbol) > 16 {
		return fmt.Errorf("registry.symbol must be at most 16 characters, got %q", reg.Symbol)
	}
	return nil
}

// ValidateCache checks cache configuration for errors.
func ValidateCache(cache CacheConfig) error {
	if cache.TTL == "" {
		return nil
	}
	d, err := time.ParseDuration(cache.TTL)
	if err != nil {
		return fmt.Errorf("cache.ttl must be a duration like \"5m\", got %q", cache.TTL)
	}
	if d <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %q", cache.TTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(cfg tracing.Config) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if cfg.SampleRate < 0.0 || cfg.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", cfg.SampleRate)
	}

	// Validate Exporter is a valid option
	if cfg.Exporter != "" {
		switch cfg.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", cfg.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if cfg.Enabled {
		if cfg.Exporter == "file" && cfg.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if cfg.Exporter == "otlp" && cfg.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the full configuration for errors.
func (c Config) Validate() error {
	if err := ValidateRegistry(c.Registry); err != nil {
		return err
	}
	if err := ValidateCache(c.Cache); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Curio Configuration

# Registry identity. Fixed when the ledger is first created; edits here do
# not rename an existing ledger.
registry:
  name: Curio Registry
  symbol: CURIO

# Ledger storage
ledger:
  path: .curio/ledger.db

# Token lookup cache
cache:
  # disabled: true  # Bypass the cache entirely
  ttl: 5m           # How long token views stay cached

# Verbose logging to .curio/debug.log (same as --debug)
# debug: true

# Feature flags for controlled rollout
# flags:
#   cache-refresh: true    # Extend cache TTL on every token read
#   strict-accounts: true  # Reject account names with whitespace or control characters

# Distributed tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/curio/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
