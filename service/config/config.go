package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/brojonat/validator-pda/service/deposit"
	svcsolana "github.com/brojonat/validator-pda/service/solana"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

const (
	DefaultNetwork   = "mainnet-beta"
	DefaultLogLevel  = "error"
	DefaultLogFormat = "json"
	DefaultTimeout   = 60 * time.Second
)

// Config holds all application configuration loaded from environment variables.
// CLI flags override individual fields after Load.
type Config struct {
	// Solana configuration
	Network string
	RPCURLs []string

	// Deposit namespace
	ProgramID string
	Seed      string

	// Optional integrations
	NATSURL        string
	PushgatewayURL string

	// Logging
	LogLevel  string
	LogFormat string

	Timeout time.Duration
}

// Load reads configuration from environment variables (and a .env file in
// the working directory, if present) and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that apply overrides first.
// The returned config is never nil; a malformed TIMEOUT is reported as an
// error and leaves the default timeout in place.
func Read() (*Config, error) {
	// Missing .env is fine; existing env vars win.
	_ = godotenv.Load()

	cfg := &Config{Timeout: DefaultTimeout}

	cfg.Network = getEnvOrDefault("SOLANA_NETWORK", DefaultNetwork)
	cfg.RPCURLs = SplitList(os.Getenv("SOLANA_RPC_URL"))

	cfg.ProgramID = getEnvOrDefault("DEPOSIT_PROGRAM_ID", deposit.DefaultProgramID.String())
	cfg.Seed = getEnvOrDefault("DEPOSIT_SEED", string(deposit.DefaultSeed))

	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.PushgatewayURL = os.Getenv("METRICS_PUSHGATEWAY_URL")

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", DefaultLogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", DefaultLogFormat)

	timeout, err := parseDuration("TIMEOUT", DefaultTimeout.String())
	if err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.Timeout = timeout

	return cfg, nil
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if len(c.RPCURLs) == 0 {
		if _, err := svcsolana.RPCURLForNetwork(c.Network); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		errs = append(errs, fmt.Errorf("invalid program id %q: %w", c.ProgramID, err))
	}

	if c.Seed == "" {
		errs = append(errs, fmt.Errorf("seed is required"))
	} else if len(c.Seed) > solana.MaxSeedLength {
		errs = append(errs, fmt.Errorf("seed must be at most %d bytes", solana.MaxSeedLength))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.LogFormat))
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// Endpoints returns the RPC endpoints to choose from. Explicit URLs win over
// the network preset.
func (c *Config) Endpoints() ([]string, error) {
	if len(c.RPCURLs) > 0 {
		return c.RPCURLs, nil
	}
	u, err := svcsolana.RPCURLForNetwork(c.Network)
	if err != nil {
		return nil, err
	}
	return []string{u}, nil
}

// Derivation builds the deposit derivation namespace.
func (c *Config) Derivation() (deposit.DerivationConfig, error) {
	programID, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return deposit.DerivationConfig{}, fmt.Errorf("invalid program id %q: %w", c.ProgramID, err)
	}
	cfg := deposit.DerivationConfig{
		ProgramID: programID,
		Seed:      []byte(c.Seed),
	}
	return cfg, cfg.Validate()
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SplitList splits a comma-separated value, dropping empty entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
