package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/brojonat/validator-pda/service/config"
	"github.com/urfave/cli/v2"
)

var operations = []string{"pda-address", "pda-balance", "pda-fund-address", "deposit-events"}

func newApp(d deps, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:  "validator-pda",
		Usage: "Derive, inspect and fund Solana validator deposit PDAs",
		Description: `Derives the deposit PDA of a validator identity under the deposit program
and optionally reports its balance or funds it from a local keypair.

Funding only happens for validators currently visible in gossip.

Example: validator-pda pda-address FjYEr2UCeFzNfAKiFrbhG34Zv8LxbmfHYAFhAfc7SLQL`,
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		ArgsUsage: "OPERATION VALIDATOR_ADDRESS [KEYPAIR_PATH] [AMOUNT_SOL]",
		Writer:    stdout,
		ErrWriter: stderr,

		// Errors are reported by run.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			pdaAddressCommand(d),
			pdaBalanceCommand(d),
			pdaFundAddressCommand(d),
			depositEventsCommand(d),
			versionCommand(),
		},
		// Reached when the first argument is not a known command.
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("please provide operation name and validator address as parameters")
			}
			operation := c.Args().First()
			if strings.TrimSpace(operation) == "" {
				return fmt.Errorf("operation parameter cannot be empty")
			}
			return fmt.Errorf("unknown operation %q, supported operations: %s",
				operation, strings.Join(operations, ", "))
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC URL; a comma-separated list picks one at random",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "network",
				Usage:   "Solana cluster used when no RPC URL is set (mainnet-beta, testnet, devnet, localnet)",
				EnvVars: []string{"SOLANA_NETWORK"},
				Value:   config.DefaultNetwork,
			},
			&cli.StringFlag{
				Name:    "program-id",
				Usage:   "Deposit program id",
				EnvVars: []string{"DEPOSIT_PROGRAM_ID"},
			},
			&cli.StringFlag{
				Name:    "seed",
				Usage:   "Deposit PDA seed",
				EnvVars: []string{"DEPOSIT_SEED"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL for deposit events (disabled when empty)",
				EnvVars: []string{"NATS_URL"},
			},
			&cli.StringFlag{
				Name:    "pushgateway-url",
				Usage:   "Prometheus Pushgateway URL (disabled when empty)",
				EnvVars: []string{"METRICS_PUSHGATEWAY_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   config.DefaultLogLevel,
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
				Value:   config.DefaultLogFormat,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall deadline for network calls",
				Value: config.DefaultTimeout,
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq filter applied to the JSON output (implies --json)",
			},
		},
	}
}

// loadConfig reads env configuration, applies explicitly set flags on top and
// validates the result.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Read()
	if err != nil && !c.IsSet("timeout") {
		return nil, err
	}

	// An empty env var still counts as set for urfave, so empty values never
	// override the loaded configuration.
	setString := func(name string, dst *string) {
		if v := c.String(name); c.IsSet(name) && v != "" {
			*dst = v
		}
	}

	if v := c.String("rpc-url"); c.IsSet("rpc-url") && v != "" {
		cfg.RPCURLs = config.SplitList(v)
	}
	setString("network", &cfg.Network)
	setString("program-id", &cfg.ProgramID)
	setString("seed", &cfg.Seed)
	setString("nats-url", &cfg.NATSURL)
	setString("pushgateway-url", &cfg.PushgatewayURL)
	setString("log-level", &cfg.LogLevel)
	setString("log-format", &cfg.LogFormat)
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show CLI version information",
		Action: func(c *cli.Context) error {
			out, err := newOutput(c)
			if err != nil {
				return err
			}
			return out.print(versionResult{
				Version: version,
				Commit:  commit,
				Date:    date,
			})
		},
	}
}

type versionResult struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func (v versionResult) text() []string {
	return []string{fmt.Sprintf("validator-pda %s (commit: %s, built: %s)", v.Version, v.Commit, v.Date)}
}
