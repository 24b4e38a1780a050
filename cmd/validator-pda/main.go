package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brojonat/validator-pda/service/funding"
	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/brojonat/validator-pda/service/nats"
	svcsolana "github.com/brojonat/validator-pda/service/solana"
	"github.com/gagliardetto/solana-go"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// deps are the collaborators that reach outside the process. Tests swap
// them for fakes.
type deps struct {
	newRPC        func(rpcURL string) svcsolana.RPCClient
	loadKeypair   func(path string) (solana.PrivateKey, error)
	newPublisher  func(ctx context.Context, natsURL string, logger *slog.Logger, m *metrics.Metrics) (nats.Publisher, error)
	newSubscriber func(natsURL string, logger *slog.Logger) (nats.Subscriber, error)
}

func defaultDeps() deps {
	return deps{
		newRPC:      svcsolana.NewRPCClient,
		loadKeypair: svcsolana.LoadKeypair,
		newPublisher: func(ctx context.Context, natsURL string, logger *slog.Logger, m *metrics.Metrics) (nats.Publisher, error) {
			return nats.NewPublisher(ctx, natsURL, logger, m)
		},
		newSubscriber: func(natsURL string, logger *slog.Logger) (nats.Subscriber, error) {
			return nats.NewSubscriber(natsURL, logger)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	app := newApp(d, stdout, stderr)
	if err := app.RunContext(ctx, args); err != nil {
		var cancelled *funding.CancelledError
		if errors.As(err, &cancelled) {
			fmt.Fprintf(stderr, "Funding cancelled: %s\n", cancelled.Decision.Reason)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
