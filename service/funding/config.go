package funding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/brojonat/validator-pda/service/deposit"
	"github.com/brojonat/validator-pda/service/gossip"
	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/brojonat/validator-pda/service/nats"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrLoggerRequired = errors.New("logger is required")
	ErrSolanaRequired = errors.New("solana is required")
	ErrGateRequired   = errors.New("liveness gate is required")
	ErrSignerRequired = errors.New("signer is required")
	ErrSignerInvalid  = errors.New("signer is invalid")
)

// SubmitMaxRetries is passed through to the RPC node on submission.
const SubmitMaxRetries uint = 3

// SolanaClient is the part of the chain client the workflow needs.
type SolanaClient interface {
	GetLatestBlockhash(context.Context, solanarpc.CommitmentType) (*solanarpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(context.Context, *solana.Transaction, solanarpc.TransactionOpts) (solana.Signature, error)
}

// LivenessGate decides whether a validator may be funded.
type LivenessGate interface {
	Check(ctx context.Context, identity solana.PublicKey) gossip.Decision
}

type Config struct {
	Logger     *slog.Logger
	Solana     SolanaClient
	Gate       LivenessGate
	Derivation deposit.DerivationConfig

	// Optional.
	Metrics   *metrics.Metrics
	Publisher nats.Publisher
	Network   string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return ErrLoggerRequired
	}
	if c.Solana == nil {
		return ErrSolanaRequired
	}
	if c.Gate == nil {
		return ErrGateRequired
	}
	if err := c.Derivation.Validate(); err != nil {
		return err
	}
	if c.Network == "" {
		c.Network = "unknown"
	}
	return nil
}
