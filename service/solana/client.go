package solana

import (
	"context"
	"log/slog"
	"time"

	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetBalance(
		ctx context.Context,
		account solana.PublicKey,
		commitment rpc.CommitmentType,
	) (*rpc.GetBalanceResult, error)
	GetClusterNodes(ctx context.Context) ([]*rpc.GetClusterNodesResult, error)
	GetLatestBlockhash(
		ctx context.Context,
		commitment rpc.CommitmentType,
	) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(
		ctx context.Context,
		tx *solana.Transaction,
		opts rpc.TransactionOpts,
	) (solana.Signature, error)
}

// Client wraps the RPC client with logging and metrics.
// It satisfies the narrow interfaces of the gossip and funding packages.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  *metrics.Metrics
	endpoint string // RPC endpoint identifier for metrics (e.g., rpc host)
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling.
// If metrics is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// GetBalance returns the lamport balance of an account.
func (c *Client) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	start := time.Now()
	out, err := c.rpc.GetBalance(ctx, account, commitment)
	c.record(ctx, "GetBalance", start, err, "account", account.String())
	return out, err
}

// BalanceLamports is GetBalance at finalized commitment, unwrapped.
func (c *Client) BalanceLamports(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.GetBalance(ctx, account, rpc.CommitmentFinalized)
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}

// GetClusterNodes returns the current gossip snapshot.
func (c *Client) GetClusterNodes(ctx context.Context) ([]*rpc.GetClusterNodesResult, error) {
	start := time.Now()
	out, err := c.rpc.GetClusterNodes(ctx)
	c.record(ctx, "GetClusterNodes", start, err, "nodes", len(out))
	return out, err
}

func (c *Client) GetLatestBlockhash(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	start := time.Now()
	out, err := c.rpc.GetLatestBlockhash(ctx, commitment)
	c.record(ctx, "GetLatestBlockhash", start, err, "commitment", commitment)
	return out, err
}

func (c *Client) SendTransactionWithOpts(
	ctx context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, opts)
	c.record(ctx, "SendTransaction", start, err, "signature", sig.String())
	return sig, err
}

func (c *Client) record(ctx context.Context, method string, start time.Time, err error, args ...any) {
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		c.logger.ErrorContext(ctx, "solana rpc call failed",
			append([]any{"method", method, "endpoint", c.endpoint, "error", err}, args...)...,
		)
	} else {
		c.logger.DebugContext(ctx, "solana rpc call",
			append([]any{"method", method, "endpoint", c.endpoint, "duration_seconds", duration}, args...)...,
		)
	}

	if c.metrics != nil {
		c.metrics.RecordRPCCall(method, status, c.endpoint, duration)
	}
}
