package gossip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

// ClusterDirectory lists the nodes currently visible in gossip.
type ClusterDirectory interface {
	GetClusterNodes(ctx context.Context) ([]*solanarpc.GetClusterNodesResult, error)
}

// Result is the funding decision derived from a liveness probe. The zero
// value is not Proceed.
type Result int

const (
	Proceed Result = iota + 1
	Cancel
	CancelOnError
)

func (r Result) String() string {
	switch r {
	case Proceed:
		return "proceed"
	case Cancel:
		return "cancel"
	case CancelOnError:
		return "cancel_on_error"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Decision is the outcome of a liveness check. Reason is set on both cancel
// paths, Err only when the lookup itself failed.
type Decision struct {
	Result Result
	Reason string
	Err    error
}

func (d Decision) Proceed() bool {
	return d.Result == Proceed
}

// Gate blocks funding of validators that are not present in gossip.
// It fails closed: a lookup error cancels exactly like an absent validator.
type Gate struct {
	directory ClusterDirectory
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewGate creates a liveness gate. If metrics is nil, no metrics will be recorded.
func NewGate(directory ClusterDirectory, logger *slog.Logger, m *metrics.Metrics) *Gate {
	return &Gate{
		directory: directory,
		logger:    logger,
		metrics:   m,
	}
}

// Check looks for identity in the current gossip snapshot.
func (g *Gate) Check(ctx context.Context, identity solana.PublicKey) Decision {
	d := g.check(ctx, identity)
	if g.metrics != nil {
		g.metrics.RecordGossipCheck(d.Result.String())
	}
	return d
}

func (g *Gate) check(ctx context.Context, identity solana.PublicKey) Decision {
	nodes, err := g.directory.GetClusterNodes(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "gossip lookup failed, cancelling funding",
			"validator", identity.String(),
			"error", err,
		)
		return Decision{
			Result: CancelOnError,
			Reason: fmt.Sprintf("gossip lookup failed: %v", err),
			Err:    err,
		}
	}

	want := identity.String()
	for _, node := range nodes {
		if node != nil && node.Pubkey.String() == want {
			g.logger.DebugContext(ctx, "validator found in gossip",
				"validator", want,
				"nodes", len(nodes),
			)
			return Decision{Result: Proceed}
		}
	}

	g.logger.WarnContext(ctx, "validator not found in gossip, cancelling funding",
		"validator", want,
		"nodes", len(nodes),
	)
	return Decision{
		Result: Cancel,
		Reason: fmt.Sprintf("validator %s not found in gossip network", want),
	}
}
