package gossip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct {
	nodes []*solanarpc.GetClusterNodesResult
	err   error
	calls int
}

func (m *mockDirectory) GetClusterNodes(ctx context.Context) ([]*solanarpc.GetClusterNodesResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.nodes, nil
}

func newTestGate(dir ClusterDirectory, m *metrics.Metrics) *Gate {
	return NewGate(dir, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
}

func TestGate_Check(t *testing.T) {
	ctx := context.Background()
	identity := solana.MustPublicKeyFromBase58("FjYEr2UCeFzNfAKiFrbhG34Zv8LxbmfHYAFhAfc7SLQL")
	other := solana.NewWallet().PublicKey()

	tests := []struct {
		name       string
		dir        *mockDirectory
		wantResult Result
		wantReason string
		wantErr    bool
	}{
		{
			name: "present",
			dir: &mockDirectory{nodes: []*solanarpc.GetClusterNodesResult{
				{Pubkey: other},
				{Pubkey: identity},
			}},
			wantResult: Proceed,
		},
		{
			name: "absent",
			dir: &mockDirectory{nodes: []*solanarpc.GetClusterNodesResult{
				{Pubkey: other},
			}},
			wantResult: Cancel,
			wantReason: "not found in gossip network",
		},
		{
			name:       "empty snapshot",
			dir:        &mockDirectory{},
			wantResult: Cancel,
			wantReason: "not found in gossip network",
		},
		{
			name:       "nil entries are skipped",
			dir:        &mockDirectory{nodes: []*solanarpc.GetClusterNodesResult{nil}},
			wantResult: Cancel,
			wantReason: "not found in gossip network",
		},
		{
			name:       "lookup error fails closed",
			dir:        &mockDirectory{err: errors.New("connection refused")},
			wantResult: CancelOnError,
			wantReason: "gossip lookup failed: connection refused",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestGate(tt.dir, nil).Check(ctx, identity)

			assert.Equal(t, tt.wantResult, d.Result)
			assert.Equal(t, tt.wantResult == Proceed, d.Proceed())
			assert.Contains(t, d.Reason, tt.wantReason)
			if tt.wantErr {
				assert.Error(t, d.Err)
			} else {
				assert.NoError(t, d.Err)
			}
			assert.Equal(t, 1, tt.dir.calls)
		})
	}
}

func TestGate_ErrorAndAbsentBothBlock(t *testing.T) {
	ctx := context.Background()
	identity := solana.NewWallet().PublicKey()

	absent := newTestGate(&mockDirectory{}, nil).Check(ctx, identity)
	failed := newTestGate(&mockDirectory{err: assert.AnError}, nil).Check(ctx, identity)

	assert.False(t, absent.Proceed())
	assert.False(t, failed.Proceed())
}

func TestGate_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	identity := solana.NewWallet().PublicKey()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	newTestGate(&mockDirectory{err: assert.AnError}, m).Check(ctx, identity)
	newTestGate(&mockDirectory{nodes: []*solanarpc.GetClusterNodesResult{{Pubkey: identity}}}, m).Check(ctx, identity)

	count, err := testutil.GatherAndCount(reg, "gossip_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "proceed", Proceed.String())
	assert.Equal(t, "cancel", Cancel.String())
	assert.Equal(t, "cancel_on_error", CancelOnError.String())
	assert.Equal(t, "result(9)", Result(9).String())
	assert.False(t, Decision{}.Proceed())
}
