package solana

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/brojonat/validator-pda/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call sequences.
type mockRPCClient struct {
	balance   uint64
	nodes     []*rpc.GetClusterNodesResult
	blockhash solana.Hash
	signature solana.Signature
	err       error

	lastCommitment rpc.CommitmentType
	lastOpts       rpc.TransactionOpts
}

func (m *mockRPCClient) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	m.lastCommitment = commitment
	if m.err != nil {
		return nil, m.err
	}
	return &rpc.GetBalanceResult{Value: m.balance}, nil
}

func (m *mockRPCClient) GetClusterNodes(ctx context.Context) ([]*rpc.GetClusterNodesResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.nodes, nil
}

func (m *mockRPCClient) GetLatestBlockhash(
	ctx context.Context,
	commitment rpc.CommitmentType,
) (*rpc.GetLatestBlockhashResult, error) {
	m.lastCommitment = commitment
	if m.err != nil {
		return nil, m.err
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: m.blockhash},
	}, nil
}

func (m *mockRPCClient) SendTransactionWithOpts(
	ctx context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	m.lastOpts = opts
	if m.err != nil {
		return solana.Signature{}, m.err
	}
	return m.signature, nil
}

func newTestClient(mock *mockRPCClient, m *metrics.Metrics) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(mock, "api.devnet.solana.com", m, logger)
}

func TestClient_BalanceLamports(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	mock := &mockRPCClient{balance: 2_500_000_000}
	client := newTestClient(mock, metrics.NewMetrics(reg))

	balance, err := client.BalanceLamports(ctx, solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), balance)
	assert.Equal(t, rpc.CommitmentFinalized, mock.lastCommitment)

	count, err := testutil.GatherAndCount(reg, "solana_rpc_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClient_ErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	mock := &mockRPCClient{err: assert.AnError}
	client := newTestClient(mock, nil)

	_, err := client.BalanceLamports(ctx, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, assert.AnError)

	nodes, err := client.GetClusterNodes(ctx)
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, nodes)

	_, err = client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	require.ErrorIs(t, err, assert.AnError)

	_, err = client.SendTransactionWithOpts(ctx, &solana.Transaction{}, rpc.TransactionOpts{})
	require.ErrorIs(t, err, assert.AnError)
}

func TestClient_GetClusterNodes(t *testing.T) {
	ctx := context.Background()
	node := solana.NewWallet().PublicKey()
	mock := &mockRPCClient{
		nodes: []*rpc.GetClusterNodesResult{{Pubkey: node}},
	}
	client := newTestClient(mock, nil)

	nodes, err := client.GetClusterNodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, node, nodes[0].Pubkey)
}

func TestClient_SendTransactionWithOpts(t *testing.T) {
	ctx := context.Background()
	sig := solana.MustSignatureFromBase58("5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7")
	reg := prometheus.NewRegistry()
	mock := &mockRPCClient{signature: sig}
	client := newTestClient(mock, metrics.NewMetrics(reg))

	retries := uint(3)
	got, err := client.SendTransactionWithOpts(ctx, &solana.Transaction{}, rpc.TransactionOpts{MaxRetries: &retries})
	require.NoError(t, err)
	assert.Equal(t, sig, got)
	require.NotNil(t, mock.lastOpts.MaxRetries)
	assert.Equal(t, uint(3), *mock.lastOpts.MaxRetries)
	assert.Equal(t, "api.devnet.solana.com", client.Endpoint())
}

func TestLoadKeypair(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid keygen file", func(t *testing.T) {
		wallet := solana.NewWallet()
		path := filepath.Join(dir, "id.json")
		writeKeygenFile(t, path, wallet.PrivateKey)

		key, err := LoadKeypair(path)
		require.NoError(t, err)
		assert.Equal(t, wallet.PublicKey(), key.PublicKey())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKeypair(filepath.Join(dir, "missing.json"))
		require.ErrorIs(t, err, ErrKeypairNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadKeypair("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "keypair path is required")
	})

	t.Run("garbage file", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := LoadKeypair(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load keypair")
	})
}

func writeKeygenFile(t *testing.T, path string, key solana.PrivateKey) {
	t.Helper()
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}
