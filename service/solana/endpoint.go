package solana

import (
	"fmt"
	"math/rand"
	"net/url"
	"sort"
)

// NetworkRPCURLs are the public Solana RPC URLs per cluster.
var NetworkRPCURLs = map[string]string{
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"devnet":       "https://api.devnet.solana.com",
	"localnet":     "http://localhost:8899",
}

// Networks returns the known cluster names in sorted order.
func Networks() []string {
	names := make([]string, 0, len(NetworkRPCURLs))
	for name := range NetworkRPCURLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RPCURLForNetwork returns the public RPC URL for a cluster.
func RPCURLForNetwork(network string) (string, error) {
	u, ok := NetworkRPCURLs[network]
	if !ok {
		return "", fmt.Errorf("unknown network %q (known: %v)", network, Networks())
	}
	return u, nil
}

// SelectRandomEndpoint picks one endpoint so repeated runs spread load
// across configured RPC providers.
func SelectRandomEndpoint(endpoints []string) (string, error) {
	if len(endpoints) == 0 {
		return "", fmt.Errorf("no RPC endpoints configured")
	}
	return endpoints[rand.Intn(len(endpoints))], nil
}

// EndpointLabel reduces an RPC URL to its host so API keys embedded in the
// path or query never reach metric labels or logs.
func EndpointLabel(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
