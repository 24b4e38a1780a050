package solana

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

var ErrKeypairNotFound = errors.New("keypair file does not exist")

// LoadKeypair reads a solana-keygen JSON keypair file.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	if path == "" {
		return nil, fmt.Errorf("keypair path is required")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeypairNotFound, path)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	if !key.IsValid() {
		return nil, fmt.Errorf("keypair %s is not a valid ed25519 private key", path)
	}
	return key, nil
}
