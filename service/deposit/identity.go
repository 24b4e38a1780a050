package deposit

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// base58Alphabet is the Bitcoin alphabet used for Solana public keys.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var ErrInvalidIdentity = errors.New("invalid validator identity")

// ParseIdentity validates and decodes a base58 validator identity.
// Surrounding whitespace is not trimmed.
func ParseIdentity(s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: empty string", ErrInvalidIdentity)
	}
	if strings.TrimSpace(s) == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: whitespace only", ErrInvalidIdentity)
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			return solana.PublicKey{}, fmt.Errorf("%w: whitespace at position %d", ErrInvalidIdentity, i)
		}
		if !strings.ContainsRune(base58Alphabet, r) {
			return solana.PublicKey{}, fmt.Errorf("%w: character %q at position %d is not in the base58 alphabet", ErrInvalidIdentity, r, i)
		}
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidIdentity, len(raw), solana.PublicKeyLength)
	}
	return solana.PublicKeyFromBytes(raw), nil
}
