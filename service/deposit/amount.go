package deposit

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the fixed scale between SOL and lamports.
const LamportsPerSOL = 1_000_000_000

var ErrInvalidAmount = errors.New("invalid amount")

// Amounts outside these bounds cannot be a lamport-denominated transfer and
// are rejected before any decimal arithmetic runs on them.
const (
	maxAmountLength   = 64
	minAmountExponent = -18
	maxAmountExponent = 20
)

var (
	lamportsPerSOL = decimal.NewFromInt(LamportsPerSOL)
	maxLamports    = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)
)

// Amount is a positive quantity of SOL held as an exact decimal.
type Amount struct {
	sol decimal.Decimal
}

// ParseAmount parses a decimal SOL amount. Zero, negative, and non-numeric
// input is rejected.
func ParseAmount(s string) (Amount, error) {
	if len(s) > maxAmountLength {
		return Amount{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidAmount, maxAmountLength)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	if exp := d.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return Amount{}, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	if d.Sign() <= 0 {
		return Amount{}, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, d.String())
	}
	return Amount{sol: d}, nil
}

// Lamports converts the amount to lamports, truncating sub-lamport digits.
func (a Amount) Lamports() (uint64, error) {
	l := a.sol.Mul(lamportsPerSOL).Truncate(0)
	if l.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s SOL is less than one lamport", ErrInvalidAmount, a.String())
	}
	if l.GreaterThan(maxLamports) {
		return 0, fmt.Errorf("%w: %s SOL overflows lamports", ErrInvalidAmount, a.String())
	}
	return l.BigInt().Uint64(), nil
}

func (a Amount) String() string {
	return a.sol.String()
}

// FormatSOL renders a lamport balance as SOL.
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
