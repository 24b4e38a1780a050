package deposit

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// DefaultProgramID is the revenue distribution program that owns validator deposit accounts.
	DefaultProgramID = solana.MustPublicKeyFromBase58("dzrevZC94tBLwuHw1dyynZxaXTWyp7yocsinyEVPtt4")

	// DefaultSeed is the seed prefix for validator deposit PDAs.
	DefaultSeed = []byte("solana_validator_deposit")
)

var (
	ErrProgramIDRequired = errors.New("program id is required")
	ErrSeedRequired      = errors.New("seed is required")
	ErrSeedTooLong       = errors.New("seed exceeds max seed length")
	ErrNoViableBump      = errors.New("unable to find a viable program address bump seed")
)

// DerivationConfig is the namespace deposit addresses are derived in.
type DerivationConfig struct {
	ProgramID solana.PublicKey
	Seed      []byte
}

// Address is a derived deposit address together with the bump seed that
// pushed it off the ed25519 curve.
type Address struct {
	Address solana.PublicKey
	Bump    uint8
}

func (a Address) String() string {
	return a.Address.String()
}

// DefaultDerivationConfig returns the production deposit namespace.
func DefaultDerivationConfig() DerivationConfig {
	seed := make([]byte, len(DefaultSeed))
	copy(seed, DefaultSeed)
	return DerivationConfig{
		ProgramID: DefaultProgramID,
		Seed:      seed,
	}
}

func (c DerivationConfig) Validate() error {
	if c.ProgramID.IsZero() {
		return ErrProgramIDRequired
	}
	if len(c.Seed) == 0 {
		return ErrSeedRequired
	}
	if len(c.Seed) > solana.MaxSeedLength {
		return fmt.Errorf("%w: %d > %d", ErrSeedTooLong, len(c.Seed), solana.MaxSeedLength)
	}
	return nil
}

// Derive returns the deposit PDA for a validator identity. The result depends
// only on the config and the identity.
func (c DerivationConfig) Derive(identity solana.PublicKey) (Address, error) {
	if err := c.Validate(); err != nil {
		return Address{}, err
	}
	addr, bump, err := solana.FindProgramAddress([][]byte{c.Seed, identity.Bytes()}, c.ProgramID)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrNoViableBump, err)
	}
	return Address{Address: addr, Bump: bump}, nil
}

// DeriveValidatorDepositPDA derives the deposit PDA in the default namespace.
func DeriveValidatorDepositPDA(identity solana.PublicKey) (Address, error) {
	return DefaultDerivationConfig().Derive(identity)
}
