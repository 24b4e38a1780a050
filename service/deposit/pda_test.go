package deposit

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testValidator = "FjYEr2UCeFzNfAKiFrbhG34Zv8LxbmfHYAFhAfc7SLQL"

func TestDefaultProgramID(t *testing.T) {
	assert.Equal(t, "dzrevZC94tBLwuHw1dyynZxaXTWyp7yocsinyEVPtt4", DefaultProgramID.String())
	assert.Equal(t, "solana_validator_deposit", string(DefaultSeed))
}

func TestDerive_Deterministic(t *testing.T) {
	identity := solana.MustPublicKeyFromBase58(testValidator)

	first, err := DeriveValidatorDepositPDA(identity)
	require.NoError(t, err)
	assert.False(t, first.Address.IsZero())

	for i := 0; i < 3; i++ {
		again, err := DeriveValidatorDepositPDA(identity)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDerive_MatchesFindProgramAddress(t *testing.T) {
	identity := solana.MustPublicKeyFromBase58(testValidator)

	got, err := DeriveValidatorDepositPDA(identity)
	require.NoError(t, err)

	want, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte("solana_validator_deposit"), identity.Bytes()},
		solana.MustPublicKeyFromBase58("dzrevZC94tBLwuHw1dyynZxaXTWyp7yocsinyEVPtt4"),
	)
	require.NoError(t, err)
	assert.Equal(t, want, got.Address)
	assert.Equal(t, bump, got.Bump)
	assert.False(t, got.Address.IsOnCurve())
}

func TestDerive_DistinctIdentities(t *testing.T) {
	t.Run("known keys", func(t *testing.T) {
		a, err := DeriveValidatorDepositPDA(solana.MustPublicKeyFromBase58(testValidator))
		require.NoError(t, err)
		b, err := DeriveValidatorDepositPDA(solana.MustPublicKeyFromBase58("11111111111111111111111111111112"))
		require.NoError(t, err)
		assert.NotEqual(t, a.Address, b.Address)
	})

	t.Run("zero and max keys", func(t *testing.T) {
		var max solana.PublicKey
		for i := range max {
			max[i] = 0xff
		}
		zero, err := DeriveValidatorDepositPDA(solana.PublicKey{})
		require.NoError(t, err)
		high, err := DeriveValidatorDepositPDA(max)
		require.NoError(t, err)
		assert.False(t, zero.Address.IsZero())
		assert.False(t, high.Address.IsZero())
		assert.NotEqual(t, zero.Address, high.Address)
	})

	t.Run("random keys", func(t *testing.T) {
		seen := make(map[solana.PublicKey]solana.PublicKey)
		for i := 0; i < 32; i++ {
			identity := solana.NewWallet().PublicKey()
			addr, err := DeriveValidatorDepositPDA(identity)
			require.NoError(t, err)
			prev, dup := seen[addr.Address]
			require.Falsef(t, dup, "identities %s and %s derived the same PDA", prev, identity)
			seen[addr.Address] = identity
		}
	})
}

func TestDerive_NamespaceSeparation(t *testing.T) {
	identity := solana.MustPublicKeyFromBase58(testValidator)

	def, err := DefaultDerivationConfig().Derive(identity)
	require.NoError(t, err)

	otherProgram := DerivationConfig{
		ProgramID: solana.NewWallet().PublicKey(),
		Seed:      DefaultSeed,
	}
	alt, err := otherProgram.Derive(identity)
	require.NoError(t, err)
	assert.NotEqual(t, def.Address, alt.Address)

	otherSeed := DerivationConfig{
		ProgramID: DefaultProgramID,
		Seed:      []byte("contributor_rewards"),
	}
	alt2, err := otherSeed.Derive(identity)
	require.NoError(t, err)
	assert.NotEqual(t, def.Address, alt2.Address)
}

func TestDerivationConfig_Validate(t *testing.T) {
	identity := solana.MustPublicKeyFromBase58(testValidator)

	tests := []struct {
		name    string
		cfg     DerivationConfig
		wantErr error
	}{
		{
			name:    "zero program id",
			cfg:     DerivationConfig{Seed: DefaultSeed},
			wantErr: ErrProgramIDRequired,
		},
		{
			name:    "empty seed",
			cfg:     DerivationConfig{ProgramID: DefaultProgramID},
			wantErr: ErrSeedRequired,
		},
		{
			name: "seed too long",
			cfg: DerivationConfig{
				ProgramID: DefaultProgramID,
				Seed:      make([]byte, solana.MaxSeedLength+1),
			},
			wantErr: ErrSeedTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.cfg.Validate(), tt.wantErr)
			_, err := tt.cfg.Derive(identity)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.NoError(t, DefaultDerivationConfig().Validate())
}

func TestDefaultDerivationConfig_CopiesSeed(t *testing.T) {
	cfg := DefaultDerivationConfig()
	cfg.Seed[0] = 'X'
	assert.Equal(t, "solana_validator_deposit", string(DefaultSeed))
}
