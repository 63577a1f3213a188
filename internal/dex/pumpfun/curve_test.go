// =============================
// File: internal/dex/pumpfun/curve_test.go
// =============================
package pumpfun

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCurveState(t *testing.T) {
	creator := solana.NewWallet().PublicKey()
	in := CurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
		RealSolReserves:      0,
		TokenTotalSupply:     1_000_000_000_000_000,
		Complete:             false,
		Creator:              creator,
	}

	out, err := DecodeCurveState(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestDecodeCurveState_ShortBuffer(t *testing.T) {
	_, err := DecodeCurveState(make([]byte, 40))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestDecodeCurveState_WrongDiscriminator(t *testing.T) {
	data := (&CurveState{VirtualTokenReserves: 1, VirtualSolReserves: 1}).Encode()
	binary.LittleEndian.PutUint64(data[0:8], 42)

	_, err := DecodeCurveState(data)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestPrice(t *testing.T) {
	// 30 SOL against 1,073,000,000 tokens: price must be positive and tiny.
	s := &CurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
	}

	price, err := s.Price()
	require.NoError(t, err)
	assert.True(t, price.IsPositive())

	// 30 / 1_073_000_000
	expected := decimal.NewFromInt(30).Div(decimal.NewFromInt(1_073_000_000))
	assert.True(t, price.Equal(expected), "got %s want %s", price, expected)
}

func TestPrice_InvalidReserves(t *testing.T) {
	for _, s := range []*CurveState{
		{VirtualTokenReserves: 0, VirtualSolReserves: 1},
		{VirtualTokenReserves: 1, VirtualSolReserves: 0},
	} {
		_, err := s.Price()
		assert.ErrorIs(t, err, ErrInvalidReserves)
	}
}

func TestTokensForSolRoundTrip(t *testing.T) {
	s := &CurveState{
		VirtualTokenReserves: 1_073_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
	}

	tokens, err := s.TokensForSol(LamportsPerSOL) // 1 SOL
	require.NoError(t, err)
	assert.Greater(t, tokens, uint64(0))

	back, err := s.SolForTokens(tokens)
	require.NoError(t, err)
	// Truncation in both directions loses at most a few lamports.
	assert.InDelta(t, float64(LamportsPerSOL), float64(back), 10)
}
