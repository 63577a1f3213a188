// ==================================
// File: internal/trading/seller_test.go
// ==================================
package trading

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex"
	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
)

func TestSeller_NoTokensToSell(t *testing.T) {
	client := &mockClient{tokenBalance: 0}
	venue, err := dex.New("pumpfun")
	require.NoError(t, err)

	seller := NewSeller(SellerConfig{SlippageBps: 100}, client, testWallet(t), venue, noFees(), zap.NewNop())

	result := seller.Execute(context.Background(), testToken(t))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no tokens to sell")
	assert.Zero(t, client.sentCount())
}

func TestSeller_Execute(t *testing.T) {
	curve := &pumpfun.CurveState{
		VirtualTokenReserves: 1_000_000_000_000,
		VirtualSolReserves:   30_000_000_000,
	}
	balance := uint64(33_333_333_333) // the full position from a 1 SOL buy
	client := &mockClient{curveData: curve.Encode(), tokenBalance: balance}
	venue, err := dex.New("pumpfun")
	require.NoError(t, err)

	seller := NewSeller(SellerConfig{SlippageBps: 100}, client, testWallet(t), venue, noFees(), zap.NewNop())

	result := seller.Execute(context.Background(), testToken(t))
	require.True(t, result.Success, "unexpected failure: %s", result.Error)
	assert.Equal(t, balance, result.TokenAmount)
	assert.NotEmpty(t, result.Signature)

	require.Equal(t, 1, client.sentCount())
	data := findVenueInstruction(t, client.sent[0])
	require.Len(t, data, 24)

	quantity := binary.LittleEndian.Uint64(data[8:16])
	assert.Equal(t, balance, quantity)

	// proceeds ≈ 1 SOL, min output is 1% under that
	minOut := binary.LittleEndian.Uint64(data[16:24])
	assert.InDelta(t, 990_000_000, float64(minOut), 1_000)
	assert.Less(t, minOut, result.SolAmount)
}
