// ==================================
// File: internal/fees/fees_test.go
// ==================================
package fees

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
)

// feeClient stubs only the prioritization fee call.
type feeClient struct {
	blockchain.Client
	samples []blockchain.PrioritizationFeeSample
	err     error
}

func (c *feeClient) GetRecentPrioritizationFees(context.Context, []solana.PublicKey) ([]blockchain.PrioritizationFeeSample, error) {
	return c.samples, c.err
}

func samplesOf(fees ...uint64) []blockchain.PrioritizationFeeSample {
	out := make([]blockchain.PrioritizationFeeSample, len(fees))
	for i, f := range fees {
		out[i] = blockchain.PrioritizationFeeSample{Slot: uint64(i), PrioritizationFee: f}
	}
	return out
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, uint64(0), percentile(nil, 70))
	assert.Equal(t, uint64(5), percentile([]uint64{5}, 70))

	// 70th percentile of [10, 20, 30, 40, 50]: rank 2.8 -> 30 + 0.8*10 = 38
	assert.Equal(t, uint64(38), percentile([]uint64{50, 10, 40, 20, 30}, 70))

	assert.Equal(t, uint64(50), percentile([]uint64{10, 20, 30, 40, 50}, 100))
}

func TestDynamic_EmptySample(t *testing.T) {
	d := &Dynamic{Client: &feeClient{samples: nil}}
	_, ok, err := d.Fee(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDynamic_Percentile(t *testing.T) {
	d := &Dynamic{Client: &feeClient{samples: samplesOf(50, 10, 40, 20, 30)}}
	fee, ok, err := d.Fee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(38), fee)
}

func TestManager_DynamicWinsOverFixed(t *testing.T) {
	cfg := ManagerConfig{EnableDynamic: true, EnableFixed: true, FixedAmount: 999}
	m := NewManager(cfg,
		&Dynamic{Client: &feeClient{samples: samplesOf(100, 100, 100)}},
		&Fixed{MicroLamports: cfg.FixedAmount},
		zap.NewNop())

	fee, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100), fee)
}

func TestManager_FallsThroughToFixedOnEmptyDynamic(t *testing.T) {
	cfg := ManagerConfig{EnableDynamic: true, EnableFixed: true, FixedAmount: 777}
	m := NewManager(cfg,
		&Dynamic{Client: &feeClient{samples: nil}},
		&Fixed{MicroLamports: cfg.FixedAmount},
		zap.NewNop())

	fee, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(777), fee)
}

func TestManager_FallsThroughToFixedOnDynamicError(t *testing.T) {
	cfg := ManagerConfig{EnableDynamic: true, EnableFixed: true, FixedAmount: 777}
	m := NewManager(cfg,
		&Dynamic{Client: &feeClient{err: errors.New("rpc timeout")}},
		&Fixed{MicroLamports: cfg.FixedAmount},
		zap.NewNop())

	fee, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(777), fee)
}

func TestManager_DynamicErrorWithoutFixedMeansNoFee(t *testing.T) {
	cfg := ManagerConfig{EnableDynamic: true}
	m := NewManager(cfg,
		&Dynamic{Client: &feeClient{err: errors.New("rpc timeout")}},
		nil,
		zap.NewNop())

	_, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_FixedFallback(t *testing.T) {
	cfg := ManagerConfig{EnableFixed: true, FixedAmount: 5000}
	m := NewManager(cfg, nil, &Fixed{MicroLamports: cfg.FixedAmount}, zap.NewNop())

	fee, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5000), fee)
}

func TestManager_ExtraPercentAndHardCap(t *testing.T) {
	cfg := ManagerConfig{EnableFixed: true, FixedAmount: 1000, ExtraPercent: 0.5, HardCap: 1200}
	m := NewManager(cfg, nil, &Fixed{MicroLamports: cfg.FixedAmount}, zap.NewNop())

	// 1000 * 1.5 = 1500, clamped to the cap.
	fee, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1200), fee)
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(ManagerConfig{}, nil, nil, zap.NewNop())
	_, ok, err := m.PriorityFee(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
