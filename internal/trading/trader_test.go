// ==================================
// File: internal/trading/trader_test.go
// ==================================
package trading

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

func discoveredToken(age time.Duration) *domain.TokenInfo {
	return &domain.TokenInfo{
		Name:         "Queued Token",
		Symbol:       "QT",
		Mint:         solana.NewWallet().PublicKey(),
		DiscoveredAt: time.Now().Add(-age),
	}
}

func newTestTrader(cfg TraderConfig, listener *fakeListener, buyer, seller Executor, cleaner Cleaner, t *testing.T) *Trader {
	t.Helper()
	journal := NewJournal(t.TempDir(), zap.NewNop())
	return NewTrader(cfg, listener, buyer, seller, journal, cleaner, zap.NewNop())
}

func TestTrader_SingleShot(t *testing.T) {
	buyer := &mockExecutor{succeed: true}
	seller := &mockExecutor{succeed: true}
	cleaner := &recordingCleaner{}
	listener := &fakeListener{tokens: []*domain.TokenInfo{discoveredToken(0)}}

	trader := newTestTrader(TraderConfig{}, listener, buyer, seller, cleaner, t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	assert.Equal(t, 1, buyer.callCount())
	assert.Equal(t, 1, seller.callCount())
	require.Len(t, cleaner.postSession, 1)
	assert.Len(t, cleaner.postSession[0], 1)
	assert.Equal(t, 1, cleaner.afterSell)
}

func TestTrader_DedupByMint(t *testing.T) {
	token := discoveredToken(0)
	// the same mint discovered three times
	listener := &fakeListener{tokens: []*domain.TokenInfo{token, token, token}}
	buyer := &mockExecutor{succeed: true}
	cleaner := &recordingCleaner{}

	cfg := TraderConfig{Continuous: true, MarryMode: true}
	trader := newTestTrader(cfg, listener, buyer, &mockExecutor{}, cleaner, t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	assert.Equal(t, 1, buyer.callCount())
}

func TestTrader_StaleTokenNeverBought(t *testing.T) {
	listener := &fakeListener{tokens: []*domain.TokenInfo{discoveredToken(time.Minute)}}
	buyer := &mockExecutor{succeed: true}

	cfg := TraderConfig{Continuous: true, MaxTokenAge: time.Second}
	trader := newTestTrader(cfg, listener, buyer, &mockExecutor{}, &recordingCleaner{}, t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	assert.Zero(t, buyer.callCount())
}

func TestTrader_DeadlineEndsSessionCleanly(t *testing.T) {
	// An empty listener keeps the consumer idle until the deadline expires;
	// that is a normal session end, not a trading failure.
	listener := &fakeListener{}
	cleaner := &recordingCleaner{}

	cfg := TraderConfig{Continuous: true}
	trader := newTestTrader(cfg, listener, &mockExecutor{}, &mockExecutor{}, cleaner, t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	// end-of-session cleanup still runs on deadline expiry
	require.Len(t, cleaner.postSession, 1)
	assert.Empty(t, cleaner.postSession[0])
}

func TestTrader_BuyFailureTriggersCleanupAndSkipsSell(t *testing.T) {
	listener := &fakeListener{tokens: []*domain.TokenInfo{discoveredToken(0)}}
	buyer := &mockExecutor{succeed: false}
	seller := &mockExecutor{succeed: true}
	cleaner := &recordingCleaner{}

	trader := newTestTrader(TraderConfig{}, listener, buyer, seller, cleaner, t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	assert.Equal(t, 1, buyer.callCount())
	assert.Zero(t, seller.callCount())
	assert.Equal(t, 1, cleaner.onFailure)
	// nothing traded, but end-of-session cleanup still runs
	require.Len(t, cleaner.postSession, 1)
	assert.Empty(t, cleaner.postSession[0])
}

func TestTrader_MarryModeHolds(t *testing.T) {
	listener := &fakeListener{tokens: []*domain.TokenInfo{discoveredToken(0)}}
	buyer := &mockExecutor{succeed: true}
	seller := &mockExecutor{succeed: true}

	cfg := TraderConfig{MarryMode: true}
	trader := newTestTrader(cfg, listener, buyer, seller, &recordingCleaner{}, t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, trader.Run(ctx))

	assert.Equal(t, 1, buyer.callCount())
	assert.Zero(t, seller.callCount())
}

func TestTrader_SingleShotTimeout(t *testing.T) {
	listener := &fakeListener{} // never discovers anything
	buyer := &mockExecutor{succeed: true}

	cfg := TraderConfig{SingleShotTimeout: 50 * time.Millisecond}
	trader := newTestTrader(cfg, listener, buyer, &mockExecutor{}, &recordingCleaner{}, t)

	start := time.Now()
	require.NoError(t, trader.Run(context.Background()))

	assert.Zero(t, buyer.callCount())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTrader_StopIsIdempotent(t *testing.T) {
	listener := &fakeListener{}
	trader := newTestTrader(TraderConfig{Continuous: true}, listener, &mockExecutor{}, &mockExecutor{}, &recordingCleaner{}, t)

	done := make(chan error, 1)
	go func() { done <- trader.Run(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	trader.Stop()
	trader.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("trader did not stop")
	}
}
