// ==================================
// File: internal/trading/trader.go
// ==================================
package trading

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/monitoring"
)

// Cleaner reclaims token accounts after trading. Implementations are
// fire-and-forget: errors are logged inside, never propagated here.
type Cleaner interface {
	// OnBuyFailure runs after a failed buy.
	OnBuyFailure(ctx context.Context, token *domain.TokenInfo)
	// AfterSell runs after a successful sell.
	AfterSell(ctx context.Context, token *domain.TokenInfo)
	// PostSession runs at shutdown over every mint traded this session.
	PostSession(ctx context.Context, tokens []*domain.TokenInfo)
}

// TraderConfig carries the coordinator settings.
type TraderConfig struct {
	// Continuous keeps trading token after token; otherwise the trader
	// processes the first discovery and exits.
	Continuous bool
	// MarryMode holds the position after buying, skipping the sell leg.
	MarryMode bool
	// MaxTokenAge drops queued tokens discovered longer than this ago.
	// Zero disables the freshness check.
	MaxTokenAge time.Duration
	// StabilizationDelay waits before buying so the curve settles. Skipped
	// in extreme-fast mode.
	StabilizationDelay time.Duration
	// WaitAfterBuy is the hold time between a confirmed buy and the sell.
	WaitAfterBuy time.Duration
	// Cooldown pauses between consecutive lifecycles in continuous mode.
	Cooldown time.Duration
	// SingleShotTimeout bounds the wait for the first discovery. Zero waits
	// indefinitely.
	SingleShotTimeout time.Duration
	// ExtremeFast mirrors the buyer's fast path and skips stabilization.
	ExtremeFast bool
	// QueueSize bounds the discovery queue. Overflow drops discoveries.
	QueueSize int
}

// Trader owns one listener and drives sequential buy/sell lifecycles over the
// tokens it discovers. Lifecycles never run concurrently.
type Trader struct {
	cfg      TraderConfig
	listener monitoring.Listener
	buyer    Executor
	seller   Executor
	journal  *Journal
	cleaner  Cleaner
	logger   *zap.Logger

	mu        sync.Mutex
	processed map[string]struct{}
	traded    []*domain.TokenInfo

	queue chan *domain.TokenInfo

	// now supplies freshness checks, overridable in tests.
	now func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewTrader(cfg TraderConfig, listener monitoring.Listener, buyer, seller Executor, journal *Journal, cleaner Cleaner, logger *zap.Logger) *Trader {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Trader{
		cfg:       cfg,
		listener:  listener,
		buyer:     buyer,
		seller:    seller,
		journal:   journal,
		cleaner:   cleaner,
		logger:    logger.Named("trader"),
		processed: make(map[string]struct{}),
		queue:     make(chan *domain.TokenInfo, cfg.QueueSize),
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Run starts the listener and the lifecycle loop and blocks until the session
// ends: context cancellation, Stop, or single-shot completion. End-of-session
// cleanup runs before Run returns.
func (t *Trader) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-t.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		err := t.listener.Listen(gCtx, t.onToken)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		if t.cfg.Continuous {
			t.consumeLoop(gCtx)
		} else {
			t.singleShot(gCtx)
		}
		// Ends the session so the listener goroutine unblocks too.
		cancel()
		return nil
	})

	err := g.Wait()

	t.shutdown(context.Background())
	// Cancellation and deadline expiry both mean the session ended on
	// request, not that trading failed.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stop ends the session. Safe to call from any goroutine, any number of
// times; an in-flight trade completes but no new lifecycle starts.
func (t *Trader) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

// onToken is the listener's discovery callback. Only enqueues; the consumer
// loop owns all trading state.
func (t *Trader) onToken(token *domain.TokenInfo) {
	mint := token.Mint.String()

	t.mu.Lock()
	if _, seen := t.processed[mint]; seen {
		t.mu.Unlock()
		t.logger.Debug("Duplicate discovery ignored", zap.String("mint", mint))
		return
	}
	t.processed[mint] = struct{}{}
	t.mu.Unlock()

	select {
	case t.queue <- token:
	default:
		t.logger.Warn("Discovery queue full, dropping token", zap.String("mint", mint))
	}
}

// singleShot waits for the first discovery, trades it, and ends the session.
func (t *Trader) singleShot(ctx context.Context) {
	var timeout <-chan time.Time
	if t.cfg.SingleShotTimeout > 0 {
		timer := time.NewTimer(t.cfg.SingleShotTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
	case <-timeout:
		t.logger.Info("No token discovered within the wait window")
	case token := <-t.queue:
		t.lifecycle(ctx, token)
	}
}

// consumeLoop dequeues discoveries and runs lifecycles one at a time.
func (t *Trader) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case token := <-t.queue:
			if t.stale(token) {
				continue
			}
			t.lifecycle(ctx, token)
			if !t.sleep(ctx, t.cfg.Cooldown) {
				return
			}
		}
	}
}

// stale drops tokens older than the freshness window. Dropped tokens stay in
// the processed set and are never retried.
func (t *Trader) stale(token *domain.TokenInfo) bool {
	if t.cfg.MaxTokenAge <= 0 {
		return false
	}
	age := token.Age(t.now())
	if age <= t.cfg.MaxTokenAge {
		return false
	}
	t.logger.Info("Dropping stale token",
		zap.String("mint", token.Mint.String()),
		zap.Duration("age", age),
		zap.Duration("max_age", t.cfg.MaxTokenAge))
	return true
}

// lifecycle runs buy, hold and sell for one token. It never panics and never
// aborts the session: every failure is logged and the lifecycle ends.
func (t *Trader) lifecycle(ctx context.Context, token *domain.TokenInfo) {
	mint := token.Mint.String()
	t.logger.Info("Starting trade lifecycle",
		zap.String("mint", mint),
		zap.String("symbol", token.Symbol),
		zap.String("name", token.Name))

	t.journal.SnapshotToken(token)

	if !t.cfg.ExtremeFast && t.cfg.StabilizationDelay > 0 {
		t.logger.Info("Waiting for bonding curve to stabilize",
			zap.Duration("delay", t.cfg.StabilizationDelay))
		if !t.sleep(ctx, t.cfg.StabilizationDelay) {
			return
		}
	}

	buyResult := t.buyer.Execute(ctx, token)
	if !buyResult.Success {
		t.logger.Warn("Buy failed, skipping sell",
			zap.String("mint", mint),
			zap.String("error", buyResult.Error))
		t.cleaner.OnBuyFailure(ctx, token)
		return
	}
	t.journal.RecordTrade(token, buyResult)

	t.mu.Lock()
	t.traded = append(t.traded, token)
	t.mu.Unlock()

	if t.cfg.MarryMode {
		t.logger.Info("Marry mode enabled, holding position", zap.String("mint", mint))
		return
	}

	if !t.sleep(ctx, t.cfg.WaitAfterBuy) {
		return
	}

	sellResult := t.seller.Execute(ctx, token)
	if !sellResult.Success {
		t.logger.Warn("Sell failed",
			zap.String("mint", mint),
			zap.String("error", sellResult.Error))
		return
	}
	t.journal.RecordTrade(token, sellResult)
	t.cleaner.AfterSell(ctx, token)
}

// shutdown runs end-of-session cleanup for every traded mint.
func (t *Trader) shutdown(ctx context.Context) {
	t.mu.Lock()
	traded := make([]*domain.TokenInfo, len(t.traded))
	copy(traded, t.traded)
	t.mu.Unlock()

	t.logger.Info("Session ending", zap.Int("traded_tokens", len(traded)))
	t.cleaner.PostSession(ctx, traded)
}

// sleep pauses for d unless ctx ends first. Returns false on cancellation.
func (t *Trader) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
