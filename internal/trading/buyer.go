// ==================================
// File: internal/trading/buyer.go
// ==================================
package trading

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
	"github.com/chainstacklabs/pump-fun-bot/internal/dex"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/fees"
	"github.com/chainstacklabs/pump-fun-bot/internal/wallet"
)

// BuyerConfig carries the position-entry settings.
type BuyerConfig struct {
	// SpendLamports is the base-currency budget per buy.
	SpendLamports uint64
	// SlippageBps widens the max spend, e.g. 100 allows 1% over budget.
	SlippageBps uint64
	// ExtremeFast skips the curve query and buys a flat token quantity.
	ExtremeFast bool
	// ExtremeFastTokenAmount is the raw token quantity for the fast path.
	ExtremeFastTokenAmount uint64

	ComputeUnitLimit uint32
	MaxRetryElapsed  time.Duration
}

// Buyer enters a position on a freshly discovered token.
type Buyer struct {
	cfg    BuyerConfig
	client blockchain.Client
	wallet *wallet.Wallet
	venue  dex.Venue
	sub    *submitter
	logger *zap.Logger
}

func NewBuyer(cfg BuyerConfig, client blockchain.Client, w *wallet.Wallet, venue dex.Venue, feeManager *fees.Manager, logger *zap.Logger) *Buyer {
	logger = logger.Named("buyer")
	if cfg.ExtremeFast && cfg.ExtremeFastTokenAmount == 0 {
		logger.Warn("Extreme fast mode enabled with zero token amount, buys will purchase nothing")
	}
	return &Buyer{
		cfg:    cfg,
		client: client,
		wallet: w,
		venue:  venue,
		sub:    newSubmitter(client, w, feeManager, cfg.ComputeUnitLimit, cfg.MaxRetryElapsed, logger),
		logger: logger,
	}
}

// Execute buys token and reports the outcome. All failures come back as an
// unsuccessful TradeResult, never as a panic or error.
func (b *Buyer) Execute(ctx context.Context, token *domain.TokenInfo) *domain.TradeResult {
	result := &domain.TradeResult{
		Side:      domain.TradeBuy,
		Mint:      token.Mint.String(),
		Symbol:    token.Symbol,
		Timestamp: time.Now().UTC(),
	}

	userATA, err := b.wallet.GetATA(token.Mint)
	if err != nil {
		return fail(result, err)
	}

	quantity, price, err := b.targetQuantity(ctx, token)
	if err != nil {
		return fail(result, err)
	}
	maxSpend := applySlippageUp(b.cfg.SpendLamports, b.cfg.SlippageBps)

	buyInst, err := b.venue.BuyInstruction(token, b.wallet.PublicKey, userATA, quantity, maxSpend)
	if err != nil {
		return fail(result, err)
	}
	instructions := []solana.Instruction{
		b.wallet.CreateATAIdempotentInstruction(token.Mint),
		buyInst,
	}
	instructions = b.sub.withPriorityFee(ctx, instructions, b.venue.FeeAccounts(token))

	b.logger.Info("Submitting buy",
		zap.String("mint", result.Mint),
		zap.String("symbol", token.Symbol),
		zap.Uint64("quantity", quantity),
		zap.Uint64("max_spend_lamports", maxSpend))

	sig, err := b.sub.submitAndConfirm(ctx, instructions)
	if !sig.IsZero() {
		result.Signature = sig.String()
	}
	if err != nil {
		b.logger.Error("Buy failed",
			zap.String("mint", result.Mint),
			zap.Error(err))
		return fail(result, err)
	}

	result.Success = true
	result.TokenAmount = quantity
	result.SolAmount = b.cfg.SpendLamports
	result.Price = price
	b.logger.Info("✅ Buy confirmed",
		zap.String("mint", result.Mint),
		zap.String("signature", result.Signature))
	return result
}

// targetQuantity decides how many raw tokens to buy. The fast path uses the
// configured flat amount without touching the network; the normal path prices
// the configured spend against the live curve.
func (b *Buyer) targetQuantity(ctx context.Context, token *domain.TokenInfo) (uint64, string, error) {
	if b.cfg.ExtremeFast {
		return b.cfg.ExtremeFastTokenAmount, "", nil
	}

	data, err := fetchCurveData(ctx, b.client, b.venue.CurveAddress(token))
	if err != nil {
		return 0, "", err
	}
	curve, err := b.venue.DecodeCurve(data)
	if err != nil {
		return 0, "", err
	}

	quantity, err := curve.TokensForSol(b.cfg.SpendLamports)
	if err != nil {
		return 0, "", err
	}
	price, err := curve.Price()
	if err != nil {
		return 0, "", err
	}
	return quantity, price.String(), nil
}

func fail(result *domain.TradeResult, err error) *domain.TradeResult {
	result.Success = false
	result.Error = err.Error()
	return result
}

var _ Executor = (*Buyer)(nil)
