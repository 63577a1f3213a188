// ==================================
// File: internal/trading/seller.go
// ==================================
package trading

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
	"github.com/chainstacklabs/pump-fun-bot/internal/dex"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/fees"
	"github.com/chainstacklabs/pump-fun-bot/internal/wallet"
)

// ErrNoTokens marks a sell attempt against an empty balance.
var ErrNoTokens = errors.New("no tokens to sell")

// SellerConfig carries the position-exit settings.
type SellerConfig struct {
	// SlippageBps narrows the minimum acceptable proceeds.
	SlippageBps uint64

	ComputeUnitLimit uint32
	MaxRetryElapsed  time.Duration
}

// Seller exits the full position held for a token.
type Seller struct {
	cfg    SellerConfig
	client blockchain.Client
	wallet *wallet.Wallet
	venue  dex.Venue
	sub    *submitter
	logger *zap.Logger
}

func NewSeller(cfg SellerConfig, client blockchain.Client, w *wallet.Wallet, venue dex.Venue, feeManager *fees.Manager, logger *zap.Logger) *Seller {
	logger = logger.Named("seller")
	return &Seller{
		cfg:    cfg,
		client: client,
		wallet: w,
		venue:  venue,
		sub:    newSubmitter(client, w, feeManager, cfg.ComputeUnitLimit, cfg.MaxRetryElapsed, logger),
		logger: logger,
	}
}

// Execute sells the wallet's entire balance of token. A zero balance fails
// fast without submitting anything.
func (s *Seller) Execute(ctx context.Context, token *domain.TokenInfo) *domain.TradeResult {
	result := &domain.TradeResult{
		Side:      domain.TradeSell,
		Mint:      token.Mint.String(),
		Symbol:    token.Symbol,
		Timestamp: time.Now().UTC(),
	}

	userATA, err := s.wallet.GetATA(token.Mint)
	if err != nil {
		return fail(result, err)
	}

	balance, err := s.client.GetTokenAccountBalance(ctx, userATA, rpc.CommitmentProcessed)
	if err != nil {
		return fail(result, err)
	}
	if balance == 0 {
		s.logger.Info("No tokens to sell", zap.String("mint", result.Mint))
		return fail(result, ErrNoTokens)
	}

	data, err := fetchCurveData(ctx, s.client, s.venue.CurveAddress(token))
	if err != nil {
		return fail(result, err)
	}
	curve, err := s.venue.DecodeCurve(data)
	if err != nil {
		return fail(result, err)
	}
	proceeds, err := curve.SolForTokens(balance)
	if err != nil {
		return fail(result, err)
	}
	minOut := applySlippageDown(proceeds, s.cfg.SlippageBps)

	price, err := curve.Price()
	if err != nil {
		return fail(result, err)
	}

	sellInst, err := s.venue.SellInstruction(token, s.wallet.PublicKey, userATA, balance, minOut)
	if err != nil {
		return fail(result, err)
	}
	instructions := s.sub.withPriorityFee(ctx, []solana.Instruction{sellInst}, s.venue.FeeAccounts(token))

	s.logger.Info("Submitting sell",
		zap.String("mint", result.Mint),
		zap.Uint64("quantity", balance),
		zap.Uint64("min_sol_output", minOut))

	sig, err := s.sub.submitAndConfirm(ctx, instructions)
	if !sig.IsZero() {
		result.Signature = sig.String()
	}
	if err != nil {
		s.logger.Error("Sell failed",
			zap.String("mint", result.Mint),
			zap.Error(err))
		return fail(result, err)
	}

	result.Success = true
	result.TokenAmount = balance
	result.SolAmount = proceeds
	result.Price = price.String()
	s.logger.Info("✅ Sell confirmed",
		zap.String("mint", result.Mint),
		zap.String("signature", result.Signature))
	return result
}

var _ Executor = (*Seller)(nil)
