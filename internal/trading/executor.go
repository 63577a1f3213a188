// ==================================
// File: internal/trading/executor.go
// ==================================

// Package trading drives the buy/sell lifecycle for discovered tokens: the
// Buyer and Seller executors build and submit venue instructions, the Trader
// coordinates discovery, deduplication and sequential lifecycles.
package trading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/fees"
	"github.com/chainstacklabs/pump-fun-bot/internal/wallet"
)

// Executor runs one side of a trade. Execute never panics and never returns
// an error: every failure is folded into the TradeResult.
type Executor interface {
	Execute(ctx context.Context, token *domain.TokenInfo) *domain.TradeResult
}

// submitter owns the sign/submit/confirm pipeline shared by both executors.
type submitter struct {
	client blockchain.Client
	wallet *wallet.Wallet
	fees   *fees.Manager
	logger *zap.Logger

	// computeUnitLimit is prepended as a compute budget instruction when a
	// priority fee is attached. Zero leaves the default limit.
	computeUnitLimit uint32
	// maxRetryElapsed bounds the exponential backoff across submission
	// attempts.
	maxRetryElapsed time.Duration
}

func newSubmitter(client blockchain.Client, w *wallet.Wallet, feeManager *fees.Manager, computeUnitLimit uint32, maxRetryElapsed time.Duration, logger *zap.Logger) *submitter {
	if maxRetryElapsed <= 0 {
		maxRetryElapsed = 15 * time.Second
	}
	return &submitter{
		client:           client,
		wallet:           w,
		fees:             feeManager,
		logger:           logger,
		computeUnitLimit: computeUnitLimit,
		maxRetryElapsed:  maxRetryElapsed,
	}
}

// withPriorityFee prepends compute budget instructions when the fee manager
// resolves a fee over feeAccounts. A fee resolution error is logged and the
// trade proceeds without a fee rather than failing.
func (s *submitter) withPriorityFee(ctx context.Context, instructions []solana.Instruction, feeAccounts []solana.PublicKey) []solana.Instruction {
	fee, ok, err := s.fees.PriorityFee(ctx, feeAccounts)
	if err != nil {
		s.logger.Warn("Priority fee resolution failed, submitting without fee", zap.Error(err))
		return instructions
	}
	if !ok {
		return instructions
	}

	budget := make([]solana.Instruction, 0, 2)
	if s.computeUnitLimit > 0 {
		budget = append(budget, computebudget.NewSetComputeUnitLimitInstruction(s.computeUnitLimit).Build())
	}
	budget = append(budget, computebudget.NewSetComputeUnitPriceInstruction(fee).Build())

	s.logger.Debug("Attached priority fee", zap.Uint64("micro_lamports", fee))
	return append(budget, instructions...)
}

// submitAndConfirm signs and sends instructions, retrying transient
// submission failures with exponential backoff, then waits for confirmation.
// The returned signature is set whenever a submission reached the network,
// even if confirmation subsequently failed.
func (s *submitter) submitAndConfirm(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	var lastSig solana.Signature

	op := func() (solana.Signature, error) {
		blockhash, err := s.client.GetRecentBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
		}

		tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(s.wallet.PublicKey))
		if err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("failed to create transaction: %w", err))
		}

		if err := s.wallet.SignTransaction(tx); err != nil {
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
		}

		sig, err := s.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			if strings.Contains(err.Error(), "BlockhashNotFound") {
				return solana.Signature{}, err
			}
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("transaction submission failed: %w", err))
		}
		lastSig = sig

		if err := s.client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
			// Confirmed-with-error and timed-out confirmations are not
			// retried; the same instructions would fail the same way.
			return sig, backoff.Permanent(fmt.Errorf("transaction not confirmed: %w", err))
		}
		return sig, nil
	}

	sig, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.maxRetryElapsed),
	)
	if err != nil {
		return lastSig, err
	}
	return sig, nil
}

// fetchCurveData reads the raw curve account data.
func fetchCurveData(ctx context.Context, client blockchain.Client, account solana.PublicKey) ([]byte, error) {
	info, err := client.GetAccountInfo(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get curve account: %w", err)
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("curve account %s not found", account)
	}
	return info.Value.Data.GetBinary(), nil
}

// applySlippageUp scales amount up by slippageBps basis points.
func applySlippageUp(amount, slippageBps uint64) uint64 {
	return amount * (10_000 + slippageBps) / 10_000
}

// applySlippageDown scales amount down by slippageBps basis points.
func applySlippageDown(amount, slippageBps uint64) uint64 {
	if slippageBps >= 10_000 {
		return 0
	}
	return amount * (10_000 - slippageBps) / 10_000
}
