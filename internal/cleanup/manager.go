// ==================================
// File: internal/cleanup/manager.go
// ==================================

// Package cleanup reclaims associated token accounts after trading: leftover
// tokens are optionally burned and the account is closed so its rent lamports
// return to the wallet.
package cleanup

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain/solbc"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/fees"
	"github.com/chainstacklabs/pump-fun-bot/internal/wallet"
)

// Mode decides when account cleanup runs.
type Mode string

const (
	ModeDisabled    Mode = "disabled"
	ModeOnFail      Mode = "on_fail"
	ModeAfterSell   Mode = "after_sell"
	ModePostSession Mode = "post_session"
)

// Config mirrors the cleanup section of the bot config.
type Config struct {
	Mode Mode
	// ForceBurn burns a leftover balance before closing. Without it accounts
	// holding tokens are left untouched.
	ForceBurn bool
	// UsePriorityFee attaches a priority fee to cleanup transactions.
	UsePriorityFee   bool
	ComputeUnitLimit uint32
}

// Manager performs the cleanup. Failures are logged and swallowed: cleanup is
// best-effort housekeeping and must never disturb the trading session.
type Manager struct {
	cfg    Config
	client blockchain.Client
	wallet *wallet.Wallet
	fees   *fees.Manager
	logger *zap.Logger
}

func NewManager(cfg Config, client blockchain.Client, w *wallet.Wallet, feeManager *fees.Manager, logger *zap.Logger) *Manager {
	if cfg.Mode == "" {
		cfg.Mode = ModeDisabled
	}
	return &Manager{
		cfg:    cfg,
		client: client,
		wallet: w,
		fees:   feeManager,
		logger: logger.Named("cleanup"),
	}
}

// OnBuyFailure reclaims the token account left behind by a failed buy.
func (m *Manager) OnBuyFailure(ctx context.Context, tok *domain.TokenInfo) {
	if m.cfg.Mode != ModeOnFail {
		return
	}
	m.logger.Info("Cleanup triggered by failed buy", zap.String("mint", tok.Mint.String()))
	m.cleanupATA(ctx, tok.Mint)
}

// AfterSell reclaims the emptied token account right after a sell.
func (m *Manager) AfterSell(ctx context.Context, tok *domain.TokenInfo) {
	if m.cfg.Mode != ModeAfterSell {
		return
	}
	m.logger.Info("Cleanup triggered after sell", zap.String("mint", tok.Mint.String()))
	m.cleanupATA(ctx, tok.Mint)
}

// PostSession reclaims the accounts of every mint traded this session.
func (m *Manager) PostSession(ctx context.Context, tokens []*domain.TokenInfo) {
	if m.cfg.Mode != ModePostSession || len(tokens) == 0 {
		return
	}
	m.logger.Info("Cleanup triggered post session", zap.Int("mints", len(tokens)))
	for _, tok := range tokens {
		m.cleanupATA(ctx, tok.Mint)
	}
}

// cleanupATA burns any remaining balance (when forced) and closes the
// wallet's associated token account for mint.
func (m *Manager) cleanupATA(ctx context.Context, mint solana.PublicKey) {
	ata, err := m.wallet.GetATA(mint)
	if err != nil {
		m.logger.Warn("Cleanup failed to derive token account", zap.Error(err))
		return
	}

	info, err := m.client.GetAccountInfo(ctx, ata)
	if solbc.IsAccountNotFoundError(err) || (err == nil && (info == nil || info.Value == nil)) {
		m.logger.Info("Token account does not exist or is already closed",
			zap.String("account", ata.String()))
		return
	}
	if err != nil {
		m.logger.Warn("Cleanup failed to read token account", zap.Error(err))
		return
	}

	balance, err := m.client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		m.logger.Warn("Cleanup failed to read token balance", zap.Error(err))
		return
	}

	var instructions []solana.Instruction
	if balance > 0 {
		if !m.cfg.ForceBurn {
			m.logger.Info("Skipping account with non-zero balance, force burn disabled",
				zap.String("account", ata.String()),
				zap.Uint64("balance", balance))
			return
		}
		m.logger.Info("Burning leftover tokens",
			zap.String("account", ata.String()),
			zap.Uint64("balance", balance))
		instructions = append(instructions,
			token.NewBurnInstruction(balance, ata, mint, m.wallet.PublicKey, nil).Build())
	}

	instructions = append(instructions,
		token.NewCloseAccountInstruction(ata, m.wallet.PublicKey, m.wallet.PublicKey, nil).Build())

	if m.cfg.UsePriorityFee {
		instructions = m.withPriorityFee(ctx, instructions, ata)
	}

	if err := m.submit(ctx, instructions); err != nil {
		m.logger.Warn("Cleanup transaction failed",
			zap.String("account", ata.String()),
			zap.Error(err))
		return
	}
	m.logger.Info("Token account closed", zap.String("account", ata.String()))
}

func (m *Manager) withPriorityFee(ctx context.Context, instructions []solana.Instruction, ata solana.PublicKey) []solana.Instruction {
	fee, ok, err := m.fees.PriorityFee(ctx, []solana.PublicKey{ata})
	if err != nil {
		m.logger.Warn("Cleanup fee resolution failed, proceeding without fee", zap.Error(err))
		return instructions
	}
	if !ok {
		return instructions
	}

	budget := make([]solana.Instruction, 0, 2)
	if m.cfg.ComputeUnitLimit > 0 {
		budget = append(budget, computebudget.NewSetComputeUnitLimitInstruction(m.cfg.ComputeUnitLimit).Build())
	}
	budget = append(budget, computebudget.NewSetComputeUnitPriceInstruction(fee).Build())
	return append(budget, instructions...)
}

func (m *Manager) submit(ctx context.Context, instructions []solana.Instruction) error {
	blockhash, err := m.client.GetRecentBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(m.wallet.PublicKey))
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := m.wallet.SignTransaction(tx); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := m.client.SendTransactionWithOpts(ctx, tx, blockchain.TransactionOptions{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to submit transaction: %w", err)
	}
	if err := m.client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return fmt.Errorf("transaction not confirmed: %w", err)
	}
	return nil
}
