// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain/solbc"
	"github.com/chainstacklabs/pump-fun-bot/internal/cleanup"
	"github.com/chainstacklabs/pump-fun-bot/internal/config"
	"github.com/chainstacklabs/pump-fun-bot/internal/dex"
	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
	"github.com/chainstacklabs/pump-fun-bot/internal/fees"
	"github.com/chainstacklabs/pump-fun-bot/internal/logger"
	"github.com/chainstacklabs/pump-fun-bot/internal/monitoring"
	"github.com/chainstacklabs/pump-fun-bot/internal/trading"
	"github.com/chainstacklabs/pump-fun-bot/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/bot.yaml", "path to the bot configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		MaxBackups:  cfg.Logging.MaxBackups,
		Compress:    cfg.Logging.Compress,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	sessionLog := log.WithSession(cfg.Name)
	sessionLog.Info("Starting sniper bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := solbc.NewClient(cfg.RPCEndpoint, sessionLog)
	client.SetConfirmTimeout(cfg.Retries.ConfirmTimeout)

	w, err := wallet.New(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}

	spendLamports := uint64(cfg.Trade.BuyAmountSOL * pumpfun.LamportsPerSOL)
	if err := validateSetup(ctx, client, w, spendLamports, sessionLog); err != nil {
		return err
	}

	venue, err := dex.New("pumpfun")
	if err != nil {
		return err
	}

	feeManager := fees.NewManager(fees.ManagerConfig{
		EnableDynamic: cfg.PriorityFees.EnableDynamic,
		EnableFixed:   cfg.PriorityFees.EnableFixed,
		FixedAmount:   cfg.PriorityFees.FixedAmount,
		ExtraPercent:  cfg.PriorityFees.ExtraPercentage,
		HardCap:       cfg.PriorityFees.HardCap,
	},
		&fees.Dynamic{Client: client},
		&fees.Fixed{MicroLamports: cfg.PriorityFees.FixedAmount},
		sessionLog,
	)

	buyer := trading.NewBuyer(trading.BuyerConfig{
		SpendLamports:          spendLamports,
		SlippageBps:            cfg.Trade.BuySlippageBps,
		ExtremeFast:            cfg.Trade.ExtremeFastMode,
		ExtremeFastTokenAmount: rawTokenAmount(cfg.Trade.ExtremeFastTokenAmount),
		ComputeUnitLimit:       cfg.Trade.ComputeUnitLimit,
		MaxRetryElapsed:        cfg.Retries.MaxElapsed,
	}, client, w, venue, feeManager, sessionLog)

	seller := trading.NewSeller(trading.SellerConfig{
		SlippageBps:      cfg.Trade.SellSlippageBps,
		ComputeUnitLimit: cfg.Trade.ComputeUnitLimit,
		MaxRetryElapsed:  cfg.Retries.MaxElapsed,
	}, client, w, venue, feeManager, sessionLog)

	cleaner := cleanup.NewManager(cleanup.Config{
		Mode:             cleanup.Mode(cfg.Cleanup.Mode),
		ForceBurn:        cfg.Cleanup.ForceCloseWithBurn,
		UsePriorityFee:   cfg.Cleanup.WithPriorityFee,
		ComputeUnitLimit: cfg.Trade.ComputeUnitLimit,
	}, client, w, feeManager, sessionLog)

	listener, err := monitoring.NewListener(
		listenerType(cfg.Filters.ListenerType),
		cfg.WSSEndpoint,
		monitoring.Filters{
			MatchString:    cfg.Filters.MatchString,
			CreatorAddress: cfg.Filters.CreatorAddress,
		},
		sessionLog,
	)
	if err != nil {
		return err
	}

	journal := trading.NewJournal("trades", sessionLog)

	trader := trading.NewTrader(trading.TraderConfig{
		Continuous:         cfg.Filters.YoloMode,
		MarryMode:          cfg.Filters.MarryMode,
		MaxTokenAge:        cfg.Filters.MaxTokenAge,
		StabilizationDelay: cfg.Timing.WaitAfterCreation,
		WaitAfterBuy:       cfg.Timing.WaitAfterBuy,
		Cooldown:           cfg.Timing.Cooldown,
		SingleShotTimeout:  cfg.Timing.ListenTimeout,
		ExtremeFast:        cfg.Trade.ExtremeFastMode,
	}, listener, buyer, seller, journal, cleaner, sessionLog)

	go handleSignals(trader, sessionLog)

	if err := trader.Run(ctx); err != nil {
		return fmt.Errorf("trading session failed: %w", err)
	}
	sessionLog.Info("Session finished")
	return nil
}

// validateSetup probes the RPC node and checks the wallet can cover the
// configured spend before any listener is started.
func validateSetup(ctx context.Context, client *solbc.Client, w *wallet.Wallet, spendLamports uint64, log *zap.Logger) error {
	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("RPC node health check failed: %w", err)
	}
	balance, err := client.GetBalance(ctx, w.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to fetch wallet balance: %w", err)
	}
	log.Info("Wallet validated",
		zap.String("wallet", w.String()),
		zap.Uint64("balance_lamports", balance),
		zap.Uint64("spend_lamports", spendLamports))
	if balance < spendLamports {
		return fmt.Errorf("insufficient balance: have %d lamports, need %d", balance, spendLamports)
	}
	return nil
}

func handleSignals(trader *trading.Trader, log *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	trader.Stop()
}

func listenerType(name string) monitoring.ListenerType {
	if name == "blocks" {
		return monitoring.ListenerBlock
	}
	return monitoring.ListenerLogs
}

// rawTokenAmount converts a whole-token quantity from the config into the
// mint's raw units.
func rawTokenAmount(tokens uint64) uint64 {
	raw := tokens
	for i := 0; i < pumpfun.TokenDecimals; i++ {
		raw *= 10
	}
	return raw
}
