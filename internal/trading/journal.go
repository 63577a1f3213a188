// ==================================
// File: internal/trading/journal.go
// ==================================
package trading

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

// journalEntry is one audit line in trades.log. The field set is stable:
// downstream tooling parses these records.
type journalEntry struct {
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	TokenAddr   string `json:"token_address"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Amount      uint64 `json:"amount"`
	TokenAmount uint64 `json:"token_amount"`
	TxHash      string `json:"tx_hash"`
}

// tokenSnapshot is the per-mint discovery record.
type tokenSnapshot struct {
	Name                   string `json:"name"`
	Symbol                 string `json:"symbol"`
	URI                    string `json:"uri"`
	Mint                   string `json:"mint"`
	BondingCurve           string `json:"bonding_curve"`
	AssociatedBondingCurve string `json:"associated_bonding_curve"`
	User                   string `json:"user"`
	Creator                string `json:"creator"`
	CreatorVault           string `json:"creator_vault"`
	DiscoveredAt           string `json:"discovered_at"`
}

// Journal persists an append-only line-delimited JSON record per trade and a
// JSON snapshot per discovered token.
type Journal struct {
	dir    string
	logger *zap.Logger

	mu sync.Mutex
}

func NewJournal(dir string, logger *zap.Logger) *Journal {
	if dir == "" {
		dir = "trades"
	}
	return &Journal{dir: dir, logger: logger.Named("journal")}
}

// RecordTrade appends one audit line for result.
func (j *Journal) RecordTrade(token *domain.TokenInfo, result *domain.TradeResult) {
	entry := journalEntry{
		Timestamp:   result.Timestamp.UTC().Format(time.RFC3339),
		Action:      string(result.Side),
		TokenAddr:   result.Mint,
		Symbol:      token.Symbol,
		Name:        token.Name,
		Price:       result.Price,
		Amount:      result.SolAmount,
		TokenAmount: result.TokenAmount,
		TxHash:      result.Signature,
	}

	if err := j.appendLine(entry); err != nil {
		j.logger.Error("Failed to write trade record", zap.Error(err))
	}
}

// SnapshotToken writes the token's discovery record to <mint>.json.
func (j *Journal) SnapshotToken(token *domain.TokenInfo) {
	snap := tokenSnapshot{
		Name:                   token.Name,
		Symbol:                 token.Symbol,
		URI:                    token.URI,
		Mint:                   token.Mint.String(),
		BondingCurve:           token.BondingCurve.String(),
		AssociatedBondingCurve: token.AssociatedBondingCurve.String(),
		User:                   token.User.String(),
		Creator:                token.Creator.String(),
		CreatorVault:           token.CreatorVault.String(),
		DiscoveredAt:           token.DiscoveredAt.UTC().Format(time.RFC3339Nano),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		j.logger.Error("Failed to marshal token snapshot", zap.Error(err))
		return
	}
	if err := j.ensureDir(); err != nil {
		j.logger.Error("Failed to create journal directory", zap.Error(err))
		return
	}

	path := filepath.Join(j.dir, snap.Mint+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		j.logger.Error("Failed to write token snapshot", zap.Error(err))
		return
	}
	j.logger.Info("Token information saved", zap.String("path", path))
}

func (j *Journal) appendLine(entry journalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal trade record: %w", err)
	}
	if err := j.ensureDir(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(j.dir, "trades.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trade log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append trade record: %w", err)
	}
	return nil
}

func (j *Journal) ensureDir() error {
	return os.MkdirAll(j.dir, 0o755)
}
