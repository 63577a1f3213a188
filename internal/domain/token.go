// ==================================
// File: internal/domain/token.go
// ==================================
package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// TokenInfo describes a newly created bonding-curve token as decoded from a
// creation event. All addresses needed to trade the token are carried here so
// the trading path never has to look them up again.
type TokenInfo struct {
	Name   string
	Symbol string
	URI    string

	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	// User signed the creation transaction; Creator is the nominal creator
	// whose vault collects trade fees. They usually coincide.
	User         solana.PublicKey
	Creator      solana.PublicKey
	CreatorVault solana.PublicKey

	// DiscoveredAt is a monotonic-clock timestamp taken when the creation
	// event was observed. Used for freshness checks, never for wall time.
	DiscoveredAt time.Time
}

// Age returns how long ago the token was discovered.
func (t *TokenInfo) Age(now time.Time) time.Duration {
	return now.Sub(t.DiscoveredAt)
}

// TradeSide distinguishes buy and sell results in the trade journal.
type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// TradeResult records the outcome of a single buy or sell attempt.
type TradeResult struct {
	Side      TradeSide `json:"side"`
	Mint      string    `json:"mint"`
	Symbol    string    `json:"symbol,omitempty"`
	Success   bool      `json:"success"`
	Signature string    `json:"signature,omitempty"`
	Error     string    `json:"error,omitempty"`

	// TokenAmount is the raw token quantity bought or sold.
	TokenAmount uint64 `json:"token_amount,omitempty"`
	// SolAmount is the lamport amount spent (buy) or expected (sell).
	SolAmount uint64 `json:"sol_amount,omitempty"`
	// Price is the curve price in SOL per token at the time of the trade.
	Price string `json:"price,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
