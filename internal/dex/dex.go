// ==================================
// File: internal/dex/dex.go
// ==================================
package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

// Curve exposes venue-independent pricing over a decoded curve account.
type Curve interface {
	// Price returns the spot price in SOL per whole token.
	Price() (decimal.Decimal, error)
	// TokensForSol converts a lamport spend into a raw token quantity.
	TokensForSol(solLamports uint64) (uint64, error)
	// SolForTokens converts a raw token quantity into lamports.
	SolForTokens(rawTokens uint64) (uint64, error)
	// IsComplete reports whether the curve has graduated and trading on it
	// is closed.
	IsComplete() bool
}

// Venue is the capability surface the trading path needs from a launchpad.
// Everything else about a protocol stays inside its own package.
type Venue interface {
	Name() string
	ProgramID() solana.PublicKey

	// CurveAddress returns the account holding the token's curve state.
	CurveAddress(token *domain.TokenInfo) solana.PublicKey

	// DecodeCurve parses raw curve account data.
	DecodeCurve(data []byte) (Curve, error)

	// BuyInstruction builds a buy of amount raw tokens for token, spending at
	// most maxSolCost lamports. userATA is the buyer's token account.
	BuyInstruction(token *domain.TokenInfo, user, userATA solana.PublicKey, amount, maxSolCost uint64) (solana.Instruction, error)

	// SellInstruction builds a sell of amount raw tokens, requiring at least
	// minSolOutput lamports back.
	SellInstruction(token *domain.TokenInfo, user, userATA solana.PublicKey, amount, minSolOutput uint64) (solana.Instruction, error)

	// FeeAccounts returns the accounts to sample recent prioritization fees
	// over when trading token.
	FeeAccounts(token *domain.TokenInfo) []solana.PublicKey
}

// New returns the venue registered under name.
func New(name string) (Venue, error) {
	switch name {
	case "pumpfun", "pump.fun", "":
		return NewPumpFunVenue(), nil
	default:
		return nil, fmt.Errorf("unsupported venue: %q", name)
	}
}
