// ==================================
// File: internal/dex/pumpfun_adapter.go
// ==================================
package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
)

// pumpFunVenue adapts the pumpfun package to the Venue interface.
type pumpFunVenue struct {
	global solana.PublicKey
}

// NewPumpFunVenue constructs the pump.fun venue.
func NewPumpFunVenue() Venue {
	// The global PDA depends only on the fixed program id, so derivation
	// cannot fail at runtime.
	global, err := pumpfun.DeriveGlobal()
	if err != nil {
		panic(fmt.Sprintf("derive pump.fun global PDA: %v", err))
	}
	return &pumpFunVenue{global: global}
}

func (v *pumpFunVenue) Name() string { return "pumpfun" }

func (v *pumpFunVenue) ProgramID() solana.PublicKey { return pumpfun.ProgramID }

func (v *pumpFunVenue) CurveAddress(token *domain.TokenInfo) solana.PublicKey {
	return token.BondingCurve
}

func (v *pumpFunVenue) DecodeCurve(data []byte) (Curve, error) {
	return pumpfun.DecodeCurveState(data)
}

func (v *pumpFunVenue) BuyInstruction(token *domain.TokenInfo, user, userATA solana.PublicKey, amount, maxSolCost uint64) (solana.Instruction, error) {
	return pumpfun.BuildBuyInstruction(v.tradeAccounts(token, user, userATA), amount, maxSolCost), nil
}

func (v *pumpFunVenue) SellInstruction(token *domain.TokenInfo, user, userATA solana.PublicKey, amount, minSolOutput uint64) (solana.Instruction, error) {
	if token.CreatorVault.IsZero() {
		return nil, fmt.Errorf("token %s has no creator vault", token.Mint)
	}
	return pumpfun.BuildSellInstruction(v.tradeAccounts(token, user, userATA), amount, minSolOutput), nil
}

func (v *pumpFunVenue) FeeAccounts(token *domain.TokenInfo) []solana.PublicKey {
	return []solana.PublicKey{
		token.Mint,
		token.BondingCurve,
		pumpfun.ProgramID,
		pumpfun.FeeRecipient,
	}
}

func (v *pumpFunVenue) tradeAccounts(token *domain.TokenInfo, user, userATA solana.PublicKey) pumpfun.TradeAccounts {
	return pumpfun.TradeAccounts{
		Global:                 v.global,
		Mint:                   token.Mint,
		BondingCurve:           token.BondingCurve,
		AssociatedBondingCurve: token.AssociatedBondingCurve,
		AssociatedUser:         userATA,
		User:                   user,
		CreatorVault:           token.CreatorVault,
	}
}

var _ Venue = (*pumpFunVenue)(nil)
