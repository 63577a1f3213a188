// =============================
// File: internal/dex/pumpfun/addresses.go
// =============================
package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Program accounts, fixed on mainnet.
var (
	ProgramID      = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	EventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	FeeRecipient   = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
)

const (
	LamportsPerSOL = 1_000_000_000
	TokenDecimals  = 6
)

// DeriveGlobal returns the program's global state PDA.
func DeriveGlobal() (solana.PublicKey, error) {
	global, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("global")},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive global account: %w", err)
	}
	return global, nil
}

// DeriveBondingCurve returns the bonding curve PDA for mint.
func DeriveBondingCurve(mint solana.PublicKey) (solana.PublicKey, error) {
	bondingCurve, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("bonding-curve"), mint.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bonding curve: %w", err)
	}
	return bondingCurve, nil
}

// DeriveAssociatedBondingCurve returns the curve's token account for mint.
func DeriveAssociatedBondingCurve(bondingCurve, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated bonding curve: %w", err)
	}
	return ata, nil
}

// DeriveCreatorVault returns the creator fee vault PDA for the token creator.
func DeriveCreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	vault, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("creator-vault"), creator.Bytes()},
		ProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive creator vault: %w", err)
	}
	return vault, nil
}
