// =============================
// File: internal/dex/pumpfun/instructions.go
// =============================
package pumpfun

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Anchor instruction discriminators, little-endian u64 form.
const (
	buyDiscriminator  uint64 = 16927863322537952870
	sellDiscriminator uint64 = 12502976635542562355
)

// TradeAccounts carries the token-specific accounts a buy or sell references.
type TradeAccounts struct {
	Global                 solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
	CreatorVault           solana.PublicKey
}

func encodeTradeData(discriminator, amount, limit uint64) []byte {
	data := make([]byte, 24)
	binary.LittleEndian.PutUint64(data[0:8], discriminator)
	binary.LittleEndian.PutUint64(data[8:16], amount)
	binary.LittleEndian.PutUint64(data[16:24], limit)
	return data
}

// BuildBuyInstruction builds a buy of amount raw tokens, capped at maxSolCost
// lamports. The account list must match the program's expected order exactly.
func BuildBuyInstruction(accounts TradeAccounts, amount, maxSolCost uint64) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ProgramID, metas, encodeTradeData(buyDiscriminator, amount, maxSolCost))
}

// BuildSellInstruction builds a sell of amount raw tokens, requiring at least
// minSolOutput lamports back.
func BuildSellInstruction(accounts TradeAccounts, amount, minSolOutput uint64) solana.Instruction {
	metas := []*solana.AccountMeta{
		{PublicKey: accounts.Global, IsSigner: false, IsWritable: false},
		{PublicKey: FeeRecipient, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.BondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedBondingCurve, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.AssociatedUser, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.CreatorVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: EventAuthority, IsSigner: false, IsWritable: false},
		{PublicKey: ProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(ProgramID, metas, encodeTradeData(sellDiscriminator, amount, minSolOutput))
}
