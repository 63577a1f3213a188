// =============================
// File: internal/dex/pumpfun/curve.go
// =============================
package pumpfun

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// curveDiscriminator identifies a bonding curve account. Accounts whose first
// eight bytes differ belong to some other account type of the program.
const curveDiscriminator uint64 = 6966180631402821399

// curveStateSize is discriminator + five u64 reserves fields + complete flag +
// creator pubkey.
const curveStateSize = 8 + 5*8 + 1 + 32

var (
	ErrSchemaMismatch  = errors.New("bonding curve discriminator mismatch")
	ErrShortBuffer     = errors.New("bonding curve data too short")
	ErrInvalidReserves = errors.New("bonding curve has non-positive reserves")
)

// CurveState mirrors the on-chain bonding curve account.
type CurveState struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

// DecodeCurveState parses raw bonding curve account data.
func DecodeCurveState(data []byte) (*CurveState, error) {
	if len(data) < curveStateSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrShortBuffer, len(data), curveStateSize)
	}
	if binary.LittleEndian.Uint64(data[0:8]) != curveDiscriminator {
		return nil, ErrSchemaMismatch
	}

	state := &CurveState{
		VirtualTokenReserves: binary.LittleEndian.Uint64(data[8:16]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(data[16:24]),
		RealTokenReserves:    binary.LittleEndian.Uint64(data[24:32]),
		RealSolReserves:      binary.LittleEndian.Uint64(data[32:40]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(data[40:48]),
		Complete:             data[48] != 0,
	}
	state.Creator = solana.PublicKeyFromBytes(data[49:81])
	return state, nil
}

// Encode is the inverse of DecodeCurveState.
func (s *CurveState) Encode() []byte {
	data := make([]byte, curveStateSize)
	binary.LittleEndian.PutUint64(data[0:8], curveDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], s.VirtualTokenReserves)
	binary.LittleEndian.PutUint64(data[16:24], s.VirtualSolReserves)
	binary.LittleEndian.PutUint64(data[24:32], s.RealTokenReserves)
	binary.LittleEndian.PutUint64(data[32:40], s.RealSolReserves)
	binary.LittleEndian.PutUint64(data[40:48], s.TokenTotalSupply)
	if s.Complete {
		data[48] = 1
	}
	copy(data[49:81], s.Creator.Bytes())
	return data
}

// IsComplete reports whether the curve has graduated.
func (s *CurveState) IsComplete() bool { return s.Complete }

// Price returns the spot price in SOL per whole token.
func (s *CurveState) Price() (decimal.Decimal, error) {
	if s.VirtualTokenReserves == 0 || s.VirtualSolReserves == 0 {
		return decimal.Zero, ErrInvalidReserves
	}
	sol := decimal.NewFromUint64(s.VirtualSolReserves).Shift(-9)
	tokens := decimal.NewFromUint64(s.VirtualTokenReserves).Shift(-TokenDecimals)
	return sol.Div(tokens), nil
}

// TokensForSol returns the raw token quantity solLamports buys at the current
// spot price, ignoring curve movement during the trade.
func (s *CurveState) TokensForSol(solLamports uint64) (uint64, error) {
	price, err := s.Price()
	if err != nil {
		return 0, err
	}
	sol := decimal.NewFromUint64(solLamports).Shift(-9)
	tokens := sol.Div(price).Shift(TokenDecimals)
	return uint64(tokens.IntPart()), nil
}

// SolForTokens returns the lamport value of rawTokens at the current spot price.
func (s *CurveState) SolForTokens(rawTokens uint64) (uint64, error) {
	price, err := s.Price()
	if err != nil {
		return 0, err
	}
	tokens := decimal.NewFromUint64(rawTokens).Shift(-TokenDecimals)
	lamports := tokens.Mul(price).Shift(9)
	return uint64(lamports.IntPart()), nil
}
