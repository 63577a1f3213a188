// ==================================
// File: internal/fees/fees.go
// ==================================

// Package fees computes priority fees for trade transactions. A fee is a
// compute-unit price in micro-lamports, attached to transactions through
// compute budget instructions.
package fees

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Provider produces a compute-unit price for a trade touching accounts.
// ok is false when the provider has no fee to suggest.
type Provider interface {
	Fee(ctx context.Context, accounts []solana.PublicKey) (microLamports uint64, ok bool, err error)
}

// Fixed always returns the configured price.
type Fixed struct {
	MicroLamports uint64
}

func (f *Fixed) Fee(context.Context, []solana.PublicKey) (uint64, bool, error) {
	if f.MicroLamports == 0 {
		return 0, false, nil
	}
	return f.MicroLamports, true, nil
}

var _ Provider = (*Fixed)(nil)
