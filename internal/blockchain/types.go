// =================================
// File: internal/blockchain/types.go
// =================================
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TransactionOptions defines options for sending transactions.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// PrioritizationFeeSample is one slot's observed prioritization fee.
type PrioritizationFeeSample struct {
	Slot              uint64
	PrioritizationFee uint64
}

// Client defines the network surface the trading pipeline depends on.
// Everything above this interface is testable with an in-memory fake.
type Client interface {
	// Read raw account bytes by address.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	// Read a token account balance in raw units.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Get a recent blockhash for transaction assembly.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Submit a signed transaction.
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// Await confirmation of a submitted signature at the given commitment.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
	// Query recent network prioritization fees, optionally filtered to accounts.
	GetRecentPrioritizationFees(ctx context.Context, accounts []solana.PublicKey) ([]PrioritizationFeeSample, error)
	// Get the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Liveness probe against the RPC node.
	Health(ctx context.Context) error
}
