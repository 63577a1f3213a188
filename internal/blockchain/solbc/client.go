// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
)

// Client is a thin adapter over solana-go's RPC client.
type Client struct {
	rpc            *rpc.Client
	logger         *zap.Logger
	confirmTimeout time.Duration
}

var ErrAccountNotFound = errors.New("account not found")

// IsAccountNotFoundError reports whether err means the account does not exist.
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// NewClient creates a new client for the given RPC URL.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:            rpc.New(rpcURL),
		logger:         logger.Named("solbc-client"),
		confirmTimeout: 30 * time.Second,
	}
}

// SetConfirmTimeout overrides how long WaitForTransactionConfirmation polls
// before giving up.
func (c *Client) SetConfirmTimeout(d time.Duration) {
	if d > 0 {
		c.confirmTimeout = d
	}
}

// GetAccountInfo fetches raw account data.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	result, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

// GetTokenAccountBalance returns the raw token balance of a token account.
// A missing account is reported as a zero balance, not an error: the ATA of a
// freshly discovered mint usually does not exist yet.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	result, err := c.rpc.GetTokenAccountBalance(ctx, account, commitment)
	if err != nil {
		if IsAccountNotFoundError(err) {
			return 0, nil
		}
		c.logger.Debug("GetTokenAccountBalance error",
			zap.String("account", account.String()),
			zap.Error(err))
		return 0, err
	}
	if result == nil || result.Value == nil || result.Value.Amount == "" {
		return 0, nil
	}
	balance, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return balance, nil
}

// GetRecentBlockhash fetches the latest blockhash.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, err
	}
	return result.Value.Blockhash, nil
}

// SendTransactionWithOpts submits a signed transaction.
func (c *Client) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransactionWithOpts error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// WaitForTransactionConfirmation polls signature statuses until the requested
// commitment is reached, the transaction errors on-chain, or the wait times out.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("confirmation timeout for %s", signature.String())
		case <-ticker.C:
			statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", signature.String(), status.Err)
			}
			if confirmationReached(status.ConfirmationStatus, commitment) {
				return nil
			}
		}
	}
}

func confirmationReached(got rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch want {
	case rpc.CommitmentFinalized:
		return got == rpc.ConfirmationStatusFinalized
	default:
		return got == rpc.ConfirmationStatusConfirmed || got == rpc.ConfirmationStatusFinalized
	}
}

// GetRecentPrioritizationFees returns the node's recent prioritization fee
// samples, optionally filtered to the given accounts.
func (c *Client) GetRecentPrioritizationFees(ctx context.Context, accounts []solana.PublicKey) ([]blockchain.PrioritizationFeeSample, error) {
	fees, err := c.rpc.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		c.logger.Debug("GetRecentPrioritizationFees error", zap.Error(err))
		return nil, err
	}
	samples := make([]blockchain.PrioritizationFeeSample, 0, len(fees))
	for _, f := range fees {
		samples = append(samples, blockchain.PrioritizationFeeSample{
			Slot:              uint64(f.Slot),
			PrioritizationFee: f.PrioritizationFee,
		})
	}
	return samples, nil
}

// GetBalance fetches the lamport balance of an account.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// Health probes the RPC node.
func (c *Client) Health(ctx context.Context) error {
	out, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return err
	}
	if out != rpc.HealthOk {
		return fmt.Errorf("rpc node unhealthy: %s", out)
	}
	return nil
}

var _ blockchain.Client = (*Client)(nil)
