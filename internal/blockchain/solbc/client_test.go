// internal/blockchain/solbc/client_test.go
package solbc

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
)

func TestIsAccountNotFoundError(t *testing.T) {
	assert.False(t, IsAccountNotFoundError(nil))
	assert.True(t, IsAccountNotFoundError(ErrAccountNotFound))
	assert.True(t, IsAccountNotFoundError(errors.New("rpc: account Not Found")))
	assert.False(t, IsAccountNotFoundError(errors.New("connection refused")))
}

func TestConfirmationReached(t *testing.T) {
	assert.True(t, confirmationReached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed))
	assert.True(t, confirmationReached(rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed))
	assert.False(t, confirmationReached(rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed))
	assert.False(t, confirmationReached(rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized))
	assert.True(t, confirmationReached(rpc.ConfirmationStatusFinalized, rpc.CommitmentFinalized))
}
