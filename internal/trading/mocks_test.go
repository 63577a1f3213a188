// ==================================
// File: internal/trading/mocks_test.go
// ==================================
package trading

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/chainstacklabs/pump-fun-bot/internal/blockchain"
	"github.com/chainstacklabs/pump-fun-bot/internal/domain"
	"github.com/chainstacklabs/pump-fun-bot/internal/monitoring"
)

// mockClient is an in-memory network client capturing submitted transactions.
type mockClient struct {
	mu sync.Mutex

	curveData    []byte
	tokenBalance uint64
	sendErr      error
	confirmErr   error

	sent         []*solana.Transaction
	balanceCalls int
}

func (c *mockClient) GetAccountInfo(context.Context, solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Data: rpc.DataBytesOrJSONFromBytes(c.curveData),
		},
	}, nil
}

func (c *mockClient) GetTokenAccountBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balanceCalls++
	return c.tokenBalance, nil
}

func (c *mockClient) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (c *mockClient) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ blockchain.TransactionOptions) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return solana.Signature{}, c.sendErr
	}
	c.sent = append(c.sent, tx)
	return solana.Signature{42}, nil
}

func (c *mockClient) WaitForTransactionConfirmation(context.Context, solana.Signature, rpc.CommitmentType) error {
	return c.confirmErr
}

func (c *mockClient) GetRecentPrioritizationFees(context.Context, []solana.PublicKey) ([]blockchain.PrioritizationFeeSample, error) {
	return nil, nil
}

func (c *mockClient) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 10_000_000_000, nil
}

func (c *mockClient) Health(context.Context) error { return nil }

func (c *mockClient) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

var _ blockchain.Client = (*mockClient)(nil)

// fakeListener replays a fixed discovery sequence, then idles until stopped.
type fakeListener struct {
	tokens []*domain.TokenInfo
}

func (l *fakeListener) Listen(ctx context.Context, cb monitoring.TokenCallback) error {
	for _, token := range l.tokens {
		cb(token)
	}
	<-ctx.Done()
	return ctx.Err()
}

// mockExecutor counts invocations and returns canned results.
type mockExecutor struct {
	mu      sync.Mutex
	calls   int
	succeed bool
}

func (e *mockExecutor) Execute(_ context.Context, token *domain.TokenInfo) *domain.TradeResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return &domain.TradeResult{
		Mint:    token.Mint.String(),
		Success: e.succeed,
		Error:   map[bool]string{true: "", false: "mock failure"}[e.succeed],
	}
}

func (e *mockExecutor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// recordingCleaner tracks which cleanup hooks fired.
type recordingCleaner struct {
	mu          sync.Mutex
	onFailure   int
	afterSell   int
	postSession [][]*domain.TokenInfo
}

func (c *recordingCleaner) OnBuyFailure(context.Context, *domain.TokenInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFailure++
}

func (c *recordingCleaner) AfterSell(context.Context, *domain.TokenInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterSell++
}

func (c *recordingCleaner) PostSession(_ context.Context, tokens []*domain.TokenInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postSession = append(c.postSession, tokens)
}
