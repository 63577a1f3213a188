// ==================================
// File: internal/monitoring/block_listener.go
// ==================================
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
)

// BlockListener detects token creations by subscribing to full blocks
// mentioning the launchpad program. Heavier than log subscriptions but sees
// the complete transaction, including accounts the logs omit.
type BlockListener struct {
	wssEndpoint string
	filters     Filters
	processor   *BlockProcessor
	logger      *zap.Logger

	reconnectDelay time.Duration
	recvTimeout    time.Duration
}

func NewBlockListener(wssEndpoint string, filters Filters, logger *zap.Logger) *BlockListener {
	return &BlockListener{
		wssEndpoint:    wssEndpoint,
		filters:        filters,
		processor:      NewBlockProcessor(),
		logger:         logger.Named("block_listener"),
		reconnectDelay: 5 * time.Second,
		recvTimeout:    90 * time.Second,
	}
}

// Listen subscribes and pushes matching tokens to cb until ctx is cancelled.
func (l *BlockListener) Listen(ctx context.Context, cb TokenCallback) error {
	for {
		if err := l.listenOnce(ctx, cb); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("WebSocket connection lost, reconnecting",
				zap.Error(err),
				zap.Duration("delay", l.reconnectDelay))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *BlockListener) listenOnce(ctx context.Context, cb TokenCallback) error {
	client, err := ws.Connect(ctx, l.wssEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect websocket: %w", err)
	}
	defer client.Close()

	maxVersion := uint64(0)
	sub, err := client.BlockSubscribe(
		ws.NewBlockSubscribeFilterMentionsAccountOrProgram(pumpfun.ProgramID),
		&ws.BlockSubscribeOpts{
			Commitment:                     rpc.CommitmentConfirmed,
			Encoding:                       solana.EncodingBase64,
			TransactionDetails:             rpc.TransactionDetailsFull,
			MaxSupportedTransactionVersion: &maxVersion,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to blocks: %w", err)
	}
	defer sub.Unsubscribe()

	l.logger.Info("Subscribed to blocks mentioning program",
		zap.String("program", pumpfun.ProgramID.String()))

	for {
		recvCtx, cancel := context.WithTimeout(ctx, l.recvTimeout)
		msg, err := sub.Recv(recvCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("block stream receive failed: %w", err)
		}

		if msg.Value.Block == nil {
			continue
		}

		for i := range msg.Value.Block.Transactions {
			txMeta := &msg.Value.Block.Transactions[i]
			if txMeta.Meta != nil && txMeta.Meta.Err != nil {
				continue
			}
			tx, err := txMeta.GetTransaction()
			if err != nil {
				continue
			}

			token := l.processor.Process(tx)
			if token == nil {
				continue
			}
			if !l.filters.Match(token) {
				continue
			}

			l.logger.Info("🚀 New token detected",
				zap.String("name", token.Name),
				zap.String("symbol", token.Symbol),
				zap.String("mint", token.Mint.String()),
				zap.Uint64("slot", msg.Value.Slot))
			cb(token)
		}
	}
}

var _ Listener = (*BlockListener)(nil)
