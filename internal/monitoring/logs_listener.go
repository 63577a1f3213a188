// ==================================
// File: internal/monitoring/logs_listener.go
// ==================================
package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/chainstacklabs/pump-fun-bot/internal/dex/pumpfun"
)

// LogsListener detects token creations through a logsSubscribe stream
// mentioning the launchpad program. This is the lightest detection path.
type LogsListener struct {
	wssEndpoint string
	filters     Filters
	processor   *LogsProcessor
	logger      *zap.Logger

	// reconnectDelay is the pause between a dropped connection and the next
	// dial attempt.
	reconnectDelay time.Duration
	// recvTimeout bounds silence on the stream before the connection is
	// considered dead.
	recvTimeout time.Duration
}

func NewLogsListener(wssEndpoint string, filters Filters, logger *zap.Logger) *LogsListener {
	return &LogsListener{
		wssEndpoint:    wssEndpoint,
		filters:        filters,
		processor:      NewLogsProcessor(),
		logger:         logger.Named("logs_listener"),
		reconnectDelay: 5 * time.Second,
		recvTimeout:    90 * time.Second,
	}
}

// Listen subscribes and pushes matching tokens to cb until ctx is cancelled.
// Connection drops trigger reconnects rather than errors.
func (l *LogsListener) Listen(ctx context.Context, cb TokenCallback) error {
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

func (l *LogsListener) listenOnce(ctx context.Context, cb TokenCallback) error {
	client, err := ws.Connect(ctx, l.wssEndpoint)
	if err != nil {
		return fmt.Errorf("failed to connect websocket: %w", err)
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(pumpfun.ProgramID, rpc.CommitmentProcessed)
	if err != nil {
		return fmt.Errorf("failed to subscribe to logs: %w", err)
	}
	defer sub.Unsubscribe()

	l.logger.Info("Subscribed to program logs",
		zap.String("program", pumpfun.ProgramID.String()))

	for {
		recvCtx, cancel := context.WithTimeout(ctx, l.recvTimeout)
		msg, err := sub.Recv(recvCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("log stream receive failed: %w", err)
		}

		if msg.Value.Err != nil {
			// Failed transactions still emit logs, skip them.
			continue
		}

		token := l.processor.Process(msg.Value.Logs)
		if token == nil {
			continue
		}

		if !l.filters.Match(token) {
			l.logger.Debug("Token filtered out",
				zap.String("name", token.Name),
				zap.String("symbol", token.Symbol))
			continue
		}

		l.logger.Info("🚀 New token detected",
			zap.String("name", token.Name),
			zap.String("symbol", token.Symbol),
			zap.String("mint", token.Mint.String()))
		cb(token)
	}
}

var _ Listener = (*LogsListener)(nil)
